package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the minor-unit precision amounts are rounded to.
// Rounding is half-up (decimal.Round is half away from zero, which is the
// same thing for the non-negative amounts handled here).
const moneyPlaces = 2

// LineItem is one invoice row: a project's aggregated hours, its hourly
// rate and the resulting subtotal.
type LineItem struct {
	Project  string
	Hours    decimal.Decimal // rounded to 2 decimal places
	Rate     decimal.Decimal
	Subtotal decimal.Decimal // Hours × Rate, rounded to the minor unit
}

// HourMinute renders the aggregated hours as e.g. "5h 30m".
func (li LineItem) HourMinute() string {
	whole := li.Hours.IntPart()
	minutes := li.Hours.Sub(decimal.NewFromInt(whole)).
		Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	if minutes == 60 {
		whole++
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", whole, minutes)
}

// ShortSummary is the one-line console form of a line item.
func (li LineItem) ShortSummary() string {
	return fmt.Sprintf("%s - %s - %s", li.Project, li.HourMinute(), li.Subtotal.StringFixed(moneyPlaces))
}

// Invoice is the computed document for one billing period. It is built
// fresh per run and handed straight to the renderer.
type Invoice struct {
	Client       string
	Currency     string
	Number       string
	BilledTo     string
	PayTo        string
	PaymentTerms string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	IssuedAt     time.Time
	Lines        []LineItem
	TotalHours   decimal.Decimal
	GrandTotal   decimal.Decimal
}

// DueDate is two weeks after the issue date.
func (inv Invoice) DueDate() time.Time {
	return inv.IssuedAt.AddDate(0, 0, 14)
}

// Summary is the result of pricing a set of time entries.
type Summary struct {
	Lines      []LineItem
	TotalHours decimal.Decimal
	GrandTotal decimal.Decimal
	Unmapped   []string // projects with tracked time but no configured rate
}

// Summarize groups entries by project name, prices each project with its
// configured rate and returns line items sorted by project name. Rate
// lookup is case-insensitive because config keys arrive lowercased.
// Entries whose project has no rate never contribute to a line item or
// the grand total; their project names come back in Unmapped. Projects
// without tracked time produce no line item.
func Summarize(rates map[string]decimal.Decimal, entries []TimeEntry) Summary {
	folded := make(map[string]decimal.Decimal, len(rates))
	for name, rate := range rates {
		folded[strings.ToLower(name)] = rate
	}

	seconds := make(map[string]int64)
	unmapped := make(map[string]bool)
	for _, e := range entries {
		if e.DurationSec <= 0 {
			continue
		}
		name := e.ProjectName
		if name == "" {
			name = "(no project)"
		}
		if _, ok := folded[strings.ToLower(name)]; !ok {
			unmapped[name] = true
			continue
		}
		seconds[name] += e.DurationSec
	}

	names := make([]string, 0, len(seconds))
	for name := range seconds {
		names = append(names, name)
	}
	sort.Strings(names)

	s := Summary{
		TotalHours: decimal.Zero,
		GrandTotal: decimal.Zero,
	}
	for _, name := range names {
		rate := folded[strings.ToLower(name)]
		hours := decimal.NewFromInt(seconds[name]).Div(secondsPerHour).Round(moneyPlaces)
		sub := hours.Mul(rate).Round(moneyPlaces)
		s.Lines = append(s.Lines, LineItem{
			Project:  name,
			Hours:    hours,
			Rate:     rate,
			Subtotal: sub,
		})
		s.TotalHours = s.TotalHours.Add(hours)
		s.GrandTotal = s.GrandTotal.Add(sub)
	}

	for name := range unmapped {
		s.Unmapped = append(s.Unmapped, name)
	}
	sort.Strings(s.Unmapped)
	return s
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

// TimeEntry represents a Toggl time entry in the domain.
type TimeEntry struct {
	ID          int64
	Description string
	ProjectID   *int64
	ProjectName string
	ClientName  string
	Tags        []string
	Start       time.Time
	Stop        *time.Time
	DurationSec int64 // Negative means running in Toggl API semantics
}

// Hours converts the tracked duration to decimal hours.
func (e TimeEntry) Hours() decimal.Decimal {
	return decimal.NewFromInt(e.DurationSec).Div(secondsPerHour)
}

// FilterPeriod returns the entries fully contained in [from, to).
// Running entries (nil Stop) and negative durations are dropped; the API
// can return spillover outside the requested window, so the bounds are
// enforced locally as well.
func FilterPeriod(entries []TimeEntry, from, to time.Time) []TimeEntry {
	out := make([]TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Stop == nil || e.DurationSec < 0 {
			continue
		}
		if e.Start.Before(from) || !e.Stop.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Package pdf renders the invoice document with Maroto v2.
//
// Page layout (letter-ish A4):
//
//	┌───────────────────────────────────────────────┐
//	│                   INVOICE                     │
//	│                Invoice #: 1001                │
//	│  Invoice Date / Due Date / Terms / Period     │
//	│  Bill To:            Pay To:                  │
//	│  ─────────────────────────────────────────    │
//	│  Project │ Hours │ Rate │ Amount              │
//	│  ─────────────────────────────────────────    │
//	│  TOTAL   │ 7.00  │      │ $400.00             │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"toggl-invoicer/internal/domain"
)

var (
	colorHeader = &props.Color{Red: 70, Green: 70, Blue: 70}
	colorGray   = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// MarotoRenderer implements ports.InvoiceRenderer using Maroto v2.
type MarotoRenderer struct{}

func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

// Render composes the invoice PDF and returns its bytes.
func (r *MarotoRenderer) Render(inv domain.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Invoice "+inv.Number, true).
		WithAuthor(inv.Client, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(titleRows(inv)...)
	m.AddRows(detailRows(inv)...)
	m.AddRows(partyRows("Bill To:", inv.BilledTo)...)
	m.AddRows(partyRows("Pay To:", inv.PayTo)...)

	m.AddRows(line.NewRow(2, props.Line{Color: colorHeader, Thickness: 0.4}))
	m.AddRows(tableHeaderRow())
	for _, li := range inv.Lines {
		m.AddRows(itemRow(li, inv.Currency))
	}
	m.AddRows(line.NewRow(2, props.Line{Color: colorHeader, Thickness: 0.4}))
	m.AddRows(totalRow(inv))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

func titleRows(inv domain.Invoice) []core.Row {
	rows := []core.Row{
		row.New(14).Add(col.New(12).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 22, Align: align.Center, Top: 2,
			}),
		)),
	}
	if inv.Number != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Invoice #: "+inv.Number, props.Text{
				Size: 12, Align: align.Center, Color: colorGray,
			}),
		)))
	}
	rows = append(rows, row.New(4))
	return rows
}

func detailRows(inv domain.Invoice) []core.Row {
	detail := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 10})),
			col.New(9).Add(text.New(value, props.Text{Size: 10})),
		)
	}
	const dateLayout = "January 2, 2006"
	period := fmt.Sprintf("%s to %s",
		inv.PeriodStart.Format("01-02-2006"),
		inv.PeriodEnd.Format("01-02-2006"))
	return []core.Row{
		detail("Invoice Date:", inv.IssuedAt.Format(dateLayout)),
		detail("Due Date:", inv.DueDate().Format(dateLayout)),
		detail("Payment Terms:", inv.PaymentTerms),
		detail("Service Period:", period),
		row.New(4),
	}
}

// partyRows prints a heading followed by one row per address line.
func partyRows(heading, address string) []core.Row {
	if address == "" {
		return nil
	}
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New(heading, props.Text{Style: fontstyle.Bold, Size: 12}),
		)),
	}
	for _, ln := range strings.Split(address, "\n") {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(ln, props.Text{Size: 10}),
		)))
	}
	rows = append(rows, row.New(4))
	return rows
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: a, Color: colorHeader, Top: 1,
		}))
	}
	return row.New(8).Add(
		h("Project", 5, align.Left),
		h("Hours", 2, align.Right),
		h("Rate", 2, align.Right),
		h("Amount", 3, align.Right),
	)
}

func itemRow(li domain.LineItem, currency string) core.Row {
	return row.New(7).Add(
		col.New(5).Add(text.New(li.Project, props.Text{Size: 10, Top: 1})),
		col.New(2).Add(text.New(li.Hours.StringFixed(2), props.Text{
			Size: 10, Align: align.Right, Top: 1,
		})),
		col.New(2).Add(text.New(money(currency, li.Rate), props.Text{
			Size: 10, Align: align.Right, Top: 1,
		})),
		col.New(3).Add(text.New(money(currency, li.Subtotal), props.Text{
			Size: 10, Align: align.Right, Top: 1,
		})),
	)
}

func totalRow(inv domain.Invoice) core.Row {
	return row.New(9).Add(
		col.New(5).Add(text.New("TOTAL", props.Text{
			Style: fontstyle.Bold, Size: 11, Top: 1,
		})),
		col.New(2).Add(text.New(inv.TotalHours.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
		})),
		col.New(2),
		col.New(3).Add(text.New(money(inv.Currency, inv.GrandTotal), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
		})),
	)
}

// money formats an amount with a currency symbol where one is common,
// falling back to the ISO code.
func money(currency string, amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	switch currency {
	case "USD", "CAD", "AUD":
		return "$" + s
	case "EUR":
		return "€" + s
	case "GBP":
		return "£" + s
	default:
		return currency + " " + s
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"toggl-invoicer/internal/config"
	"toggl-invoicer/internal/domain"
	"toggl-invoicer/internal/ports"
)

// InvoiceUseCase coordinates one invoice run: fetch entries from Toggl,
// price the billing period, render the invoice PDF and download the
// service-generated detailed report.
type InvoiceUseCase struct {
	Log      *slog.Logger
	Toggl    ports.TogglClient
	Renderer ports.InvoiceRenderer
	Cfg      config.Config
	Now      func() time.Time // defaults to time.Now
}

// Result reports what one run produced. ReportErr is non-nil when the
// detailed report could not be retrieved; the invoice PDF is written
// regardless.
type Result struct {
	Invoice     domain.Invoice
	InvoicePath string
	ReportPath  string
	Warnings    []string
	ReportErr   error
}

// Run executes the pipeline over [from, to). Fetch and render failures of
// the invoice itself are fatal; a report download failure is partial and
// lands in Result.ReportErr.
func (uc *InvoiceUseCase) Run(ctx context.Context, from, to time.Time) (*Result, error) {
	if uc.Toggl == nil || uc.Renderer == nil {
		return nil, errors.New("usecase not initialized: missing dependencies")
	}
	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}

	uc.Log.Info("fetching time entries", slog.Time("from", from), slog.Time("to", to))
	entries, err := uc.Toggl.ListTimeEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch time entries: %w", err)
	}
	entries = domain.FilterPeriod(entries, from, to)
	uc.Log.Info("fetched time entries", slog.Int("count", len(entries)))

	summary := domain.Summarize(uc.Cfg.Projects, entries)

	res := &Result{}
	for _, name := range summary.Unmapped {
		msg := fmt.Sprintf("project %q has tracked time but no configured rate; skipped", name)
		uc.Log.Warn("skipping unmapped project", slog.String("project", name))
		res.Warnings = append(res.Warnings, msg)
	}
	for _, li := range summary.Lines {
		uc.Log.Info(li.ShortSummary())
	}

	// The window end is exclusive; the printed period end is inclusive.
	periodEnd := to.AddDate(0, 0, -1)
	issuedAt := now()
	res.Invoice = domain.Invoice{
		Client:       uc.Cfg.Client.Name,
		Currency:     uc.Cfg.Client.Currency,
		Number:       uc.Cfg.Invoice.Number,
		BilledTo:     uc.Cfg.Invoice.BilledTo,
		PayTo:        uc.Cfg.Invoice.PayTo,
		PaymentTerms: uc.Cfg.Invoice.PaymentTerms,
		PeriodStart:  from,
		PeriodEnd:    periodEnd,
		IssuedAt:     issuedAt,
		Lines:        summary.Lines,
		TotalHours:   summary.TotalHours,
		GrandTotal:   summary.GrandTotal,
	}

	doc, err := uc.Renderer.Render(res.Invoice)
	if err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}

	stamp := issuedAt.Format("20060102")
	if err := os.MkdirAll(uc.Cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	res.InvoicePath = filepath.Join(uc.Cfg.Output.Dir, fmt.Sprintf("invoice_%s.pdf", stamp))
	if err := os.WriteFile(res.InvoicePath, doc, 0o644); err != nil {
		return nil, fmt.Errorf("write invoice pdf: %w", err)
	}
	uc.Log.Info("invoice written",
		slog.String("path", res.InvoicePath),
		slog.String("total", res.Invoice.GrandTotal.StringFixed(2)),
		slog.String("currency", res.Invoice.Currency),
	)

	// Detailed report: failure here is reported but never undoes the
	// invoice that was already written.
	report, err := uc.Toggl.DownloadReport(ctx, from, periodEnd, uc.projectIDs(ctx))
	if err != nil {
		uc.Log.Error("detailed report download failed", slog.String("error", err.Error()))
		res.ReportErr = err
		return res, nil
	}
	res.ReportPath = filepath.Join(uc.Cfg.Output.Dir, fmt.Sprintf("toggl_report_%s.pdf", stamp))
	if err := os.WriteFile(res.ReportPath, report, 0o644); err != nil {
		uc.Log.Error("writing detailed report failed", slog.String("error", err.Error()))
		res.ReportErr = err
		res.ReportPath = ""
		return res, nil
	}
	uc.Log.Info("detailed report written", slog.String("path", res.ReportPath))
	return res, nil
}

// projectIDs resolves configured project names to Toggl project IDs so the
// detailed report covers only invoiced projects. Resolution failures leave
// the report unfiltered rather than failing the run.
func (uc *InvoiceUseCase) projectIDs(ctx context.Context) []int64 {
	projects, err := uc.Toggl.ListProjects(ctx)
	if err != nil {
		uc.Log.Warn("listing projects failed; report will be unfiltered", slog.String("error", err.Error()))
		return nil
	}
	configured := make(map[string]bool, len(uc.Cfg.Projects))
	for name := range uc.Cfg.Projects {
		configured[strings.ToLower(name)] = true
	}
	var ids []int64
	for _, p := range projects {
		if configured[strings.ToLower(p.Name)] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

package ports

import (
	"context"
	"time"

	"toggl-invoicer/internal/domain"
)

// TogglClient defines the read operations used from the Toggl Track API.
type TogglClient interface {
	ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	// DownloadReport fetches the service-generated detailed time report as
	// PDF bytes, filtered to the given date range and project IDs.
	DownloadReport(ctx context.Context, from, to time.Time, projectIDs []int64) ([]byte, error)
}

// InvoiceRenderer produces the invoice document bytes from a computed
// invoice. Implementations must not perform I/O beyond rendering.
type InvoiceRenderer interface {
	Render(invoice domain.Invoice) ([]byte, error)
}

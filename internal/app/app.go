package app

import (
	"context"
	"log/slog"
	"time"

	"toggl-invoicer/internal/adapter/pdf"
	tg "toggl-invoicer/internal/adapter/toggl"
	"toggl-invoicer/internal/config"
	"toggl-invoicer/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log *slog.Logger
	uc  *usecase.InvoiceUseCase
}

func New(log *slog.Logger, cfg config.Config) *App {
	togglClient := tg.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.APIToken, cfg.Toggl.WorkspaceID, log)
	renderer := pdf.NewMarotoRenderer()

	uc := &usecase.InvoiceUseCase{
		Log:      log,
		Toggl:    togglClient,
		Renderer: renderer,
		Cfg:      cfg,
	}

	return &App{log: log, uc: uc}
}

// RunOnce generates the invoice and report for [from, to).
func (a *App) RunOnce(ctx context.Context, from, to time.Time) (*usecase.Result, error) {
	return a.uc.Run(ctx, from, to)
}

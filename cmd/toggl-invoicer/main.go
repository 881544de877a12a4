package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toggl-invoicer/internal/app"
	"toggl-invoicer/internal/config"
)

func main() {
	// Flags
	configPath := flag.String("config", "config.toml", "Path to the TOML config file")
	from := flag.String("from", "", "Billing period start override (RFC3339 or YYYY-MM-DD)")
	to := flag.String("to", "", "Billing period end override (RFC3339 or YYYY-MM-DD, date form inclusive)")
	out := flag.String("out", "", "Output directory override for the PDF files")
	httpAddr := flag.String("http", "", "Serve an HTTP trigger on this address instead of running once")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	// Logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Config: fall back to an interactive prompt when the file is missing.
	cfg, err := config.Resolve(
		config.FileSource(*configPath),
		config.PromptSource{In: os.Stdin, Out: os.Stderr},
	)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *out != "" {
		cfg.Output.Dir = *out
	}

	// Billing window: configured period, overridable per run. The end of
	// the window is exclusive; the configured end date is inclusive.
	fromTime := parseStart(*from, cfg.Period.Start, logger)
	toTime := parseEnd(*to, cfg.Period.End.AddDate(0, 0, 1), logger)

	application := app.New(logger, cfg)

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP trigger mode, for cron or webhook automation.
	if *httpAddr != "" {
		srv := application.HTTPServer(*httpAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", slog.String("error", err.Error()))
			}
		}()
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return
	}

	// One-shot run (the default).
	res, err := application.RunOnce(ctx, fromTime, toTime)
	if err != nil {
		logger.Error("invoice run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Printf("Invoice generated successfully: %s\n", res.InvoicePath)
	if res.ReportErr != nil {
		fmt.Printf("Detailed report could not be retrieved: %v\n", res.ReportErr)
	} else {
		fmt.Printf("Report downloaded successfully: %s\n", res.ReportPath)
	}
}

// parseStart parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// If empty, defaultVal is returned.
func parseStart(val string, defaultVal time.Time, log *slog.Logger) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	// Try date-only in UTC at 00:00
	if d, err := time.Parse("2006-01-02", val); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	log.Error("invalid -from, expected RFC3339 or YYYY-MM-DD")
	os.Exit(1)
	return time.Time{}
}

// parseEnd parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is treated as inclusive by converting to next-day 00:00 UTC.
// If empty, defaultVal is returned.
func parseEnd(val string, defaultVal time.Time, log *slog.Logger) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		next := d.Add(24 * time.Hour)
		return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
	}
	log.Error("invalid -to, expected RFC3339 or YYYY-MM-DD")
	os.Exit(1)
	return time.Time{}
}

package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HTTPServer returns a configured http.Server that exposes endpoints to
// trigger invoice runs, e.g. from cron or a webhook. Call ListenAndServe
// on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// /invoice?from=...&to=...
	// from/to accept RFC3339 or YYYY-MM-DD. If omitted, the configured
	// billing period is used.
	mux.HandleFunc("/invoice", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		period := a.uc.Cfg.Period
		fromTime := parseStartHTTP(q.Get("from"), period.Start)
		toTime := parseEndHTTP(q.Get("to"), period.End.AddDate(0, 0, 1))

		// Optional timeout override: ?timeout=5m
		ctx := r.Context()
		if tStr := q.Get("timeout"); tStr != "" {
			if d, err := time.ParseDuration(tStr); err == nil && d > 0 {
				var cancel func()
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
		}

		res, err := a.RunOnce(ctx, fromTime, toTime)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "error",
				"error":  err.Error(),
				"from":   fromTime.Format(time.RFC3339),
				"to":     toTime.Format(time.RFC3339),
			})
			return
		}
		body := map[string]any{
			"status":      "ok",
			"from":        fromTime.Format(time.RFC3339),
			"to":          toTime.Format(time.RFC3339),
			"currency":    res.Invoice.Currency,
			"grand_total": res.Invoice.GrandTotal.StringFixed(2),
			"line_items":  len(res.Invoice.Lines),
			"invoice":     res.InvoicePath,
		}
		if res.ReportPath != "" {
			body["report"] = res.ReportPath
		}
		if res.ReportErr != nil {
			body["report_error"] = res.ReportErr.Error()
		}
		if len(res.Warnings) > 0 {
			body["warnings"] = res.Warnings
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, mux)}
	a.log.Info("http trigger server configured", slog.String("addr", addr))
	return srv
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

// parseStartHTTP parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// If empty, defaultVal is returned.
func parseStartHTTP(val string, defaultVal time.Time) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	// On invalid input, fall back to default to avoid hard failures.
	return defaultVal
}

// parseEndHTTP parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is treated as inclusive by converting to next-day 00:00 UTC.
// If empty, defaultVal is returned.
func parseEndHTTP(val string, defaultVal time.Time) time.Time {
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
	return defaultVal
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ErrNotFound signals that the config file does not exist. Callers can
// prompt for another path instead of aborting.
var ErrNotFound = errors.New("config file not found")

// Error reports missing or malformed configuration. It aborts the run
// before any network call is made.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Config holds everything one invoice run needs.
type Config struct {
	Client   Client
	Period   Period
	Toggl    Toggl
	Invoice  Invoice
	Output   Output
	Projects map[string]decimal.Decimal // project name -> hourly rate
}

// Client identifies who the invoice bills.
type Client struct {
	Name     string
	Currency string // ISO 4217 code, e.g. USD
}

// Period is the inclusive billing date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Toggl holds API credentials. The token may come from the config file or
// from the TOGGL_API_TOKEN environment variable.
type Toggl struct {
	APIToken    string
	WorkspaceID int64
	BaseURL     string // default: https://api.track.toggl.com
}

// Invoice carries the static invoice metadata printed on the document.
type Invoice struct {
	Number       string
	BilledTo     string
	PayTo        string
	PaymentTerms string
}

// Output controls where the PDF files are written.
type Output struct {
	Dir string
}

// Load parses the TOML file at path and validates it. A missing file is
// reported as ErrNotFound; everything else malformed comes back as *Error.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, &Error{Field: path, Reason: err.Error()}
	}

	var cfg Config

	cfg.Client.Name = v.GetString("client.name")
	if cfg.Client.Name == "" {
		return Config{}, &Error{Field: "client.name", Reason: "is required"}
	}
	cfg.Client.Currency = strings.ToUpper(v.GetString("client.currency"))
	if len(cfg.Client.Currency) != 3 {
		return Config{}, &Error{Field: "client.currency", Reason: "must be a 3-letter ISO code"}
	}

	start, err := parseDate(v, "period.start")
	if err != nil {
		return Config{}, err
	}
	end, err := parseDate(v, "period.end")
	if err != nil {
		return Config{}, err
	}
	if end.Before(start) {
		return Config{}, &Error{Field: "period.end", Reason: "precedes period.start"}
	}
	cfg.Period = Period{Start: start, End: end}

	cfg.Toggl.APIToken = v.GetString("toggl.api_token")
	if cfg.Toggl.APIToken == "" {
		cfg.Toggl.APIToken = os.Getenv("TOGGL_API_TOKEN")
	}
	if cfg.Toggl.APIToken == "" {
		return Config{}, &Error{Field: "toggl.api_token", Reason: "is required (or set TOGGL_API_TOKEN)"}
	}
	cfg.Toggl.WorkspaceID = v.GetInt64("toggl.workspace_id")
	if cfg.Toggl.WorkspaceID == 0 {
		return Config{}, &Error{Field: "toggl.workspace_id", Reason: "is required"}
	}
	cfg.Toggl.BaseURL = v.GetString("toggl.base_url")
	if cfg.Toggl.BaseURL == "" {
		cfg.Toggl.BaseURL = "https://api.track.toggl.com"
	}

	cfg.Invoice.Number = v.GetString("invoice.number")
	cfg.Invoice.BilledTo = v.GetString("invoice.billed_to")
	cfg.Invoice.PayTo = v.GetString("invoice.pay_to")
	cfg.Invoice.PaymentTerms = v.GetString("invoice.payment_terms")
	if cfg.Invoice.PaymentTerms == "" {
		cfg.Invoice.PaymentTerms = "Payment details on file"
	}

	cfg.Output.Dir = v.GetString("output.dir")
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}

	cfg.Projects, err = parseProjects(v)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// parseProjects reads the [projects.<name>] tables. Viper lowercases map
// keys, which is why project names match entries case-insensitively.
func parseProjects(v *viper.Viper) (map[string]decimal.Decimal, error) {
	raw := v.GetStringMap("projects")
	if len(raw) == 0 {
		return nil, &Error{Field: "projects", Reason: "at least one project rate is required"}
	}
	projects := make(map[string]decimal.Decimal, len(raw))
	for name, val := range raw {
		table, ok := val.(map[string]interface{})
		if !ok {
			return nil, &Error{Field: "projects." + name, Reason: "must be a table with a rate"}
		}
		rate, err := toDecimal(table["rate"])
		if err != nil {
			return nil, &Error{Field: "projects." + name + ".rate", Reason: err.Error()}
		}
		if !rate.IsPositive() {
			return nil, &Error{Field: "projects." + name + ".rate", Reason: "must be positive"}
		}
		projects[name] = rate
	}
	return projects, nil
}

func toDecimal(val interface{}) (decimal.Decimal, error) {
	switch n := val.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case string:
		return decimal.NewFromString(n)
	case nil:
		return decimal.Zero, errors.New("is required")
	default:
		return decimal.Zero, fmt.Errorf("unsupported value %v", val)
	}
}

// parseDate reads a required YYYY-MM-DD value at midnight UTC.
func parseDate(v *viper.Viper, key string) (time.Time, error) {
	s := v.GetString(key)
	if s == "" {
		// TOML date values decode as time.Time rather than string.
		if t := v.GetTime(key); !t.IsZero() {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		return time.Time{}, &Error{Field: key, Reason: "is required"}
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &Error{Field: key, Reason: "expected YYYY-MM-DD"}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

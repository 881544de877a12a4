package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTOML = `
[client]
name = "Acme Corp"
currency = "usd"

[period]
start = "2024-01-01"
end = "2024-01-31"

[toggl]
api_token = "secret-token"
workspace_id = 42

[invoice]
number = "1001"
billed_to = "Acme Corp\n123 Main St"
pay_to = "Jane Dev\n456 Side St"

[projects.Design]
rate = 50.00

[projects.Dev]
rate = 75.00
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validTOML))
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", cfg.Client.Name)
	assert.Equal(t, "USD", cfg.Client.Currency)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Period.Start)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), cfg.Period.End)
	assert.Equal(t, "secret-token", cfg.Toggl.APIToken)
	assert.Equal(t, int64(42), cfg.Toggl.WorkspaceID)
	assert.Equal(t, "https://api.track.toggl.com", cfg.Toggl.BaseURL)
	assert.Equal(t, "1001", cfg.Invoice.Number)
	assert.Equal(t, "Payment details on file", cfg.Invoice.PaymentTerms)
	assert.Equal(t, ".", cfg.Output.Dir)

	// Viper lowercases table keys; rate lookup downstream is
	// case-insensitive for that reason.
	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "50", cfg.Projects["design"].String())
	assert.Equal(t, "75", cfg.Projects["dev"].String())
}

func TestLoad_MissingFileIsErrNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_PeriodEndBeforeStart(t *testing.T) {
	bad := strings.Replace(validTOML, `end = "2024-01-31"`, `end = "2023-12-31"`, 1)
	_, err := Load(writeConfig(t, bad))

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "period.end", cfgErr.Field)
}

func TestLoad_NonPositiveRate(t *testing.T) {
	bad := strings.Replace(validTOML, "rate = 50.00", "rate = 0", 1)
	_, err := Load(writeConfig(t, bad))

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Field, ".rate")
}

func TestLoad_MissingClientName(t *testing.T) {
	bad := strings.Replace(validTOML, `name = "Acme Corp"`, `name = ""`, 1)
	_, err := Load(writeConfig(t, bad))

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "client.name", cfgErr.Field)
}

func TestLoad_MissingProjects(t *testing.T) {
	bad := validTOML[:strings.Index(validTOML, "[projects.Design]")]
	_, err := Load(writeConfig(t, bad))

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "projects", cfgErr.Field)
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	noToken := strings.Replace(validTOML, `api_token = "secret-token"`, "", 1)
	t.Setenv("TOGGL_API_TOKEN", "env-token")

	cfg, err := Load(writeConfig(t, noToken))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Toggl.APIToken)
}

func TestResolve_FallsBackToPrompt(t *testing.T) {
	path := writeConfig(t, validTOML)
	missing := filepath.Join(t.TempDir(), "nope.toml")

	var out strings.Builder
	cfg, err := Resolve(
		FileSource(missing),
		PromptSource{In: strings.NewReader(path + "\n"), Out: &out},
	)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", cfg.Client.Name)
	assert.Contains(t, out.String(), "Config file path:")
}

func TestResolve_InvalidConfigIsNotRetried(t *testing.T) {
	bad := writeConfig(t, strings.Replace(validTOML, `currency = "usd"`, `currency = "x"`, 1))

	_, err := Resolve(
		FileSource(bad),
		PromptSource{In: strings.NewReader("unused\n"), Out: &strings.Builder{}},
	)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "client.currency", cfgErr.Field)
}

func TestResolve_AllSourcesExhausted(t *testing.T) {
	_, err := Resolve(FileSource(filepath.Join(t.TempDir(), "nope.toml")))
	assert.True(t, errors.Is(err, ErrNotFound))
}

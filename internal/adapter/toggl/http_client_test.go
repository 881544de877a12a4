package toggl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListTimeEntries_MapsMetaFields(t *testing.T) {
	var gotPath, gotAuth, gotMeta string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotMeta = r.URL.Query().Get("meta")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "description": "wireframes", "project_id": 11,
			 "project_name": "Design", "client_name": "Acme",
			 "start": "2024-01-05T09:00:00Z", "stop": "2024-01-05T12:30:00Z",
			 "duration": 12600, "tags": ["ui"]},
			{"id": 2, "description": "running", "project_id": 11,
			 "project_name": "Design",
			 "start": "2024-01-06T09:00:00Z", "stop": null, "duration": -1704531600}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 42, testLogger())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	entries, err := c.ListTimeEntries(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, "/api/v9/me/time_entries", gotPath)
	assert.Contains(t, gotAuth, "Basic ")
	assert.Equal(t, "true", gotMeta)

	require.Len(t, entries, 2)
	assert.Equal(t, "Design", entries[0].ProjectName)
	assert.Equal(t, "Acme", entries[0].ClientName)
	require.NotNil(t, entries[0].ProjectID)
	assert.Equal(t, int64(11), *entries[0].ProjectID)
	assert.Equal(t, int64(12600), entries[0].DurationSec)
	require.NotNil(t, entries[0].Stop)
	assert.Nil(t, entries[1].Stop)
}

func TestListTimeEntries_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 42, testLogger())
	_, err := c.ListTimeEntries(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 429")
}

func TestListProjects_ScopesToWorkspace(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 11, "workspace_id": 42, "name": "Design", "active": true,
			 "at": "2024-01-01T00:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 42, testLogger())
	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/v9/workspaces/42/projects", gotPath)
	require.Len(t, projects, 1)
	assert.Equal(t, "Design", projects[0].Name)
	assert.Equal(t, int64(11), projects[0].ID)
}

func TestDownloadReport_PostsFilter(t *testing.T) {
	pdfBytes := []byte("%PDF-1.7 fake report")
	var gotPath string
	var gotBody reportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdfBytes)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 42, testLogger())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	data, err := c.DownloadReport(context.Background(), from, to, []int64{11, 22})
	require.NoError(t, err)

	assert.Equal(t, "/reports/api/v3/workspace/42/search/time_entries.pdf", gotPath)
	assert.Equal(t, "2024-01-01", gotBody.StartDate)
	assert.Equal(t, "2024-01-31", gotBody.EndDate)
	assert.Equal(t, []int64{11, 22}, gotBody.ProjectIDs)
	assert.Equal(t, pdfBytes, data)
}

func TestDownloadReport_EmptyBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 42, testLogger())
	_, err := c.DownloadReport(context.Background(), time.Now().AddDate(0, -1, 0), time.Now(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty body")
}

func TestDownloadReport_RequiresWorkspace(t *testing.T) {
	c := NewClient("https://api.track.toggl.com", "tok", 0, testLogger())
	_, err := c.DownloadReport(context.Background(), time.Now().AddDate(0, -1, 0), time.Now(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace")
}

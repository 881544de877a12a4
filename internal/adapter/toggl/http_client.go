package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"toggl-invoicer/internal/domain"
)

// maxReportSize caps the detailed report download (the PDFs are small).
const maxReportSize = 32 << 20

// Client implements ports.TogglClient using the Toggl Track API v9 and
// the Reports API v3.
type Client struct {
	baseURL   string
	apiToken  string
	http      *http.Client
	workspace int64
	log       *slog.Logger
}

func NewClient(baseURL, apiToken string, workspaceID int64, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.track.toggl.com"
	}
	return &Client{
		baseURL:   baseURL,
		apiToken:  apiToken,
		workspace: workspaceID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// ListTimeEntries fetches entries in [from, to].
// Toggl v9: GET /api/v9/me/time_entries?start_date=...&end_date=...
// The meta flag makes each entry carry its project and client names.
func (c *Client) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	if c.apiToken == "" {
		return nil, errors.New("missing api token")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = "/api/v9/me/time_entries"
	q := u.Query()
	q.Set("start_date", from.Format(time.RFC3339))
	q.Set("end_date", to.Format(time.RFC3339))
	q.Set("meta", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("toggl: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	dec := json.NewDecoder(resp.Body)
	var raw []rawTimeEntry
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	// Map to domain
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		var stopPtr *time.Time
		if r.Stop != nil {
			stop := *r.Stop
			stopPtr = &stop
		}
		var projectPtr *int64
		if r.ProjectID != nil {
			p := *r.ProjectID
			projectPtr = &p
		}
		out = append(out, domain.TimeEntry{
			ID:          r.ID,
			Description: r.Description,
			ProjectID:   projectPtr,
			ProjectName: r.ProjectName,
			ClientName:  r.ClientName,
			Tags:        r.Tags,
			Start:       r.Start,
			Stop:        stopPtr,
			DurationSec: r.Duration,
		})
	}
	return out, nil
}

// ListProjects fetches projects accessible to the configured token.
// If a workspace ID is configured, it scopes the request to that workspace.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	if c.apiToken == "" {
		return nil, errors.New("missing api token")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	if c.workspace != 0 {
		u.Path = fmt.Sprintf("/api/v9/workspaces/%d/projects", c.workspace)
	} else {
		u.Path = "/api/v9/me/projects"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("toggl: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(resp.Body)
	var raw []rawProject
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(raw))
	for _, p := range raw {
		var clientID *int64
		if p.ClientID != nil {
			id := *p.ClientID
			clientID = &id
		}
		out = append(out, domain.Project{
			ID:          p.ID,
			WorkspaceID: p.WorkspaceID,
			Name:        p.Name,
			Active:      p.Active,
			ClientID:    clientID,
			At:          p.At,
		})
	}
	return out, nil
}

// DownloadReport requests the detailed time report as PDF.
// Reports v3: POST /reports/api/v3/workspace/{id}/search/time_entries.pdf
func (c *Client) DownloadReport(ctx context.Context, from, to time.Time, projectIDs []int64) ([]byte, error) {
	if c.apiToken == "" {
		return nil, errors.New("missing api token")
	}
	if c.workspace == 0 {
		return nil, errors.New("missing workspace id")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = fmt.Sprintf("/reports/api/v3/workspace/%d/search/time_entries.pdf", c.workspace)

	payload, err := json.Marshal(reportRequest{
		StartDate:  from.Format("2006-01-02"),
		EndDate:    to.Format("2006-01-02"),
		ProjectIDs: projectIDs,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("toggl: report download failed with status %d: %s", resp.StatusCode, string(body))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReportSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("toggl: report download returned an empty body")
	}
	c.log.Debug("downloaded detailed report", slog.Int("bytes", len(data)))
	return data, nil
}

// authorize sets basic auth in the token:api_token form Toggl expects.
func (c *Client) authorize(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", c.apiToken, "api_token")))
	req.Header.Set("Authorization", "Basic "+auth)
}

// rawTimeEntry mirrors the JSON from Toggl v9 (with meta=true).
type rawTimeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	ProjectName string     `json:"project_name"`
	ClientName  string     `json:"client_name"`
	Tags        []string   `json:"tags"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
}

type rawProject struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	ClientID    *int64    `json:"client_id"`
	At          time.Time `json:"at"`
}

type reportRequest struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	ProjectIDs []int64 `json:"project_ids,omitempty"`
}

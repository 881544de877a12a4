package domain

import "time"

// Project represents a Toggl project in the domain layer. Projects are
// fetched to resolve configured project names to Toggl IDs for the
// detailed report filter.
type Project struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Active      bool
	ClientID    *int64
	At          time.Time // Last update timestamp from Toggl
}

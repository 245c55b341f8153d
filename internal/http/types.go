package http

import (
	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// Notification messages returned alongside successful mutations.
const (
	MessageAssigned = "Roles assigned!"
	MessageSaved    = "Team saved"
	MessageDeleted  = "Team deleted"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Reveal  string `json:"reveal"`
}

// TeamRequest names the participants and roles of an ad-hoc team.
// Used by POST /api/v1/assign and POST /api/v1/reveal.
type TeamRequest struct {
	Participants []string `json:"participants"`
	Roles        []string `json:"roles"`
}

// AssignResponse is the response body for POST /api/v1/assign.
type AssignResponse struct {
	Participants []roster.Participant `json:"participants"`
	Message      string               `json:"message"`
}

// RevealResponse is the response body for POST /api/v1/reveal. Frames are
// returned in tick order once the run completes.
type RevealResponse struct {
	RunID        string               `json:"run_id"`
	Frames       []reveal.Frame       `json:"frames"`
	Participants []roster.Participant `json:"participants"`
	Message      string               `json:"message"`
}

// SaveRequest is the request body for POST /api/v1/configurations.
type SaveRequest struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
	Roles        []string `json:"roles"`
}

// SaveResponse is the response body for POST /api/v1/configurations.
type SaveResponse struct {
	Configuration *configstore.Configuration `json:"configuration"`
	Message       string                     `json:"message"`
}

// ListResponse is the response body for GET /api/v1/configurations.
type ListResponse struct {
	Configurations []*configstore.Configuration `json:"configurations"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

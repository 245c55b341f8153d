// Package configstore keeps named snapshots of a team (participants and
// roles) in a blob store.
//
// The full list lives under a single key, "savedTeams", as a JSON array of
// {id, name, teamMembers, roles, date} records. It is read once when the
// store is opened and written back after every mutation.
package configstore

import (
	"context"
	"errors"
	"time"

	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

const (
	// BlobKey is the blob that holds every saved configuration.
	BlobKey = "savedTeams"

	// DateLayout formats the display date stamped on save.
	DateLayout = "1/2/2006"
)

var (
	ErrNotFound  = errors.New("configuration not found")
	ErrPersist   = errors.New("failed to persist configurations")
	ErrCorrupted = errors.New("saved configurations corrupted")
	ErrClosed    = errors.New("configuration store closed")
)

// Configuration is a saved team snapshot.
//
// Date is the display string that is persisted. SavedAt is recovered from
// Date when it parses and is zero otherwise.
type Configuration struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	TeamMembers []roster.Participant `json:"teamMembers"`
	Roles       []roster.Role        `json:"roles"`
	Date        string               `json:"date"`
	SavedAt     time.Time            `json:"-"`
}

func (c *Configuration) clone() *Configuration {
	out := *c
	out.TeamMembers = roster.CloneParticipants(c.TeamMembers)
	out.Roles = roster.CloneRoles(c.Roles)
	return &out
}

// Store manages saved configurations. Every returned value is a copy.
type Store interface {
	// Save snapshots participants and roles under name and persists the list.
	Save(ctx context.Context, name string, participants []roster.Participant, roles []roster.Role) (*Configuration, error)

	// List returns every configuration, oldest first.
	List(ctx context.Context) ([]*Configuration, error)

	// Get returns one configuration or ErrNotFound.
	Get(ctx context.Context, id string) (*Configuration, error)

	// Load returns the participants and roles of a configuration, ready to
	// hand to roster.Team.LoadTeam.
	Load(ctx context.Context, id string) ([]roster.Participant, []roster.Role, error)

	// Delete removes a configuration. Unknown ids are a no-op.
	Delete(ctx context.Context, id string) error

	// Close stops the store. The blob backend is left open.
	Close() error
}

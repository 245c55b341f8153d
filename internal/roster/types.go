// Package roster holds participants and roles in name-unique collections.
//
// Names are trimmed and compared with Unicode case folding, so "Alice" and
// "alice" collide. Participant and role names live in separate namespaces.
package roster

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Participant is someone eligible to receive a role.
//
// AssignedRole is a copy of a role name taken at assignment time. It is not
// re-resolved when roles are later renamed or removed.
type Participant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AssignedRole string `json:"assignedRole,omitempty"`
}

// Role is a label that can be assigned to participants.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (p Participant) entityID() string   { return p.ID }
func (p Participant) entityName() string { return p.Name }
func (r Role) entityID() string          { return r.ID }
func (r Role) entityName() string        { return r.Name }

// NewParticipant returns a participant with a fresh id and trimmed name.
func NewParticipant(name string) Participant {
	return Participant{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
}

// NewRole returns a role with a fresh id and trimmed name.
func NewRole(name string) Role {
	return Role{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
}

// ParticipantsFromNames builds participants in order. Blank and duplicate
// names are rejected the same way Collection.Add rejects them.
func ParticipantsFromNames(names []string) ([]Participant, error) {
	c := NewParticipants()
	for _, n := range names {
		if _, err := c.Add(n); err != nil {
			return nil, err
		}
	}
	return c.Items(), nil
}

// RolesFromNames builds roles in order with the same validation.
func RolesFromNames(names []string) ([]Role, error) {
	c := NewRoles()
	for _, n := range names {
		if _, err := c.Add(n); err != nil {
			return nil, err
		}
	}
	return c.Items(), nil
}

// RoleNames returns the names of roles in order.
func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

// CloneParticipants returns an independent copy, nil-preserving.
func CloneParticipants(in []Participant) []Participant {
	if in == nil {
		return nil
	}
	return append(make([]Participant, 0, len(in)), in...)
}

// CloneRoles returns an independent copy, nil-preserving.
func CloneRoles(in []Role) []Role {
	if in == nil {
		return nil
	}
	return append(make([]Role, 0, len(in)), in...)
}

// foldKey is the comparison key for uniqueness checks.
func foldKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

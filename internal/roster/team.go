package roster

import "sync"

// Team is the live pair of participant and role collections that the
// engine reads from and saved configurations load into.
type Team struct {
	mu           sync.RWMutex
	participants *Collection[Participant]
	roles        *Collection[Role]
}

// NewTeam returns an empty team.
func NewTeam() *Team {
	return &Team{participants: NewParticipants(), roles: NewRoles()}
}

// AddParticipant adds a participant by name.
func (t *Team) AddParticipant(name string) (Participant, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.participants.Add(name)
}

// RemoveParticipant removes a participant by id; unknown ids are ignored.
func (t *Team) RemoveParticipant(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.participants.Remove(id)
}

// AddRole adds a role by name.
func (t *Team) AddRole(name string) (Role, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roles.Add(name)
}

// RemoveRole removes a role by id; unknown ids are ignored.
func (t *Team) RemoveRole(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roles.Remove(id)
}

// Participants returns a snapshot of the participants.
func (t *Team) Participants() []Participant {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.participants.Items()
}

// Roles returns a snapshot of the roles.
func (t *Team) Roles() []Role {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.roles.Items()
}

// Snapshot returns both collections read under one lock.
func (t *Team) Snapshot() ([]Participant, []Role) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.participants.Items(), t.roles.Items()
}

// LoadTeam replaces both collections. Either both are replaced or, on a
// validation error, neither changes. Ids and assigned roles are kept as given.
func (t *Team) LoadTeam(members []Participant, roles []Role) error {
	if err := t.participants.validateAll(members); err != nil {
		return err
	}
	if err := t.roles.validateAll(roles); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.participants.set(members)
	t.roles.set(roles)
	return nil
}

// ApplyAssignment copies AssignedRole from assigned onto live participants
// with the same id and returns how many were updated. Participants added
// since the assignment was computed keep their previous label.
func (t *Team) ApplyAssignment(assigned []Participant) int {
	labels := make(map[string]string, len(assigned))
	for _, p := range assigned {
		labels[p.ID] = p.AssignedRole
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	t.participants.update(func(p Participant) Participant {
		if role, ok := labels[p.ID]; ok {
			p.AssignedRole = role
			n++
		}
		return p
	})
	return n
}

// ClearAssignments removes every participant's AssignedRole.
func (t *Team) ClearAssignments() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.participants.update(func(p Participant) Participant {
		p.AssignedRole = ""
		return p
	})
}

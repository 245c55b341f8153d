package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeamWith(t *testing.T, people, roles []string) *Team {
	t.Helper()
	team := NewTeam()
	for _, n := range people {
		_, err := team.AddParticipant(n)
		require.NoError(t, err)
	}
	for _, n := range roles {
		_, err := team.AddRole(n)
		require.NoError(t, err)
	}
	return team
}

func TestTeam_SeparateNamespaces(t *testing.T) {
	team := NewTeam()
	_, err := team.AddParticipant("Lead")
	require.NoError(t, err)
	_, err = team.AddRole("lead")
	require.NoError(t, err, "participant and role names do not collide")
}

func TestTeam_LoadTeam(t *testing.T) {
	team := newTeamWith(t, []string{"Old"}, []string{"Legacy"})

	members := []Participant{
		{ID: "p1", Name: "Alice", AssignedRole: "Lead"},
		{ID: "p2", Name: "Bob"},
	}
	roles := []Role{{ID: "r1", Name: "Lead"}, {ID: "r2", Name: "Dev"}}

	require.NoError(t, team.LoadTeam(members, roles))

	gotP, gotR := team.Snapshot()
	assert.Equal(t, members, gotP)
	assert.Equal(t, roles, gotR)

	// The team keeps its own copy.
	members[0].Name = "Mallory"
	assert.Equal(t, "Alice", team.Participants()[0].Name)
}

func TestTeam_LoadTeamIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		members []Participant
		roles   []Role
		wantErr error
	}{
		{
			name:    "duplicate member",
			members: []Participant{{ID: "1", Name: "Alice"}, {ID: "2", Name: "ALICE"}},
			roles:   []Role{{ID: "r", Name: "Dev"}},
			wantErr: ErrDuplicate,
		},
		{
			name:    "blank role",
			members: []Participant{{ID: "1", Name: "Alice"}},
			roles:   []Role{{ID: "r", Name: " "}},
			wantErr: ErrEmptyName,
		},
		{
			name:    "missing id",
			members: []Participant{{Name: "Alice"}},
			roles:   []Role{{ID: "r", Name: "Dev"}},
			wantErr: ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := newTeamWith(t, []string{"Keep"}, []string{"Stay"})
			beforeP, beforeR := team.Snapshot()

			err := team.LoadTeam(tt.members, tt.roles)
			assert.ErrorIs(t, err, tt.wantErr)

			afterP, afterR := team.Snapshot()
			assert.Equal(t, beforeP, afterP)
			assert.Equal(t, beforeR, afterR)
		})
	}
}

func TestTeam_LoadTeamEmpty(t *testing.T) {
	team := newTeamWith(t, []string{"A"}, []string{"B"})
	require.NoError(t, team.LoadTeam(nil, nil))

	p, r := team.Snapshot()
	assert.Empty(t, p)
	assert.Empty(t, r)
}

func TestTeam_ApplyAndClearAssignments(t *testing.T) {
	team := newTeamWith(t, []string{"Alice", "Bob"}, []string{"Lead"})
	people := team.Participants()

	assigned := []Participant{
		{ID: people[0].ID, Name: "Alice", AssignedRole: "Lead"},
		{ID: people[1].ID, Name: "Bob", AssignedRole: "Lead"},
		{ID: "gone", Name: "Ghost", AssignedRole: "Lead"},
	}
	assert.Equal(t, 2, team.ApplyAssignment(assigned))

	for _, p := range team.Participants() {
		assert.Equal(t, "Lead", p.AssignedRole)
	}

	// Removing the role leaves the point-in-time label in place.
	team.RemoveRole(team.Roles()[0].ID)
	assert.Equal(t, "Lead", team.Participants()[0].AssignedRole)

	team.ClearAssignments()
	for _, p := range team.Participants() {
		assert.Empty(t, p.AssignedRole)
	}
}

func TestTeam_Remove(t *testing.T) {
	team := newTeamWith(t, []string{"Alice"}, []string{"Lead"})
	assert.True(t, team.RemoveParticipant(team.Participants()[0].ID))
	assert.False(t, team.RemoveParticipant("missing"))
	assert.False(t, team.RemoveRole("missing"))
	assert.Len(t, team.Roles(), 1)
}

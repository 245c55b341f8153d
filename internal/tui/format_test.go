package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

func TestFormatAssignment(t *testing.T) {
	assert.Equal(t, "Alice", FormatAssignment(roster.Participant{Name: "Alice"}))
	assert.Equal(t, "Alice → Driver", FormatAssignment(roster.Participant{Name: "Alice", AssignedRole: "Driver"}))
}

func TestFormatRoleCounts(t *testing.T) {
	roles := []roster.Role{{Name: "Driver"}, {Name: "Navigator"}, {Name: "Scribe"}}

	tests := []struct {
		name         string
		participants []roster.Participant
		expected     string
	}{
		{"none", nil, "no roles assigned"},
		{"unassigned", []roster.Participant{{Name: "A"}}, "no roles assigned"},
		{
			"role order",
			[]roster.Participant{
				{Name: "A", AssignedRole: "Navigator"},
				{Name: "B", AssignedRole: "Driver"},
				{Name: "C", AssignedRole: "Navigator"},
			},
			"Driver ×1, Navigator ×2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRoleCounts(tt.participants, roles))
		})
	}
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "2/5", FormatTick(2, 5))
}

func TestFormatSaved(t *testing.T) {
	cfg := &configstore.Configuration{
		Name:        "Sprint 12",
		TeamMembers: []roster.Participant{{Name: "A"}},
		Roles:       []roster.Role{{Name: "X"}, {Name: "Y"}},
		Date:        "3/7/2024",
	}
	assert.Equal(t, "Sprint 12  1 member · 2 roles · 3/7/2024", FormatSaved(cfg))
}

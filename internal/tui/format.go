package tui

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// FormatAssignment formats a participant as "Name → Role" or "Name" when no
// role is held.
func FormatAssignment(p roster.Participant) string {
	if p.AssignedRole == "" {
		return p.Name
	}
	return fmt.Sprintf("%s → %s", p.Name, p.AssignedRole)
}

// FormatRoleCounts summarizes how many participants hold each role, in role
// order. Roles nobody holds are omitted.
func FormatRoleCounts(participants []roster.Participant, roles []roster.Role) string {
	counts := make(map[string]int, len(roles))
	for _, p := range participants {
		if p.AssignedRole != "" {
			counts[p.AssignedRole]++
		}
	}

	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		if n := counts[r.Name]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s ×%d", r.Name, n))
		}
	}
	if len(parts) == 0 {
		return "no roles assigned"
	}
	return strings.Join(parts, ", ")
}

// FormatTick formats reveal progress as "tick/total".
func FormatTick(tick, total int) string {
	return fmt.Sprintf("%d/%d", tick, total)
}

// FormatSaved formats a saved configuration list entry.
func FormatSaved(cfg *configstore.Configuration) string {
	return fmt.Sprintf("%s  %s", cfg.Name, FormatCounts(len(cfg.TeamMembers), len(cfg.Roles), cfg.Date))
}

// FormatCounts formats member and role totals with the saved date.
func FormatCounts(members, roles int, date string) string {
	return fmt.Sprintf("%s · %s · %s", plural(members, "member"), plural(roles, "role"), date)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

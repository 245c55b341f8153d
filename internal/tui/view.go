package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// Lipgloss styles (k9s-inspired color scheme)
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("45")).
			Bold(true)

	roleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(36)

	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.Color("51"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)
)

// View renders the current screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("roleshuffle"))
	b.WriteString("\n\n")

	if m.screen == screenSaved {
		b.WriteString(m.renderSaved())
	} else {
		b.WriteString(m.renderRoster())
	}

	if m.inputKind != inputNone {
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	}

	if line := m.renderStatus(); line != "" {
		b.WriteString("\n\n")
		b.WriteString(line)
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderRoster() string {
	participants := m.displayedParticipants()
	roles := m.team.Roles()

	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = renderParticipant(p)
	}
	roleNames := make([]string, len(roles))
	for i, r := range roles {
		roleNames[i] = r.Name
	}

	left := m.renderPane(paneParticipants, "Team Members", names)
	right := m.renderPane(paneRoles, "Roles", roleNames)
	cols := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	var b strings.Builder
	b.WriteString(cols)

	if m.frame != nil {
		b.WriteString("\n\n")
		b.WriteString(m.progress.ViewAs(float64(m.frame.Tick) / float64(m.frame.Total)))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(FormatTick(m.frame.Tick, m.frame.Total)))
		if m.frame.Final {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(FormatRoleCounts(participants, roles)))
		}
	}
	return b.String()
}

// displayedParticipants overlays in-flight frame labels on the live roster.
func (m Model) displayedParticipants() []roster.Participant {
	live := m.team.Participants()
	if m.run == nil || m.frame == nil {
		return live
	}

	labels := make(map[string]string, len(m.frame.Participants))
	for _, p := range m.frame.Participants {
		labels[p.ID] = p.AssignedRole
	}
	for i := range live {
		if role, ok := labels[live[i].ID]; ok {
			live[i].AssignedRole = role
		}
	}
	return live
}

func renderParticipant(p roster.Participant) string {
	if p.AssignedRole == "" {
		return p.Name
	}
	return p.Name + " " + roleStyle.Render(p.AssignedRole)
}

func (m Model) renderPane(id pane, title string, items []string) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
	}
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		if m.focus == id && m.cursors[id] == i {
			b.WriteString(selectedStyle.Render("> ") + item)
		} else {
			b.WriteString(itemStyle.Render("  ") + item)
		}
	}

	style := paneStyle
	if m.focus == id {
		style = focusedPaneStyle
	}
	return style.Render(b.String())
}

func (m Model) renderSaved() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Saved Teams"))
	b.WriteString("\n")

	if len(m.saved) == 0 {
		b.WriteString(dimStyle.Render("No saved teams"))
		return focusedPaneStyle.Width(60).Render(b.String())
	}
	for i, cfg := range m.saved {
		if i > 0 {
			b.WriteString("\n")
		}
		line := FormatSaved(cfg)
		if i == m.savedCursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
	}
	return focusedPaneStyle.Width(60).Render(b.String())
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render("✗ " + m.status)
	}
	return okStyle.Render("✓ " + m.status)
}

func (m Model) renderFooter() string {
	var keys [][2]string
	switch {
	case m.inputKind != inputNone:
		keys = [][2]string{{"enter", "confirm"}, {"esc", "cancel"}}
	case m.screen == screenSaved:
		keys = [][2]string{{"enter", "load"}, {"d", "delete"}, {"esc", "back"}, {"q", "quit"}}
	default:
		keys = [][2]string{
			{"tab", "switch"}, {"a", "add"}, {"d", "remove"}, {"s", "shuffle"},
			{"c", "clear"}, {"w", "save"}, {"l", "saved"}, {"q", "quit"},
		}
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = footerKeyStyle.Render(k[0]) + " " + k[1]
	}
	return footerStyle.Render(strings.Join(parts, "  "))
}

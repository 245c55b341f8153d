// Package tui is the interactive terminal front end: roster editing, the
// staged reveal and saved team management.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// Notifications shown in the status line.
const (
	NoticeAssigned = "Roles assigned!"
	NoticeSaved    = "Team saved"
	NoticeLoaded   = "Team loaded"
	NoticeDeleted  = "Team deleted"
)

type screen int

const (
	screenRoster screen = iota
	screenSaved
)

type pane int

const (
	paneParticipants pane = iota
	paneRoles
)

type inputKind int

const (
	inputNone inputKind = iota
	inputParticipant
	inputRole
	inputSaveName
)

// Model represents the BubbleTea application model.
type Model struct {
	ctx        context.Context
	team       *roster.Team
	store      configstore.Store
	controller *reveal.Controller

	screen  screen
	focus   pane
	cursors [2]int

	input     textinput.Model
	inputKind inputKind

	run      *reveal.Run
	frames   chan reveal.Frame
	frame    *reveal.Frame
	progress progress.Model

	saved       []*configstore.Configuration
	savedCursor int

	status    string
	statusErr bool
	quitting  bool
}

// NewModel creates a model over the live team. ctx bounds reveal runs and
// store calls.
func NewModel(ctx context.Context, team *roster.Team, store configstore.Store, controller *reveal.Controller) Model {
	input := textinput.New()
	input.CharLimit = 64
	input.Width = 32

	return Model{
		ctx:        ctx,
		team:       team,
		store:      store,
		controller: controller,
		input:      input,
		progress: progress.New(
			progress.WithGradient("#00ffff", "#ff00ff"),
			progress.WithWidth(40),
		),
	}
}

// Run starts the program on the alternate screen and blocks until the user
// quits or ctx ends.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputKind != inputNone {
			return m.updateInput(msg)
		}
		if m.screen == screenSaved {
			return m.updateSaved(msg)
		}
		return m.updateRoster(msg)

	case frameMsg:
		if msg.run != m.run {
			return m, nil
		}
		f := msg.frame
		m.frame = &f
		if f.Final {
			m.team.ApplyAssignment(f.Participants)
			m.notify(NoticeAssigned)
		}
		return m, waitForFrame(m.frames, m.run)

	case revealDoneMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.run, m.frames = nil, nil
		if msg.err != nil {
			m.frame = nil
			m.fail(msg.err)
		}
		return m, nil

	case savedListMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.saved = msg.items
		m.savedCursor = clamp(m.savedCursor, len(m.saved))
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.notify(fmt.Sprintf("%s: %q", NoticeSaved, msg.cfg.Name))
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.stopReveal()
		if err := m.team.LoadTeam(msg.participants, msg.roles); err != nil {
			m.fail(err)
			return m, nil
		}
		m.cursors = [2]int{}
		m.screen = screenRoster
		m.notify(fmt.Sprintf("%s: %q", NoticeLoaded, msg.name))
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.notify(NoticeDeleted)
		return m, listSaved(m.ctx, m.store)
	}

	return m, nil
}

func (m Model) updateRoster(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.controller.Stop()
		return m, tea.Quit
	case "tab":
		m.focus = 1 - m.focus
	case "up", "k":
		m.cursors[m.focus] = clamp(m.cursors[m.focus]-1, m.focusedLen())
	case "down", "j":
		m.cursors[m.focus] = clamp(m.cursors[m.focus]+1, m.focusedLen())
	case "a":
		if m.focus == paneParticipants {
			return m.openInput(inputParticipant, "team member name")
		}
		return m.openInput(inputRole, "role name")
	case "d", "delete", "backspace":
		m.removeSelected()
	case "c":
		m.stopReveal()
		m.team.ClearAssignments()
	case "s", " ":
		return m.startReveal()
	case "w":
		return m.openInput(inputSaveName, "save current team as...")
	case "l":
		m.screen = screenSaved
		return m, listSaved(m.ctx, m.store)
	}
	return m, nil
}

func (m Model) updateSaved(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.controller.Stop()
		return m, tea.Quit
	case "esc", "l":
		m.screen = screenRoster
	case "up", "k":
		m.savedCursor = clamp(m.savedCursor-1, len(m.saved))
	case "down", "j":
		m.savedCursor = clamp(m.savedCursor+1, len(m.saved))
	case "enter":
		if len(m.saved) > 0 {
			return m, loadTeam(m.ctx, m.store, m.saved[m.savedCursor])
		}
	case "d", "delete":
		if len(m.saved) > 0 {
			return m, deleteTeam(m.ctx, m.store, m.saved[m.savedCursor].ID)
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		kind, value := m.inputKind, m.input.Value()
		m.closeInput()
		return m.submit(kind, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openInput(kind inputKind, placeholder string) (tea.Model, tea.Cmd) {
	m.inputKind = kind
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m *Model) closeInput() {
	m.inputKind = inputNone
	m.input.Blur()
	m.input.Reset()
}

func (m Model) submit(kind inputKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case inputParticipant:
		p, err := m.team.AddParticipant(value)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.cursors[paneParticipants] = len(m.team.Participants()) - 1
		m.notify(fmt.Sprintf("Added %s", p.Name))
	case inputRole:
		r, err := m.team.AddRole(value)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.cursors[paneRoles] = len(m.team.Roles()) - 1
		m.notify(fmt.Sprintf("Added role %s", r.Name))
	case inputSaveName:
		participants, roles := m.team.Snapshot()
		return m, saveTeam(m.ctx, m.store, value, participants, roles)
	}
	return m, nil
}

func (m *Model) removeSelected() {
	m.stopReveal()
	i := m.cursors[m.focus]
	if m.focus == paneParticipants {
		items := m.team.Participants()
		if i < len(items) {
			m.team.RemoveParticipant(items[i].ID)
		}
	} else {
		items := m.team.Roles()
		if i < len(items) {
			m.team.RemoveRole(items[i].ID)
		}
	}
	m.cursors[m.focus] = clamp(i, m.focusedLen())
}

// stopReveal cancels the in-flight run, if any, and forgets it. Its frames
// were drawn from a team that is about to change. The frame channel never
// blocks the run, so waiting for it to finish is brief and leaves the
// controller idle for the next start.
func (m *Model) stopReveal() {
	if m.run != nil {
		m.controller.Stop()
		<-m.run.Done()
		m.run, m.frames = nil, nil
	}
	m.frame = nil
}

// startReveal begins a reveal. The frame channel holds every frame of the
// run so the controller never blocks on a slow terminal.
func (m Model) startReveal() (tea.Model, tea.Cmd) {
	if m.run != nil {
		m.notify("Shuffle already in progress")
		return m, nil
	}

	participants, roles := m.team.Snapshot()
	frames := make(chan reveal.Frame, m.controller.Config().Ticks)
	run, err := m.controller.Start(m.ctx, participants, roles, func(f reveal.Frame) {
		frames <- f
	})
	if err != nil {
		m.fail(err)
		return m, nil
	}

	m.run, m.frames = run, frames
	m.frame = nil
	m.status, m.statusErr = "", false
	return m, waitForFrame(frames, run)
}

func (m Model) focusedLen() int {
	if m.focus == paneParticipants {
		return len(m.team.Participants())
	}
	return len(m.team.Roles())
}

func (m *Model) notify(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) fail(err error) {
	m.status, m.statusErr = err.Error(), true
}

// clamp keeps a cursor within [0, n).
func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

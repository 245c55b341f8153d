package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// Message types. Reveal messages carry their run so the model can drop
// messages from a run it has already stopped.
type frameMsg struct {
	run   *reveal.Run
	frame reveal.Frame
}

type revealDoneMsg struct {
	run    *reveal.Run
	result []roster.Participant
	err    error
}

type savedListMsg struct {
	items []*configstore.Configuration
	err   error
}

type savedMsg struct {
	cfg *configstore.Configuration
	err error
}

type loadedMsg struct {
	name         string
	participants []roster.Participant
	roles        []roster.Role
	err          error
}

type deletedMsg struct {
	id  string
	err error
}

// waitForFrame delivers the next buffered frame, or the run outcome once the
// run has ended and no frame is left.
func waitForFrame(frames <-chan reveal.Frame, run *reveal.Run) tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-frames:
			return frameMsg{run: run, frame: f}
		case <-run.Done():
			select {
			case f := <-frames:
				return frameMsg{run: run, frame: f}
			default:
			}
			return revealDoneMsg{run: run, result: run.Result(), err: run.Err()}
		}
	}
}

func listSaved(ctx context.Context, store configstore.Store) tea.Cmd {
	return func() tea.Msg {
		items, err := store.List(ctx)
		return savedListMsg{items: items, err: err}
	}
}

func saveTeam(ctx context.Context, store configstore.Store, name string, participants []roster.Participant, roles []roster.Role) tea.Cmd {
	return func() tea.Msg {
		cfg, err := store.Save(ctx, name, participants, roles)
		return savedMsg{cfg: cfg, err: err}
	}
}

func loadTeam(ctx context.Context, store configstore.Store, cfg *configstore.Configuration) tea.Cmd {
	return func() tea.Msg {
		participants, roles, err := store.Load(ctx, cfg.ID)
		return loadedMsg{name: cfg.Name, participants: participants, roles: roles, err: err}
	}
}

func deleteTeam(ctx context.Context, store configstore.Store, id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: store.Delete(ctx, id)}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/roleshuffle/internal/app"
	"github.com/fyrsmithlabs/roleshuffle/internal/config"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
	"github.com/fyrsmithlabs/roleshuffle/internal/tui"
)

// teamFlags select the team a command operates on: either names given on
// the command line or a saved configuration.
type teamFlags struct {
	participants []string
	roles        []string
	from         string
}

func (f *teamFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.participants, "participant", "p", nil, "Team member name (repeatable)")
	cmd.Flags().StringArrayVarP(&f.roles, "role", "r", nil, "Role name (repeatable)")
	cmd.Flags().StringVar(&f.from, "from", "", "Use a saved team, by id or name")
	cmd.MarkFlagsMutuallyExclusive("from", "participant")
	cmd.MarkFlagsMutuallyExclusive("from", "role")
}

func (f *teamFlags) empty() bool {
	return f.from == "" && len(f.participants) == 0 && len(f.roles) == 0
}

// load replaces the live team with the selected one.
func (f *teamFlags) load(ctx context.Context, a *app.App) error {
	if f.from != "" {
		cfg, err := findConfiguration(ctx, a.Store, f.from)
		if err != nil {
			return err
		}
		return a.Team.LoadTeam(roster.CloneParticipants(cfg.TeamMembers), roster.CloneRoles(cfg.Roles))
	}

	participants, err := roster.ParticipantsFromNames(f.participants)
	if err != nil {
		return err
	}
	roles, err := roster.RolesFromNames(f.roles)
	if err != nil {
		return err
	}
	return a.Team.LoadTeam(participants, roles)
}

func newAssignCmd(root *rootOptions) *cobra.Command {
	var team teamFlags

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign roles once and print the result",
		Long: `Assign roles to team members immediately, without the reveal animation.

Examples:
  # Three members, two roles
  roleshuffle assign -p Alice -p Bob -p Carol -r Driver -r Navigator

  # Reuse a saved team
  roleshuffle assign --from "Sprint 12"

  # Output as JSON
  roleshuffle assign --from "Sprint 12" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := team.load(ctx, a); err != nil {
					return err
				}
				participants, roles := a.Team.Snapshot()
				assigned, err := a.Engine.Assign(participants, roles)
				if err != nil {
					return err
				}
				a.Team.ApplyAssignment(assigned)
				return printAssignment(cmd.OutOrStdout(), a.Team.Participants(), root.jsonOutput)
			})
		},
	}
	team.register(cmd)
	return cmd
}

func newRevealCmd(root *rootOptions) *cobra.Command {
	var (
		team  teamFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Shuffle roles with the staged reveal",
		Long: `Shuffle roles with the staged reveal animation.

Without --plain this opens the interactive terminal UI, where team members
and roles can be edited, shuffled, saved and loaded. With --plain every
frame is printed as a line instead.

Examples:
  # Interactive UI with an empty team
  roleshuffle reveal

  # Interactive UI starting from a saved team
  roleshuffle reveal --from "Sprint 12"

  # Stream frames to stdout
  roleshuffle reveal --plain -p Alice -p Bob -r Driver -r Navigator`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain || root.jsonOutput {
				return root.withApp(cmd, func(ctx context.Context, a *app.App) error {
					if err := team.load(ctx, a); err != nil {
						return err
					}
					return streamReveal(ctx, cmd, a, root.jsonOutput)
				})
			}
			return runTUI(cmd, root, &team)
		},
	}
	team.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "Print frames instead of opening the terminal UI")
	return cmd
}

// streamReveal runs one reveal and prints each frame as it arrives.
func streamReveal(ctx context.Context, cmd *cobra.Command, a *app.App, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	participants, roles := a.Team.Snapshot()

	frames := make(chan reveal.Frame, a.Reveal.Config().Ticks)
	run, err := a.Reveal.Start(ctx, participants, roles, func(f reveal.Frame) {
		frames <- f
	})
	if err != nil {
		return err
	}

	printFrame := func(f reveal.Frame) error {
		if jsonOutput {
			return writeJSONLine(out, f)
		}
		fmt.Fprintf(out, "[%d/%d] %s\n", f.Tick, f.Total, frameLine(f.Participants))
		return nil
	}

	for done := false; !done; {
		select {
		case f := <-frames:
			if err := printFrame(f); err != nil {
				return err
			}
		case <-run.Done():
			done = true
		}
	}
	for len(frames) > 0 {
		if err := printFrame(<-frames); err != nil {
			return err
		}
	}

	result, err := run.Wait(ctx)
	if err != nil {
		return err
	}
	a.Team.ApplyAssignment(result)
	if !jsonOutput {
		fmt.Fprintln(out, tui.NoticeAssigned)
	}
	return nil
}

func frameLine(participants []roster.Participant) string {
	parts := make([]string, len(participants))
	for i, p := range participants {
		parts[i] = tui.FormatAssignment(p)
	}
	return strings.Join(parts, ", ")
}

// runTUI opens the terminal UI. Logs go to a file unless one is configured.
func runTUI(cmd *cobra.Command, root *rootOptions, team *teamFlags) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Logging.File == "" {
		if cfg.Logging.File, err = defaultLogFile(); err != nil {
			return err
		}
	}
	return openAndRunTUI(cmd.Context(), cfg, team)
}

func openAndRunTUI(ctx context.Context, cfg *config.Config, team *teamFlags) (err error) {
	a, err := app.New(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close(context.Background()))
	}()

	if !team.empty() {
		if err := team.load(ctx, a); err != nil {
			return err
		}
	}
	return tui.Run(ctx, tui.NewModel(ctx, a.Team, a.Store, a.Reveal))
}

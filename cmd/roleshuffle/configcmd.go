package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/roleshuffle/internal/app"
	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
	"github.com/fyrsmithlabs/roleshuffle/internal/tui"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"team", "teams"},
		Short:   "Manage saved teams",
		Long: `Manage saved teams.

A saved team is a named snapshot of team members and roles. Names do not
need to be unique; commands that take a reference accept either the id or
the name, and a name resolves to the most recently saved match.

Examples:
  # Save a team
  roleshuffle config save "Sprint 12" -p Alice -p Bob -r Driver -r Navigator

  # List saved teams
  roleshuffle config list

  # Show one team
  roleshuffle config show "Sprint 12"

  # Delete a team
  roleshuffle config delete 3f2c9a4e-...`,
	}

	cmd.AddCommand(
		newConfigSaveCmd(root),
		newConfigListCmd(root),
		newConfigShowCmd(root),
		newConfigLoadCmd(root),
		newConfigDeleteCmd(root),
	)
	return cmd
}

func newConfigSaveCmd(root *rootOptions) *cobra.Command {
	var participants, roles []string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a team under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ps, err := roster.ParticipantsFromNames(participants)
				if err != nil {
					return err
				}
				rs, err := roster.RolesFromNames(roles)
				if err != nil {
					return err
				}

				cfg, err := a.Store.Save(ctx, args[0], ps, rs)
				if err != nil {
					return err
				}

				if root.jsonOutput {
					return outputJSON(cmd.OutOrStdout(), cfg)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %q\n", tui.NoticeSaved, cfg.Name)
				fmt.Fprintf(out, "ID: %s\n", cfg.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&participants, "participant", "p", nil, "Team member name (repeatable)")
	cmd.Flags().StringArrayVarP(&roles, "role", "r", nil, "Role name (repeatable)")
	return cmd
}

func newConfigListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(ctx context.Context, a *app.App) error {
				items, err := a.Store.List(ctx)
				if err != nil {
					return err
				}
				if root.jsonOutput {
					if items == nil {
						items = []*configstore.Configuration{}
					}
					return outputJSON(cmd.OutOrStdout(), items)
				}
				return printConfigurations(cmd.OutOrStdout(), items)
			})
		},
	}
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Show a saved team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(ctx context.Context, a *app.App) error {
				cfg, err := findConfiguration(ctx, a.Store, args[0])
				if err != nil {
					return err
				}
				if root.jsonOutput {
					return outputJSON(cmd.OutOrStdout(), cfg)
				}
				return printConfiguration(cmd.OutOrStdout(), cfg)
			})
		},
	}
}

func newConfigLoadCmd(root *rootOptions) *cobra.Command {
	var assign bool

	cmd := &cobra.Command{
		Use:   "load <id-or-name>",
		Short: "Load a saved team and optionally assign roles",
		Long: `Load a saved team into the live roster and print it.

With --assign, roles are shuffled across the loaded team right away.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(ctx context.Context, a *app.App) error {
				cfg, err := findConfiguration(ctx, a.Store, args[0])
				if err != nil {
					return err
				}
				participants, roles, err := a.Store.Load(ctx, cfg.ID)
				if err != nil {
					return err
				}
				if err := a.Team.LoadTeam(participants, roles); err != nil {
					return err
				}

				if assign {
					ps, rs := a.Team.Snapshot()
					assigned, err := a.Engine.Assign(ps, rs)
					if err != nil {
						return err
					}
					a.Team.ApplyAssignment(assigned)
				}

				out := cmd.OutOrStdout()
				if root.jsonOutput {
					return outputJSON(out, a.Team.Participants())
				}
				fmt.Fprintf(out, "%s: %q\n", tui.NoticeLoaded, cfg.Name)
				if assign {
					return printAssignment(out, a.Team.Participants(), false)
				}
				fmt.Fprintf(out, "Members: %s\n", strings.Join(participantNames(a.Team.Participants()), ", "))
				fmt.Fprintf(out, "Roles:   %s\n", strings.Join(roster.RoleNames(a.Team.Roles()), ", "))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&assign, "assign", false, "Assign roles after loading")
	return cmd
}

func newConfigDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a saved team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(ctx context.Context, a *app.App) error {
				cfg, err := findConfiguration(ctx, a.Store, args[0])
				if err != nil {
					return err
				}
				if err := a.Store.Delete(ctx, cfg.ID); err != nil {
					return err
				}
				if root.jsonOutput {
					return outputJSON(cmd.OutOrStdout(), map[string]string{"deleted": cfg.ID})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %q\n", tui.NoticeDeleted, cfg.Name)
				return nil
			})
		},
	}
}

// findConfiguration resolves ref as an id first, then as a case-insensitive
// name. Among equal names the most recently saved wins.
func findConfiguration(ctx context.Context, store configstore.Store, ref string) (*configstore.Configuration, error) {
	cfg, err := store.Get(ctx, ref)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, configstore.ErrNotFound) {
		return nil, err
	}

	items, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(ref)
	for i := len(items) - 1; i >= 0; i-- {
		if strings.EqualFold(items[i].Name, name) {
			return items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", configstore.ErrNotFound, ref)
}

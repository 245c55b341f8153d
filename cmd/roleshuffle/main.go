// Roleshuffle assigns roles to team members at random.
//
// Usage:
//
//	# Interactive terminal UI
//	roleshuffle reveal
//
//	# One-shot assignment
//	roleshuffle assign -p Alice -p Bob -p Carol -r Driver -r Navigator
//
//	# HTTP API
//	roleshuffle serve
//
// Configuration is read from ~/.config/roleshuffle/config.yaml and
// ROLESHUFFLE_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/roleshuffle/internal/app"
	"github.com/fyrsmithlabs/roleshuffle/internal/config"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode is 2 for rejected input and 1 for everything else.
func exitCode(err error) int {
	if roster.IsValidation(err) {
		return 2
	}
	return 1
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "roleshuffle",
		Short: "Randomly assign roles to team members",
		Long: `roleshuffle shuffles a pool of roles across team members so every role is
covered and the load is spread evenly, then reveals the result in a short
animation.

Teams can be saved under a name and loaded again later.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/roleshuffle/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	cmd.AddCommand(
		newAssignCmd(opts),
		newRevealCmd(opts),
		newConfigCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "roleshuffle by Fyrsmith Labs\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

// openApp loads configuration and wires the application.
func (o *rootOptions) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, version)
}

// withApp runs fn against a freshly wired application and closes it after.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error) (err error) {
	ctx := cmd.Context()
	a, err := o.openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close(context.Background()))
	}()
	return fn(ctx, a)
}

// defaultLogFile is where the terminal UI sends logs so they do not draw
// over the screen.
func defaultLogFile() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return "", err
	}
	return filepath.Join(dir, "roleshuffle.log"), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	serveradapter "github.com/evanschultz/kanban/internal/adapters/server"
	"github.com/evanschultz/kanban/internal/config"
	"github.com/evanschultz/kanban/internal/platform"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the terminal program; tests replace it.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the CLI with args. fang renders errors to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	saveDir    string
	logLevel   string
	devMode    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "kanban",
		Short:         "A keyboard-driven kanban board for the terminal.",
		Long:          "Run without arguments to open the board, or use the subcommands to inspect paths, export saves and serve cloud sync.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (.json or .toml); env KANBAN_CONFIG")
	flags.StringVar(&opts.saveDir, "save-dir", "", "override the save directory")
	flags.StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	flags.BoolVar(&opts.devMode, "dev", false, "use dev mode paths (kanban-dev)")

	root.AddCommand(
		newTUICommand(opts, stderr),
		newPathsCommand(opts, stdout),
		newExportCommand(opts, stdout, stderr),
		newServeCommand(opts, stderr),
		newVersionCommand(stdout),
	)
	return root
}

func newTUICommand(opts *globalOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the board (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(stdout, "kanban %s\n", version)
			return err
		},
	}
}

// runtimeState is the resolved environment every command starts from.
type runtimeState struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	// cfgErr is a recoverable config problem; cfg already holds defaults.
	cfgErr error
}

// resolveRuntime resolves paths and loads config. A malformed config is not
// fatal: it is replaced by defaults and reported through cfgErr.
func resolveRuntime(opts *globalOptions) (runtimeState, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: platform.AppName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return runtimeState{}, err
	}
	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("KANBAN_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	defaults := config.Default(paths.SaveDir, paths.DBPath)
	cfg, err := config.Load(configPath, defaults)
	state := runtimeState{paths: paths, configPath: configPath}
	switch {
	case errors.Is(err, config.ErrConfigMalformed):
		state.cfgErr = err
	case err != nil:
		return runtimeState{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dir := strings.TrimSpace(os.Getenv("KANBAN_SAVE_DIR")); dir != "" {
		cfg.SaveDirectory = dir
	}
	if dir := strings.TrimSpace(opts.saveDir); dir != "" {
		cfg.SaveDirectory = dir
	}
	if level := strings.TrimSpace(opts.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	state.cfg = cfg
	return state, nil
}

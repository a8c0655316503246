package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	serveradapter "github.com/evanschultz/kanban/internal/adapters/server"
	"github.com/evanschultz/kanban/internal/adapters/storage/savefile"
	"github.com/evanschultz/kanban/internal/adapters/storage/sqlite"
	"github.com/evanschultz/kanban/internal/app"
)

// clipboardWriter copies export output; tests replace it.
var clipboardWriter = clipboard.WriteAll

func newPathsCommand(opts *globalOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, theme, log, save and database paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			state, err := resolveRuntime(opts)
			if err != nil {
				return err
			}
			dbPath := state.cfg.Server.DBPath
			if dbPath == "" {
				dbPath = state.paths.DBPath
			}
			rows := [][2]string{
				{"config", state.configPath},
				{"config_dir", state.paths.ConfigDir},
				{"theme_dir", state.paths.ThemeDir},
				{"log_dir", state.paths.LogDir},
				{"save_dir", state.cfg.SaveDirectory},
				{"db", dbPath},
			}
			for _, row := range rows {
				if _, err := fmt.Fprintf(stdout, "%s: %s\n", row[0], row[1]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type exportOptions struct {
	out       string
	name      string
	clipboard bool
}

func newExportCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	exportOpts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a save file to stdout, a path or the clipboard",
		Long:  "Export the newest save (or --name) after checking that it decodes cleanly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), opts, exportOpts, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&exportOpts.out, "out", "-", "output path, - for stdout")
	cmd.Flags().StringVar(&exportOpts.name, "name", "", "save file name; defaults to the newest save")
	cmd.Flags().BoolVar(&exportOpts.clipboard, "clipboard", false, "copy the save to the system clipboard instead")
	return cmd
}

func runExport(ctx context.Context, opts *globalOptions, exportOpts *exportOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := resolveRuntime(opts)
	if err != nil {
		return err
	}
	if state.cfgErr != nil {
		fmt.Fprintf(stderr, "warning: %v; using defaults\n", state.cfgErr)
	}
	saves, err := savefile.Open(state.cfg.SaveDirectory)
	if err != nil {
		return fmt.Errorf("open save directory: %w", err)
	}
	name := strings.TrimSpace(exportOpts.name)
	if name == "" {
		info, err := saves.Latest(ctx)
		if err != nil {
			return fmt.Errorf("find newest save in %s: %w", saves.Dir(), err)
		}
		name = info.Name
	}
	data, err := saves.Read(ctx, name)
	if err != nil {
		return err
	}
	save, err := app.DecodeSave(data, state.cfg.DateTimeFormat())
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}

	switch {
	case exportOpts.clipboard:
		if err := clipboardWriter(string(data)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	case exportOpts.out == "" || exportOpts.out == "-":
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	default:
		if err := os.MkdirAll(filepath.Dir(exportOpts.out), 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
		if err := os.WriteFile(exportOpts.out, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	}
	fmt.Fprintf(stderr, "exported %s (%d boards, %d cards)\n", name, len(save.Workspace.Boards), save.Workspace.CardCount())
	return nil
}

type serveOptions struct {
	bind   string
	dbPath string
}

func newServeCommand(opts *globalOptions, stderr io.Writer) *cobra.Command {
	serveOpts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cloud sync server (HTTP API and MCP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, serveOpts, stderr)
		},
	}
	cmd.Flags().StringVar(&serveOpts.bind, "bind", "", "listen address; defaults to server.http_bind")
	cmd.Flags().StringVar(&serveOpts.dbPath, "db", "", "sqlite database path; defaults to server.db_path")
	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, serveOpts *serveOptions, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := resolveRuntime(opts)
	if err != nil {
		return err
	}
	if state.cfgErr != nil {
		return state.cfgErr
	}
	cfg := state.cfg
	logger, err := newRuntimeLogger(stderr, cfg.Logging.Level, state.paths.LogDir, cfg.Logging.File, time.Now)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Close()
	}()

	dbPath := firstNonEmpty(serveOpts.dbPath, cfg.Server.DBPath, state.paths.DBPath)
	if dbPath == "" {
		return errors.New("serve: no database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	repo, err := sqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %q: %w", dbPath, err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			log.Warn("close sqlite", "err", closeErr)
		}
	}()

	sync := app.NewSyncService(repo, nil, time.Now, app.SyncConfig{})
	return serveCommandRunner(ctx, serveradapter.Config{
		HTTPBind:      firstNonEmpty(serveOpts.bind, cfg.Server.HTTPBind),
		APIEndpoint:   cfg.Server.APIEndpoint,
		MCPEndpoint:   cfg.Server.MCPEndpoint,
		ServerName:    "kanban",
		ServerVersion: version,
	}, serveradapter.Dependencies{Sync: sync})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/adapters/cloud"
	"github.com/evanschultz/kanban/internal/adapters/storage/savefile"
	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/config"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/theme"
	"github.com/evanschultz/kanban/internal/tui"
)

// workerBuffer bounds queued IO requests before Submit starts refusing.
const workerBuffer = 16

func runTUI(ctx context.Context, opts *globalOptions, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := resolveRuntime(opts)
	if err != nil {
		return err
	}
	cfg := state.cfg
	if err := state.paths.Ensure(); err != nil {
		return fmt.Errorf("create app directories: %w", err)
	}

	logger, err := newRuntimeLogger(stderr, cfg.Logging.Level, state.paths.LogDir, cfg.Logging.File, time.Now)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "close log file: %v\n", closeErr)
		}
	}()
	logs := tui.NewLogBuffer(tui.DefaultLogLines)
	logger.AddSink(logs)
	logger.SetConsoleEnabled(false)
	defer logger.SetConsoleEnabled(true)
	log.Info("starting", "version", version, "config", state.configPath, "saves", cfg.SaveDirectory)
	if path := logger.LogPath(); path != "" {
		log.Debug("logging to file", "path", path)
	}

	var startupErrs []error
	if state.cfgErr != nil {
		log.Warn("config malformed, using defaults", "err", state.cfgErr)
		startupErrs = append(startupErrs, state.cfgErr)
	}

	saves, err := savefile.Open(cfg.SaveDirectory)
	if err != nil {
		return fmt.Errorf("open save directory: %w", err)
	}
	ws := domain.Workspace{}
	if cfg.AlwaysLoadLastSave {
		loaded, err := loadLatest(ctx, saves, cfg.DateTimeFormat())
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Debug("no save to load")
		case err != nil:
			log.Error("load last save", "err", err)
			startupErrs = append(startupErrs, err)
		default:
			ws = loaded
		}
	}
	editor, err := app.NewEditor(ws, domain.NewID, time.Now)
	if err != nil {
		return fmt.Errorf("build editor: %w", err)
	}

	var cloudPort app.Cloud
	if cfg.Cloud.URL != "" {
		timeout := time.Duration(cfg.Cloud.Timeout) * time.Second
		client, err := cloud.New(cfg.Cloud.URL, cloud.WithHTTPClient(&http.Client{Timeout: timeout}))
		if err != nil {
			log.Error("cloud client disabled", "err", err)
			startupErrs = append(startupErrs, err)
		} else {
			cloudPort = client
		}
	}
	handler := app.NewIOHandler(saves, cloudPort, time.Now)
	worker := app.NewWorker(handler.Handle, workerBuffer)
	worker.Start(ctx)
	defer worker.Close()

	userThemes, err := theme.LoadDir(state.paths.ThemeDir)
	if err != nil {
		log.Warn("load user themes", "dir", state.paths.ThemeDir, "err", err)
		startupErrs = append(startupErrs, err)
	}

	sessPath := sessionPath(state.paths.ConfigDir)
	var session app.Session
	if cfg.AutoLogin {
		session, err = loadSession(sessPath)
		if err != nil {
			log.Warn("load session", "err", err)
		}
	}

	m := tui.NewModel(editor,
		tui.WithConfig(cfg),
		tui.WithConfigSaver(func(next config.Config) error {
			return config.Save(state.configPath, next)
		}),
		tui.WithThemes(userThemes, state.paths.ThemeDir),
		tui.WithLogBuffer(logs),
		tui.WithWorker(worker),
		tui.WithSession(session),
		tui.WithSessionSaver(func(s app.Session) error {
			return storeSession(sessPath, s)
		}),
		tui.WithStartupErrors(startupErrs...),
	)
	if _, err := programFactory(m).Run(); err != nil {
		return fmt.Errorf("run tui program: %w", err)
	}
	log.Info("exited")
	return nil
}

// loadLatest decodes the newest save in the store.
func loadLatest(ctx context.Context, saves *savefile.Store, format domain.DateTimeFormat) (domain.Workspace, error) {
	info, err := saves.Latest(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	data, err := saves.Read(ctx, info.Name)
	if err != nil {
		return domain.Workspace{}, err
	}
	save, err := app.DecodeSave(data, format)
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("load %s: %w", info.Name, err)
	}
	log.Info("loaded save", "name", info.Name, "boards", len(save.Workspace.Boards))
	return save.Workspace, nil
}

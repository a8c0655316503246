package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName names the per-user config directory.
const AppName = "kanban"

// Paths holds every on-disk location the application uses.
type Paths struct {
	ConfigDir  string
	ConfigPath string
	ThemeDir   string
	LogDir     string
	SaveDir    string
	DBPath     string
}

// Options defines optional settings for path resolution.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths returns default paths.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: AppName})
}

// DefaultPathsWithOptions resolves paths for the running OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = AppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	env := map[string]string{
		"XDG_CONFIG_HOME": os.Getenv("XDG_CONFIG_HOME"),
		"APPDATA":         os.Getenv("APPDATA"),
		"KANBAN_SAVE_DIR": os.Getenv("KANBAN_SAVE_DIR"),
	}
	return PathsFor(runtime.GOOS, env, configDir, os.TempDir(), appName)
}

// PathsFor resolves paths from explicit inputs so every OS branch is testable.
func PathsFor(goos string, env map[string]string, userConfigDir, tempDir, appName string) (Paths, error) {
	if userConfigDir == "" || tempDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase := userConfigDir
	switch goos {
	case "linux", "freebsd", "openbsd":
		if v := env["XDG_CONFIG_HOME"]; v != "" {
			configBase = v
		}
	case "windows":
		if v := env["APPDATA"]; v != "" {
			configBase = v
		}
	default:
		// macOS and others keep os.UserConfigDir.
	}

	configDir := filepath.Join(configBase, appName)
	saveDir := filepath.Join(tempDir, appName)
	if v := strings.TrimSpace(env["KANBAN_SAVE_DIR"]); v != "" {
		saveDir = v
	}
	return Paths{
		ConfigDir:  configDir,
		ConfigPath: filepath.Join(configDir, "config.json"),
		ThemeDir:   filepath.Join(configDir, "themes"),
		LogDir:     filepath.Join(configDir, "logs"),
		SaveDir:    saveDir,
		DBPath:     filepath.Join(configDir, appName+"-sync.db"),
	}, nil
}

// Ensure creates every directory in p.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.ConfigDir, p.ThemeDir, p.LogDir, p.SaveDir, filepath.Dir(p.DBPath)} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

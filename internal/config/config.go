package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/uistate"
)

// ErrConfigMalformed marks a config file that could not be decoded or validated.
var ErrConfigMalformed = errors.New("config malformed")

// CalendarFormat picks the first day of the week in the date picker.
type CalendarFormat string

const (
	SundayFirst CalendarFormat = "SundayFirst"
	MondayFirst CalendarFormat = "MondayFirst"
)

type Config struct {
	SaveDirectory            string              `json:"save_directory" toml:"save_directory"`
	DefaultUIMode            string              `json:"default_ui_mode" toml:"default_ui_mode"`
	DateFormat               string              `json:"date_format" toml:"date_format"`
	DatePickerCalendarFormat CalendarFormat      `json:"date_picker_calender_format" toml:"date_picker_calender_format"`
	DefaultTheme             string              `json:"default_theme" toml:"default_theme"`
	NoOfBoardsToShow         int                 `json:"no_of_boards_to_show" toml:"no_of_boards_to_show"`
	NoOfCardsToShow          int                 `json:"no_of_cards_to_show" toml:"no_of_cards_to_show"`
	WarningDelta             int                 `json:"warning_delta" toml:"warning_delta"`
	TickRate                 int                 `json:"tickrate" toml:"tickrate"`
	DisableAnimations        bool                `json:"disable_animations" toml:"disable_animations"`
	EnableMouseSupport       bool                `json:"enable_mouse_support" toml:"enable_mouse_support"`
	ShowLineNumbers          bool                `json:"show_line_numbers" toml:"show_line_numbers"`
	AutoLogin                bool                `json:"auto_login" toml:"auto_login"`
	AlwaysLoadLastSave       bool                `json:"always_load_last_save" toml:"always_load_last_save"`
	SaveOnExit               bool                `json:"save_on_exit" toml:"save_on_exit"`
	Keybindings              map[string][]string `json:"keybindings" toml:"keybindings"`
	Logging                  LoggingConfig       `json:"logging" toml:"logging"`
	Cloud                    CloudConfig         `json:"cloud" toml:"cloud"`
	Server                   ServerConfig        `json:"server" toml:"server"`
}

type LoggingConfig struct {
	Level string `json:"level" toml:"level"`
	File  bool   `json:"file" toml:"file"`
}

// CloudConfig points the TUI at a sync server. An empty URL disables cloud features.
type CloudConfig struct {
	URL     string `json:"url" toml:"url"`
	Timeout int    `json:"timeout_seconds" toml:"timeout_seconds"`
}

// ServerConfig configures `kanban serve`.
type ServerConfig struct {
	HTTPBind    string `json:"http_bind" toml:"http_bind"`
	APIEndpoint string `json:"api_endpoint" toml:"api_endpoint"`
	MCPEndpoint string `json:"mcp_endpoint" toml:"mcp_endpoint"`
	DBPath      string `json:"db_path" toml:"db_path"`
}

// Bounds accepted by Validate.
const (
	MaxBoardsToShow = 10
	MaxCardsToShow  = 20
	MaxWarningDelta = 365
	MinTickRate     = 10
	MaxTickRate     = 1000
)

// Default returns the built-in config rooted at saveDir, with the sync server storing into dbPath.
func Default(saveDir, dbPath string) Config {
	return Config{
		SaveDirectory:            saveDir,
		DefaultUIMode:            uistate.TitleBodyHelpLog.String(),
		DateFormat:               string(domain.DefaultDateTimeFormat),
		DatePickerCalendarFormat: SundayFirst,
		DefaultTheme:             "Default",
		NoOfBoardsToShow:         3,
		NoOfCardsToShow:          4,
		WarningDelta:             3,
		TickRate:                 250,
		DisableAnimations:        false,
		EnableMouseSupport:       true,
		ShowLineNumbers:          true,
		AutoLogin:                true,
		AlwaysLoadLastSave:       true,
		SaveOnExit:               true,
		Keybindings:              keymap.Defaults().ToConfig(),
		Logging: LoggingConfig{
			Level: "info",
			File:  true,
		},
		Cloud: CloudConfig{
			Timeout: 15,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
			DBPath:      dbPath,
		},
	}
}

// Load reads path over defaults. A missing or empty file yields defaults.
// A file that cannot be decoded is replaced once with defaults; a file that
// decodes but fails validation is left alone. Both return defaults together
// with an error wrapping ErrConfigMalformed.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults.Clone()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return cfg, nil
	}

	if err := decode(path, content, &cfg); err != nil {
		log.Warn("config malformed, writing defaults", "path", path, "err", err)
		if saveErr := Save(path, defaults); saveErr != nil {
			return defaults, errors.Join(fmt.Errorf("%w: %w", ErrConfigMalformed, err), saveErr)
		}
		return defaults, fmt.Errorf("%w: %w", ErrConfigMalformed, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Warn("config invalid, using defaults", "path", path, "err", err)
		return defaults, fmt.Errorf("%w: %w", ErrConfigMalformed, err)
	}

	return cfg, nil
}

// Save writes cfg as JSON, or TOML when path ends in .toml.
func Save(path string, cfg Config) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var (
		content []byte
		err     error
	)
	if isTOML(path) {
		content, err = toml.Marshal(cfg)
	} else {
		content, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func decode(path string, content []byte, cfg *Config) error {
	if isTOML(path) {
		if err := toml.Unmarshal(content, cfg); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SaveDirectory) == "" {
		errs = append(errs, errors.New("save_directory is required"))
	}
	if v, err := uistate.ParseView(c.DefaultUIMode); err != nil {
		errs = append(errs, fmt.Errorf("default_ui_mode: %w", err))
	} else if !v.IsBoardView() {
		errs = append(errs, fmt.Errorf("default_ui_mode %q is not a board view", c.DefaultUIMode))
	}
	if _, err := domain.ParseDateTimeFormat(c.DateFormat); err != nil {
		errs = append(errs, fmt.Errorf("date_format: %w", err))
	}
	switch c.DatePickerCalendarFormat {
	case SundayFirst, MondayFirst:
	default:
		errs = append(errs, fmt.Errorf("invalid date_picker_calender_format %q", c.DatePickerCalendarFormat))
	}
	if c.NoOfBoardsToShow < 1 || c.NoOfBoardsToShow > MaxBoardsToShow {
		errs = append(errs, fmt.Errorf("no_of_boards_to_show must be between 1 and %d", MaxBoardsToShow))
	}
	if c.NoOfCardsToShow < 1 || c.NoOfCardsToShow > MaxCardsToShow {
		errs = append(errs, fmt.Errorf("no_of_cards_to_show must be between 1 and %d", MaxCardsToShow))
	}
	if c.WarningDelta < 0 || c.WarningDelta > MaxWarningDelta {
		errs = append(errs, fmt.Errorf("warning_delta must be between 0 and %d", MaxWarningDelta))
	}
	if c.TickRate < MinTickRate || c.TickRate > MaxTickRate {
		errs = append(errs, fmt.Errorf("tickrate must be between %d and %d", MinTickRate, MaxTickRate))
	}
	if _, err := keymap.FromConfig(c.Keybindings); err != nil {
		errs = append(errs, fmt.Errorf("keybindings: %w", err))
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Cloud.Timeout < 0 {
		errs = append(errs, errors.New("cloud.timeout_seconds must be >= 0"))
	}
	return errors.Join(errs...)
}

// DateTimeFormat returns the parsed date format, falling back to the default.
func (c Config) DateTimeFormat() domain.DateTimeFormat {
	f, err := domain.ParseDateTimeFormat(c.DateFormat)
	if err != nil {
		return domain.DefaultDateTimeFormat
	}
	return f
}

// View returns the parsed default UI mode.
func (c Config) View() uistate.View {
	v, err := uistate.ParseView(c.DefaultUIMode)
	if err != nil || !v.IsBoardView() {
		return uistate.TitleBodyHelpLog
	}
	return v
}

// Bindings returns validated keybindings, or the defaults when invalid.
func (c Config) Bindings() keymap.Bindings {
	b, err := keymap.FromConfig(c.Keybindings)
	if err != nil {
		return keymap.Defaults()
	}
	return b
}

// Tick returns the tick rate as a duration.
func (c Config) Tick() time.Duration {
	if c.TickRate <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.TickRate) * time.Millisecond
}

// Clone copies the keybinding map so edits do not leak between copies.
func (c Config) Clone() Config {
	out := c
	out.Keybindings = make(map[string][]string, len(c.Keybindings))
	for k, v := range c.Keybindings {
		out.Keybindings[k] = append([]string(nil), v...)
	}
	return out
}

// EnsureConfigDir creates the parent directory of path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

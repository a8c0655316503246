package tui

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/config"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/uistate"
)

type fieldKind int

const (
	fieldReadOnly fieldKind = iota
	fieldBool
	fieldInt
	fieldChoice
)

// configField is one row of the config table.
type configField struct {
	label string
	kind  fieldKind
	show  func(config.Config) string

	// fieldBool
	toggle func(*config.Config)

	// fieldInt
	lo, hi, step int
	get          func(config.Config) int
	set          func(*config.Config, int)

	// fieldChoice
	open func(*Model)
}

func boolField(label string, ptr func(*config.Config) *bool) configField {
	return configField{
		label:  label,
		kind:   fieldBool,
		show:   func(c config.Config) string { return strconv.FormatBool(*ptr(&c)) },
		toggle: func(c *config.Config) { *ptr(c) = !*ptr(c) },
	}
}

func intField(label string, lo, hi, step int, ptr func(*config.Config) *int) configField {
	return configField{
		label: label,
		kind:  fieldInt,
		show:  func(c config.Config) string { return strconv.Itoa(*ptr(&c)) },
		lo:    lo,
		hi:    hi,
		step:  step,
		get:   func(c config.Config) int { return *ptr(&c) },
		set:   func(c *config.Config, v int) { *ptr(c) = v },
	}
}

var configFields = []configField{
	{
		label: "Save Directory",
		kind:  fieldReadOnly,
		show:  func(c config.Config) string { return c.SaveDirectory },
	},
	{
		label: "Default View",
		kind:  fieldChoice,
		show:  func(c config.Config) string { return c.View().Label() },
		open: func(m *Model) {
			m.listCursor = max(0, slices.Index(uistate.BoardViews(), m.cfg.View()))
			m.ui.PushPopup(uistate.SelectDefaultView)
		},
	},
	{
		label: "Date Format",
		kind:  fieldChoice,
		show:  func(c config.Config) string { return c.DateTimeFormat().String() },
		open: func(m *Model) {
			m.listCursor = max(0, slices.Index(domain.AllDateTimeFormats(), m.cfg.DateTimeFormat()))
			m.ui.PushPopup(uistate.ChangeDateFormat)
		},
	},
	{
		label: "Date Picker Calendar",
		kind:  fieldBool,
		show:  func(c config.Config) string { return string(c.DatePickerCalendarFormat) },
		toggle: func(c *config.Config) {
			if c.DatePickerCalendarFormat == config.MondayFirst {
				c.DatePickerCalendarFormat = config.SundayFirst
			} else {
				c.DatePickerCalendarFormat = config.MondayFirst
			}
		},
	},
	{
		label: "Default Theme",
		kind:  fieldChoice,
		show:  func(c config.Config) string { return c.DefaultTheme },
		open:  func(m *Model) { m.openThemePicker(true) },
	},
	intField("Number of Boards to Show", 1, config.MaxBoardsToShow, 1, func(c *config.Config) *int { return &c.NoOfBoardsToShow }),
	intField("Number of Cards to Show", 1, config.MaxCardsToShow, 1, func(c *config.Config) *int { return &c.NoOfCardsToShow }),
	intField("Warning Delta (days)", 0, config.MaxWarningDelta, 1, func(c *config.Config) *int { return &c.WarningDelta }),
	intField("Tick Rate (ms)", config.MinTickRate, config.MaxTickRate, 10, func(c *config.Config) *int { return &c.TickRate }),
	boolField("Disable Animations", func(c *config.Config) *bool { return &c.DisableAnimations }),
	boolField("Enable Mouse Support", func(c *config.Config) *bool { return &c.EnableMouseSupport }),
	boolField("Show Line Numbers", func(c *config.Config) *bool { return &c.ShowLineNumbers }),
	boolField("Auto Login", func(c *config.Config) *bool { return &c.AutoLogin }),
	boolField("Always Load Last Save", func(c *config.Config) *bool { return &c.AlwaysLoadLastSave }),
	boolField("Save on Exit", func(c *config.Config) *bool { return &c.SaveOnExit }),
}

func (m *Model) openConfigMenu() error {
	if m.cardBeingEdited != nil {
		return forbidden("close the open card first")
	}
	m.configCursor = 0
	m.ui.SetView(uistate.ConfigMenu)
	return nil
}

func (m Model) currentConfigField() configField {
	return configFields[clamp(m.configCursor, 0, len(configFields)-1)]
}

func (m *Model) activateConfigRow() {
	field := m.currentConfigField()
	switch field.kind {
	case fieldReadOnly:
		m.toastError(forbidden("%s can only be changed in the config file", field.label))
	case fieldBool:
		next := m.cfg.Clone()
		field.toggle(&next)
		m.commitConfig(next)
	case fieldInt:
		m.configValue = field.get(m.cfg)
		m.ui.PushPopup(uistate.EditGeneralConfig)
	case fieldChoice:
		field.open(m)
	}
}

// stepConfigValue nudges the number being edited, clamped to its bounds.
func (m *Model) stepConfigValue(dir int) {
	field := m.currentConfigField()
	if field.kind != fieldInt {
		return
	}
	m.configValue = clamp(m.configValue+dir*field.step, field.lo, field.hi)
}

func (m *Model) commitConfigValue() {
	field := m.currentConfigField()
	if field.kind != fieldInt {
		return
	}
	next := m.cfg.Clone()
	field.set(&next, m.configValue)
	m.commitConfig(next)
}

// commitConfig validates, persists and installs next. A failed save keeps the
// running config unchanged.
func (m *Model) commitConfig(next config.Config) {
	if err := next.Validate(); err != nil {
		m.toastError(fmt.Errorf("%w: %w", domain.ErrInputValidation, err))
		return
	}
	if m.saveConfig != nil {
		if err := m.saveConfig(next); err != nil {
			m.toastError(fmt.Errorf("%w: save config: %w", app.ErrIOFailure, err))
			return
		}
	}
	m.applyConfig(next)
}

// resetConfig restores defaults but keeps where saves live.
func (m *Model) resetConfig() {
	next := config.Default(m.cfg.SaveDirectory, m.cfg.Server.DBPath)
	next.Logging = m.cfg.Logging
	next.Cloud = m.cfg.Cloud
	next.Server = m.cfg.Server
	m.commitConfig(next)
	m.selectTheme(next.DefaultTheme)
	m.info("Config reset", "defaults restored")
}

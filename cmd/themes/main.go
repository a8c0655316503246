// Package main previews the built-in and user board themes in the terminal.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/evanschultz/kanban/internal/platform"
	"github.com/evanschultz/kanban/internal/theme"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var (
		dir     string
		devMode bool
		palette bool
	)
	cmd := &cobra.Command{
		Use:          "themes [name...]",
		Short:        "Preview board themes",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if dir == "" {
				paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: platform.AppName, DevMode: devMode})
				if err != nil {
					return err
				}
				dir = paths.ThemeDir
			}
			user, err := theme.LoadDir(dir)
			if err != nil {
				return err
			}
			themes, err := selectThemes(theme.All(user), args)
			if err != nil {
				return err
			}
			if palette {
				fmt.Fprintln(stdout, "=== ANSI 16 ===")
				fmt.Fprintln(stdout, renderPalette())
			}
			for _, t := range themes {
				fmt.Fprintln(stdout, renderTheme(t))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "theme directory; defaults to the app theme dir")
	cmd.Flags().BoolVar(&devMode, "dev", false, "use dev mode paths (kanban-dev)")
	cmd.Flags().BoolVar(&palette, "palette", false, "also print the ANSI 16 palette")
	return cmd
}

// selectThemes keeps the named themes in argument order, or all when names is empty.
func selectThemes(all []theme.Theme, names []string) ([]theme.Theme, error) {
	if len(names) == 0 {
		return all, nil
	}
	out := make([]theme.Theme, 0, len(names))
	for _, name := range names {
		t, ok := theme.Find(all, name)
		if !ok {
			return nil, fmt.Errorf("unknown theme %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}

func renderTheme(t theme.Theme) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Role", "FG", "BG", "Modifiers", "Sample").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, role := range theme.AllRoles() {
		s := t.Style(role)
		mods := make([]string, 0, len(s.Modifiers))
		for _, m := range s.Modifiers {
			mods = append(mods, string(m))
		}
		tbl.Row(string(role), orDefault(s.FG), orDefault(s.BG), strings.Join(mods, ","), sample(s).Render(" Sample "))
	}
	title := lipgloss.NewStyle().Bold(true).Underline(true).Render(t.Name)
	return lipgloss.JoinVertical(lipgloss.Left, title, tbl.String())
}

func orDefault(raw string) string {
	if raw == "" {
		return "default"
	}
	return raw
}

// sample renders a style with lipgloss v1 colors resolved through the theme parser.
func sample(s theme.Style) lipgloss.Style {
	st := lipgloss.NewStyle()
	if c, err := theme.ParseColor(s.FG); err == nil {
		st = st.Foreground(lipgloss.Color(c.Hex()))
	}
	if c, err := theme.ParseColor(s.BG); err == nil {
		st = st.Background(lipgloss.Color(c.Hex()))
	}
	for _, m := range s.Modifiers {
		switch m {
		case theme.Bold:
			st = st.Bold(true)
		case theme.Faint:
			st = st.Faint(true)
		case theme.Italic:
			st = st.Italic(true)
		case theme.Underline:
			st = st.Underline(true)
		case theme.Blink:
			st = st.Blink(true)
		case theme.Reverse:
			st = st.Reverse(true)
		case theme.Strikethrough:
			st = st.Strikethrough(true)
		}
	}
	return st
}

// renderPalette shows the 16 colors theme files may name.
func renderPalette() string {
	var b strings.Builder
	for i := 0; i < 16; i++ {
		fg := "0"
		if i == 0 || i == 1 || i == 4 || i == 5 || i == 8 {
			fg = "15"
		}
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(strconv.Itoa(i))).
			Foreground(lipgloss.Color(fg)).
			Width(6).
			Align(lipgloss.Center)
		b.WriteString(style.Render(fmt.Sprintf("%3d", i)))
		if i%8 == 7 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

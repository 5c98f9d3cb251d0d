package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xadopt/internal/config"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
)

// GeneralTab is the sub-model for the General settings tab.
type GeneralTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values
	fDockLayer      string
	fDockAppClass   string
	fManageExisting bool
	fLocale         string
	fRescanHotkey   string
	fReloadHotkey   string
	fLogLevel       string
}

// NewGeneralTab creates a GeneralTab from the loaded config.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	return g.updateDisplay(msg)
}

func (g GeneralTab) updateDisplay(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}

	return g, cmd
}

func (g *GeneralTab) loadForm() {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	g.fDockLayer = cfg.DockLayer
	g.fDockAppClass = cfg.DockAppClass
	g.fManageExisting = cfg.ManageExisting
	g.fLocale = cfg.Locale
	g.fRescanHotkey = cfg.RescanHotkey
	g.fReloadHotkey = cfg.ReloadHotkey
	g.fLogLevel = cfg.GetLoggingConfig().Level
}

func (g *GeneralTab) startEditing() {
	g.loadForm()

	layerOpts := make([]huh.Option[string], 0, len(registry.LayerNames()))
	for _, name := range registry.LayerNames() {
		layerOpts = append(layerOpts, huh.NewOption(name, name))
	}
	levelOpts := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warn", "warn"),
		huh.NewOption("error", "error"),
	}

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("dock_layer").
				Title("Dock Layer").
				Description("Stacking layer for dock apps").
				Options(layerOpts...).
				Value(&g.fDockLayer),

			huh.NewInput().
				Key("dockapp_class").
				Title("Dock App Class").
				Description("WM_CLASS class given to dock frames").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("class must not be empty")
					}
					return nil
				}).
				Value(&g.fDockAppClass),

			huh.NewConfirm().
				Key("manage_existing").
				Title("Adopt Existing Windows").
				Description("Manage windows already mapped at startup").
				Value(&g.fManageExisting),

			huh.NewInput().
				Key("locale").
				Title("Text Locale").
				Description("Codeset for COMPOUND_TEXT (empty: from LANG)").
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := prop.NewLocale(s)
					return err
				}).
				Value(&g.fLocale),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("rescan_hotkey").
				Title("Rescan Hotkey").
				Description("Key sequence that adopts new windows (empty: none)").
				Value(&g.fRescanHotkey),
			huh.NewInput().
				Key("reload_hotkey").
				Title("Reload Hotkey").
				Description("Key sequence that reloads this file (empty: none)").
				Value(&g.fReloadHotkey),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(levelOpts...).
				Value(&g.fLogLevel),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

func (g *GeneralTab) applyForm() {
	if g.cfg == nil {
		return
	}

	if _, err := registry.ParseLayer(g.fDockLayer); err == nil {
		g.cfg.DockLayer = g.fDockLayer
	}
	if s := strings.TrimSpace(g.fDockAppClass); s != "" {
		g.cfg.DockAppClass = s
	}
	g.cfg.ManageExisting = g.fManageExisting
	g.cfg.Locale = strings.TrimSpace(g.fLocale)
	g.cfg.RescanHotkey = strings.TrimSpace(g.fRescanHotkey)
	g.cfg.ReloadHotkey = strings.TrimSpace(g.fReloadHotkey)
	if g.fLogLevel != "" {
		g.cfg.LogLevel = g.fLogLevel
		g.cfg.Logging.Level = ""
	}
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	cfg := g.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(g.width).
			Height(g.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	logCfg := cfg.GetLoggingConfig()
	lines := []string{
		"",
		row("Display", displayOrDefault(cfg.Display, "(from $DISPLAY)")),
		row("Text Locale", displayOrDefault(cfg.Locale, "(from LANG)")),
		"",
		row("Dock Layer", cfg.DockLayer),
		row("Dock App Class", cfg.DockAppClass),
		row("Adopt Existing", fmt.Sprintf("%v", cfg.ManageExisting)),
		"",
		row("Rescan Hotkey", displayOrDefault(cfg.RescanHotkey, "(none)")),
		row("Reload Hotkey", displayOrDefault(cfg.ReloadHotkey, "(none)")),
		row("Log Level", logCfg.Level),
		row("Log Format", logCfg.Format),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	contentStyle := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return contentStyle.Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return style.Render(header + "\n\n" + g.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

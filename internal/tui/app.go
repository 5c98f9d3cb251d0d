package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xadopt/internal/config"
	"github.com/1broseidon/xadopt/internal/ipc"
)

const refreshInterval = 2 * time.Second

// statusMsg carries a refreshed daemon status; nil means unreachable.
type statusMsg struct {
	status *ipc.StatusData
}

type tickMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	daemon     Daemon

	// Tab navigation
	activeTab Tab

	// Sub-models
	generalTab GeneralTab
	windowsTab WindowsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Daemon state
	status *ipc.StatusData

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string, daemon Daemon) model {
	m := model{
		configPath: configPath,
		daemon:     daemon,
		activeTab:  TabGeneral,
	}

	m.loadConfig()
	if m.result != nil {
		m.originalConfig = cloneConfig(m.result.Config)
	}

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
	}
	m.generalTab = NewGeneralTab(cfg)
	m.windowsTab = NewWindowsTab(daemon)
	return m
}

func (m *model) loadConfig() {
	if m.configPath == "" {
		m.result, m.loadErr = config.LoadWithSources()
	} else {
		m.result, m.loadErr = config.LoadFromPath(m.configPath)
	}
}

// savePath is where ctrl-s writes the edited config.
func (m model) savePath() (string, error) {
	if m.configPath != "" {
		return m.configPath, nil
	}
	return config.DefaultConfigPath()
}

func fetchStatus(d Daemon) tea.Cmd {
	return func() tea.Msg {
		if d == nil {
			return statusMsg{}
		}
		st, err := d.GetStatus()
		if err != nil {
			return statusMsg{}
		}
		return statusMsg{status: st}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchStatus(m.daemon), fetchWindows(m.daemon), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Background refreshes are handled whatever has focus.
	switch msg := msg.(type) {
	case statusMsg:
		m.status = msg.status
		return m, nil
	case tickMsg:
		cmds := []tea.Cmd{fetchStatus(m.daemon), tick()}
		if m.activeTab == TabWindows && !m.windowsTab.Filtering() {
			cmds = append(cmds, fetchWindows(m.daemon))
		}
		return m, tea.Batch(cmds...)
	case windowsMsg, rescanMsg:
		var cmd tea.Cmd
		m.windowsTab, cmd = m.windowsTab.Update(msg)
		return m, cmd
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			path, err := m.savePath()
			m.saveOverlay = m.saveOverlay.Update(msg, m.result.Config, path, err, m.daemon, m.status != nil)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
		}
		return m, nil
	}

	// ctrl+s triggers save overlay from any context (including form editing)
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.result != nil && m.result.Config != nil {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
		m.height = ws.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.generalTab, _ = m.generalTab.Update(subMsg)
		m.windowsTab, _ = m.windowsTab.Update(subMsg)
		return m, nil
	}

	// When a sub-model captures input, only ctrl+c escapes to quit.
	capturing := (m.activeTab == TabGeneral && m.generalTab.editing) ||
		(m.activeTab == TabWindows && m.windowsTab.Filtering())
	if km, ok := msg.(tea.KeyMsg); ok && !capturing {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabGeneral
			return m, nil
		case "2":
			m.activeTab = TabWindows
			return m, fetchWindows(m.daemon)
		}
	} else if ok && km.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabWindows:
		m.windowsTab, cmd = m.windowsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.activeTab == TabGeneral && m.loadErr != nil:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(contentHeight).
			Padding(1, 2).
			Foreground(lipgloss.Color("196")).
			Render("Config error: " + m.loadErr.Error())
	case m.activeTab == TabGeneral:
		content = m.generalTab.View()
	default:
		content = m.windowsTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

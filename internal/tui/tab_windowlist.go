package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/xadopt/internal/ipc"
)

// windowItem is a list item for one registry entry.
type windowItem struct {
	info ipc.WindowInfo
}

func (i windowItem) Title() string {
	mark := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	if i.info.Kind == "dock" {
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render("◆")
	}
	name := i.info.Title
	if name == "" {
		name = i.info.Class
	}
	if name == "" {
		return fmt.Sprintf("%s 0x%x", mark, i.info.ID)
	}
	return fmt.Sprintf("%s 0x%x  %s", mark, i.info.ID, name)
}

func (i windowItem) Description() string {
	parts := []string{i.info.Kind}
	if i.info.Top != i.info.ID {
		parts = append(parts, fmt.Sprintf("top 0x%x", i.info.Top))
	}
	if i.info.Layer != "" {
		parts = append(parts, "layer "+i.info.Layer)
	}
	if i.info.Class != "" && i.info.Title != "" {
		parts = append(parts, "class "+i.info.Class)
	}
	return strings.Join(parts, " | ")
}

func (i windowItem) FilterValue() string {
	return fmt.Sprintf("0x%x %s %s %s", i.info.ID, i.info.Kind, i.info.Title, i.info.Class)
}

// windowsMsg carries a refreshed registry listing.
type windowsMsg struct {
	windows []ipc.WindowInfo
	err     error
}

// rescanMsg reports a finished rescan.
type rescanMsg struct {
	data *ipc.RescanData
	err  error
}

// WindowsTab lists the windows the daemon manages.
type WindowsTab struct {
	list   list.Model
	daemon Daemon
	width  int
	height int
	note   string
}

// NewWindowsTab creates an empty WindowsTab.
func NewWindowsTab(daemon Daemon) WindowsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Managed Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return WindowsTab{list: l, daemon: daemon}
}

func buildWindowItems(windows []ipc.WindowInfo) []list.Item {
	sorted := append([]ipc.WindowInfo(nil), windows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].ID < sorted[j].ID
	})
	items := make([]list.Item, 0, len(sorted))
	for _, w := range sorted {
		items = append(items, windowItem{info: w})
	}
	return items
}

// fetchWindows lists the registry through the daemon.
func fetchWindows(d Daemon) tea.Cmd {
	return func() tea.Msg {
		if d == nil {
			return windowsMsg{err: fmt.Errorf("daemon not running")}
		}
		data, err := d.ListWindows()
		if err != nil {
			return windowsMsg{err: err}
		}
		return windowsMsg{windows: data.Windows}
	}
}

func rescan(d Daemon) tea.Cmd {
	return func() tea.Msg {
		data, err := d.Rescan()
		return rescanMsg{data: data, err: err}
	}
}

// Filtering reports whether the list filter is taking keystrokes.
func (w WindowsTab) Filtering() bool {
	return w.list.FilterState() == list.Filtering
}

// Update handles messages for the windows tab.
func (w WindowsTab) Update(msg tea.Msg) (WindowsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.list.SetSize(w.width, w.height-1)
		return w, nil

	case windowsMsg:
		if msg.err != nil {
			w.note = msg.err.Error()
			w.list.SetItems(nil)
			return w, nil
		}
		w.note = ""
		return w, w.list.SetItems(buildWindowItems(msg.windows))

	case rescanMsg:
		if msg.err != nil {
			w.note = "rescan failed: " + msg.err.Error()
			return w, nil
		}
		w.note = fmt.Sprintf("rescan: %d -> %d entries", msg.data.Before, msg.data.After)
		return w, fetchWindows(w.daemon)

	case tea.KeyMsg:
		if !w.Filtering() && w.daemon != nil {
			switch msg.String() {
			case "r":
				return w, rescan(w.daemon)
			case "g":
				return w, fetchWindows(w.daemon)
			}
		}
	}

	var cmd tea.Cmd
	w.list, cmd = w.list.Update(msg)
	return w, cmd
}

// View renders the windows tab.
func (w WindowsTab) View() string {
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("  r: rescan  g: refresh  /: filter")
	if w.note != "" {
		footer += lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("  " + w.note)
	}
	return lipgloss.JoinVertical(lipgloss.Left, w.list.View(), footer)
}

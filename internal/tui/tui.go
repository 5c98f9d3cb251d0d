// Package tui is the interactive configuration editor and window browser.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/xadopt/internal/ipc"
)

// Daemon is the part of the IPC client the TUI uses.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	Rescan() (*ipc.RescanData, error)
	Reload() error
}

// Run opens the TUI on the terminal. configPath may be empty for the default
// location.
func Run(configPath string, daemon Daemon) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(configPath, daemon), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

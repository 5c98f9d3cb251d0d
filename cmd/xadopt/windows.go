package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/1broseidon/xadopt/internal/ipc"
)

// parseWindowArg accepts decimal or 0x-prefixed window ids.
func parseWindowArg(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "root" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func runWindows(args []string) int {
	fs := newFlagSet("windows", "xadopt windows [--json] [--kind client|dock] [--socket PATH]",
		"List the windows registered with the daemon, grouped by top-level frame.")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	kind := fs.String("kind", "", "Only list windows of this kind")
	socket := fs.String("socket", "", "Daemon socket (default: $XDG_RUNTIME_DIR/xadopt.sock)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "windows takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient(*socket).ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	windows := filterWindows(data.Windows, *kind)
	if *jsonOut {
		return printJSON(ipc.WindowsData{Windows: windows})
	}

	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		width, _, err := term.GetSize(fd)
		if err != nil {
			width = 0
		}
		fmt.Println(renderWindowTable(windows, width))
		return 0
	}
	writeWindowLines(os.Stdout, windows)
	return 0
}

func filterWindows(windows []ipc.WindowInfo, kind string) []ipc.WindowInfo {
	out := make([]ipc.WindowInfo, 0, len(windows))
	for _, w := range windows {
		if kind != "" && !strings.EqualFold(w.Kind, kind) {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Top != out[j].Top {
			return out[i].Top < out[j].Top
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func windowRow(w ipc.WindowInfo) []string {
	return []string{
		fmt.Sprintf("0x%x", w.ID),
		w.Kind,
		fmt.Sprintf("0x%x", w.Top),
		w.Layer,
		w.Class,
		w.Title,
	}
}

var windowHeaders = []string{"ID", "KIND", "TOP", "LAYER", "CLASS", "TITLE"}

// writeWindowLines prints one tab-separated line per window for scripts.
func writeWindowLines(w io.Writer, windows []ipc.WindowInfo) {
	for _, win := range windows {
		fmt.Fprintln(w, strings.Join(windowRow(win), "\t"))
	}
}

func renderWindowTable(windows []ipc.WindowInfo, width int) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	dockStyle := cellStyle.Foreground(lipgloss.Color("214"))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(windowHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(windows) && windows[row].Kind == "dock" {
				return dockStyle
			}
			return cellStyle
		})
	for _, w := range windows {
		t.Row(windowRow(w)...)
	}
	if width > 0 {
		t.Width(width)
	}
	return t.Render()
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/xadopt/internal/inspect"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/x11"
)

func printPropUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xadopt prop <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  get <window> <property>              Read a property")
	fmt.Fprintln(w, "  set <window> <property> <value>...   Replace a property")
	fmt.Fprintln(w, "  erase <window> <property>            Delete a property")
	fmt.Fprintln(w, "  send <window> <type> [word]...       Send a client message to the root window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "<window> is a decimal or 0x id; 0 or \"root\" means the root window.")
	fmt.Fprintf(w, "Kinds: %s\n", joinKinds())
}

func joinKinds() string {
	names := make([]string, len(inspect.Kinds))
	for i, k := range inspect.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func runProp(args []string) int {
	if len(args) == 0 {
		printPropUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "get":
		return runPropGet(args[1:])
	case "set":
		return runPropSet(args[1:])
	case "erase":
		return runPropErase(args[1:])
	case "send":
		return runPropSend(args[1:])
	case "help", "-h", "--help":
		printPropUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown prop command: %s\n\n", args[0])
		printPropUsage(os.Stderr)
		return 2
	}
}

// propFlags are shared by every prop subcommand.
type propFlags struct {
	display *string
	config  *string
}

func addPropFlags(fs *flag.FlagSet) propFlags {
	return propFlags{
		display: fs.String("display", "", "X display (default: config display, then $DISPLAY)"),
		config:  fs.String("config", "", "Config file path (default: ~/.config/xadopt/config.yaml)"),
	}
}

// open connects to the display and returns an inspector with its closer.
func (f propFlags) open() (*inspect.Inspector, func(), error) {
	res, err := loadConfigResult(*f.config)
	if err != nil {
		return nil, nil, err
	}
	cfg := res.Config

	display := *f.display
	if display == "" {
		display = cfg.Display
	}
	if cfg.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	locale, err := prop.ResolveLocale(cfg.Locale)
	if err != nil {
		return nil, nil, fmt.Errorf("locale: %w", err)
	}

	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, nil, err
	}
	in, err := inspect.New(conn, locale)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return in, flushAndClose(conn), nil
}

type syncCloser interface {
	Sync()
	Close()
}

// flushAndClose waits for the server to process every queued request before
// disconnecting. Property writes and client messages are not acknowledged,
// and closing alone may drop them before they are written.
func flushAndClose(conn syncCloser) func() {
	return func() {
		conn.Sync()
		conn.Close()
	}
}

func parsePropTarget(fs *flag.FlagSet, want int, what string) (uint32, bool) {
	if fs.NArg() < want {
		fmt.Fprintf(os.Stderr, "%s requires %s\n", fs.Name(), what)
		fs.Usage()
		return 0, false
	}
	win, err := parseWindowArg(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid window id %q\n", fs.Arg(0))
		return 0, false
	}
	return win, true
}

func runPropGet(args []string) int {
	fs := newFlagSet("get", "xadopt prop get [--kind KIND] [--json] <window> <property>",
		"Read a property. Text kinds decode every string in the property.")
	pf := addPropFlags(fs)
	kindName := fs.String("kind", "text", "Property kind: "+joinKinds())
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	win, ok := parsePropTarget(fs, 2, "<window> <property>")
	if !ok {
		return 2
	}
	kind, err := inspect.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	in, closeFn, err := pf.open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	v, found, err := in.Get(win, fs.Arg(1), kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(struct {
			Found bool `json:"found"`
			inspect.Value
		}{found, v})
	}
	if !found {
		fmt.Fprintf(os.Stderr, "%s: not set or not of kind %s\n", fs.Arg(1), kind)
		return 1
	}
	writeValue(os.Stdout, v)
	return 0
}

func writeValue(w io.Writer, v inspect.Value) {
	for i, n := range v.Numbers {
		switch {
		case i < len(v.Names) && v.Names[i] != "":
			fmt.Fprintf(w, "%d\t%s\n", n, v.Names[i])
		case v.Kind == inspect.KindWindow:
			fmt.Fprintf(w, "0x%x\n", n)
		default:
			fmt.Fprintf(w, "%d\n", n)
		}
	}
	for i, s := range v.Strings {
		enc := ""
		if i < len(v.Encodings) {
			enc = v.Encodings[i]
		}
		fmt.Fprintf(w, "%q\t%s\n", s, enc)
	}
}

func runPropSet(args []string) int {
	fs := newFlagSet("set", "xadopt prop set [--kind KIND] <window> <property> <value>...",
		"Replace a property. Several values make a list; text is written as UTF8_STRING.")
	pf := addPropFlags(fs)
	kindName := fs.String("kind", "text", "Property kind: "+joinKinds())
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	win, ok := parsePropTarget(fs, 3, "<window> <property> <value>...")
	if !ok {
		return 2
	}
	kind, err := inspect.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	in, closeFn, err := pf.open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	if err := in.Set(win, fs.Arg(1), kind, fs.Args()[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPropErase(args []string) int {
	fs := newFlagSet("erase", "xadopt prop erase <window> <property>", "Delete a property.")
	pf := addPropFlags(fs)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	win, ok := parsePropTarget(fs, 2, "<window> <property>")
	if !ok {
		return 2
	}

	in, closeFn, err := pf.open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	if err := in.Erase(win, fs.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPropSend(args []string) int {
	fs := newFlagSet("send", "xadopt prop send <window> <type> [word]...",
		fmt.Sprintf("Send a 32-bit client message about <window> to the root window.\nAt most %d data words; missing words are zero.", prop.MaxMessageWords))
	pf := addPropFlags(fs)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	win, ok := parsePropTarget(fs, 2, "<window> <type>")
	if !ok {
		return 2
	}
	words := make([]uint32, 0, fs.NArg()-2)
	for _, s := range fs.Args()[2:] {
		n, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid data word %q\n", s)
			return 2
		}
		words = append(words, uint32(n))
	}

	in, closeFn, err := pf.open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	if err := in.Message(win, fs.Arg(1), words); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

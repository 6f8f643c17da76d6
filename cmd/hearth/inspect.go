package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/phanxgames/hearth/hotreload"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

func inspectCmd(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	level := fs.String("log-level", "warn", "log level")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("inspect needs exactly one unit path")
	}

	logger, err := newLogger(*level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	return inspect(context.Background(), os.Stdout, fs.Arg(0), styled)
}

// inspect loads the unit at path in a throwaway host and lists its
// components.
func inspect(ctx context.Context, w io.Writer, path string, styled bool) (err error) {
	host := hotreload.NewHost(hotreload.NewWazeroLoader(nil))
	defer func() {
		err = errors.Join(err, host.Close(ctx))
	}()

	if err := host.Reload(ctx, path); err != nil {
		return err
	}

	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	entries := host.Registry().All()
	fmt.Fprintln(w, render(titleStyle, fmt.Sprintf("%s: %d components", path, len(entries))))
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s\n", render(nameStyle, e.Descriptor.Name), render(idStyle, e.ID.String()))
		for _, f := range e.Descriptor.Fields {
			line := "  " + f.Name + " " + render(kindStyle, string(f.Kind))
			if f.Default != nil {
				line += " = " + formatDefault(f.Default)
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func formatDefault(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []float64:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = strconv.FormatFloat(p, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

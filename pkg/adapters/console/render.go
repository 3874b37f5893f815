package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer turns a message body into terminal output.
type Renderer func(markdown string) (string, error)

// PlainRenderer prints messages untouched.
func PlainRenderer(s string) (string, error) {
	return s + "\n", nil
}

// NewGlamourRenderer returns a renderer that styles markdown with glamour,
// detecting a light or dark background automatically.
func NewGlamourRenderer(width int) (Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintBanner writes the Rapid-Hire banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).Profile
	lines := []struct {
		text  string
		color string
	}{
		{" ___          _    _     _  _ _         ", "#818cf8"},
		{"| _ \\__ _ _ __(_)__| |___| || (_)_ _ ___ ", "#a78bfa"},
		{"|   / _` | '_ \\ / _` |___| __ | | '_/ -_)", "#e879f9"},
		{"|_|_\\__,_| .__/_\\__,_|   |_||_|_|_| \\___|", "#f472b6"},
		{"         |_|                             ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

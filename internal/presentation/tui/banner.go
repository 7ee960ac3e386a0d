package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ladon ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _               _             ", "#34d399"},
		{" | | __ _  __| | ___  _ __  ", "#2dd4bf"},
		{" | |/ _` |/ _` |/ _ \\| '_ \\ ", "#22d3ee"},
		{" | | (_| | (_| | (_) | | | |", "#38bdf8"},
		{" |_|\\__,_|\\__,_|\\___/|_| |_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

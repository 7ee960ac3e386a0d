package tui

import (
	"os"

	"github.com/aretw0/ladon/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Status renders a status in its color: green, yellow or red.
// With colorless profiles (pipes, NO_COLOR) the plain text is returned.
func Status(p termenv.Profile, s domain.Status) string {
	color := "#ef4444"
	switch s {
	case domain.StatusSuccess:
		color = "#22c55e"
	case domain.StatusFailure:
		color = "#eab308"
	}
	return p.String(s.String()).Foreground(p.Color(color)).Bold().String()
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/ladon/pkg/domain"
)

// Markdown writes a report suitable for a terminal markdown renderer or a CI summary.
func Markdown(w io.Writer, snap *domain.ResultSnapshot) error {
	var b strings.Builder

	title := snap.Config.ClassName
	if title == "" {
		title = snap.Config.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Status:** %s  \n", snap.Status)
	fmt.Fprintf(&b, "**ID:** `%s`  \n", snap.Config.ID)
	fmt.Fprintf(&b, "**Duration:** %s\n", formatDuration(snap.TotalDuration()))

	if len(snap.Config.Flags) > 0 {
		b.WriteString("\n## Flags\n\n| Flag | Value |\n|---|---|\n")
		for _, k := range sortedKeys(snap.Config.Flags) {
			fmt.Fprintf(&b, "| %s | %v |\n", k, snap.Config.Flags[k])
		}
	}

	if len(snap.Timings) > 0 {
		b.WriteString("\n## Timings\n\n| Activity | Duration |\n|---|---|\n")
		for _, t := range snap.Timings {
			fmt.Fprintf(&b, "| %s | %s |\n", t.Name, formatDuration(t.Duration))
		}
	}

	if len(snap.Log) > 0 {
		b.WriteString("\n## Log\n\n```\n")
		for _, e := range snap.Log {
			writeEntry(&b, "", e)
		}
		b.WriteString("```\n")
	}

	if len(snap.Data) > 0 {
		b.WriteString("\n## Data\n\n")
		for _, d := range snap.Data {
			fmt.Fprintf(&b, "- **%s:** %v\n", d.Key, d.Value)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

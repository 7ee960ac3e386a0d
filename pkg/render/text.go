package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aretw0/ladon/pkg/domain"
)

// Text writes a plain, human readable report.
func Text(w io.Writer, snap *domain.ResultSnapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s\n", snap.Status)
	fmt.Fprintf(&b, "ID: %s\n", snap.Config.ID)
	if snap.Config.ClassName != "" {
		fmt.Fprintf(&b, "Script: %s\n", snap.Config.ClassName)
	}
	fmt.Fprintf(&b, "Log level: %s\n", snap.Config.LogLevel)
	fmt.Fprintf(&b, "Duration: %s\n", formatDuration(snap.TotalDuration()))

	if len(snap.Config.Flags) > 0 {
		b.WriteString("\nFlags:\n")
		for _, k := range sortedKeys(snap.Config.Flags) {
			fmt.Fprintf(&b, "  %s: %v\n", k, snap.Config.Flags[k])
		}
	}

	if len(snap.Timings) > 0 {
		b.WriteString("\nTimings:\n")
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for _, t := range snap.Timings {
			fmt.Fprintf(tw, "  %s\t%s\n", t.Name, formatDuration(t.Duration))
		}
		_ = tw.Flush()
	}

	if len(snap.Log) > 0 {
		b.WriteString("\nLog:\n")
		for _, e := range snap.Log {
			writeEntry(&b, "  ", e)
		}
	}

	if len(snap.Data) > 0 {
		b.WriteString("\nData:\n")
		for _, d := range snap.Data {
			fmt.Fprintf(&b, "  %s: %v\n", d.Key, d.Value)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeEntry(b *strings.Builder, indent string, e domain.LogEntry) {
	fmt.Fprintf(b, "%s[%s] %s %s\n", indent, e.Level, e.Time.Format(time.RFC3339), e.Message())
	for _, l := range e.Lines[min(1, len(e.Lines)):] {
		fmt.Fprintf(b, "%s    %s\n", indent, l)
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "incomplete"
	}
	return d.Round(time.Microsecond).String()
}

// Package render turns result snapshots into text, markdown, JSON, YAML or JUnit XML.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/ladon/pkg/domain"
)

// Format is an output rendering of a result.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatJUnit    Format = "junit"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatJUnit}
}

// ParseFormat parses a format name. "md", "yml" and "xml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "junit", "xml":
		return FormatJUnit, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to text.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatText
}

// Render writes snap to w in format f.
func Render(w io.Writer, f Format, snap *domain.ResultSnapshot) error {
	if snap == nil {
		return fmt.Errorf("render: nil result")
	}
	switch f {
	case FormatText, "":
		return Text(w, snap)
	case FormatMarkdown:
		return Markdown(w, snap)
	case FormatJSON:
		return JSON(w, snap)
	case FormatYAML:
		return YAML(w, snap)
	case FormatJUnit:
		return JUnit(w, snap)
	}
	return fmt.Errorf("unknown output format %q", f)
}

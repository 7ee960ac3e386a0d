package render

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/aretw0/ladon/pkg/domain"
	"gopkg.in/yaml.v3"
)

// JSON writes the snapshot as indented JSON.
func JSON(w io.Writer, snap *domain.ResultSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// YAML writes the snapshot as a YAML document.
func YAML(w io.Writer, snap *domain.ResultSnapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return enc.Close()
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

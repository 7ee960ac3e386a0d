package main

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// scriptFlags merges a YAML flags file with k=v pairs; the pairs win.
// Values are read as YAML scalars, so "3" is an int and "true" a bool.
func scriptFlags(file string, pairs []string) (map[string]any, error) {
	flags := map[string]any{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read flags file: %w", err)
		}
		var fromFile map[string]any
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse flags file %s: %w", file, err)
		}
		maps.Copy(flags, fromFile)
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid flag %q, want key=value", pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil && raw != "" && raw != "~" && raw != "null" {
			v = raw
		}
		flags[key] = v
	}
	return flags, nil
}

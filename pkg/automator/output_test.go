package automator_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing() *automator.Steps {
	return &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseExecute: func(context.Context, *automator.Automation) error { return nil },
	}}
}

func TestOutput_NothingByDefault(t *testing.T) {
	var out bytes.Buffer
	a := newAutomation(t, passing(), nil, automator.WithOutput(&out))

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestOutput_FormatToWriter(t *testing.T) {
	var out bytes.Buffer
	a := newAutomation(t, passing(), map[string]any{automator.FlagOutputFormat: "json"}, automator.WithOutput(&out))

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.IsSuccess())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "SUCCESS", decoded["status"])
}

func TestOutput_FileFormatFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.xml")
	a := newAutomation(t, passing(), map[string]any{automator.FlagOutputFile: path})

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites>")
}

func TestOutput_ExplicitFormatWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xml")
	a := newAutomation(t, passing(), map[string]any{
		automator.FlagOutputFile:   path,
		automator.FlagOutputFormat: "yaml",
	})

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "status: SUCCESS")
}

func TestOutput_ClassDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.md")
	script := passing()
	script.Defaults = map[string]any{automator.FlagOutputFile: path}
	a := newAutomation(t, script, nil)

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Status:** SUCCESS")
}

func TestOutput_InvalidFormatIsAnError(t *testing.T) {
	var out bytes.Buffer
	a := newAutomation(t, passing(), map[string]any{automator.FlagOutputFormat: "pdf"}, automator.WithOutput(&out))

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.IsError())
	assert.Empty(t, out.String())
}

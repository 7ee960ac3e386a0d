package automator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/ladon/pkg/render"
	"github.com/google/renameio/v2"
)

const (
	FlagOutputFormat = "output_format"
	FlagOutputFile   = "output_file"
)

// OutputFormatFlag selects how the result is rendered when the run ends.
var OutputFormatFlag = &Flag{
	Name:          FlagOutputFormat,
	Description:   "render the result as text, json, yaml, junit or markdown",
	Default:       "",
	ClassOverride: true,
	Validator: func(v any) error {
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		_, err := render.ParseFormat(s)
		return err
	},
}

// OutputFileFlag names the file the rendered result is written to. Its handler
// runs once, after the last phase. With neither flag set nothing is written;
// with only a format the result goes to the automation's output writer.
var OutputFileFlag = &Flag{
	Name:          FlagOutputFile,
	Description:   "write the rendered result to this file",
	Default:       "",
	ClassOverride: true,
	Handler:       writeResult,
}

func writeResult(ctx context.Context, a *Automation, value any) error {
	path, _ := value.(string)
	if err := OutputFormatFlag.Validate(a); err != nil {
		return err
	}
	name := OutputFormatFlag.String(a)
	if path == "" && name == "" {
		return nil
	}

	format := render.FormatText
	switch {
	case name != "":
		format, _ = render.ParseFormat(name)
	case path != "":
		format = render.FormatFromPath(path)
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, format, a.result.Snapshot()); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}

	if path == "" {
		_, err := a.output.Write(buf.Bytes())
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("failed to create pending file: %w", err)
	}
	defer func() { _ = f.Cleanup() }()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

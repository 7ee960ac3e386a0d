package automator

import (
	"context"
	"fmt"

	"github.com/aretw0/ladon/pkg/domain"
)

// FlagHandler applies a flag's resolved value to the automation.
type FlagHandler func(ctx context.Context, a *Automation, value any) error

// FlagValidator rejects unusable flag values.
type FlagValidator func(value any) error

// Flag describes an option a script accepts.
type Flag struct {
	Name        string
	Description string
	Default     any
	// ClassOverride lets the script replace Default through FlagDefaulter.
	ClassOverride bool
	Validator     FlagValidator
	Handler       FlagHandler
}

// Value resolves the flag for a: the run's flags first, then the script's
// override when ClassOverride is set, then Default.
func (f *Flag) Value(a *Automation) any {
	if v, ok := a.config.Flags().Lookup(f.Name); ok {
		return v
	}
	if f.ClassOverride {
		if d, ok := a.script.(FlagDefaulter); ok {
			if v, ok := d.FlagDefault(f.Name); ok {
				return v
			}
		}
	}
	return f.Default
}

// String resolves the flag and formats it; nil becomes "".
func (f *Flag) String(a *Automation) string {
	v := f.Value(a)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Validate checks the resolved value.
func (f *Flag) Validate(a *Automation) error {
	if f.Validator == nil {
		return nil
	}
	if err := f.Validator(f.Value(a)); err != nil {
		return fmt.Errorf("flag %s: %w", f.Name, err)
	}
	return nil
}

// Feed validates the resolved value and hands it to the flag's handler.
func (f *Flag) Feed(ctx context.Context, a *Automation) error {
	if f.Handler == nil {
		return fmt.Errorf("%w: flag %s has no handler", domain.ErrBlockRequired, f.Name)
	}
	if err := f.Validate(a); err != nil {
		return err
	}
	return f.Handler(ctx, a, f.Value(a))
}

// Handle is an alias of Feed.
func (f *Flag) Handle(ctx context.Context, a *Automation) error {
	return f.Feed(ctx, a)
}

// Flags lists the flags the automation understands: the script's own, then the
// standard output flags.
func (a *Automation) Flags() []*Flag {
	var out []*Flag
	if d, ok := a.script.(FlagDeclarer); ok {
		out = append(out, d.Flags()...)
	}
	return append(out, OutputFormatFlag, OutputFileFlag)
}

// Flag finds a declared flag by name.
func (a *Automation) Flag(name string) (*Flag, bool) {
	for _, f := range a.Flags() {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// HandleFlag feeds the named declared flag.
func (a *Automation) HandleFlag(ctx context.Context, name string) error {
	f, ok := a.Flag(name)
	if !ok {
		return fmt.Errorf("unknown flag %q", name)
	}
	return f.Feed(ctx, a)
}

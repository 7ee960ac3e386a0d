package samples

import (
	"context"
	"strconv"

	"github.com/aretw0/ladon/pkg/automator"
)

// NewHello returns a minimal script: setup greets, execute checks the
// "fail" flag and teardown records how many greetings were made.
func NewHello() automator.Script {
	var greetings int
	greeting := &automator.Flag{
		Name:          "greeting",
		Description:   "text logged by setup",
		Default:       "hello",
		ClassOverride: true,
	}
	fail := &automator.Flag{
		Name:        "fail",
		Description: "make the execute assertion fail",
		Default:     false,
		Validator: func(v any) error {
			_, err := toBool(v)
			return err
		},
	}

	return &automator.Steps{
		Declared: []*automator.Flag{greeting, fail},
		Defaults: map[string]any{"greeting": "hello, ladon"},
		Funcs: map[string]automator.PhaseFunc{
			automator.PhaseSetup: func(_ context.Context, a *automator.Automation) error {
				greetings++
				a.Logger().Info(greeting.String(a))
				return nil
			},
			automator.PhaseExecute: func(_ context.Context, a *automator.Automation) error {
				shouldFail, _ := toBool(fail.Value(a))
				_, err := a.Assert("Script should not be asked to fail", func() any { return !shouldFail },
					automator.WithExpected(false), automator.WithActual(shouldFail))
				return err
			},
			automator.PhaseTeardown: func(_ context.Context, a *automator.Automation) error {
				return a.Result().RecordData("greetings", greetings)
			},
		},
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, strconv.ErrSyntax
}

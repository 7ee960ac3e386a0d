package ladon

import (
	"context"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/runner"
)

// Register adds a script factory to the default registry under name.
// It panics when the name is empty or already taken, like runner.Register.
func Register(name string, factory runner.Factory) {
	runner.Register(name, factory)
}

// Run runs the named script from the default registry with flags and returns its result.
// An empty name selects the only concrete script.
func Run(ctx context.Context, name string, flags map[string]any, opts ...runner.Option) (*domain.Result, error) {
	return runner.New(opts...).Run(ctx, runner.Request{Name: name, Flags: flags})
}

// RunScript runs an unregistered script directly.
func RunScript(ctx context.Context, script automator.Script, flags map[string]any, opts ...automator.Option) (*domain.Result, error) {
	a, err := automator.New(script, domain.NewConfig(domain.WithFlags(flags)), opts...)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx)
}

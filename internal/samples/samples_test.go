package samples_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/ladon/internal/samples"
	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, name string, flags map[string]any) *domain.Result {
	t.Helper()
	r := runner.New()
	res, err := r.Run(context.Background(), runner.Request{Name: name, LogLevel: "debug", Flags: flags, Quiet: true})
	require.NoError(t, err)
	return res
}

func TestRegistered(t *testing.T) {
	names := runner.Default.Names()
	for _, want := range []string{"hello", "logins", "turnstile"} {
		assert.Contains(t, names, want)
	}
}

func TestHello(t *testing.T) {
	res := run(t, "hello", nil)
	assert.True(t, res.IsSuccess(), "log: %v", res.Entries())
	assert.Equal(t, 1, res.Data()["greetings"])

	var greeted bool
	for _, e := range res.Entries() {
		if e.Message() == "hello, ladon" {
			greeted = true
		}
	}
	assert.True(t, greeted, "class default overrides the flag default")

	res = run(t, "hello", map[string]any{"fail": "true"})
	assert.True(t, res.IsFailure())
}

func TestTurnstile(t *testing.T) {
	for _, strategy := range []string{"eager", "connected", "lazy"} {
		t.Run(strategy, func(t *testing.T) {
			res := run(t, "turnstile", map[string]any{"load_strategy": strategy})
			require.True(t, res.IsSuccess(), "log: %v", res.Entries())
			assert.Equal(t, 3, res.Data()["coins"])
			assert.Equal(t, 3, res.Data()["pushes"])
			assert.Equal(t, "locked", res.Data()["final_state"])
		})
	}

	t.Run("unknown event", func(t *testing.T) {
		res := run(t, "turnstile", map[string]any{"events": "coin,kick"})
		assert.True(t, res.IsError())
	})

	t.Run("model only", func(t *testing.T) {
		script := samples.NewTurnstile()
		a, err := automator.New(script, domain.NewConfig())
		require.NoError(t, err)
		_, err = a.RunThrough(context.Background(), automator.PhaseVerifyModel)
		require.NoError(t, err)

		fsm := script.(*samples.Turnstile).FSM()
		require.NotNil(t, fsm)
		assert.Equal(t, 2, fsm.StateCount())
		assert.Equal(t, "locked", fsm.CurrentStateType().Name())
	})
}

const logins = `user,password,expect
alice,s3cret,ok
bob,wrong,denied
mallory,nil,ok
`

func TestLogins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logins.csv")
	require.NoError(t, os.WriteFile(path, []byte(logins), 0o644))

	res := run(t, "logins", map[string]any{"data_file": path, "rows": "1,2"})
	assert.True(t, res.IsSuccess(), "log: %v", res.Entries())
	assert.Equal(t, 2, res.Data()["attempts"])

	res = run(t, "logins", map[string]any{"data_file": path})
	assert.True(t, res.IsFailure(), "mallory must be denied")
	assert.Equal(t, 3, res.Data()["attempts"])

	res = run(t, "logins", nil)
	assert.True(t, res.IsError())

	res = run(t, "logins", map[string]any{"data_file": path, "rows": "9"})
	assert.True(t, res.IsError())
}

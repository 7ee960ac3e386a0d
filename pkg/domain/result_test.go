package domain_test

import (
	"sync"
	"testing"

	"github.com/aretw0/ladon/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_StatusOnlyEscalates(t *testing.T) {
	r := domain.NewResult(nil, nil, nil)
	assert.True(t, r.IsSuccess())

	assert.True(t, r.MarkFailure())
	assert.True(t, r.IsFailure())

	assert.False(t, r.Escalate(domain.StatusSuccess), "cannot go back to success")
	assert.True(t, r.IsFailure())

	assert.True(t, r.MarkError())
	assert.False(t, r.MarkFailure(), "error outranks failure")
	assert.True(t, r.IsError())
	assert.Equal(t, domain.StatusError, r.Status())
}

func TestResult_ConcurrentEscalation(t *testing.T) {
	r := domain.NewResult(nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.MarkFailure()
			} else {
				r.MarkError()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, domain.StatusError, r.Status())
}

func TestResult_RecordData(t *testing.T) {
	r := domain.NewResult(nil, nil, nil)

	require.NoError(t, r.RecordData("b", 1))
	require.NoError(t, r.RecordData("a", "x"))
	require.NoError(t, r.RecordData("b", 2))

	assert.ErrorIs(t, r.RecordData("", 3), domain.ErrKeyRequired)
	assert.Equal(t, []string{"b", "a"}, r.DataKeys())
	assert.Equal(t, map[string]any{"a": "x", "b": 2}, r.Data())
}

func TestResult_Snapshot(t *testing.T) {
	cfg := domain.NewConfig(
		domain.WithID("run-1"),
		domain.WithLogLevel(domain.LevelInfo),
		domain.WithFlags(map[string]any{"retries": 3}),
		domain.WithClassName("checkout"),
	)
	rec := domain.NewRecorder(cfg.LogLevel(), nil)
	timer := domain.NewTimer()
	r := domain.NewResult(cfg, rec, timer)

	_, err := timer.For("setup", func() {})
	require.NoError(t, err)
	rec.Log(domain.LevelWarn, "slow response", "took 3s")
	require.NoError(t, r.RecordData("orders", 2))
	r.MarkFailure()

	snap := r.Snapshot()
	assert.Equal(t, domain.StatusFailure, snap.Status)
	assert.Equal(t, "run-1", snap.Config.ID)
	assert.Equal(t, "checkout", snap.Config.ClassName)
	assert.Equal(t, 3, snap.Config.Flags["retries"])
	require.Len(t, snap.Timings, 1)
	assert.Equal(t, "setup", snap.Timings[0].Name)
	assert.GreaterOrEqual(t, int64(snap.Timings[0].Duration), int64(0))
	require.Len(t, snap.Log, 1)
	assert.Equal(t, []string{"slow response", "took 3s"}, snap.Log[0].Lines)

	v, ok := snap.DataValue("orders")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestConfig_Defaults(t *testing.T) {
	a := domain.NewConfig()
	b := domain.NewConfig()

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, domain.DefaultLevel, a.LogLevel())
	assert.Equal(t, 0, a.Flags().Len())
}

func TestConfig_FlagsAreFrozen(t *testing.T) {
	src := map[string]any{"user": "alice"}
	cfg := domain.NewConfig(domain.WithFlags(src))

	src["user"] = "mallory"
	cfg.Flags().Map()["user"] = "eve"

	assert.Equal(t, "alice", cfg.Flags().Get("user", nil))
}

func TestConfig_NestedFlagsAreFrozen(t *testing.T) {
	tags := []any{"smoke"}
	creds := map[string]any{"user": "alice", "roles": []any{"admin"}}
	cfg := domain.NewConfig(domain.WithFlags(map[string]any{"tags": tags, "creds": creds}))

	tags[0] = "changed"
	creds["user"] = "mallory"
	creds["roles"].([]any)[0] = "guest"

	got := cfg.Flags().Get("creds", nil).(map[string]any)
	got["user"] = "eve"
	v, _ := cfg.Flags().Lookup("tags")
	v.([]any)[0] = "changed"

	assert.Equal(t, []any{"smoke"}, cfg.Flags().Get("tags", nil))
	assert.Equal(t, map[string]any{"user": "alice", "roles": []any{"admin"}}, cfg.Flags().Get("creds", nil))

	with := cfg.Flags().With("extra", tags)
	tags[0] = "again"
	assert.Equal(t, []any{"changed"}, with.Get("extra", nil))
}

func TestParseStatus(t *testing.T) {
	s, err := domain.ParseStatus("FAILURE")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, s)

	_, err = domain.ParseStatus("PASSED")
	assert.Error(t, err)
}

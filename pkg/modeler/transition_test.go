package modeler_test

import (
	"errors"
	"testing"

	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_ValidFor(t *testing.T) {
	never := func(modeler.State) bool { return false }
	always := func(modeler.State) bool { return true }

	tests := []struct {
		name   string
		guards []modeler.Guard
		want   bool
	}{
		{"no guards", nil, true},
		{"single false", []modeler.Guard{never}, false},
		{"any guard true", []modeler.Guard{never, always}, true},
		{"all false", []modeler.Guard{never, never}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := modeler.NewTransition()
			for _, g := range tt.guards {
				tr.When(g)
			}
			assert.Equal(t, tt.want, tr.ValidFor("anything"))
		})
	}

	t.Run("guards see the live state", func(t *testing.T) {
		tr := modeler.NewTransition().When(func(s modeler.State) bool { return s == "ready" })
		assert.True(t, tr.ValidFor("ready"))
		assert.False(t, tr.ValidFor("busy"))
	})
}

func TestTransition_TargetLifecycle(t *testing.T) {
	target := modeler.Terminal("target")

	t.Run("identify before load fails", func(t *testing.T) {
		tr := modeler.NewTransition().To(target)

		_, err := tr.IdentifyTarget()
		assert.ErrorIs(t, err, modeler.ErrTargetNotLoaded)
	})

	t.Run("loader runs once and identifier is memoized", func(t *testing.T) {
		loads, idents := 0, 0
		tr := modeler.NewTransition()
		require.NoError(t, tr.ToLoadTarget(func() error { loads++; return nil }))
		require.NoError(t, tr.ToIdentifyTarget(func() (modeler.StateType, error) { idents++; return target, nil }))

		for i := 0; i < 3; i++ {
			ok, err := tr.LoadTarget()
			require.NoError(t, err)
			assert.True(t, ok)
		}
		assert.Equal(t, 1, loads)
		assert.True(t, tr.TargetLoaded())

		for i := 0; i < 3; i++ {
			got, err := tr.IdentifyTarget()
			require.NoError(t, err)
			assert.Same(t, target, got)
		}
		assert.Equal(t, 1, idents)
	})

	t.Run("resolvers are frozen after load", func(t *testing.T) {
		tr := modeler.NewTransition().To(target)
		_, err := tr.LoadTarget()
		require.NoError(t, err)

		assert.ErrorIs(t, tr.ToLoadTarget(func() error { return nil }), modeler.ErrAlreadyLoaded)
		assert.ErrorIs(t, tr.ToIdentifyTarget(func() (modeler.StateType, error) { return target, nil }), modeler.ErrAlreadyLoaded)
	})

	t.Run("nil resolvers are rejected", func(t *testing.T) {
		tr := modeler.NewTransition()
		assert.ErrorIs(t, tr.ToLoadTarget(nil), domain.ErrBlockRequired)
		assert.ErrorIs(t, tr.ToIdentifyTarget(nil), domain.ErrBlockRequired)
	})

	t.Run("failed loader can be retried", func(t *testing.T) {
		attempts := 0
		tr := modeler.NewTransition().To(target)
		require.NoError(t, tr.ToLoadTarget(func() error {
			attempts++
			if attempts == 1 {
				return errors.New("not yet")
			}
			return nil
		}))

		_, err := tr.LoadTarget()
		assert.Error(t, err)
		assert.False(t, tr.TargetLoaded())

		ok, err := tr.LoadTarget()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("named targets resolve through the registry", func(t *testing.T) {
		reg, err := modeler.NewRegistry(target)
		require.NoError(t, err)

		tr := modeler.NewTransition().ToNamed(reg, "target")
		_, err = tr.LoadTarget()
		require.NoError(t, err)
		got, err := tr.IdentifyTarget()
		require.NoError(t, err)
		assert.Same(t, target, got)

		unknown := modeler.NewTransition().ToNamed(reg, "elsewhere")
		_, err = unknown.LoadTarget()
		require.NoError(t, err)
		_, err = unknown.IdentifyTarget()
		assert.ErrorIs(t, err, modeler.ErrInvalidStateType)
	})
}

func TestTransition_Execute(t *testing.T) {
	var order []string
	tr := modeler.NewTransition().
		By(func(s modeler.State) (any, error) { order = append(order, "first"); return 1, nil }).
		By(func(s modeler.State) (any, error) { order = append(order, "second"); return 2, nil })

	results, err := tr.Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, results)
	assert.Equal(t, []string{"first", "second"}, order)

	t.Run("stops at the first failure", func(t *testing.T) {
		ran := false
		tr := modeler.NewTransition().
			By(func(modeler.State) (any, error) { return "ok", nil }).
			By(func(modeler.State) (any, error) { return nil, errors.New("click failed") }).
			By(func(modeler.State) (any, error) { ran = true; return nil, nil })

		results, err := tr.Execute(nil)
		assert.ErrorContains(t, err, "click failed")
		assert.Equal(t, []any{"ok"}, results)
		assert.False(t, ran)
	})
}

func TestTransition_Validate(t *testing.T) {
	target := modeler.Terminal("t")

	assert.NoError(t, modeler.NewTransition().To(target).Validate())
	assert.ErrorIs(t, modeler.NewTransition().Validate(), modeler.ErrInvalidTransition)
	assert.ErrorIs(t, modeler.NewTransition().By(nil).To(target).Validate(), domain.ErrBlockRequired)
	assert.ErrorIs(t, modeler.NewTransition().To(nil).Validate(), modeler.ErrInvalidStateType)
}

func TestTransition_Meta(t *testing.T) {
	tr := modeler.NewTransition().Meta("event", "coin").Meta("name", "insert coin")

	v, ok := tr.MetaValue("event")
	assert.True(t, ok)
	assert.Equal(t, "coin", v)
	assert.Equal(t, "insert coin", tr.String())

	tr.Metadata()["event"] = "mutated"
	v, _ = tr.MetaValue("event")
	assert.Equal(t, "coin", v)
}

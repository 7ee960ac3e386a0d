package modeler

import (
	"math/rand/v2"
	"reflect"
)

// SelectFirst picks the first candidate.
func SelectFirst(candidates []*Transition) (*Transition, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}

// SelectRandom picks a candidate at random. A nil r uses the global source.
func SelectRandom(r *rand.Rand) SelectionStrategy {
	return func(candidates []*Transition) (*Transition, error) {
		if len(candidates) == 0 {
			return nil, nil
		}
		if r == nil {
			return candidates[rand.IntN(len(candidates))], nil
		}
		return candidates[r.IntN(len(candidates))], nil
	}
}

// SelectByMeta picks the first candidate whose metadata key equals value.
func SelectByMeta(key string, value any) SelectionStrategy {
	return func(candidates []*Transition) (*Transition, error) {
		for _, c := range candidates {
			if v, ok := c.MetaValue(key); ok && reflect.DeepEqual(v, value) {
				return c, nil
			}
		}
		return nil, nil
	}
}

// MetaEquals is a transition filter matching a metadata value.
func MetaEquals(key string, value any) func(*Transition) bool {
	return func(t *Transition) bool {
		v, ok := t.MetaValue(key)
		return ok && reflect.DeepEqual(v, value)
	}
}

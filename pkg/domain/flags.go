package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Flags is a frozen, string-keyed map of run options.
// The zero value is an empty set. Nested maps and slices are copied on the way
// in and on the way out, so no caller can reach the stored values.
type Flags struct {
	values map[string]any
}

// NewFlags copies m into a new flag set.
func NewFlags(m map[string]any) Flags {
	if len(m) == 0 {
		return Flags{}
	}
	return Flags{values: cloneMap(m)}
}

// Lookup returns the value stored under name.
func (f Flags) Lookup(name string) (any, bool) {
	v, ok := f.values[name]
	return cloneValue(v), ok
}

// Get returns the value stored under name, or def when absent.
func (f Flags) Get(name string, def any) any {
	if v, ok := f.values[name]; ok {
		return cloneValue(v)
	}
	return def
}

// Has reports whether name is set.
func (f Flags) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Len returns the number of flags.
func (f Flags) Len() int {
	return len(f.values)
}

// Names returns the flag names in sorted order.
func (f Flags) Names() []string {
	return slices.Sorted(maps.Keys(f.values))
}

// Map returns a mutable copy of the flags.
func (f Flags) Map() map[string]any {
	if f.values == nil {
		return map[string]any{}
	}
	return cloneMap(f.values)
}

// With returns a new set with name bound to value. The receiver is unchanged.
func (f Flags) With(name string, value any) Flags {
	m := f.Map()
	m[name] = cloneValue(value)
	return Flags{values: m}
}

// Merge returns a new set holding f overlaid by other (other wins).
func (f Flags) Merge(other Flags) Flags {
	m := f.Map()
	maps.Copy(m, other.values)
	return Flags{values: m}
}

// Decode binds the flags into out, a pointer to a struct tagged with `flag:"name"`.
// Scalar conversions ("3" -> 3, "true" -> true) are applied where needed.
func (f Flags) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "flag",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build flag decoder: %w", err)
	}
	if err := dec.Decode(f.Map()); err != nil {
		return fmt.Errorf("failed to decode flags: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Flags) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Map())
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flags) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*f = NewFlags(m)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (f Flags) MarshalYAML() (any, error) {
	return f.Map(), nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies the container shapes produced by YAML and JSON decoding.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(x)
	}
	return v
}

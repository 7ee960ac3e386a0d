package runner

import "errors"

var (
	// ErrUnknownScript is returned when a name is not in the registry.
	ErrUnknownScript = errors.New("unknown script")

	// ErrNoScript is returned when no name is given and no concrete script is registered.
	ErrNoScript = errors.New("no concrete script registered")

	// ErrAmbiguousScript is returned when no name is given and several concrete scripts are registered.
	ErrAmbiguousScript = errors.New("more than one concrete script registered")

	// ErrInvalidManifest is returned for batch manifests that cannot be planned.
	ErrInvalidManifest = errors.New("invalid batch manifest")
)

package modeler

import (
	"fmt"
	"strings"
)

// LoadStrategy controls how far a load cascades through the graph.
type LoadStrategy int

const (
	// None loads nothing.
	None LoadStrategy = iota
	// Lazy registers the state only; its transitions load on demand.
	Lazy
	// Connected registers the state and its transitions without following them.
	Connected
	// Eager loads everything reachable.
	Eager
)

var strategyNames = [...]string{"none", "lazy", "connected", "eager"}

func (s LoadStrategy) String() string {
	if !s.Valid() {
		return fmt.Sprintf("LoadStrategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Valid reports whether s is one of the four strategies.
func (s LoadStrategy) Valid() bool {
	return s >= None && s <= Eager
}

// Nested is the strategy applied one level deeper.
// Eager stays Eager, Connected becomes Lazy, everything else becomes None.
func (s LoadStrategy) Nested() LoadStrategy {
	switch s {
	case Eager:
		return Eager
	case Connected:
		return Lazy
	default:
		return None
	}
}

// ParseLoadStrategy parses a strategy name.
func ParseLoadStrategy(v string) (LoadStrategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(n, strings.TrimSpace(v)) {
			return LoadStrategy(i), nil
		}
	}
	return None, fmt.Errorf("unknown load strategy %q", v)
}

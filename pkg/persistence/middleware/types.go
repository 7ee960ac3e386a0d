// Package middleware wraps result stores with behavior applied on the way in
// and out: masking sensitive values and encrypting snapshots at rest.
package middleware

import "github.com/aretw0/ladon/pkg/ports"

// Middleware allows wrapping a ResultStore to add behavior.
type Middleware func(ports.ResultStore) ports.ResultStore

// Chain applies mws so that the first one sees the snapshot first on Save.
func Chain(store ports.ResultStore, mws ...Middleware) ports.ResultStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// Package middleware wraps a ports.StateStore with at-rest protections for the
// candidate data held in an in-progress dialogue.
package middleware

import "github.com/aretw0/rapidhire/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies mws to store so that the first middleware is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// Package dispatch defines the handler chain that actions travel through.
package dispatch

import (
	"context"

	"fetchjson-go/internal/action"
)

// HandlerFunc handles an action and returns the chain's result.
type HandlerFunc func(ctx context.Context, a *action.Action) (any, error)

// MiddlewareFunc wraps the next stage of a chain.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// Compose joins middlewares into one. The first middleware is the outermost
// stage: it sees every action before the others do.
func Compose(mws ...MiddlewareFunc) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

// Chain wraps final with mws, outermost first.
func Chain(final HandlerFunc, mws ...MiddlewareFunc) HandlerFunc {
	return Compose(mws...)(final)
}

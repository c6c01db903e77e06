// Package middleware provides composable middleware for report submission.
// Middleware wraps the submission call synchronously and can modify it
// (recover from panics, log, record metrics, add tracing).
package middleware

import (
	"context"

	"github.com/pushkit/reporting/report"
)

// Handler is the terminal function that performs the submission.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the report being submitted, and the next handler to
// call. Middleware MUST call next to continue the chain (unless
// short-circuiting on error).
type Middleware func(ctx context.Context, r *report.Report, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover) executes as:
//
//	logging → recover → submit
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, r *report.Report, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, r, prev)
			}
		}
		return h(ctx)
	}
}

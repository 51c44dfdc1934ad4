// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets services and workers share the same accessors.
//
// Usage in services (read values):
//
//	platformID := requestcontext.PlatformID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithPlatformID(ctx, platform)
package requestcontext

import (
	"context"
	"time"

	"nilclear/pkg/domain"
)

type (
	platformIDKey  struct{}
	actorKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// PlatformID retrieves the authenticated platform identity from the context.
// Returns the zero EntityID if not set.
func PlatformID(ctx context.Context) domain.EntityID {
	if p, ok := ctx.Value(platformIDKey{}).(domain.EntityID); ok {
		return p
	}
	return domain.EntityID{}
}

// WithPlatformID injects the authenticated platform identity.
func WithPlatformID(ctx context.Context, platform domain.EntityID) context.Context {
	return context.WithValue(ctx, platformIDKey{}, platform)
}

// Actor retrieves the acting principal (admin or compliance officer label)
// for audit attribution. Empty when the request is unattributed.
func Actor(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok {
		return a
	}
	return ""
}

// WithActor injects the acting principal.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests that
// don't care about determinism).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time. Useful for service unit tests and for
// workers that need consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

package testutil

import (
	"context"
	"net/http"
	"time"

	"cultiva/pkg/domain"
	"cultiva/pkg/requestcontext"
)

// WithActor injects an authenticated actor into the request context,
// simulating what the auth middleware does for a valid bearer token.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestTime pins the request-scoped clock, so assertions on
// timestamps are exact.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// Ctx builds a context carrying a fixed time and request id, the shape
// service tests usually need.
func Ctx(now time.Time, requestID string) context.Context {
	ctx := requestcontext.WithTime(context.Background(), now)
	if requestID != "" {
		ctx = requestcontext.WithRequestID(ctx, requestID)
	}
	return ctx
}

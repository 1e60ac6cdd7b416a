package testutil

import (
	"context"
	"net/http"
	"time"

	"certpay/pkg/requestcontext"
)

// WithRequestID stamps a request ID on the request context, simulating the
// request ID middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request-scoped clock, so tests can assert exact
// timestamps on verdicts and audit entries.
func WithRequestTime(req *http.Request, ts time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), ts))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}

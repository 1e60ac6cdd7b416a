// Package requestid assigns each request a correlation ID, honoring an
// inbound X-Request-Id header when a gateway already set one.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"certpay/pkg/requestcontext"
)

const headerName = "X-Request-Id"

// Middleware ensures every request carries a request ID in its context and
// echoes it back on the response for client-side correlation.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(headerName, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

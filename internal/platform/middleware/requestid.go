package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a UUID, honoring one supplied by the
// client, and echoes it in the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package middleware

import (
	"net/http"
	"time"

	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// RequestTime captures the clock once at the start of the request. Every
// timestamp derived during the request (registration, expiry, audit) reads
// this value, so one operation never observes two different nows.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

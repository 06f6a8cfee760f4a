// Package httputil centralizes JSON encoding and error-to-status mapping for
// HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes a JSON
// error body. Internal errors omit the description so infrastructure details
// never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		body["error_description"] = messageOf(err)
	}
	WriteJSON(w, statusOf(code), body)
}

func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// Decode parses the request body into T. On failure it writes a validation
// error response and reports false.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return v, false
	}
	return v, true
}

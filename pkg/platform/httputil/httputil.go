// Package httputil holds the JSON response helpers shared by every
// handler. Error envelopes are {"error": <code>, "error_description":
// <message>}; internal failures omit the description so store and broker
// details never leak to callers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "cultiva/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeUnauthorized:         http.StatusForbidden,
	dErrors.CodeAlreadyRegistered:    http.StatusConflict,
	dErrors.CodeInvalidDetails:       http.StatusBadRequest,
	dErrors.CodeNotFound:             http.StatusNotFound,
	dErrors.CodeInvalidCertification: http.StatusBadRequest,
	dErrors.CodeMaxCollaborators:     http.StatusConflict,
	dErrors.CodeInvalidPercentage:    http.StatusBadRequest,
	dErrors.CodePaused:               http.StatusServiceUnavailable,
}

// ToHTTPStatus maps a domain code to its response status. Unknown codes
// are internal failures.
func ToHTTPStatus(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		body["error_description"] = dErrors.MessageOf(err)
	}
	WriteJSON(w, ToHTTPStatus(code), body)
}

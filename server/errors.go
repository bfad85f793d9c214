package server

import (
	"encoding/json"
	"net/http"
)

// APIError is the standard error response for the API.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	codeInvalidBody       = "invalid_body"
	codeInvalidDNA        = "invalid_dna"
	codeInvalidOverride   = "invalid_override"
	codeTokenNotFound     = "token_not_found"
	codeUpstream          = "upstream_error"
	codeUnknownCrate      = "unknown_crate"
	codeMissingRandomness = "missing_randomness"
	codeInvalidEvent      = "invalid_event"
	codeConflict          = "reveal_conflict"
	codeInternal          = "internal_error"
)

func writeError(w http.ResponseWriter, code int, errMsg, codeStr string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(APIError{
		Error:   errMsg,
		Code:    codeStr,
		Message: errMsg,
	})
}

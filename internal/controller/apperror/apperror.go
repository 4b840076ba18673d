// Package apperror defines the stable error codes of the relay's JSON API.
package apperror

// Codes returned in the "error" field of error responses. Clients match
// on these strings, so they never change.
const (
	CodeInvalidSignature = "invalid_signature"
	CodeMissingFields    = "missing_fields"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeServerError      = "server_error"
	CodeNotFound         = "not_found"
)

// Package types holds the wire envelopes shared by every admin API response.
package types

// SuccessEnvelope wraps any successful payload under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the machine-readable error body. Details carries structured
// context (field errors, transition state) only for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

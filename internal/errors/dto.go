package errors

// ErrorResponse represents the standard error response structure.
// Error carries the display message, or the upstream response body
// verbatim when a remote call failed.
type ErrorResponse struct {
	Error   any            `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

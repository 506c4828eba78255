package dto

// Stable machine-readable error kinds.
const (
	KindUnauthorized    = "unauthorized"
	KindForbidden       = "forbidden"
	KindBadRequest      = "bad_request"
	KindValidationError = "validation_error"
	KindConflict        = "conflict"
	KindServerError     = "server_error"
)

// FieldError carries field-level validation detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform error envelope. RequestID echoes the fiber
// request id so failures can be correlated with logs.
type ErrorResponse struct {
	Error     bool         `json:"error"`
	Kind      string       `json:"kind"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
}

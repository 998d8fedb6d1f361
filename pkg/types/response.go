package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of every failed response. Retryable tells clients
// whether repeating the same request can succeed.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

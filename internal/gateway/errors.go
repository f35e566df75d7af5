package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode wraps failures to decode a successful response body.
var ErrDecode = errors.New("decode response")

// TransportError means the request never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Message carries the server-supplied
// error text when the body had one.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeHTTPError(status int, body []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if resp.Error != "" {
			return &ServerError{Status: status, Message: resp.Error}
		}
		if resp.Message != "" {
			return &ServerError{Status: status, Message: resp.Message}
		}
	}
	return &ServerError{Status: status}
}

// ErrorMessage returns the server-supplied message carried by err, or fallback.
func ErrorMessage(err error, fallback string) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}
	return fallback
}

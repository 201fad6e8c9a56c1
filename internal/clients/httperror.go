// Package clients holds the outbound HTTP clients and their shared error type.
package clients

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is returned when an upstream answers with a non-2xx status.
type HTTPError struct {
	Service    string
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "http error"
	}
	return fmt.Sprintf("%s: status=%d message=%s", e.Service, e.StatusCode, msg)
}

// ParseHTTPError extracts a message from the common {"error": "..."} and
// {"error": {"message": "..."}} body shapes.
func ParseHTTPError(service string, status int, raw []byte) *HTTPError {
	herr := &HTTPError{
		Service:    service,
		StatusCode: status,
		Body:       strings.TrimSpace(string(raw)),
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && strings.TrimSpace(flat.Error) != "" {
		herr.Message = strings.TrimSpace(flat.Error)
		return herr
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		herr.Message = strings.TrimSpace(nested.Error.Message)
	}
	return herr
}

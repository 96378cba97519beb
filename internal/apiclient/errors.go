package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the admin API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is an API 401.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// errorBody covers the error shapes the backend produces: a top-level
// message, with errors either a plain string or a list of field errors.
type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func newAPIError(status int, body []byte, fallback string) *APIError {
	msg := ""
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg = strings.TrimSpace(parsed.Message)
		if msg == "" {
			msg = firstError(parsed.Errors)
		}
	}
	if msg == "" {
		msg = fallback
	}
	return &APIError{StatusCode: status, Message: msg}
}

func firstError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var fields []struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &fields); err == nil && len(fields) > 0 {
		return strings.TrimSpace(fields[0].Message)
	}
	return ""
}

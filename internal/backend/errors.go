package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apperrors "github.com/target/interview-ui/internal/errors"
)

// APIError is a non-2xx backend response.
type APIError struct {
	Endpoint string
	Status   int
	// Detail is the backend's human-readable message, or the status text.
	Detail string
	// FieldErrors maps request fields to validation messages, when the backend reported them.
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s: status %d: %s", e.Endpoint, e.Status, e.Detail)
}

// StatusCode reports the HTTP status of the response.
func (e *APIError) StatusCode() int { return e.Status }

// Unwrap exposes the status as an AppError category so callers can use the
// apperrors.Is* helpers.
func (e *APIError) Unwrap() error {
	return apperrors.New(apperrors.CodeForStatus(e.Status), e.Detail)
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Detail returns the backend message carried by err, or fallback.
func Detail(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

type fieldIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeAPIError reads the backend's error body. The backend answers either
// {"detail": "message"}, {"detail": [{loc, msg}, ...]} or {"errors": [{loc, msg}, ...]}.
func decodeAPIError(endpoint string, status int, raw []byte) *APIError {
	apiErr := &APIError{Endpoint: endpoint, Status: status}

	var body struct {
		Detail json.RawMessage `json:"detail"`
		Errors []fieldIssue    `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		var msg string
		var issues []fieldIssue
		switch {
		case json.Unmarshal(body.Detail, &msg) == nil:
			apiErr.Detail = strings.TrimSpace(msg)
		case json.Unmarshal(body.Detail, &issues) == nil:
			apiErr.FieldErrors = fieldErrors(issues)
		}
		if len(body.Errors) > 0 {
			apiErr.FieldErrors = fieldErrors(body.Errors)
		}
	}

	if apiErr.Detail == "" && len(apiErr.FieldErrors) > 0 {
		apiErr.Detail = summarize(apiErr.FieldErrors)
	}
	if apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(status)
	}
	return apiErr
}

func fieldErrors(issues []fieldIssue) map[string]string {
	out := make(map[string]string, len(issues))
	for _, is := range issues {
		field := "request"
		if n := len(is.Loc); n > 0 {
			if s, ok := is.Loc[n-1].(string); ok && s != "" {
				field = s
			}
		}
		if _, seen := out[field]; !seen {
			out[field] = is.Msg
		}
	}
	return out
}

func summarize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}

package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/target/interview-ui/internal/backend"
	apperrors "github.com/target/interview-ui/internal/errors"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantFields map[string]string
	}{
		{name: "nil", err: nil, wantMsg: "", wantFields: map[string]string{}},
		{
			name:       "backend unauthorized",
			err:        fmt.Errorf("load dashboard: %w", &backend.APIError{Status: http.StatusUnauthorized, Detail: "Could not validate credentials"}),
			wantMsg:    errMsgRejected,
			wantFields: map[string]string{},
		},
		{
			name:       "backend outage",
			err:        &backend.APIError{Status: http.StatusBadGateway, Detail: "Bad Gateway"},
			wantMsg:    errMsgUnavailable,
			wantFields: map[string]string{},
		},
		{
			name:       "backend field errors",
			err:        &backend.APIError{Status: http.StatusUnprocessableEntity, Detail: "email: invalid", FieldErrors: map[string]string{"email": "invalid"}},
			wantMsg:    errMsgFixBelow,
			wantFields: map[string]string{"email": "invalid"},
		},
		{
			name:       "backend detail",
			err:        &backend.APIError{Status: http.StatusNotFound, Detail: "Analysis not found"},
			wantMsg:    "Analysis not found",
			wantFields: map[string]string{},
		},
		{
			name:       "field validation",
			err:        apperrors.ValidationField("resume", "a resume is required"),
			wantMsg:    errMsgFixBelow,
			wantFields: map[string]string{"resume": "a resume is required"},
		},
		{
			name:       "plain validation",
			err:        apperrors.Validation("job description is required"),
			wantMsg:    "job description is required",
			wantFields: map[string]string{},
		},
		{
			name:       "timeout",
			err:        apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeTimeout, "backend timed out"),
			wantMsg:    errMsgUnavailable,
			wantFields: map[string]string{},
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantMsg:    errMsgUnexpected,
			wantFields: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{}
			assert.Equal(t, tt.wantMsg, userMessage(tt.err, fields))
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestDetermineErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, DetermineErrorStatus(nil))
	assert.Equal(t, http.StatusNotFound, DetermineErrorStatus(&backend.APIError{Status: http.StatusNotFound}))
	assert.Equal(t, http.StatusBadRequest, DetermineErrorStatus(apperrors.Validation("bad")))
	assert.Equal(t, http.StatusBadGateway, DetermineErrorStatus(&backend.APIError{Status: http.StatusServiceUnavailable}))
	assert.Equal(t, http.StatusInternalServerError, DetermineErrorStatus(errors.New("boom")))
}

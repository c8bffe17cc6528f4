package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/target/interview-ui/internal/backend"
	apperrors "github.com/target/interview-ui/internal/errors"
)

// apiError is the JSON body of every non-HTML error response.
type apiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes v before touching w, so an encoding failure still yields
// a clean 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, apiError{Code: code, Message: message})
}

// WriteAppError writes err as JSON with a status derived from its AppError
// code. Backend details are passed through when the backend supplied one.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeAPIError(w, apperrors.StatusFor(code), string(code), backend.Detail(err, err.Error()))
}

package httpx

import (
	"errors"
	"net/http"

	"github.com/target/interview-ui/internal/backend"
	apperrors "github.com/target/interview-ui/internal/errors"
)

const (
	errMsgFixBelow    = "Please fix the errors below."
	errMsgUnexpected  = "An unexpected error occurred. Please try again."
	errMsgUnavailable = "The analysis service is unavailable right now. Please try again shortly."
	errMsgRejected    = "The server did not accept your session for this request. Signing in again may help."
)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W        http.ResponseWriter
	R        *http.Request
	PageMeta PageMeta
	// Err is the error that occurred; nil renders the page without a banner.
	Err error
	// Data preserves form input and page content around the error.
	Data map[string]any
	// StatusCode overrides the status derived from Err. htmx requests default
	// to 200 so the fragment is swapped in.
	StatusCode int
	ShowToast  bool
}

// DetermineErrorStatus maps err to the status code a full-page response uses.
func DetermineErrorStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if code := apperrors.GetCode(err); code != "" {
		return apperrors.StatusFor(code)
	}
	return http.StatusInternalServerError
}

// RenderError re-renders opts.PageMeta's page with an error banner and any
// field errors. A backend 401 is rendered like any other failed request; the
// session is left as it is.
func (h *UIHandlers) RenderError(opts ErrorOpts) {
	builder := NewTemplateData(opts.R, opts.PageMeta)

	fields := map[string]string{}
	general := userMessage(opts.Err, fields)

	builder.WithFieldErrors(fields)
	switch {
	case general != "":
		builder.WithError(general)
	case len(fields) > 0:
		builder.WithError(errMsgFixBelow)
	}
	for k, v := range opts.Data {
		builder.With(k, v)
	}

	if opts.ShowToast && general != "" {
		triggerToast(opts.W, general, "error")
	}

	status := opts.StatusCode
	if status == 0 {
		status = http.StatusBadRequest
		if opts.Err != nil {
			status = DetermineErrorStatus(opts.Err)
		}
		if IsHTMX(opts.R) {
			status = http.StatusOK
		}
	}
	if opts.Err != nil {
		h.logger().InfoContext(opts.R.Context(), "request failed",
			"path", opts.R.URL.Path,
			"status", status,
			"error", opts.Err,
		)
	}
	h.renderPage(opts.W, opts.R, status, builder.Build())
}

// userMessage returns the banner text for err and copies backend field
// errors into fields.
func userMessage(err error, fields map[string]string) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		for k, v := range apiErr.FieldErrors {
			if _, exists := fields[k]; !exists {
				fields[k] = v
			}
		}
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return errMsgRejected
		case apiErr.Status >= http.StatusInternalServerError:
			return errMsgUnavailable
		case len(apiErr.FieldErrors) > 0:
			return errMsgFixBelow
		}
		return apiErr.Detail
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return errMsgUnexpected
	}
	switch appErr.Code {
	case apperrors.ErrCodeValidation:
		for k, v := range appErr.Fields {
			if _, exists := fields[k]; !exists {
				fields[k] = v
			}
		}
		if len(fields) > 0 {
			return errMsgFixBelow
		}
		if appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.Message
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeForbidden, apperrors.ErrCodeConflict:
		return appErr.Message
	case apperrors.ErrCodeUpstream, apperrors.ErrCodeTimeout:
		return errMsgUnavailable
	}
	return errMsgUnexpected
}

// renderErrorPage renders the standalone error layout, used where no page
// context exists (unknown routes, access denied).
func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := basePageData(r, PageMeta{Title: http.StatusText(status), PageTitle: http.StatusText(status)})
	data["Status"] = status
	data["ErrorMessage"] = message
	sw := &statusWriter{ResponseWriter: w, status: status}
	if err := h.T.ErrorPage(sw, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "error page render")
	}
}

// uploadTooLarge answers a form post rejected for size before its handler ran.
func (h *UIHandlers) uploadTooLarge(w http.ResponseWriter, r *http.Request, limit int64) {
	msg := uploadLimitMessage(limit)
	if IsHTMX(r) {
		triggerToast(w, msg, "error")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}
	h.renderErrorPage(w, r, http.StatusRequestEntityTooLarge, msg)
}

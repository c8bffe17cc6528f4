// Package errors turns errors into low-cardinality labels for metric tags.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strconv"
	"strings"

	apperrors "github.com/target/interview-ui/internal/errors"
)

// Classify labels err, checking in order:
//
//   - a StatusCode() int anywhere in the chain: "http_<code>"
//   - context deadline or cancellation: "timeout" / "canceled"
//   - a net.Error: "network"
//   - an AppError: its code
//   - otherwise the innermost concrete type, e.g. "json_syntaxerror"
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code, ok := statusCode(err); ok {
		return "http_" + strconv.Itoa(code)
	}
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}
	var netErr net.Error
	if goerrors.As(err, &netErr) {
		return "network"
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	return typeLabel(innermost(err))
}

func statusCode(err error) (int, bool) {
	var sc interface{ StatusCode() int }
	if goerrors.As(err, &sc) && sc.StatusCode() > 0 {
		return sc.StatusCode(), true
	}
	return 0, false
}

func innermost(err error) error {
	for next := goerrors.Unwrap(err); next != nil; next = goerrors.Unwrap(err) {
		err = next
	}
	return err
}

func typeLabel(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
}

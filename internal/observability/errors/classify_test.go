package errors

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/interview-ui/internal/errors"
)

type statusErr struct{ code int }

func (e statusErr) Error() string   { return "status" }
func (e statusErr) StatusCode() int { return e.code }

func TestClassify(t *testing.T) {
	var syntaxErr *json.SyntaxError
	jsonErr := json.Unmarshal([]byte("{"), &struct{}{})
	assert.ErrorAs(t, jsonErr, &syntaxErr)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "http status", err: fmt.Errorf("call: %w", statusErr{code: 401}), want: "http_401"},
		{name: "zero status falls through", err: statusErr{}, want: "errors_statuserr"},
		{name: "deadline", err: fmt.Errorf("x: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "network", err: &net.OpError{Op: "dial", Net: "tcp", Err: goerrors.New("refused")}, want: "network"},
		{name: "app error", err: apperrors.Validation("bad"), want: "validation"},
		{name: "innermost type", err: fmt.Errorf("decode: %w", jsonErr), want: "json_syntaxerror"},
		{name: "plain", err: goerrors.New("boom"), want: "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

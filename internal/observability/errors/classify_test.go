package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"coded", apperrors.Credential("Invalid credentials"), "credential"},
		{"wrapped coded", fmt.Errorf("login: %w", apperrors.Transport("x", goerrors.New("y"))), "transport"},
		{"illegal transition", fmt.Errorf("login: %w", domainauth.ErrIllegalTransition), "illegal_transition"},
		{"canceled", fmt.Errorf("login: %w", context.Canceled), "canceled"},
		{"deadline", fmt.Errorf("login: %w", context.DeadlineExceeded), "timeout"},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, "timeout"},
		{"net other", fmt.Errorf("dial: %w", &net.OpError{Op: "dial", Err: goerrors.New("refused")}), "network"},
		{"plain", goerrors.New("plain"), "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

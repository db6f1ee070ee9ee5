// Package errors turns errors into low-cardinality labels for metrics and logs.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strings"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
)

// Classify returns the error_class label for err.
//
// Coded application errors use their code. Cancellation, deadlines, network
// failures and rejected transitions get fixed classes. Anything else falls back
// to the innermost concrete type name, e.g. "errors_errorstring".
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case apperrors.CodeOf(err) != "":
		return string(apperrors.CodeOf(err))
	case goerrors.Is(err, domainauth.ErrIllegalTransition):
		return "illegal_transition"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	return typeName(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}

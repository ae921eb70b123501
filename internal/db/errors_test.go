package db

import (
	"errors"
	"testing"
)

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &Error{Op: OpGet, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is did not reach the wrapped error")
	}
	if got := err.Error(); got != "GET: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}

package portal

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassifiers(t *testing.T) {
	verr := fmt.Errorf("reschedule: %w", &ValidationError{Message: "invalid date"})
	nerr := fmt.Errorf("list: %w", &NetworkError{Op: "GET /appointments/", Err: errors.New("timeout")})

	if !IsValidation(verr) || IsValidation(nerr) || IsValidation(ErrConflict) {
		t.Error("IsValidation misclassifies")
	}
	if !IsNetwork(nerr) || IsNetwork(verr) || IsNetwork(ErrNotFound) {
		t.Error("IsNetwork misclassifies")
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "GET /appointments/", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
	if err.Error() != "GET /appointments/: connection refused" {
		t.Errorf("message: got %q", err.Error())
	}
}

package portal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("appointment not found")
	ErrConflict     = errors.New("conflicting appointment state")
	ErrNoCredential = errors.New("no access credential")
)

// ValidationError carries the collaborator's rejection message verbatim so
// the UI can surface it to the user unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError covers transport failures and non-success responses that
// carry no usable message. The UI renders these as a generic connectivity
// problem.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: network error", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a collaborator-side rejection whose
// message should be shown to the user as-is.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a connectivity problem.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

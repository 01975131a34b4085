package errs

import (
	"errors"
	"fmt"
)

var ErrVersionIsInvalid = errors.New("version is invalid")

// VersionIsInvalidError is returned when an optimistic write targets a stale
// aggregate version.
type VersionIsInvalidError struct {
	ParamName string
	Expected  int64
	Cause     error
}

func NewVersionIsInvalidError(paramName string, expected int64) *VersionIsInvalidError {
	return &VersionIsInvalidError{
		ParamName: paramName,
		Expected:  expected,
	}
}

func NewVersionIsInvalidErrorWithCause(paramName string, expected int64, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{
		ParamName: paramName,
		Expected:  expected,
		Cause:     cause,
	}
}

func (e *VersionIsInvalidError) Error() string {
	msg := fmt.Sprintf("%s: %s expected version %d", ErrVersionIsInvalid, e.ParamName, e.Expected)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}

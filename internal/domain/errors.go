package domain

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when a referenced user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// BusinessRuleError reports a run lifecycle invariant violation. The reason
// is safe to surface to the caller.
type BusinessRuleError struct {
	Reason string
}

func (e *BusinessRuleError) Error() string {
	return e.Reason
}

func businessRuleErrorf(format string, args ...interface{}) *BusinessRuleError {
	return &BusinessRuleError{Reason: fmt.Sprintf(format, args...)}
}

// IsBusinessRuleError reports whether err is a BusinessRuleError.
func IsBusinessRuleError(err error) bool {
	var target *BusinessRuleError
	return errors.As(err, &target)
}

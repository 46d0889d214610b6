package query

import (
	"errors"
	"fmt"

	"imdb-catalog/internal/services"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInternalError    = "INTERNAL_ERROR"

	internalMessage = "internal error while resolving field"
)

// ValidationError reports an argument value the request got wrong.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// errorCode classifies a field failure. Anything not caused by the request
// itself is an internal error.
func errorCode(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) ||
		errors.Is(err, services.ErrInvalidSearchText) ||
		errors.Is(err, services.ErrInvalidQueryID) {
		return CodeValidationFailed
	}
	return CodeInternalError
}

// publicMessage hides storage details from clients.
func publicMessage(err error, code string) string {
	if code == CodeValidationFailed {
		return err.Error()
	}
	return internalMessage
}

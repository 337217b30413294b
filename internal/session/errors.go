package session

import (
	"errors"
	"fmt"
)

const (
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeLastTabProtected  = "LAST_TAB_PROTECTED"
	CodeIndexOutOfRange   = "INDEX_OUT_OF_RANGE"
	CodeTabNotFound       = "TAB_NOT_FOUND"
	CodeValidation        = "VALIDATION"
	CodeRenderUnavailable = "RENDER_UNAVAILABLE"
)

// CodedError is a typed error used for stable API mapping. Message is safe
// to show to the user as a notice.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a CodedError.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// HasCode reports whether err is, or wraps, a CodedError carrying code.
func HasCode(err error, code string) bool {
	var ce *CodedError
	return errors.As(err, &ce) && ce.Code == code
}

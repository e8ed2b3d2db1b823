package dates

import "fmt"

// Error types
type ErrorType string

const (
	ErrInvalidDate     ErrorType = "invalid_date"
	ErrUnparseableDate ErrorType = "unparseable_date"
)

// Error represents a date parsing or validation error. Input carries the
// original text so callers can report what failed to parse.
type Error struct {
	Type    ErrorType
	Input   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (input %q): %v", e.Type, e.Message, e.Input, e.Err)
	}
	return fmt.Sprintf("%s: %s (input %q)", e.Type, e.Message, e.Input)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newUnparseable builds an unparseable-date error for the given input text.
func newUnparseable(input, message string) *Error {
	return &Error{Type: ErrUnparseableDate, Input: input, Message: message}
}

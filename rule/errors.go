package rule

import "fmt"

// Error types
type ErrorType string

const (
	ErrRuleConstruction ErrorType = "rule_construction"
	ErrRuleParse        ErrorType = "rule_parse"
)

// Error represents a rule conversion error.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func constructionErr(message string, err error) *Error {
	return &Error{Type: ErrRuleConstruction, Message: message, Err: err}
}

func parseErr(message string, err error) *Error {
	return &Error{Type: ErrRuleParse, Message: message, Err: err}
}

package boarddto

import "errors"

// DomainError is a recoverable, caller-checkable failure of the board layer.
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
	// parent lets a narrower error also match its family via errors.Is.
	parent error
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "board error"
}

// Is matches on Code so wrapped copies carrying extra context still compare equal.
func (e DomainError) Is(target error) bool {
	var t DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func (e DomainError) Unwrap() error { return e.parent }

// WithMessage returns a copy of e carrying a more specific message.
func (e DomainError) WithMessage(msg string) DomainError {
	e.Message = msg
	return e
}

// Narrow returns a new error in e's family: errors.Is matches both.
func (e DomainError) Narrow(code, msg string) DomainError {
	return DomainError{Code: code, Message: msg, Retryable: e.Retryable, parent: e}
}

package usecase

import "errors"

// DomainError is an expected failure the caller can act on (bad credentials,
// missing session, unknown lead).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps an infrastructure failure. Message is safe to show;
// Err carries the detail for the logs.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeDatabase     = "DATABASE_ERROR"
)

var (
	ErrUnauthorized       = &DomainError{Code: CodeUnauthorized, Message: "Unauthorized"}
	ErrInvalidCredentials = &DomainError{Code: CodeUnauthorized, Message: "Invalid credentials"}
	ErrLeadNotFound       = &DomainError{Code: CodeNotFound, Message: "Lead not found"}
)

func storageError(message string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: message, Err: err}
}

package usecase

import "errors"

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeLeadNotFound  = "LEAD_NOT_FOUND"
	CodeUserNotFound  = "USER_NOT_FOUND"
	CodeInvalidStatus = "INVALID_STATUS"
	CodeDatabase      = "DATABASE_ERROR"
	CodeCorruptData   = "CORRUPT_DATA"
)

// DomainError is a client error: the request itself is wrong.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NotFound reports whether the error refers to a missing record.
func (e *DomainError) NotFound() bool {
	return e.Code == CodeLeadNotFound || e.Code == CodeUserNotFound
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps infrastructure failures (banco fora, fila fora...).
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

func databaseError(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}

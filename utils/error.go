package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorKind classifies failures so the HTTP layer can map them to a
// status code without string matching.
type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "VALIDATION"
	ErrorKindNotFound          ErrorKind = "NOT_FOUND"
	ErrorKindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	ErrorKindStateConflict     ErrorKind = "STATE_CONFLICT"
	ErrorKindPersistence       ErrorKind = "PERSISTENCE"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) error {
	return &AppError{Kind: ErrorKindValidation, Message: message}
}

func NewNotFoundError(message string) error {
	return &AppError{Kind: ErrorKindNotFound, Message: message, Err: ErrorRecordNotFound}
}

func NewInsufficientStockError(message string) error {
	return &AppError{Kind: ErrorKindInsufficientStock, Message: message}
}

func NewStateConflictError(message string) error {
	return &AppError{Kind: ErrorKindStateConflict, Message: message}
}

func NewPersistenceError(err error) error {
	return &AppError{Kind: ErrorKindPersistence, Message: "persistence failure", Err: err}
}

// KindOf returns the error's kind; unclassified errors count as
// persistence failures (the generic 500 path).
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, ErrorRecordNotFound) {
		return ErrorKindNotFound
	}
	return ErrorKindPersistence
}

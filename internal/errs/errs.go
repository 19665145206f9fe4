package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInterventionNotFound  = errors.New("intervention not found")
	ErrLocationNotFound      = errors.New("location not found")
	ErrEquipmentNotFound     = errors.New("equipment not found")
	ErrEquipmentTypeNotFound = errors.New("equipment type not found")
	ErrDepartmentNotFound    = errors.New("department not found")
	ErrPersonNotFound        = errors.New("person not found")
	ErrAccountNotFound       = errors.New("account not found")
)

// ValidationError marks a request whose payload is missing or malformed (HTTP 400).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransitionError marks a status change rejected by the workflow graph (HTTP 409).
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// IsTransition reports whether err is a TransitionError.
func IsTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

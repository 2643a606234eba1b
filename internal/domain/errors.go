package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = NotFoundError{Resource: "booking session"}
	ErrMissingPrerequisite = errors.New("both flight legs and search criteria are required")
	ErrInvalidCount        = ValidationError{Field: "passengers", Msg: "passenger count cannot be negative"}
	ErrNoFeeLine           = errors.New("flight has no fee lines")
	ErrStepLocked          = ConflictError{Resource: "booking session", Msg: "passenger counts are locked after flight selection"}
	ErrSubmitInProgress    = ConflictError{Resource: "reservation", Msg: "submission already in progress"}
	ErrAlreadyRedirected   = ConflictError{Resource: "reservation", Msg: "reservation already sent to payment"}
)

type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// FieldError is one failed field of a ValidationError, addressed by path
// (for example "adults[0].firstName").
type FieldError struct {
	Path string `json:"path"`
	Rule string `json:"rule"`
}

type ValidationError struct {
	Field  string
	Msg    string
	Fields []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Fields) > 0 {
		paths := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			paths = append(paths, f.Path)
		}
		return fmt.Sprintf("invalid fields: %s", strings.Join(paths, ", "))
	}
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

type ConflictError struct {
	Resource string
	Msg      string
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

// SubmissionError is returned when the backend rejects a reservation with a
// non-2xx status, or when the request could not be completed at all
// (StatusCode 0).
type SubmissionError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("reservation submission failed: %v", e.Err)
	}
	return fmt.Sprintf("reservation submission failed: %s", e.Status)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsSubmission(err error) bool {
	var target *SubmissionError
	return errors.As(err, &target)
}

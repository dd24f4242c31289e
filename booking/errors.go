package booking

import (
	"errors"
	"fmt"
)

// Code classifies a rejected booking request.
type Code string

const (
	CodeMissingDate        Code = "missing_date"
	CodeMissingTimeSlot    Code = "missing_time_slot"
	CodeUnknownField       Code = "unknown_field"
	CodeFieldUnavailable   Code = "field_unavailable"
	CodeSlotNotAvailable   Code = "slot_not_available"
	CodeInvalidDuration    Code = "invalid_duration"
	CodeDurationNotOffered Code = "duration_not_offered"
)

// ValidationError is a user-correctable rejection of a booking request.
// Compare against the Err* sentinels with errors.Is.
type ValidationError struct {
	Code     Code
	FieldID  string
	Date     string
	TimeSlot string
	Duration int
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeMissingDate, CodeMissingTimeSlot:
		return "select a date and a time"
	case CodeUnknownField:
		return fmt.Sprintf("field %q not found", e.FieldID)
	case CodeFieldUnavailable:
		return fmt.Sprintf("field %q is not accepting bookings", e.FieldID)
	case CodeSlotNotAvailable:
		return fmt.Sprintf("slot %s on %s is not available", e.TimeSlot, e.Date)
	case CodeInvalidDuration:
		return fmt.Sprintf("duration must be a positive number of hours, got %d", e.Duration)
	case CodeDurationNotOffered:
		return fmt.Sprintf("duration of %d hours is not offered", e.Duration)
	}
	return string(e.Code)
}

func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrMissingDate        = &ValidationError{Code: CodeMissingDate}
	ErrMissingTimeSlot    = &ValidationError{Code: CodeMissingTimeSlot}
	ErrUnknownField       = &ValidationError{Code: CodeUnknownField}
	ErrFieldUnavailable   = &ValidationError{Code: CodeFieldUnavailable}
	ErrSlotNotAvailable   = &ValidationError{Code: CodeSlotNotAvailable}
	ErrInvalidDuration    = &ValidationError{Code: CodeInvalidDuration}
	ErrDurationNotOffered = &ValidationError{Code: CodeDurationNotOffered}

	ErrInvalidTransition = errors.New("invalid status transition")
)

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

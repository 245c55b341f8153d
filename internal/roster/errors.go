package roster

import (
	"errors"
	"fmt"
)

// Reason classifies a ValidationError.
type Reason string

const (
	ReasonEmptyName          Reason = "empty_name"
	ReasonDuplicate          Reason = "duplicate"
	ReasonEmptyParticipants  Reason = "empty_participants"
	ReasonEmptyRoles         Reason = "empty_roles"
	ReasonEmptyConfiguration Reason = "empty_configuration"
)

// ValidationError is a recoverable, user-facing rejection. The operation that
// returned it made no state change.
type ValidationError struct {
	Reason Reason
	// Entity is "participant", "role" or "configuration" when known.
	Entity string
	// Name is the offending name for duplicates.
	Name string
}

// Sentinels for errors.Is. Matching compares Reason only.
var (
	ErrEmptyName          = &ValidationError{Reason: ReasonEmptyName}
	ErrDuplicate          = &ValidationError{Reason: ReasonDuplicate}
	ErrEmptyParticipants  = &ValidationError{Reason: ReasonEmptyParticipants}
	ErrEmptyRoles         = &ValidationError{Reason: ReasonEmptyRoles}
	ErrEmptyConfiguration = &ValidationError{Reason: ReasonEmptyConfiguration}
)

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmptyName:
		if e.Entity != "" {
			return e.Entity + " name is required"
		}
		return "name is required"
	case ReasonDuplicate:
		return fmt.Sprintf("%s %q already exists", e.Entity, e.Name)
	case ReasonEmptyParticipants:
		return "add team members first"
	case ReasonEmptyRoles:
		return "add roles first"
	case ReasonEmptyConfiguration:
		return "cannot save an empty team configuration"
	default:
		return "validation failed: " + string(e.Reason)
	}
}

// Is reports whether target is a ValidationError with the same Reason.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ReasonOf returns the Reason of a wrapped ValidationError, or "".
func ReasonOf(err error) Reason {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Reason
	}
	return ""
}

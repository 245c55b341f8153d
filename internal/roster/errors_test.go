package roster

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("save: %w", &ValidationError{Reason: ReasonEmptyRoles})

	assert.ErrorIs(t, err, ErrEmptyRoles)
	assert.False(t, errors.Is(err, ErrEmptyParticipants))
	assert.True(t, IsValidation(err))
	assert.Equal(t, ReasonEmptyRoles, ReasonOf(err))

	plain := errors.New("disk full")
	assert.False(t, IsValidation(plain))
	assert.Equal(t, Reason(""), ReasonOf(plain))
}

func TestValidationError_Messages(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Reason: ReasonEmptyName, Entity: "participant"}, "participant name is required"},
		{&ValidationError{Reason: ReasonEmptyName}, "name is required"},
		{&ValidationError{Reason: ReasonDuplicate, Entity: "participant", Name: "alice"}, `participant "alice" already exists`},
		{ErrEmptyParticipants, "add team members first"},
		{ErrEmptyRoles, "add roles first"},
		{ErrEmptyConfiguration, "cannot save an empty team configuration"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

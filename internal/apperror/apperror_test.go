package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_Kinds(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	tests := []struct {
		name string
		err  *AppError
		kind error
	}{
		{"validation", Validation("bloodGroup", "Select a blood group first."), ErrValidation},
		{"auth", Auth("Invalid credentials", nil), ErrAuth},
		{"transport", Transport("Network error during search.", cause), ErrTransport},
		{"capability", Capability("GPS not supported.", nil), ErrCapability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.kind, Kind(tt.err))
		})
	}
}

func TestAppError_UnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Transport("failed", cause)

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "failed: boom", err.Error())
}

func TestValidation_Field(t *testing.T) {
	err := Validation("password", "Password too short.")
	assert.Equal(t, "password", err.Field)
	assert.Equal(t, "Password too short.", err.Error())
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Auth("Invalid email or password", nil))
	assert.Equal(t, "Invalid email or password", UserMessage(wrapped, "Login failed."))
	assert.Equal(t, "Login failed.", UserMessage(errors.New("plain"), "Login failed."))
}

func TestKind_Unclassified(t *testing.T) {
	assert.Nil(t, Kind(errors.New("plain")))
}

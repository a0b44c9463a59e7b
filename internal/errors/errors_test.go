package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"recoverypilot/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"config", ConfigInvalid("bad port"), CodeConfigInvalid},
		{"wrapped app error", fmt.Errorf("startup: %w", DatabaseError("open", stderrors.New("refused"))), CodeDatabaseError},
		{"invalid k", core.NewInvalidKError(9, 3), CodeInvalidK},
		{"invalid input", core.NewInvalidInputError("pain_level"), CodeInvalidInput},
		{"persistence write", core.NewPersistenceWriteError("clustering:centroids", stderrors.New("disk full")), CodePersistence},
		{"plain", stderrors.New("boom"), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	cause := stderrors.New("connection reset")
	wrapped := Wrap(cause, "failed to migrate")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed to migrate: connection reset", wrapped.Error())

	rewrapped := Wrapf(ConfigInvalid("PORT must be numeric"), "loading %s", "config.yaml")
	assert.Equal(t, CodeConfigInvalid, GetCode(rewrapped))

	coded := WithCode(CodeDatabaseError, cause)
	assert.Equal(t, CodeDatabaseError, GetCode(coded))
	assert.ErrorIs(t, coded, cause)
}

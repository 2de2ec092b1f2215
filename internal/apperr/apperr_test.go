package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"day closed", ErrDayClosed, ReasonDayClosed},
		{"wrapped slot full", fmt.Errorf("book: %w", ErrSlotFull), ReasonSlotFull},
		{"mismatch", ErrSlotDateMismatch, ReasonSlotDateMismatch},
		{"invalid", Invalid("owner_name is required"), ReasonInvalidInput},
		{"terminal", ErrAlreadyTerminal, ReasonAlreadyTerminal},
		{"not found", fmt.Errorf("slot %w", ErrNotFound), ReasonNotFound},
		{"busy", ErrBusy, ReasonBusy},
		{"persistence", Persistence("load slot", errors.New("conn reset")), ReasonPersistence},
		{"unknown", errors.New("boom"), ReasonInternal},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := Persistence("count scheduled", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "count scheduled")
	assert.False(t, IsRejection(err))
}

func TestPersistencePassesRejectionsThrough(t *testing.T) {
	notFound := fmt.Errorf("appointment %w", ErrNotFound)

	assert.Same(t, notFound, Persistence("load", notFound))
	assert.Nil(t, Persistence("load", nil))

	once := Persistence("load", errors.New("x"))
	assert.Same(t, once, Persistence("reload", once))
}

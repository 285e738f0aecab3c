package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solmara/resort-reservation/internal/booking"
)

func TestClassifyReservationInsertErr(t *testing.T) {
	storageFault := errors.New("Error 1213 (40001): Deadlock found when trying to get lock")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			"confirmation number collision retried by the ledger",
			errors.New("Error 1062 (23000): Duplicate entry 'EVE-abc123-x9k2' for key 'reservations.uq_confirmation_number'"),
			booking.ErrDuplicateConfirmation,
		},
		{
			"double-submit on the active reservation key is a conflict",
			errors.New("Error 1062 (23000): Duplicate entry '7-1-1' for key 'reservations.uq_user_venue_active'"),
			booking.ErrConflict,
		},
		{
			"other errors pass through untouched",
			storageFault,
			storageFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyReservationInsertErr(tt.err), tt.want)
		})
	}
}

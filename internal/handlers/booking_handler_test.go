package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farellandr/eventbuddy/internal/ledger"
)

func TestLedgerErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.ErrInvalidSeatCount, http.StatusBadRequest},
		{fmt.Errorf("%w: event is not active", ledger.ErrEventNotBookable), http.StatusBadRequest},
		{ledger.ErrEventNotFound, http.StatusNotFound},
		{ledger.ErrUserNotFound, http.StatusNotFound},
		{ledger.ErrBookingNotFound, http.StatusNotFound},
		{ledger.ErrDuplicateBooking, http.StatusConflict},
		{&ledger.CapacityError{Requested: 3, Available: 1}, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, LedgerErrorStatus(tt.err))
		})
	}
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `100\%`, likeEscaper.Replace("100%"))
	assert.Equal(t, `a\_b`, likeEscaper.Replace("a_b"))
	assert.Equal(t, `c\\d`, likeEscaper.Replace(`c\d`))
}

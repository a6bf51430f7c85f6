package auction

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"

	"github.com/x-xyz/goauction/domain"
)

func TestErrorMatching(t *testing.T) {
	err := NewBidTooLow(decimal.RequireFromString("110"))

	assert.True(t, errors.Is(err, ErrStateConflict))
	assert.True(t, errors.Is(err, ErrBidTooLow))
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Bid amount must be at least 110.00", err.Error())
	assert.Equal(t, "110.00", err.Payload().(map[string]interface{})["minimumBid"])

	wrapped := xerrors.Errorf("submit: %w", err)
	assert.Equal(t, KindStateConflict, KindOf(wrapped))
	assert.Equal(t, "bid too low", ReasonOf(wrapped))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{NewNotFound("a"), KindNotFound},
		{NewSystemUnavailable(), KindSystemUnavailable},
		{NewValidationError(ErrInvalidAmount, "bad"), KindValidation},
		{NewVersionConflict("a", 1), KindStateConflict},
		{domain.ErrNotFound, KindNotFound},
		{errors.New("io"), KindStorageFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), tt.err.Error())
	}
}

func TestNewStorageFailure(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStorageFailure("insert bid", cause)
	assert.True(t, errors.Is(err, ErrStorageFailure))
	assert.True(t, errors.Is(err, cause))

	conflict := NewVersionConflict("a", 3)
	assert.Same(t, conflict, NewStorageFailure("update", conflict))
}

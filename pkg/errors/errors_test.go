package pkgerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorsMatchSentinels(t *testing.T) {
	err := fmt.Errorf("gate: %w", NewOrderNotFoundError(2))

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NotErrorIs(t, err, ErrAlreadySettled)
	assert.Equal(t, CodeOrderNotFound, GetErrorCode(err))
	assert.Contains(t, err.Error(), "2 matching orders")
}

func TestPersistenceErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPersistenceError(cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsPersistenceError(err))
	assert.Equal(t, "[-2301] datastore failure: connection refused", err.Error())
}

func TestGetDisposition(t *testing.T) {
	tests := []struct {
		err  error
		want Disposition
	}{
		{nil, DispositionAccepted},
		{NewMalformedPayloadError(errors.New("missing")), DispositionRefused},
		{ErrInvalidSignature, DispositionRefused},
		{ErrOrderNotFound, DispositionRejected},
		{ErrAmountMismatch, DispositionRejected},
		{ErrShopIDMismatch, DispositionRejected},
		{ErrAlreadySettled, DispositionRejected},
		{ErrUnhandledState, DispositionRejected},
		{ErrPersistenceFailure, DispositionRetry},
		{errors.New("plain"), DispositionRetry},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetDisposition(tt.err), "%v", tt.err)
	}
}

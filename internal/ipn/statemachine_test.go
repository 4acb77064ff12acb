package ipn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

func applyState(t *testing.T, ds *memDatastore, m *OrderStateMachine, state string) (*notification.SettlementEvent, error) {
	t.Helper()
	n, err := NewValidator().Parse(signed(payload(state, "T-1", "1001", "49.90")))
	require.NoError(t, err)

	var ev *notification.SettlementEvent
	err = ds.InTx(context.Background(), func(ctx context.Context, s Store) error {
		var applyErr error
		ev, applyErr = m.Apply(ctx, s, n)
		return applyErr
	})
	return ev, err
}

func TestStateMachineTransitions(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		state      string
		wantState  notification.TransactionState
		wantStatus int
		wantMsg    string
	}{
		{"paid", notification.TransactionState_Paid, testPaidStatus, testPaidMsg},
		{"expired", notification.TransactionState_Expired, testExpiredStatus, testExpiredMsg},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			ds := newMemDatastore()
			ds.addOrder("1001", "EUR", "T-1", "49.90")
			m := NewOrderStateMachine(testPaidStatus, testExpiredStatus, testPaidMsg, testExpiredMsg)
			m.now = func() time.Time { return fixed }

			ev, err := applyState(t, ds, m, tt.state)
			require.NoError(t, err)

			o := ds.order("1001")
			assert.Equal(t, tt.wantState, o.TransactionState)
			assert.Equal(t, tt.wantStatus, o.OrderStatus)

			h := ds.history()
			require.Len(t, h, 1)
			assert.Equal(t, "1001", h[0].OrderID)
			assert.Equal(t, tt.wantStatus, h[0].Status)
			assert.Equal(t, tt.wantMsg, h[0].Message)
			assert.Equal(t, fixed, h[0].CreatedAt)
			assert.NotEmpty(t, h[0].ID)

			require.Len(t, ds.events(), 1)
			assert.Equal(t, ev.EventID, ds.events()[0].EventID)
			assert.Equal(t, tt.wantState, ev.State)
			assert.Equal(t, "49.9", ev.Amount)
		})
	}
}

func TestStateMachinePendingIsUnhandled(t *testing.T) {
	ds := newMemDatastore()
	ds.addOrder("1001", "EUR", "T-1", "49.90")
	m := NewOrderStateMachine(testPaidStatus, testExpiredStatus, testPaidMsg, testExpiredMsg)

	ev, err := applyState(t, ds, m, "pending")
	assert.Nil(t, ev)
	assert.ErrorIs(t, err, pkgerrors.ErrUnhandledState)
	assert.Equal(t, notification.TransactionState_Pending, ds.order("1001").TransactionState)
	assert.Empty(t, ds.history())
}

func TestStateMachineLostRaceIsAlreadySettled(t *testing.T) {
	ds := newMemDatastore()
	ds.addOrder("1001", "EUR", "T-1", "49.90")
	o := ds.state.orders["1001"]
	o.TransactionState = notification.TransactionState_Expired
	ds.state.orders["1001"] = o
	m := NewOrderStateMachine(testPaidStatus, testExpiredStatus, testPaidMsg, testExpiredMsg)

	_, err := applyState(t, ds, m, "paid")
	assert.ErrorIs(t, err, pkgerrors.ErrAlreadySettled)
	assert.Equal(t, notification.TransactionState_Expired, ds.order("1001").TransactionState)
}

func TestStateMachineAuditFailureRollsBackStatus(t *testing.T) {
	ds := newMemDatastore()
	ds.addOrder("1001", "EUR", "T-1", "49.90")
	ds.failAudit = errors.New("disk full")
	m := NewOrderStateMachine(testPaidStatus, testExpiredStatus, testPaidMsg, testExpiredMsg)

	_, err := applyState(t, ds, m, "paid")
	assert.True(t, pkgerrors.IsPersistenceError(err))
	assert.Equal(t, notification.TransactionState_Pending, ds.order("1001").TransactionState)
	assert.Equal(t, 1, ds.order("1001").OrderStatus)
	assert.Empty(t, ds.history())
	assert.Empty(t, ds.events())
}

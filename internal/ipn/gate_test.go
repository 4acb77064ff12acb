package ipn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

func checkGate(t *testing.T, ds *memDatastore, p map[string][]string) (*notification.OrderTransactionRecord, error) {
	t.Helper()
	n, err := NewValidator().Parse(signed(p))
	require.NoError(t, err)

	var rec *notification.OrderTransactionRecord
	err = ds.InTx(context.Background(), func(ctx context.Context, s Store) error {
		var gateErr error
		rec, gateErr = NewTransactionGate(testShopID).Check(ctx, s, n)
		return gateErr
	})
	return rec, err
}

func TestGatePassesPendingOrder(t *testing.T) {
	ds := newMemDatastore()
	ds.addOrder("1001", "EUR", "T-1", "49.9000")

	rec, err := checkGate(t, ds, payload("paid", "T-1", "1001", "49.90"))
	require.NoError(t, err)
	assert.Equal(t, "1001", rec.OrderID)
	assert.Equal(t, notification.TransactionState_Pending, rec.TransactionState)
}

func TestGateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p map[string][]string)
		setup  func(ds *memDatastore)
		want   error
	}{
		{
			name:   "unknown order",
			mutate: func(p map[string][]string) { p[notification.Field_OrderID] = []string{"9999"} },
			want:   pkgerrors.ErrOrderNotFound,
		},
		{
			name:   "currency does not bind",
			mutate: func(p map[string][]string) { p[notification.Field_Currency] = []string{"USD"} },
			want:   pkgerrors.ErrOrderNotFound,
		},
		{
			name:   "transaction does not bind",
			mutate: func(p map[string][]string) { p[notification.Field_TransactionID] = []string{"T-9"} },
			want:   pkgerrors.ErrOrderNotFound,
		},
		{
			name:   "amount differs by a cent",
			mutate: func(p map[string][]string) { p[notification.Field_Amount] = []string{"49.89"} },
			want:   pkgerrors.ErrAmountMismatch,
		},
		{
			name: "order total missing",
			setup: func(ds *memDatastore) {
				delete(ds.state.totals, "1001")
			},
			want: pkgerrors.ErrAmountMismatch,
		},
		{
			name:   "foreign shop",
			mutate: func(p map[string][]string) { p[notification.Field_ShopID] = []string{"S2"} },
			want:   pkgerrors.ErrShopIDMismatch,
		},
		{
			name: "already paid",
			setup: func(ds *memDatastore) {
				o := ds.state.orders["1001"]
				o.TransactionState = notification.TransactionState_Paid
				ds.state.orders["1001"] = o
			},
			want: pkgerrors.ErrAlreadySettled,
		},
		{
			name: "already expired",
			setup: func(ds *memDatastore) {
				o := ds.state.orders["1001"]
				o.TransactionState = notification.TransactionState_Expired
				ds.state.orders["1001"] = o
			},
			want: pkgerrors.ErrAlreadySettled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := newMemDatastore()
			ds.addOrder("1001", "EUR", "T-1", "49.90")
			if tt.setup != nil {
				tt.setup(ds)
			}
			p := payload("paid", "T-1", "1001", "49.90")
			if tt.mutate != nil {
				tt.mutate(p)
			}

			rec, err := checkGate(t, ds, p)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGateRejectsAmbiguousMatch(t *testing.T) {
	ds := newMemDatastore()
	ds.addOrder("1001", "EUR", "T-1", "49.90")
	// a second row under another key that still matches the query
	ds.state.orders["1001-dup"] = notification.OrderTransactionRecord{
		OrderID:          "1001",
		Currency:         "EUR",
		TransactionID:    "T-1",
		TransactionState: notification.TransactionState_Pending,
	}

	_, err := checkGate(t, ds, payload("paid", "T-1", "1001", "49.90"))
	assert.ErrorIs(t, err, pkgerrors.ErrOrderNotFound)
}

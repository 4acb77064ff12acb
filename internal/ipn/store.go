package ipn

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
)

var ErrNoOrderTotal = errors.New("order total not found")

// Store is the datastore view the gate and the state machine work against.
// All calls made through one Store share a single transaction.
type Store interface {
	// FindOrders returns orders matching all three keys and locks them for
	// the rest of the transaction.
	FindOrders(ctx context.Context, orderID, currency, transactionID string) ([]notification.OrderTransactionRecord, error)
	GetOrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error)
	GetTransactionState(ctx context.Context, transactionID string) (notification.TransactionState, error)
	// UpdateIfPending reports false when the record was no longer pending.
	UpdateIfPending(ctx context.Context, orderID string, status int, state notification.TransactionState) (bool, error)
	AppendAuditEntry(ctx context.Context, e *notification.AuditEntry) error
	EnqueueSettlement(ctx context.Context, ev *notification.SettlementEvent) error
}

// Datastore runs fn in one transaction. If fn returns an error nothing it did
// is persisted.
type Datastore interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

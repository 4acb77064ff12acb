package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	"github.com/k-code-yt/cashpay-ipn/internal/ipn"
	reposhared "github.com/k-code-yt/cashpay-ipn/internal/repos/repo-shared"
	"github.com/k-code-yt/cashpay-ipn/pkg/db/postgres"
)

const maxTxAttempts = 3

// Datastore is the Postgres implementation of ipn.Datastore.
type Datastore struct {
	db     *sqlx.DB
	orders *OrderRepo
	audit  *AuditRepo
	events *EventRepo
}

func NewDatastore(db *sqlx.DB, events *EventRepo) *Datastore {
	return &Datastore{
		db:     db,
		orders: NewOrderRepo(),
		audit:  NewAuditRepo(),
		events: events,
	}
}

// InTx runs fn in a read-committed transaction, retrying on serialization
// failures and deadlocks.
func (d *Datastore) InTx(ctx context.Context, fn func(ctx context.Context, s ipn.Store) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		_, err = reposhared.TxClosure(ctx, d.db, func(ctx context.Context, tx *sqlx.Tx) (struct{}, error) {
			return struct{}{}, fn(ctx, &txStore{tx: tx, ds: d})
		})
		if err == nil || !postgres.IsRetryableTxErr(err) || ctx.Err() != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"ATTEMPT": attempt,
		}).WithError(err).Warn("TX:RETRY")
	}
	return err
}

type txStore struct {
	tx *sqlx.Tx
	ds *Datastore
}

func (s *txStore) FindOrders(ctx context.Context, orderID, currency, transactionID string) ([]notification.OrderTransactionRecord, error) {
	return s.ds.orders.FindForUpdate(ctx, s.tx, orderID, currency, transactionID)
}

func (s *txStore) GetOrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	return s.ds.orders.GetTotal(ctx, s.tx, orderID)
}

func (s *txStore) GetTransactionState(ctx context.Context, transactionID string) (notification.TransactionState, error) {
	return s.ds.orders.GetTransactionState(ctx, s.tx, transactionID)
}

func (s *txStore) UpdateIfPending(ctx context.Context, orderID string, status int, state notification.TransactionState) (bool, error) {
	return s.ds.orders.UpdateIfPending(ctx, s.tx, orderID, status, state)
}

func (s *txStore) AppendAuditEntry(ctx context.Context, e *notification.AuditEntry) error {
	return s.ds.audit.Insert(ctx, s.tx, e)
}

func (s *txStore) EnqueueSettlement(ctx context.Context, ev *notification.SettlementEvent) error {
	e, err := NewSettlementEvent(ev)
	if err != nil {
		return err
	}
	if _, err := s.ds.events.Insert(ctx, s.tx, e); err != nil {
		if postgres.IsDuplicateKeyErr(err) {
			return errors.New("settlement event already enqueued: " + e.EventId)
		}
		return err
	}
	return nil
}

package ipn

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
)

type memState struct {
	orders  map[string]notification.OrderTransactionRecord
	totals  map[string]decimal.Decimal
	history []notification.AuditEntry
	events  []notification.SettlementEvent
}

func (s memState) clone() memState {
	c := memState{
		orders:  make(map[string]notification.OrderTransactionRecord, len(s.orders)),
		totals:  make(map[string]decimal.Decimal, len(s.totals)),
		history: append([]notification.AuditEntry(nil), s.history...),
		events:  append([]notification.SettlementEvent(nil), s.events...),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.totals {
		c.totals[k] = v
	}
	return c
}

// memDatastore serialises transactions behind one mutex, the way row locks
// serialise notifications for the same order in Postgres.
type memDatastore struct {
	mu    sync.Mutex
	state memState

	failAudit  error
	staleState bool
	commits    int
}

func newMemDatastore() *memDatastore {
	return &memDatastore{
		state: memState{
			orders: map[string]notification.OrderTransactionRecord{},
			totals: map[string]decimal.Decimal{},
		},
	}
}

func (d *memDatastore) addOrder(orderID, currency, txID, total string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.orders[orderID] = notification.OrderTransactionRecord{
		OrderID:          orderID,
		Currency:         currency,
		TransactionID:    txID,
		TransactionState: notification.TransactionState_Pending,
		OrderStatus:      1,
	}
	d.state.totals[orderID] = decimal.RequireFromString(total)
}

func (d *memDatastore) order(orderID string) notification.OrderTransactionRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.orders[orderID]
}

func (d *memDatastore) history() []notification.AuditEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.AuditEntry(nil), d.state.history...)
}

func (d *memDatastore) events() []notification.SettlementEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notification.SettlementEvent(nil), d.state.events...)
}

func (d *memDatastore) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	work := d.state.clone()
	if err := fn(ctx, &memTx{ds: d, st: &work}); err != nil {
		return err
	}
	d.state = work
	d.commits++
	return nil
}

type memTx struct {
	ds *memDatastore
	st *memState
}

func (t *memTx) FindOrders(_ context.Context, orderID, currency, transactionID string) ([]notification.OrderTransactionRecord, error) {
	out := []notification.OrderTransactionRecord{}
	for _, o := range t.st.orders {
		if o.OrderID == orderID && o.Currency == currency && o.TransactionID == transactionID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (t *memTx) GetOrderTotal(_ context.Context, orderID string) (decimal.Decimal, error) {
	v, ok := t.st.totals[orderID]
	if !ok {
		return decimal.Zero, ErrNoOrderTotal
	}
	return v, nil
}

func (t *memTx) GetTransactionState(_ context.Context, transactionID string) (notification.TransactionState, error) {
	if t.ds.staleState {
		return notification.TransactionState_Pending, nil
	}
	for _, o := range t.st.orders {
		if o.TransactionID == transactionID {
			return o.TransactionState, nil
		}
	}
	return "", errors.New("no rows")
}

func (t *memTx) UpdateIfPending(_ context.Context, orderID string, status int, state notification.TransactionState) (bool, error) {
	o, ok := t.st.orders[orderID]
	if !ok || o.TransactionState != notification.TransactionState_Pending {
		return false, nil
	}
	o.OrderStatus = status
	o.TransactionState = state
	t.st.orders[orderID] = o
	return true, nil
}

func (t *memTx) AppendAuditEntry(_ context.Context, e *notification.AuditEntry) error {
	if t.ds.failAudit != nil {
		return t.ds.failAudit
	}
	t.st.history = append(t.st.history, *e)
	return nil
}

func (t *memTx) EnqueueSettlement(_ context.Context, ev *notification.SettlementEvent) error {
	t.st.events = append(t.st.events, *ev)
	return nil
}

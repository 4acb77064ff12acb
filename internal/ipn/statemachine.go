package ipn

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

type transition struct {
	status  int
	message string
}

type OrderStateMachine struct {
	transitions map[notification.TransactionState]transition
	now         func() time.Time
}

func NewOrderStateMachine(paidStatus, expiredStatus int, paidMessage, expiredMessage string) *OrderStateMachine {
	return &OrderStateMachine{
		transitions: map[notification.TransactionState]transition{
			notification.TransactionState_Paid:    {status: paidStatus, message: paidMessage},
			notification.TransactionState_Expired: {status: expiredStatus, message: expiredMessage},
		},
		now: time.Now,
	}
}

// Apply moves a pending order to the notification's state, writes the audit
// entry and enqueues the settlement event. A notification whose state has no
// transition yields ErrUnhandledState and writes nothing.
func (m *OrderStateMachine) Apply(ctx context.Context, s Store, n *notification.Notification) (*notification.SettlementEvent, error) {
	t, ok := m.transitions[n.State]
	if !ok {
		return nil, pkgerrors.ErrUnhandledState
	}

	updated, err := s.UpdateIfPending(ctx, n.OrderID, t.status, n.State)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Errorf("update order: %w", err))
	}
	if !updated {
		return nil, pkgerrors.ErrAlreadySettled
	}

	now := m.now()
	entry := notification.NewAuditEntry(uuid.NewString(), n.OrderID, t.status, t.message, now)
	if err := s.AppendAuditEntry(ctx, entry); err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Errorf("append audit entry: %w", err))
	}

	ev := &notification.SettlementEvent{
		EventID:       uuid.NewString(),
		OrderID:       n.OrderID,
		TransactionID: n.TransactionID,
		State:         n.State,
		OrderStatus:   t.status,
		Amount:        n.Amount.String(),
		Currency:      n.Currency,
		OccurredAt:    now,
	}
	if err := s.EnqueueSettlement(ctx, ev); err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Errorf("enqueue settlement: %w", err))
	}
	return ev, nil
}

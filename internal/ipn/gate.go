package ipn

import (
	"context"
	"errors"
	"fmt"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

// TransactionGate decides whether an authenticated notification may change
// the order it names. It must run in the same transaction as the state
// machine so the pending check and the update form one compare-and-set.
type TransactionGate struct {
	shopID string
}

func NewTransactionGate(shopID string) *TransactionGate {
	return &TransactionGate{shopID: shopID}
}

func (g *TransactionGate) Check(ctx context.Context, s Store, n *notification.Notification) (*notification.OrderTransactionRecord, error) {
	orders, err := s.FindOrders(ctx, n.OrderID, n.Currency, n.TransactionID)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Errorf("find order: %w", err))
	}
	if len(orders) != 1 {
		return nil, pkgerrors.NewOrderNotFoundError(len(orders))
	}
	order := orders[0]

	total, err := s.GetOrderTotal(ctx, n.OrderID)
	if errors.Is(err, ErrNoOrderTotal) {
		return nil, pkgerrors.ErrAmountMismatch
	}
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Errorf("order total: %w", err))
	}
	if !total.Equal(n.Amount) {
		return nil, pkgerrors.ErrAmountMismatch
	}

	if n.ShopID != g.shopID {
		return nil, pkgerrors.ErrShopIDMismatch
	}

	state, err := s.GetTransactionState(ctx, n.TransactionID)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Errorf("transaction state: %w", err))
	}
	if state != notification.TransactionState_Pending {
		return nil, pkgerrors.ErrAlreadySettled
	}

	return &order, nil
}

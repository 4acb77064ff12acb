package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	"github.com/k-code-yt/cashpay-ipn/internal/ipn"
)

const (
	DBTableName_Orders      = "orders"
	DBTableName_OrdersTotal = "orders_total"
	orderTotalClass         = "ot_total"
)

type OrderRepo struct {
	tableName      string
	totalTableName string
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		tableName:      DBTableName_Orders,
		totalTableName: DBTableName_OrdersTotal,
	}
}

// FindForUpdate locks every matching row until tx ends.
func (r *OrderRepo) FindForUpdate(ctx context.Context, tx *sqlx.Tx, orderID, currency, transactionID string) ([]notification.OrderTransactionRecord, error) {
	orders := []notification.OrderTransactionRecord{}
	q := fmt.Sprintf(`SELECT orders_id, currency, transaction_id, transaction_state, orders_status
		FROM %s
		WHERE orders_id = $1 AND currency = $2 AND transaction_id = $3
		FOR UPDATE`, r.tableName)
	if err := tx.SelectContext(ctx, &orders, q, orderID, currency, transactionID); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepo) GetTotal(ctx context.Context, tx *sqlx.Tx, orderID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := fmt.Sprintf("SELECT value FROM %s WHERE orders_id = $1 AND class = $2", r.totalTableName)
	err := tx.GetContext(ctx, &total, q, orderID, orderTotalClass)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ipn.ErrNoOrderTotal
	}
	return total, err
}

func (r *OrderRepo) GetTransactionState(ctx context.Context, tx *sqlx.Tx, transactionID string) (notification.TransactionState, error) {
	var state notification.TransactionState
	q := fmt.Sprintf("SELECT transaction_state FROM %s WHERE transaction_id = $1", r.tableName)
	if err := tx.GetContext(ctx, &state, q, transactionID); err != nil {
		return "", err
	}
	return state, nil
}

// UpdateIfPending only touches rows still pending, so a lost race shows up as
// zero affected rows.
func (r *OrderRepo) UpdateIfPending(ctx context.Context, tx *sqlx.Tx, orderID string, status int, state notification.TransactionState) (bool, error) {
	q := fmt.Sprintf(`UPDATE %s SET orders_status = $1, transaction_state = $2, last_modified = now()
		WHERE orders_id = $3 AND transaction_state = $4`, r.tableName)
	res, err := tx.ExecContext(ctx, q, status, state, orderID, notification.TransactionState_Pending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
)

const DBTableName_OrdersStatusHistory = "orders_status_history"

type AuditRepo struct {
	tableName string
}

func NewAuditRepo() *AuditRepo {
	return &AuditRepo{
		tableName: DBTableName_OrdersStatusHistory,
	}
}

// Insert appends one history row. The customer is always flagged as notified.
func (r *AuditRepo) Insert(ctx context.Context, tx *sqlx.Tx, e *notification.AuditEntry) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, orders_id, orders_status_id, date_added, customer_notified, comments)
		VALUES(:id, :orders_id, :orders_status_id, :date_added, 1, :comments)`, r.tableName)
	_, err := tx.NamedExecContext(ctx, q, e)
	return err
}

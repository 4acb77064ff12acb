package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
)

const DBTableName_OutboxEvents = "outbox_events"

type EventStatus string

const (
	EventStatus_Pending  EventStatus = "pending"
	EventStatus_Produced EventStatus = "produced"
)

const EventType_OrderSettled = "order_settled"

type Event struct {
	EventId   string      `db:"event_id"`
	EventType string      `db:"event_type"`
	Timestamp time.Time   `db:"timestamp"`
	Status    EventStatus `db:"status"`
	ParentId  string      `db:"parent_id"`
	Payload   string      `db:"payload"`
}

func NewSettlementEvent(ev *notification.SettlementEvent) (*Event, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventId:   ev.EventID,
		EventType: EventType_OrderSettled,
		Timestamp: ev.OccurredAt,
		Status:    EventStatus_Pending,
		ParentId:  ev.OrderID,
		Payload:   string(payload),
	}, nil
}

func (e *Event) Settlement() (*notification.SettlementEvent, error) {
	ev := &notification.SettlementEvent{}
	if err := json.Unmarshal([]byte(e.Payload), ev); err != nil {
		return nil, err
	}
	return ev, nil
}

type EventRepo struct {
	repo      *sqlx.DB
	tableName string
}

func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{
		repo:      db,
		tableName: DBTableName_OutboxEvents,
	}
}

func (r *EventRepo) GetRepo() *sqlx.DB {
	return r.repo
}

func (r *EventRepo) Insert(ctx context.Context, tx *sqlx.Tx, e *Event) (string, error) {
	_, err := tx.NamedExecContext(ctx, fmt.Sprintf("INSERT INTO %s (event_id, event_type, timestamp, status, parent_id, payload) VALUES(:event_id, :event_type, :timestamp, :status, :parent_id, :payload)", r.tableName), e)
	if err != nil {
		return "", err
	}
	return e.EventId, nil
}

// ClaimPending locks up to limit pending events, skipping rows another relay
// already holds.
func (r *EventRepo) ClaimPending(ctx context.Context, tx *sqlx.Tx, limit int) ([]*Event, error) {
	events := []*Event{}
	q := fmt.Sprintf(`SELECT event_id, event_type, timestamp, status, parent_id, payload
		FROM %s
		WHERE status = $1
		ORDER BY timestamp
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, r.tableName)
	if err := tx.SelectContext(ctx, &events, q, EventStatus_Pending, limit); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepo) UpdateStatusByIds(ctx context.Context, tx *sqlx.Tx, eventIds []string, status EventStatus) (int, error) {
	if len(eventIds) == 0 {
		return 0, nil
	}
	if status == "" {
		status = EventStatus_Produced
	}
	query := fmt.Sprintf("UPDATE %s SET status = ? WHERE event_id IN (?)", r.tableName)
	query, args, err := sqlx.In(query, status, eventIds)
	if err != nil {
		return 0, err
	}

	query = tx.Rebind(query)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}

func (r *EventRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	q := fmt.Sprintf("SELECT count(*) FROM %s WHERE status = $1", r.tableName)
	if err := r.repo.GetContext(ctx, &n, q, EventStatus_Pending); err != nil {
		return 0, err
	}
	return n, nil
}

package pkgkafka

import (
	"fmt"
	"time"

	goavro "github.com/linkedin/goavro/v2"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
)

const SettlementEventSchema = `{
  "type": "record",
  "name": "SettlementEvent",
  "namespace": "ipn.barzahlen",
  "fields": [
    {"name": "event_id", "type": "string"},
    {"name": "order_id", "type": "string"},
    {"name": "transaction_id", "type": "string"},
    {"name": "state", "type": {"type": "enum", "name": "TransactionState", "symbols": ["pending", "paid", "expired"]}},
    {"name": "order_status", "type": "int"},
    {"name": "amount", "type": "string"},
    {"name": "currency", "type": "string"},
    {"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
  ]
}`

type SettlementEncoder struct {
	codec *goavro.Codec
}

func NewSettlementEncoder() (*SettlementEncoder, error) {
	codec, err := goavro.NewCodec(SettlementEventSchema)
	if err != nil {
		return nil, err
	}
	return &SettlementEncoder{codec: codec}, nil
}

func (e *SettlementEncoder) Encode(ev *notification.SettlementEvent) ([]byte, error) {
	native := map[string]any{
		"event_id":       ev.EventID,
		"order_id":       ev.OrderID,
		"transaction_id": ev.TransactionID,
		"state":          string(ev.State),
		"order_status":   int32(ev.OrderStatus),
		"amount":         ev.Amount,
		"currency":       ev.Currency,
		"occurred_at":    ev.OccurredAt,
	}
	b, err := e.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("encode settlement %s: %w", ev.EventID, err)
	}
	return b, nil
}

func (e *SettlementEncoder) Decode(b []byte) (*notification.SettlementEvent, error) {
	native, _, err := e.codec.NativeFromBinary(b)
	if err != nil {
		return nil, err
	}
	rec, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected avro native type %T", native)
	}
	ev := &notification.SettlementEvent{}
	ev.EventID, _ = rec["event_id"].(string)
	ev.OrderID, _ = rec["order_id"].(string)
	ev.TransactionID, _ = rec["transaction_id"].(string)
	if s, ok := rec["state"].(string); ok {
		ev.State = notification.TransactionState(s)
	}
	if st, ok := rec["order_status"].(int32); ok {
		ev.OrderStatus = int(st)
	}
	ev.Amount, _ = rec["amount"].(string)
	ev.Currency, _ = rec["currency"].(string)
	if t, ok := rec["occurred_at"].(time.Time); ok {
		ev.OccurredAt = t
	}
	return ev, nil
}

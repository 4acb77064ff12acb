package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionState string

const (
	TransactionState_Pending TransactionState = "pending"
	TransactionState_Paid    TransactionState = "paid"
	TransactionState_Expired TransactionState = "expired"
)

func (s TransactionState) IsSettled() bool {
	return s == TransactionState_Paid || s == TransactionState_Expired
}

// Protocol field names of the provider callback.
const (
	Field_State         = "state"
	Field_TransactionID = "transaction_id"
	Field_ShopID        = "shop_id"
	Field_CustomerEmail = "customer_email"
	Field_Amount        = "amount"
	Field_Currency      = "currency"
	Field_OrderID       = "order_id"
	Field_CustomVar0    = "custom_var_0"
	Field_CustomVar1    = "custom_var_1"
	Field_CustomVar2    = "custom_var_2"
	Field_Hash          = "hash"
)

// Fields lists every protocol field in signing order, followed by the hash.
var Fields = []string{
	Field_State,
	Field_TransactionID,
	Field_ShopID,
	Field_CustomerEmail,
	Field_Amount,
	Field_Currency,
	Field_OrderID,
	Field_CustomVar0,
	Field_CustomVar1,
	Field_CustomVar2,
	Field_Hash,
}

type Notification struct {
	State         TransactionState `validate:"required,oneof=pending paid expired"`
	TransactionID string           `validate:"required"`
	ShopID        string           `validate:"required"`
	CustomerEmail string           `validate:"required"`
	// AmountRaw is the amount exactly as received; it is what gets signed.
	AmountRaw  string `validate:"required"`
	Amount     decimal.Decimal
	Currency   string `validate:"required,len=3,alpha"`
	OrderID    string `validate:"required"`
	CustomVar0 string
	CustomVar1 string
	CustomVar2 string
	AuthCode   string `validate:"required"`
}

type OrderTransactionRecord struct {
	OrderID          string           `db:"orders_id"`
	Currency         string           `db:"currency"`
	TransactionID    string           `db:"transaction_id"`
	TransactionState TransactionState `db:"transaction_state"`
	OrderStatus      int              `db:"orders_status"`
}

type AuditEntry struct {
	ID        string    `db:"id"`
	OrderID   string    `db:"orders_id"`
	Status    int       `db:"orders_status_id"`
	Message   string    `db:"comments"`
	CreatedAt time.Time `db:"date_added"`
}

func NewAuditEntry(id, orderID string, status int, message string, at time.Time) *AuditEntry {
	return &AuditEntry{
		ID:        id,
		OrderID:   orderID,
		Status:    status,
		Message:   message,
		CreatedAt: at,
	}
}

// SettlementEvent is published once per applied transition.
type SettlementEvent struct {
	EventID       string           `json:"event_id"`
	OrderID       string           `json:"order_id"`
	TransactionID string           `json:"transaction_id"`
	State         TransactionState `json:"state"`
	OrderStatus   int              `json:"order_status"`
	Amount        string           `json:"amount"`
	Currency      string           `json:"currency"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

package ipn

import (
	"net/url"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
)

const (
	testKey           = "8c2d6f1e0b7a4c3d9e5f"
	testShopID        = "S1"
	testPaidStatus    = 2
	testExpiredStatus = 99
	testPaidMsg       = "payment received"
	testExpiredMsg    = "payment slip expired"
)

func payload(state, txID, orderID, amount string) url.Values {
	return url.Values{
		notification.Field_State:         {state},
		notification.Field_TransactionID: {txID},
		notification.Field_ShopID:        {testShopID},
		notification.Field_CustomerEmail: {"a@b.com"},
		notification.Field_Amount:        {amount},
		notification.Field_Currency:      {"EUR"},
		notification.Field_OrderID:       {orderID},
		notification.Field_CustomVar0:    {""},
		notification.Field_CustomVar1:    {""},
		notification.Field_CustomVar2:    {""},
	}
}

// signed recomputes the hash over p with the test key.
func signed(p url.Values) url.Values {
	n := &notification.Notification{
		State:         notification.TransactionState(p.Get(notification.Field_State)),
		TransactionID: p.Get(notification.Field_TransactionID),
		ShopID:        p.Get(notification.Field_ShopID),
		CustomerEmail: p.Get(notification.Field_CustomerEmail),
		AmountRaw:     p.Get(notification.Field_Amount),
		Currency:      p.Get(notification.Field_Currency),
		OrderID:       p.Get(notification.Field_OrderID),
		CustomVar0:    p.Get(notification.Field_CustomVar0),
		CustomVar1:    p.Get(notification.Field_CustomVar1),
		CustomVar2:    p.Get(notification.Field_CustomVar2),
	}
	out := url.Values{}
	for k, v := range p {
		out[k] = append([]string(nil), v...)
	}
	out.Set(notification.Field_Hash, NewSigner(testKey).Sign(n))
	return out
}

func newTestProcessor(ds Datastore) *Processor {
	return NewProcessor(
		NewValidator(),
		NewSigner(testKey),
		NewTransactionGate(testShopID),
		NewOrderStateMachine(testPaidStatus, testExpiredStatus, testPaidMsg, testExpiredMsg),
		ds,
	)
}

package ipn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Parse checks that every protocol field is present exactly once and turns
// the payload into a Notification. It does not look at the datastore.
func (nv *Validator) Parse(payload url.Values) (*notification.Notification, error) {
	var missing, repeated []string
	for _, f := range notification.Fields {
		vals, ok := payload[f]
		switch {
		case !ok || len(vals) == 0:
			missing = append(missing, f)
		case len(vals) > 1:
			repeated = append(repeated, f)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.NewMalformedPayloadError(fmt.Errorf("missing fields: %s", strings.Join(missing, ",")))
	}
	if len(repeated) > 0 {
		return nil, pkgerrors.NewMalformedPayloadError(fmt.Errorf("repeated fields: %s", strings.Join(repeated, ",")))
	}

	n := &notification.Notification{
		State:         notification.TransactionState(payload.Get(notification.Field_State)),
		TransactionID: payload.Get(notification.Field_TransactionID),
		ShopID:        payload.Get(notification.Field_ShopID),
		CustomerEmail: payload.Get(notification.Field_CustomerEmail),
		AmountRaw:     payload.Get(notification.Field_Amount),
		Currency:      payload.Get(notification.Field_Currency),
		OrderID:       payload.Get(notification.Field_OrderID),
		CustomVar0:    payload.Get(notification.Field_CustomVar0),
		CustomVar1:    payload.Get(notification.Field_CustomVar1),
		CustomVar2:    payload.Get(notification.Field_CustomVar2),
		AuthCode:      payload.Get(notification.Field_Hash),
	}

	if err := nv.v.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return nil, pkgerrors.NewMalformedPayloadError(fmt.Errorf("invalid fields: %s", strings.Join(fields, ",")))
		}
		return nil, pkgerrors.NewMalformedPayloadError(err)
	}

	amount, err := decimal.NewFromString(n.AmountRaw)
	if err != nil {
		return nil, pkgerrors.NewMalformedPayloadError(fmt.Errorf("amount: %w", err))
	}
	if amount.IsNegative() {
		return nil, pkgerrors.NewMalformedPayloadError(errors.New("amount: negative"))
	}
	n.Amount = amount

	return n, nil
}

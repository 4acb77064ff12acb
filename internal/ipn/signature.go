package ipn

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	pkgerrors "github.com/k-code-yt/cashpay-ipn/pkg/errors"
)

const signingSeparator = ";"

type Signer struct {
	notificationKey string
}

func NewSigner(notificationKey string) *Signer {
	return &Signer{notificationKey: notificationKey}
}

// SigningString joins the signed fields in protocol order, ending with the key.
func (s *Signer) SigningString(n *notification.Notification) string {
	return strings.Join([]string{
		string(n.State),
		n.TransactionID,
		n.ShopID,
		n.CustomerEmail,
		n.AmountRaw,
		n.Currency,
		n.OrderID,
		n.CustomVar0,
		n.CustomVar1,
		n.CustomVar2,
		s.notificationKey,
	}, signingSeparator)
}

// Sign returns the lowercase hex SHA-512 of the signing string.
func (s *Signer) Sign(n *notification.Notification) string {
	sum := sha512.Sum512([]byte(s.SigningString(n)))
	return hex.EncodeToString(sum[:])
}

func (s *Signer) Verify(n *notification.Notification) error {
	expected := s.Sign(n)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(n.AuthCode)) != 1 {
		return pkgerrors.NewInvalidSignatureError(errors.New("hash not valid"))
	}
	return nil
}

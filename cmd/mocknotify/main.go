package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
	"github.com/k-code-yt/cashpay-ipn/internal/ipn"
)

func main() {
	_ = godotenv.Load()

	target := flag.String("url", "http://localhost:7580/ipn/barzahlen", "Callback URL")
	key := flag.String("key", os.Getenv("IPN_NOTIFICATION_KEY"), "Notification key")
	shopID := flag.String("shop", os.Getenv("IPN_SHOP_ID"), "Shop id")
	state := flag.String("state", "paid", "Transaction state (paid, expired, pending)")
	orderID := flag.String("order", "", "Order id")
	txID := flag.String("tx", "", "Transaction id")
	amount := flag.String("amount", "", "Amount exactly as the provider would send it")
	currency := flag.String("currency", "EUR", "Currency")
	email := flag.String("email", "customer@example.com", "Customer email")
	var customVars [3]string
	for i := range customVars {
		flag.StringVar(&customVars[i], fmt.Sprintf("custom-var-%d", i), "", "Custom variable echoed by the provider")
	}
	dryRun := flag.Bool("dry-run", false, "Only print the signed URL, don't send")
	flag.Parse()

	if *key == "" || *shopID == "" || *orderID == "" || *txID == "" || *amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -key, -shop, -order, -tx and -amount are required")
		os.Exit(1)
	}

	n := &notification.Notification{
		State:         notification.TransactionState(*state),
		TransactionID: *txID,
		ShopID:        *shopID,
		CustomerEmail: *email,
		AmountRaw:     *amount,
		Currency:      *currency,
		OrderID:       *orderID,
		CustomVar0:    customVars[0],
		CustomVar1:    customVars[1],
		CustomVar2:    customVars[2],
	}
	n.AuthCode = ipn.NewSigner(*key).Sign(n)

	q := url.Values{}
	q.Set(notification.Field_State, string(n.State))
	q.Set(notification.Field_TransactionID, n.TransactionID)
	q.Set(notification.Field_ShopID, n.ShopID)
	q.Set(notification.Field_CustomerEmail, n.CustomerEmail)
	q.Set(notification.Field_Amount, n.AmountRaw)
	q.Set(notification.Field_Currency, n.Currency)
	q.Set(notification.Field_OrderID, n.OrderID)
	q.Set(notification.Field_CustomVar0, n.CustomVar0)
	q.Set(notification.Field_CustomVar1, n.CustomVar1)
	q.Set(notification.Field_CustomVar2, n.CustomVar2)
	q.Set(notification.Field_Hash, n.AuthCode)

	u, err := url.Parse(*target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing url: %v\n", err)
		os.Exit(1)
	}
	u.RawQuery = q.Encode()
	fmt.Printf("GET %s\n", u.String())

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(u.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("Response: %s\n", string(body))
	}
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

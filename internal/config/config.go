package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPaidMessage    = "Barzahlen: payment received. Transaction is complete."
	DefaultExpiredMessage = "Barzahlen: payment slip expired. Order was cancelled."
)

type IPNConfig struct {
	NotificationKey string
	ShopID          string
	PaidStatus      int
	ExpiredStatus   int
	PaidMessage     string
	ExpiredMessage  string
}

type ServerConfig struct {
	HTTPAddr     string
	CallbackPath string
	LogFile      string
	LogMaxValue  int
}

type OutboxConfig struct {
	Enabled          bool
	Interval         time.Duration
	BootstrapServers string
	Topic            string
	BatchSize        int
}

type Config struct {
	IPN    IPNConfig
	Server ServerConfig
	Outbox OutboxConfig
}

func Load() (*Config, error) {
	var errs []error

	paid, err := getEnvInt("IPN_PAID_STATUS", 2)
	errs = append(errs, err)
	expired, err := getEnvInt("IPN_EXPIRED_STATUS", 1)
	errs = append(errs, err)
	maxValue, err := getEnvInt("IPN_LOG_MAX_VALUE", 128)
	errs = append(errs, err)
	batch, err := getEnvInt("OUTBOX_BATCH_SIZE", 100)
	errs = append(errs, err)
	interval, err := time.ParseDuration(getEnv("OUTBOX_INTERVAL", "2s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("OUTBOX_INTERVAL: %w", err))
	}

	cfg := &Config{
		IPN: IPNConfig{
			NotificationKey: getEnv("IPN_NOTIFICATION_KEY", ""),
			ShopID:          getEnv("IPN_SHOP_ID", ""),
			PaidStatus:      paid,
			ExpiredStatus:   expired,
			PaidMessage:     getEnv("IPN_PAID_MESSAGE", DefaultPaidMessage),
			ExpiredMessage:  getEnv("IPN_EXPIRED_MESSAGE", DefaultExpiredMessage),
		},
		Server: ServerConfig{
			HTTPAddr:     getEnv("IPN_HTTP_ADDR", ":7580"),
			CallbackPath: getEnv("IPN_CALLBACK_PATH", "/ipn/barzahlen"),
			LogFile:      getEnv("IPN_LOG_FILE", "ipn.log"),
			LogMaxValue:  maxValue,
		},
		Outbox: OutboxConfig{
			Enabled:          getEnv("OUTBOX_ENABLED", "false") == "true",
			Interval:         interval,
			BootstrapServers: getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost"),
			Topic:            getEnv("KAFKA_SETTLEMENT_TOPIC", "ipn_settlements"),
			BatchSize:        batch,
		},
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.IPN.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c IPNConfig) Validate() error {
	var errs []error
	if c.NotificationKey == "" {
		errs = append(errs, errors.New("IPN_NOTIFICATION_KEY is required"))
	}
	if c.ShopID == "" {
		errs = append(errs, errors.New("IPN_SHOP_ID is required"))
	}
	if c.PaidStatus == c.ExpiredStatus {
		errs = append(errs, errors.New("paid and expired status codes must differ"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

package postgres

import (
	"errors"
	"fmt"
	"os"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewPostgresConfig(fallbackDBName string) *PostgresConfig {
	var postgres PostgresConfig

	postgres.Host = getEnv("POSTGRES_HOSTS", "localhost")
	postgres.Port = getEnv("POSTGRES_PORT", "5452")
	postgres.User = getEnv("POSTGRES_USER", "user")
	postgres.Password = getEnv("POSTGRES_PASSWORD", "pass")
	postgres.DBName = getEnv("POSTGRES_DATABASE", fallbackDBName)
	postgres.SSLMode = getEnv("POSTGRES_SSL_MODE", "disable")

	return &postgres
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Validate rejects configs that would let the driver fall back to its own
// defaults for the database name or host.
func (c *PostgresConfig) Validate() error {
	var errs []error
	if c.DBName == "" {
		errs = append(errs, errors.New("POSTGRES_DATABASE must not be empty"))
	}
	if c.Host == "" {
		errs = append(errs, errors.New("POSTGRES_HOSTS must not be empty"))
	}
	return errors.Join(errs...)
}

func GetConnString(options *PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", options.Host, options.Port, options.User, options.Password, options.DBName, options.SSLMode)
}

// GetMigrateURL is the URL form golang-migrate expects.
func GetMigrateURL(options *PostgresConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		options.User, options.Password, options.Host, options.Port, options.DBName, options.SSLMode,
	)
}

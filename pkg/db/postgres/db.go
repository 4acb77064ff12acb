package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func NewDBConn(opts *PostgresConfig) (*sqlx.DB, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	db, err := sqlx.Connect("postgres", GetConnString(opts))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

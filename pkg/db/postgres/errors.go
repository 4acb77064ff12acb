package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	ErrDuplicateCode        = "23505"
	ErrSerializationCode    = "40001"
	ErrDeadlockDetectedCode = "40P01"
)

func IsDuplicateKeyErr(err error) bool {
	return hasCode(err, ErrDuplicateCode)
}

// IsRetryableTxErr reports conflicts the caller may resolve by running the
// transaction again.
func IsRetryableTxErr(err error) bool {
	return hasCode(err, ErrSerializationCode) || hasCode(err, ErrDeadlockDetectedCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pq.Error
	if err != nil {
		if errors.As(err, &pgErr) {
			return pgErr.Code == pq.ErrorCode(code)
		}
	}
	return false
}

package services

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// isIntegrityViolation reports a Postgres class 23 error (unique, foreign key, check).
func isIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}

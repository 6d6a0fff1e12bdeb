package repository

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// uniqueConstraint returns the violated constraint name for a unique-violation
// error, or "" for any other error.
func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint
// violation, the second enforcement layer behind the exists-by-email check.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

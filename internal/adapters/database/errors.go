package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally on a specific constraint
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// isUUID reports whether id can be compared against a UUID column. Postgres
// rejects anything else with 22P02, which callers treat as not found.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// uuidsOnly drops ids that cannot match a UUID column
func uuidsOnly(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}

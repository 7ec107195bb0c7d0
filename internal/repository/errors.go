package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE codes the services react to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeExclusionViolation   = "23P01"
)

func pqCode(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsRetryable reports serialization failures and deadlocks.
func IsRetryable(err error) bool {
	code, _ := pqCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}

// IsUniqueViolation reports a unique constraint violation.
func IsUniqueViolation(err error) bool {
	code, _ := pqCode(err)
	return code == codeUniqueViolation
}

// IsForeignKeyViolation reports a foreign key violation, typically a delete of a referenced row.
func IsForeignKeyViolation(err error) bool {
	code, _ := pqCode(err)
	return code == codeForeignKeyViolation
}

// IsCheckViolation reports a CHECK constraint rejecting the row.
func IsCheckViolation(err error) bool {
	code, _ := pqCode(err)
	return code == codeCheckViolation
}

// IsRoomOverlapViolation reports the room exclusion constraint on schedule_slot firing.
func IsRoomOverlapViolation(err error) bool {
	code, constraint := pqCode(err)
	return code == codeExclusionViolation && (constraint == "" || constraint == "schedule_slot_room_no_overlap")
}

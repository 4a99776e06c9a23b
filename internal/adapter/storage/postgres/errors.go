package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Unique constraint names, see migrations/000001_init.up.sql.
const (
	constraintApplicationEmail  = "uq_vendor_applications_email"
	constraintApplicationNumber = "uq_vendor_applications_number"
	constraintVendorEmail       = "uq_vendors_email"
	constraintAdminEmail        = "uq_admins_email"
)

// violatedConstraint returns the constraint name if err is a unique violation.
func violatedConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

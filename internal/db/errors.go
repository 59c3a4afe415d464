package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is wrapped by every DuplicateError.
	ErrDuplicate = errors.New("duplicate value")
)

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field      string
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s (constraint %s)", e.Field, e.Constraint)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// uniqueViolation is the SQLSTATE PostgreSQL reports for unique index conflicts.
const uniqueViolation = "23505"

// constraintFields maps unique constraints in schema.go onto payload fields.
var constraintFields = map[string]string{
	"programs_name_key":                  "name",
	"organizations_key_key":              "key",
	"course_codes_org_key_key":           "key",
	"program_organizations_pair_key":     "organization",
	"program_course_codes_pair_key":      "course_code",
	"course_code_run_modes_position_key": "run_modes",
}

// classify converts driver errors into the package's error values.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = "non_field_errors"
		}
		return &DuplicateError{Field: field, Constraint: pgErr.ConstraintName}
	}
	return err
}

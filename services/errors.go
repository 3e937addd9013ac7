package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrConflict             = errors.New("conflicting record")
	ErrStorageNotConfigured = errors.New("document storage is not configured")
)

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError is a database failure that is not the caller's fault.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// classifyDBError maps driver errors onto the service error kinds.
func classifyDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Detail)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: record is still referenced (%s)", ErrConflict, pgErr.ConstraintName)
		}
		return &PersistenceError{Op: op, Err: err}
	}

	// sqlite and mysql report constraint failures only in the message
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate") {
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	if strings.Contains(msg, "foreign key constraint") {
		return fmt.Errorf("%w: record is still referenced", ErrConflict)
	}

	return &PersistenceError{Op: op, Err: err}
}

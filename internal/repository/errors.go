package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type notFoundError struct{}

func (notFoundError) Error() string     { return "record not found" }
func (notFoundError) ErrorType() string { return "not_found" }

// ErrNotFound is returned when a lookup or setter matches no row.
var ErrNotFound error = notFoundError{}

// StorageError wraps any other failure from the database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string     { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error     { return e.Err }
func (e *StorageError) ErrorType() string { return "storage_error" }

// wrapErr turns pgx.ErrNoRows into ErrNotFound and everything else into a StorageError.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}

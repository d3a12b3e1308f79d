package store

import "errors"

var (
	// ErrNotFound is returned when an operation targets a batch id that does not exist.
	ErrNotFound = errors.New("batch not found")
	// ErrDuplicateBatch is returned when inserting a batch whose id already exists.
	ErrDuplicateBatch = errors.New("batch already exists")
	// ErrStorePoisoned is returned by every operation once an earlier one panicked while holding the store lock.
	ErrStorePoisoned = errors.New("batch store lock poisoned")
)

package store

import "errors"

var (
	// ErrNotFound is returned when a user or post does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint (username, email)
	// would be violated.
	ErrDuplicate = errors.New("already exists")
)

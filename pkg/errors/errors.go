package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyKey     = errors.New("empty key")
	ErrEntityExists = errors.New("entity already exists")
	ErrInvalidPID   = errors.New("pid must be a positive integer")
)

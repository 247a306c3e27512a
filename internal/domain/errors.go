package domain

import "errors"

// ErrInvalidID and related errors describe validation failures.
var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidColumnID = errors.New("invalid column id")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrOrderMismatch   = errors.New("order ids do not match items")
)

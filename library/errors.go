package library

import "errors"

// Failure classes reported by catalog operations. Errors returned by this
// package wrap one of these; the message carries the human-readable reason.
var (
	ErrNotFound            = errors.New("not found")
	ErrNotBorrowed         = errors.New("not borrowed by member")
	ErrPolicyLimitExceeded = errors.New("borrow limit reached")
	ErrUnavailable         = errors.New("book unavailable")
	ErrNotRemovable        = errors.New("book not removable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateID         = errors.New("duplicate id")
)

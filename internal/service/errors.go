// Package service holds the application logic: accounts and sessions, the
// file registry, the upload pipeline and profiles. Handlers depend on the
// services; the services depend on the store interfaces of package
// repository, blob storage and the activity publisher.
package service

import "errors"

// Kind classifies service errors for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindConflict
)

// Error is a classified sentinel. Compare with errors.Is against the
// package variables below; use KindOf for the category.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Validation errors.
var (
	ErrValidation       = &Error{KindValidation, "invalid input"}
	ErrUnsupportedType  = &Error{KindValidation, "unsupported file type"}
	ErrMalformedContent = &Error{KindValidation, "malformed file content"}
	ErrPasswordMismatch = &Error{KindValidation, "new passwords do not match"}
	ErrPasswordTooLong  = &Error{KindValidation, "password too long"}
	ErrFileTooLarge     = &Error{KindValidation, "file too large"}
	ErrNothingToUpdate  = &Error{KindValidation, "nothing to update"}
)

// Authentication errors.
var (
	ErrInvalidCredentials = &Error{KindAuth, "invalid username or password"}
	ErrUnauthorized       = &Error{KindAuth, "unauthorized"}
	ErrIncorrectPassword  = &Error{KindAuth, "incorrect current password"}
)

var (
	ErrForbidden     = &Error{KindAuthorization, "forbidden"}
	ErrNotFound      = &Error{KindNotFound, "not found"}
	ErrUsernameTaken = &Error{KindConflict, "username already exists"}
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything unclassified (store or blob failures).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Package repository defines the store contracts used by the service layer
// and their MySQL implementations, plus a Redis-backed session store. The
// sentinel errors below are shared by every store implementation (MySQL,
// mongostore, memstore) so services can translate them uniformly.
package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches no record. Services
// translate it into their own not-found or invalid-credentials errors.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key, such as
// registering a username that already exists.
var ErrDuplicate = errors.New("duplicate key")

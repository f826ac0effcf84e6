// Package repository contains data access logic separated from HTTP
// handlers.  This file defines the sentinel error values shared by the
// user and contact repositories.  Higher layers compare against these
// with errors.Is to choose an HTTP status: a not-found maps to 404 and a
// uniqueness violation to 409.  Note that an ownership mismatch and a
// genuinely absent row both surface as not-found so callers can never
// confirm the existence of someone else's record.
package repository

import "errors"

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrContactNotFound is returned when a contact does not exist or does
// not belong to the requesting owner.  The two cases are deliberately
// indistinguishable.
var ErrContactNotFound = errors.New("contact not found")

// ErrEmailExists is returned when an insert violates an email unique key
// on either the users or the contacts table.
var ErrEmailExists = errors.New("email already exists")

// Package repository implements the persistent store on database/sql.
// This file defines sentinel errors shared across repositories so
// handlers can map failure scenarios to stable HTTP responses.
package repository

import (
	"errors"
	"strings"
)

var (
	// ErrEmailExists is returned when registering with an email that
	// is already present. Maps to HTTP 409.
	ErrEmailExists = errors.New("email already exists")

	// ErrPhoneExists is returned when a phone number collides with
	// another account. Maps to HTTP 409.
	ErrPhoneExists = errors.New("phone already exists")

	// ErrInvalidCredentials is returned when an identifier/password
	// pair does not authenticate. Maps to HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword is returned when the current password supplied
	// to a password change does not verify. Maps to HTTP 400.
	ErrWrongPassword = errors.New("wrong current password")

	// ErrScanNotFound is returned when a scan does not exist or is
	// not visible to the requesting account. Maps to HTTP 404.
	ErrScanNotFound = errors.New("scan not found")

	// ErrNotOwner is returned when feedback targets a scan owned by
	// a different account. Maps to HTTP 403.
	ErrNotOwner = errors.New("not the scan owner")

	// ErrNotFound is the generic missing-row sentinel for lookups
	// that do not warrant their own error.
	ErrNotFound = errors.New("not found")
)

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062) on the named unique index.
func isDuplicate(err error, index string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") && strings.Contains(msg, index)
}

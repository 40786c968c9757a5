// Package repository defines error values shared across the
// repositories. These sentinels let higher layers such as the
// service distinguish failure scenarios without inspecting driver
// errors: duplicate-key violations on registration, missing rows
// on lookups, and a lost rotation race on refresh tokens.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert collides with the
// unique index on users.username.
var ErrUsernameExists = errors.New("username already exists")

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ErrTokenConflict is returned by Rotate when the compare-and-swap
// guard finds the token already revoked or expired. Under concurrent
// rotation of the same token exactly one caller commits; the others
// observe this error.
var ErrTokenConflict = errors.New("token already rotated or inactive")

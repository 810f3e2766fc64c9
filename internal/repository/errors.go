// Package repository defines error types that are reused across multiple
// stores. These sentinel values allow higher layers such as services and
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. For example, ErrConflict signals a
// uniqueness violation (duplicate email, duplicate genre name, duplicate
// (item, genre) or (user, item) pair) while ErrNotFound indicates that a
// requested row does not exist.
package repository

import "errors"

// ErrNotFound is returned when a row looked up by id (or by a scoped key
// such as (userID, itemID)) does not exist. Handlers translate this into
// an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update would violate a
// uniqueness invariant. Handlers translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is a specialised conflict for the users.email unique
// key. Handlers map it to 409 like ErrConflict but with a clearer message.
var ErrEmailExists = errors.New("email already exists")

// ErrActiveSession is returned by SessionStore.Create when the user
// already has a live session. The sign-in path treats this as "reuse the
// existing session" so two concurrent logins cannot mint two sessions.
var ErrActiveSession = errors.New("active session exists")

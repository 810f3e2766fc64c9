// Package service implements the business rules between the HTTP
// handlers and the stores. Services validate preconditions, delegate
// persistence, and raise taxonomy errors that handlers map 1:1 to HTTP
// status codes.
package service

import "errors"

// ErrUnauthenticated covers missing, invalid or expired credentials and
// tokens. Handlers map it to 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrInvalidArgument covers validation failures such as a short
// password or an unknown enum value. Handlers map it to 400.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrForbidden is raised when a requester is neither the owner of a
// resource nor an admin. Handlers map it to 403.
var ErrForbidden = errors.New("forbidden")

// ErrInternal marks unexpected failures that must surface as 500, such
// as a session update failing during sign-out.
var ErrInternal = errors.New("internal error")

package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier (uuid string).
//  Name         – display name of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.  Empty for social-only
//                 accounts that have no stored credential.
//  Roles        – role names granted to the user (e.g. USER, ADMIN).
//                 Persisted as a comma-separated column.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Roles        []string  // users.roles (comma separated)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role names stored in User.Roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// HasRole reports whether the user carries the given role name.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Sanitized returns a copy of the user with the password hash
// removed.  Every value that leaves the service layer (JWT claims,
// HTTP responses) goes through this first.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

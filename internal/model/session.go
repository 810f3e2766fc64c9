package model

import "time"

// Session binds an issued access token to a user and a server-side
// expiry deadline, independent of the token's own embedded claims.
// A session is valid iff IsExpired is false AND now < ExpiredAt.
// There is no transition back to a valid state; a new login creates
// a fresh session.
//
// Fields:
//  ID          – primary key identifier (uuid string).
//  UserID      – owner of the session.
//  AccessToken – the signed bearer token exactly as issued.
//  IsExpired   – true once the session has been revoked or lazily
//                expired by the guard.
//  ExpiredAt   – absolute deadline after which the session is invalid.
//  CreatedAt   – timestamp of creation.
type Session struct {
	ID          string    // sessions.id
	UserID      string    // sessions.user_id
	AccessToken string    // sessions.access_token
	IsExpired   bool      // sessions.is_expired
	ExpiredAt   time.Time // sessions.expired_at
	CreatedAt   time.Time // sessions.created_at
}

// Valid reports whether the session can still authenticate requests
// at the given instant.
func (s Session) Valid(now time.Time) bool {
	return !s.IsExpired && now.Before(s.ExpiredAt)
}

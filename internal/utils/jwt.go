package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/media-backlog/internal/model"
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenPayload is the decoded content of a verified access token: the
// subject id plus the sanitized user snapshot embedded at sign-in.
type TokenPayload struct {
	Sub   string
	Name  string
	Email string
	Roles []string
}

// ErrInvalidToken is returned by VerifyAccessToken for any token that
// fails signature verification, is malformed, or is expired per its own
// exp claim.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the sanitized user, and a TTL in minutes.  The claims
// carry the subject (sub), a user snapshot without the password hash,
// expiration (exp) and issued at (iat).  The token's own expiry is
// intentionally shorter than the server-side session window; the session
// row is what keeps a login alive.
func NewAccessToken(secret string, u model.User, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": u.ID,
		"user": map[string]any{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
			"roles": u.Roles,
		},
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken parses and validates a bearer token and extracts its
// payload.  Any failure (bad signature, wrong algorithm, malformed
// claims, expired exp) collapses to ErrInvalidToken so callers treat all
// verification failures the same way.
func VerifyAccessToken(secret, raw string) (TokenPayload, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenPayload{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenPayload{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return TokenPayload{}, ErrInvalidToken
	}
	p := TokenPayload{Sub: sub}
	if snap, ok := claims["user"].(map[string]any); ok {
		p.Name, _ = snap["name"].(string)
		p.Email, _ = snap["email"].(string)
		if roles, ok := snap["roles"].([]any); ok {
			for _, r := range roles {
				if s, ok := r.(string); ok {
					p.Roles = append(p.Roles, s)
				}
			}
		}
	}
	return p, nil
}

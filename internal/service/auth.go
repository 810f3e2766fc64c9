package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/utils"
)

// SessionTTL is the fixed server-side session window. It is
// deliberately longer than the signed token's own expiry: the session
// row is the source of truth for whether a login is still alive.
const SessionTTL = time.Hour

// AuthService implements sign-in and sign-out over the user and
// session stores.
type AuthService struct {
	users    repository.UserStore
	sessions repository.SessionStore
	secret   string
	tokenTTL int // access token TTL in minutes
	log      *zap.Logger
}

func NewAuthService(users repository.UserStore, sessions repository.SessionStore, secret string, tokenTTLMin int, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   secret,
		tokenTTL: tokenTTLMin,
		log:      log.Named("auth"),
	}
}

// SignIn validates the credentials and returns a bearer token. While a
// live session exists for the user the same token is returned on every
// call (idempotent login); otherwise a new token is minted and a new
// session row created with a one-hour deadline.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("sign-in for unknown email")
			return "", ErrUnauthenticated
		}
		return "", err
	}
	if u.PasswordHash == "" {
		// social-only account, no stored credential
		s.log.Warn("sign-in without stored credential", zap.String("user_id", u.ID))
		return "", ErrUnauthenticated
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.log.Warn("sign-in with wrong password", zap.String("user_id", u.ID))
		return "", ErrUnauthenticated
	}
	u = u.Sanitized()

	now := time.Now().UTC()
	if sess, err := s.sessions.GetByUserID(ctx, u.ID); err == nil && sess.Valid(now) {
		s.log.Info("reusing active session", zap.String("user_id", u.ID))
		return sess.AccessToken, nil
	}

	tok, err := utils.NewAccessToken(s.secret, u, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", ErrInternal, err)
	}
	_, err = s.sessions.Create(ctx, model.Session{
		UserID:      u.ID,
		AccessToken: tok.Token,
		IsExpired:   false,
		ExpiredAt:   now.Add(SessionTTL),
	})
	if err != nil {
		if errors.Is(err, repository.ErrActiveSession) {
			// a concurrent sign-in created the session first; reuse its token
			if sess, e := s.sessions.GetByUserID(ctx, u.ID); e == nil && sess.Valid(time.Now().UTC()) {
				s.log.Info("concurrent sign-in, reusing session", zap.String("user_id", u.ID))
				return sess.AccessToken, nil
			}
		}
		return "", fmt.Errorf("%w: create session: %v", ErrInternal, err)
	}

	s.log.Info("user signed in", zap.String("user_id", u.ID))
	return tok.Token, nil
}

// SignOut expires the session bound to the token. An unknown, already
// expired or past-deadline session fails with ErrUnauthenticated; a
// persistence failure while expiring surfaces as ErrInternal.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrUnauthenticated
	}
	sess, err := s.sessions.GetByToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return err
	}
	if !sess.Valid(time.Now().UTC()) {
		return ErrUnauthenticated
	}
	if err := s.sessions.ExpireByToken(ctx, accessToken); err != nil {
		return fmt.Errorf("%w: expire session: %v", ErrInternal, err)
	}
	s.log.Info("user signed out", zap.String("user_id", sess.UserID))
	return nil
}

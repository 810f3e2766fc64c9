package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/media-backlog/internal/model"
)

// SessionRepo is the MySQL-backed SessionStore.
type SessionRepo struct{ DB *sql.DB }

const sessionCols = "id,user_id,access_token,is_expired,expired_at,created_at"

func scanSession(row interface{ Scan(...any) error }) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.AccessToken, &s.IsExpired, &s.ExpiredAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrNotFound
		}
		return model.Session{}, err
	}
	return s, nil
}

// Create inserts a session row only when the user has no live session.
// The guarded INSERT ... SELECT makes the check and the insert a single
// statement, so two concurrent sign-ins cannot both succeed; the loser
// gets ErrActiveSession and reuses the winner's token.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) (model.Session, error) {
	s.ID = uuid.NewString()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id,user_id,access_token,is_expired,expired_at,created_at)
		 SELECT ?,?,?,?,?,?
		 FROM dual
		 WHERE NOT EXISTS (
		   SELECT 1 FROM sessions
		   WHERE user_id=? AND is_expired=0 AND expired_at > UTC_TIMESTAMP()
		 )`,
		s.ID, s.UserID, s.AccessToken, s.IsExpired, s.ExpiredAt, s.CreatedAt, s.UserID)
	if err != nil {
		return model.Session{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Session{}, ErrActiveSession
	}
	return s, nil
}

// GetByUserID returns the user's most recent session, expired or not.
func (r *SessionRepo) GetByUserID(ctx context.Context, userID string) (model.Session, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionCols+" FROM sessions WHERE user_id=? ORDER BY created_at DESC LIMIT 1",
		userID))
}

func (r *SessionRepo) GetByToken(ctx context.Context, accessToken string) (model.Session, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionCols+" FROM sessions WHERE access_token=? LIMIT 1",
		accessToken))
}

// ExpireByToken flags the session and moves its deadline to now. An
// unknown token is a no-op so the guard can call this unconditionally.
func (r *SessionRepo) ExpireByToken(ctx context.Context, accessToken string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_expired=1, expired_at=UTC_TIMESTAMP() WHERE access_token=? AND is_expired=0",
		accessToken)
	return err
}

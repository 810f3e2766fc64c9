package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/media-backlog/internal/model"
)

// UserRepo is the MySQL-backed UserStore.
type UserRepo struct{ DB *sql.DB }

// isDup reports whether err is a MySQL duplicate-key error (1062).
func isDup(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

func joinRoles(roles []string) string { return strings.Join(roles, ",") }

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

const userCols = "id,name,email,password_hash,roles,created_at,updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var roles string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.Roles = splitRoles(roles)
	return u, nil
}

// Create inserts the user with a fresh uuid and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,name,email,password_hash,roles,created_at,updated_at) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, u.PasswordHash, joinRoles(u.Roles), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDup(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// List returns users ordered newest first. A non-empty search restricts
// rows to emails starting with the given prefix, case-insensitively.
func (r *UserRepo) List(ctx context.Context, q ListQuery, search string) (Page[model.User], error) {
	q = q.Normalize()
	cond := "1=1"
	args := []any{}
	if search != "" {
		cond = "LOWER(email) LIKE ?"
		args = append(args, strings.ToLower(search)+"%")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return Page[model.User]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE "+cond+
			" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?",
		append(args, q.Limit, q.Offset())...)
	if err != nil {
		return Page[model.User]{}, err
	}
	defer rows.Close()

	out := make([]model.User, 0, q.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return Page[model.User]{}, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return Page[model.User]{}, err
	}
	return NewPage(out, total, q), nil
}

// Update persists the mutable columns and returns ErrNotFound when no
// row matches the id.
func (r *UserRepo) Update(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, password_hash=?, roles=?, updated_at=? WHERE id=?",
		u.Name, u.Email, u.PasswordHash, joinRoles(u.Roles), u.UpdatedAt, u.ID)
	if err != nil {
		if isDup(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// update; re-check existence to keep the contract exact.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return model.User{}, err
		}
	}
	return u, nil
}

// Delete removes the user. Sessions, items (with their join rows) and
// backlog entries go with it via ON DELETE CASCADE foreign keys.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

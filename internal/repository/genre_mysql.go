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

// GenreRepo is the MySQL-backed GenreStore.
type GenreRepo struct{ DB *sql.DB }

const genreCols = "id,name,created_at,updated_at"

func scanGenre(row interface{ Scan(...any) error }) (model.Genre, error) {
	var g model.Genre
	err := row.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Genre{}, ErrNotFound
		}
		return model.Genre{}, err
	}
	return g, nil
}

func (r *GenreRepo) Create(ctx context.Context, g model.Genre) (model.Genre, error) {
	g.ID = uuid.NewString()
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO genres (id,name,created_at,updated_at) VALUES (?,?,?,?)",
		g.ID, g.Name, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		if isDup(err) {
			return model.Genre{}, ErrConflict
		}
		return model.Genre{}, err
	}
	return g, nil
}

func (r *GenreRepo) GetByID(ctx context.Context, id string) (model.Genre, error) {
	return scanGenre(r.DB.QueryRowContext(ctx,
		"SELECT "+genreCols+" FROM genres WHERE id=? LIMIT 1", id))
}

// GetByName matches case-insensitively; the genres.name column uses a
// case-insensitive collation, so a plain equality comparison suffices.
func (r *GenreRepo) GetByName(ctx context.Context, name string) (model.Genre, error) {
	return scanGenre(r.DB.QueryRowContext(ctx,
		"SELECT "+genreCols+" FROM genres WHERE LOWER(name)=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(name))))
}

// List pages through genres name ascending with id as tie-breaker.
func (r *GenreRepo) List(ctx context.Context, q ListQuery, f GenreFilter) (Page[model.Genre], error) {
	q = q.Normalize()
	cond := "1=1"
	args := []any{}
	if f.Search != "" {
		cond = "LOWER(name) LIKE ?"
		args = append(args, strings.ToLower(f.Search)+"%")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM genres WHERE "+cond, args...).Scan(&total); err != nil {
		return Page[model.Genre]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+genreCols+" FROM genres WHERE "+cond+
			" ORDER BY name ASC, id ASC LIMIT ? OFFSET ?",
		append(args, q.Limit, q.Offset())...)
	if err != nil {
		return Page[model.Genre]{}, err
	}
	defer rows.Close()

	out := make([]model.Genre, 0, q.Limit)
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return Page[model.Genre]{}, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return Page[model.Genre]{}, err
	}
	return NewPage(out, total, q), nil
}

func (r *GenreRepo) Update(ctx context.Context, g model.Genre) (model.Genre, error) {
	g.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE genres SET name=?, updated_at=? WHERE id=?",
		g.Name, g.UpdatedAt, g.ID)
	if err != nil {
		if isDup(err) {
			return model.Genre{}, ErrConflict
		}
		return model.Genre{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, g.ID); err != nil {
			return model.Genre{}, err
		}
	}
	return g, nil
}

func (r *GenreRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM genres WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

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

// ItemGenreRepo is the MySQL-backed ItemGenreStore.
type ItemGenreRepo struct{ DB *sql.DB }

const itemGenreCols = "id,item_id,genre_id,created_at"

func scanItemGenre(row interface{ Scan(...any) error }) (model.ItemGenre, error) {
	var ig model.ItemGenre
	err := row.Scan(&ig.ID, &ig.ItemID, &ig.GenreID, &ig.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ItemGenre{}, ErrNotFound
		}
		return model.ItemGenre{}, err
	}
	return ig, nil
}

// Create inserts the join row. The unique key on (item_id, genre_id)
// turns a duplicate pair into ErrConflict.
func (r *ItemGenreRepo) Create(ctx context.Context, ig model.ItemGenre) (model.ItemGenre, error) {
	ig.ID = uuid.NewString()
	if ig.CreatedAt.IsZero() {
		ig.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO item_genres (id,item_id,genre_id,created_at) VALUES (?,?,?,?)",
		ig.ID, ig.ItemID, ig.GenreID, ig.CreatedAt)
	if err != nil {
		if isDup(err) {
			return model.ItemGenre{}, ErrConflict
		}
		return model.ItemGenre{}, err
	}
	return ig, nil
}

func (r *ItemGenreRepo) List(ctx context.Context, q ListQuery, f ItemGenreFilter) (Page[model.ItemGenre], error) {
	q = q.Normalize()
	where := []string{}
	args := []any{}
	if f.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, f.ItemID)
	}
	if f.GenreID != "" {
		where = append(where, "genre_id = ?")
		args = append(args, f.GenreID)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM item_genres WHERE "+cond, args...).Scan(&total); err != nil {
		return Page[model.ItemGenre]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+itemGenreCols+" FROM item_genres WHERE "+cond+
			" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?",
		append(args, q.Limit, q.Offset())...)
	if err != nil {
		return Page[model.ItemGenre]{}, err
	}
	defer rows.Close()

	out := make([]model.ItemGenre, 0, q.Limit)
	for rows.Next() {
		ig, err := scanItemGenre(rows)
		if err != nil {
			return Page[model.ItemGenre]{}, err
		}
		out = append(out, ig)
	}
	if err := rows.Err(); err != nil {
		return Page[model.ItemGenre]{}, err
	}
	return NewPage(out, total, q), nil
}

func (r *ItemGenreRepo) GetByPair(ctx context.Context, itemID, genreID string) (model.ItemGenre, error) {
	return scanItemGenre(r.DB.QueryRowContext(ctx,
		"SELECT "+itemGenreCols+" FROM item_genres WHERE item_id=? AND genre_id=? LIMIT 1",
		itemID, genreID))
}

func (r *ItemGenreRepo) DeleteByPair(ctx context.Context, itemID, genreID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM item_genres WHERE item_id=? AND genre_id=?", itemID, genreID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GenresByItem resolves the genres attached to an item, name ascending.
func (r *ItemGenreRepo) GenresByItem(ctx context.Context, itemID string) ([]model.Genre, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT g.id, g.name, g.created_at, g.updated_at
		 FROM genres g
		 JOIN item_genres ig ON ig.genre_id = g.id
		 WHERE ig.item_id = ?
		 ORDER BY g.name ASC`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Genre{}
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

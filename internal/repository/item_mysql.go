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

// ItemRepo is the MySQL-backed ItemStore.
type ItemRepo struct{ DB *sql.DB }

const itemCols = "id,title,type,description,note,image_url,user_id,is_public,created_at,updated_at"

func scanItem(row interface{ Scan(...any) error }) (model.Item, error) {
	var it model.Item
	var desc, note, img sql.NullString
	err := row.Scan(&it.ID, &it.Title, &it.Type, &desc, &note, &img,
		&it.UserID, &it.IsPublic, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, ErrNotFound
		}
		return model.Item{}, err
	}
	if desc.Valid {
		it.Description = &desc.String
	}
	if note.Valid {
		it.Note = &note.String
	}
	if img.Valid {
		it.ImageURL = &img.String
	}
	return it, nil
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *ItemRepo) Create(ctx context.Context, it model.Item) (model.Item, error) {
	it.ID = uuid.NewString()
	now := time.Now().UTC()
	it.CreatedAt, it.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO items (id,title,type,description,note,image_url,user_id,is_public,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		it.ID, it.Title, it.Type, nullStr(it.Description), nullStr(it.Note), nullStr(it.ImageURL),
		it.UserID, it.IsPublic, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (model.Item, error) {
	return scanItem(r.DB.QueryRowContext(ctx,
		"SELECT "+itemCols+" FROM items WHERE id=? LIMIT 1", id))
}

// List pages through items newest first (id as tie-breaker so pages do
// not drift when rows share a creation timestamp). Filters compose with
// AND; the count query runs over the identical predicate.
func (r *ItemRepo) List(ctx context.Context, q ListQuery, f ItemFilter) (Page[model.Item], error) {
	q = q.Normalize()
	where := []string{}
	args := []any{}

	if f.Search != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, strings.ToLower(f.Search)+"%")
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.OwnerID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.OwnerID)
	}
	if !f.IncludeHidden {
		if f.ViewerID != "" {
			where = append(where, "(is_public = 1 OR user_id = ?)")
			args = append(args, f.ViewerID)
		} else {
			where = append(where, "is_public = 1")
		}
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM items WHERE "+cond, args...).Scan(&total); err != nil {
		return Page[model.Item]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+itemCols+" FROM items WHERE "+cond+
			" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?",
		append(append([]any{}, args...), q.Limit, q.Offset())...)
	if err != nil {
		return Page[model.Item]{}, err
	}
	defer rows.Close()

	out := make([]model.Item, 0, q.Limit)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return Page[model.Item]{}, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return Page[model.Item]{}, err
	}
	return NewPage(out, total, q), nil
}

func (r *ItemRepo) Update(ctx context.Context, it model.Item) (model.Item, error) {
	it.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE items SET title=?, type=?, description=?, note=?, image_url=?, is_public=?, updated_at=? WHERE id=?",
		it.Title, it.Type, nullStr(it.Description), nullStr(it.Note), nullStr(it.ImageURL),
		it.IsPublic, it.UpdatedAt, it.ID)
	if err != nil {
		return model.Item{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, it.ID); err != nil {
			return model.Item{}, err
		}
	}
	return it, nil
}

// Delete removes the item; item_genres and user_items rows cascade via
// foreign keys.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM items WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/media-backlog/internal/model"
)

// UserItemRepo is the MySQL-backed UserItemStore.
type UserItemRepo struct{ DB *sql.DB }

const userItemCols = "id,user_id,item_id,status,rating,sort_order,added_at"

func scanUserItem(row interface{ Scan(...any) error }) (model.UserItem, error) {
	var ui model.UserItem
	var rating, order sql.NullInt64
	err := row.Scan(&ui.ID, &ui.UserID, &ui.ItemID, &ui.Status, &rating, &order, &ui.AddedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		ui.Rating = &v
	}
	if order.Valid {
		v := int(order.Int64)
		ui.Order = &v
	}
	return ui, nil
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// Create inserts the backlog entry. The unique key on
// (user_id, item_id) turns a duplicate pair into ErrConflict.
func (r *UserItemRepo) Create(ctx context.Context, ui model.UserItem) (model.UserItem, error) {
	ui.ID = uuid.NewString()
	if ui.AddedAt.IsZero() {
		ui.AddedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_items (id,user_id,item_id,status,rating,sort_order,added_at) VALUES (?,?,?,?,?,?,?)",
		ui.ID, ui.UserID, ui.ItemID, ui.Status, nullInt(ui.Rating), nullInt(ui.Order), ui.AddedAt)
	if err != nil {
		if isDup(err) {
			return model.UserItem{}, ErrConflict
		}
		return model.UserItem{}, err
	}
	return ui, nil
}

// ListByUser pages through a user's backlog, user-defined order first
// (entries without one sort after those with one), then newest first.
func (r *UserItemRepo) ListByUser(ctx context.Context, userID string, q ListQuery, f BacklogFilter) (Page[model.UserItem], error) {
	q = q.Normalize()
	cond := "user_id = ?"
	args := []any{userID}
	if f.Status != "" {
		cond += " AND status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_items WHERE "+cond, args...).Scan(&total); err != nil {
		return Page[model.UserItem]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userItemCols+" FROM user_items WHERE "+cond+
			" ORDER BY (sort_order IS NULL), sort_order ASC, added_at DESC, id ASC LIMIT ? OFFSET ?",
		append(args, q.Limit, q.Offset())...)
	if err != nil {
		return Page[model.UserItem]{}, err
	}
	defer rows.Close()

	out := make([]model.UserItem, 0, q.Limit)
	for rows.Next() {
		ui, err := scanUserItem(rows)
		if err != nil {
			return Page[model.UserItem]{}, err
		}
		out = append(out, ui)
	}
	if err := rows.Err(); err != nil {
		return Page[model.UserItem]{}, err
	}
	return NewPage(out, total, q), nil
}

func (r *UserItemRepo) GetByUserAndItem(ctx context.Context, userID, itemID string) (model.UserItem, error) {
	return scanUserItem(r.DB.QueryRowContext(ctx,
		"SELECT "+userItemCols+" FROM user_items WHERE user_id=? AND item_id=? LIMIT 1",
		userID, itemID))
}

// UpdateByUserAndItem applies the non-nil fields of upd and returns the
// updated row, or ErrNotFound when the user does not track the item.
func (r *UserItemRepo) UpdateByUserAndItem(ctx context.Context, userID, itemID string, upd UserItemUpdate) (model.UserItem, error) {
	cur, err := r.GetByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return model.UserItem{}, err
	}
	if upd.Status != nil {
		cur.Status = *upd.Status
	}
	if upd.Rating != nil {
		cur.Rating = upd.Rating
	}
	if upd.Order != nil {
		cur.Order = upd.Order
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE user_items SET status=?, rating=?, sort_order=? WHERE user_id=? AND item_id=?",
		cur.Status, nullInt(cur.Rating), nullInt(cur.Order), userID, itemID)
	if err != nil {
		return model.UserItem{}, err
	}
	return cur, nil
}

// DeleteByUserAndItem removes the entry and returns the deleted row so
// callers can report what was removed.
func (r *UserItemRepo) DeleteByUserAndItem(ctx context.Context, userID, itemID string) (model.UserItem, error) {
	cur, err := r.GetByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return model.UserItem{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_items WHERE user_id=? AND item_id=?", userID, itemID); err != nil {
		return model.UserItem{}, err
	}
	return cur, nil
}

// StatsByUser aggregates the user's backlog counts per status with a
// single GROUP BY query.
func (r *UserItemRepo) StatsByUser(ctx context.Context, userID string) (model.BacklogStats, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM user_items WHERE user_id=? GROUP BY status", userID)
	if err != nil {
		return model.BacklogStats{}, err
	}
	defer rows.Close()

	var stats model.BacklogStats
	for rows.Next() {
		var status model.BacklogStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return model.BacklogStats{}, err
		}
		stats.Total += n
		switch status {
		case model.StatusPending:
			stats.Pending = n
		case model.StatusInProgress:
			stats.InProgress = n
		case model.StatusCompleted:
			stats.Completed = n
		}
	}
	return stats, rows.Err()
}

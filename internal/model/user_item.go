package model

import "time"

// BacklogStatus enumerates the progress states of a backlog entry.
type BacklogStatus string

const (
	StatusPending    BacklogStatus = "pending"
	StatusInProgress BacklogStatus = "in_progress"
	StatusCompleted  BacklogStatus = "completed"
)

// ValidBacklogStatus reports whether s is one of the known statuses.
func ValidBacklogStatus(s BacklogStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// UserItem is a backlog entry: the association between a user and an
// item carrying progress metadata.  At most one entry may exist per
// (UserID, ItemID) pair.
//
// Fields:
//  ID      – primary key identifier (uuid string).
//  UserID  – owner of the backlog entry.
//  ItemID  – the tracked item.
//  Status  – progress status, defaults to pending.
//  Rating  – optional small-integer rating (nullable).
//  Order   – optional user-defined ranking position (nullable).
//  AddedAt – when the item was added to the backlog.
type UserItem struct {
	ID      string        // user_items.id
	UserID  string        // user_items.user_id
	ItemID  string        // user_items.item_id
	Status  BacklogStatus // user_items.status
	Rating  *int          // user_items.rating (nullable)
	Order   *int          // user_items.sort_order (nullable)
	AddedAt time.Time     // user_items.added_at
}

// BacklogStats aggregates a user's backlog entries per status.
type BacklogStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// BacklogActivityEvent is published whenever a user's backlog changes.
// It carries enough information for downstream consumers to log or
// trigger analytics without querying the primary database.
type BacklogActivityEvent struct {
	Action    string `json:"action"` // added | updated | removed
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	ItemTitle string `json:"item_title"`
	Status    string `json:"status"`
	Rating    *int   `json:"rating,omitempty"`
	Order     *int   `json:"order,omitempty"`
	At        string `json:"at"`
}

// Backlog activity actions.
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

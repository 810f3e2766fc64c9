package model

import "time"

// ItemType enumerates the kinds of trackable media units.
type ItemType string

const (
	ItemTypeGame   ItemType = "game"
	ItemTypeBook   ItemType = "book"
	ItemTypeSerie  ItemType = "serie"
	ItemTypeMovie  ItemType = "movie"
	ItemTypeCourse ItemType = "course"
)

// ValidItemType reports whether t is one of the closed set of item types.
func ValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeGame, ItemTypeBook, ItemTypeSerie, ItemTypeMovie, ItemTypeCourse:
		return true
	}
	return false
}

// Item is a trackable media unit (game, book, serie, movie or course)
// catalogued by a user.
//
// Fields:
//  ID          – primary key identifier (uuid string).
//  Title       – display title.
//  Type        – one of the ItemType constants.
//  Description – optional free-text description (nullable).
//  Note        – optional personal note (nullable).
//  ImageURL    – optional reference to a cover image (nullable).
//  UserID      – owner of the item.
//  IsPublic    – whether the item appears in public listings.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Item struct {
	ID          string    // items.id
	Title       string    // items.title
	Type        ItemType  // items.type
	Description *string   // items.description (nullable)
	Note        *string   // items.note (nullable)
	ImageURL    *string   // items.image_url (nullable)
	UserID      string    // items.user_id
	IsPublic    bool      // items.is_public
	CreatedAt   time.Time // items.created_at
	UpdatedAt   time.Time // items.updated_at
}

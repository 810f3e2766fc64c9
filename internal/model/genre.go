package model

import "time"

// Genre is a simple reference entity used to tag items.  Genre
// names are unique case-insensitively.
type Genre struct {
	ID        string    // genres.id
	Name      string    // genres.name (unique)
	CreatedAt time.Time // genres.created_at
	UpdatedAt time.Time // genres.updated_at
}

// ItemGenre is the join row linking an item to a genre.  At most
// one row may exist per (ItemID, GenreID) pair.
type ItemGenre struct {
	ID        string    // item_genres.id
	ItemID    string    // item_genres.item_id
	GenreID   string    // item_genres.genre_id
	CreatedAt time.Time // item_genres.created_at
}

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/media-backlog/internal/model"
)

// ItemFilter narrows item list queries. All set fields compose with AND
// semantics; zero values mean "match all".
//
//	Search        – case-insensitive prefix match on the title column.
//	Type          – exact match on the item type.
//	OwnerID       – restrict to items owned by this user.
//	ViewerID      – visibility scope: public items plus items owned by
//	                ViewerID. Empty means public items only.
//	IncludeHidden – drop the visibility restriction entirely (admin).
type ItemFilter struct {
	Search        string
	Type          model.ItemType
	OwnerID       string
	ViewerID      string
	IncludeHidden bool
}

// GenreFilter narrows genre list queries.
type GenreFilter struct {
	Search string // case-insensitive prefix match on the name column
}

// ItemGenreFilter narrows item-genre list queries.
type ItemGenreFilter struct {
	ItemID  string
	GenreID string
}

// BacklogFilter narrows a user's backlog listing.
type BacklogFilter struct {
	Status model.BacklogStatus
}

// UserItemUpdate carries the mutable fields of a backlog entry. Nil
// pointers leave the stored value untouched.
type UserItemUpdate struct {
	Status *model.BacklogStatus
	Rating *int
	Order  *int
}

// UserStore persists application users.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context, q ListQuery, search string) (Page[model.User], error)
	Update(ctx context.Context, u model.User) (model.User, error)
	// Delete removes the user and cascades to sessions, owned items
	// (with their join rows) and backlog entries.
	Delete(ctx context.Context, id string) error
}

// SessionStore persists one row per login. Create enforces the
// single-active-session invariant: it fails with ErrActiveSession when a
// live session already exists for the user, so concurrent sign-ins
// cannot each mint one.
type SessionStore interface {
	Create(ctx context.Context, s model.Session) (model.Session, error)
	// GetByUserID returns the most recently created session for the
	// user, live or not.
	GetByUserID(ctx context.Context, userID string) (model.Session, error)
	GetByToken(ctx context.Context, accessToken string) (model.Session, error)
	// ExpireByToken flags the session as expired and moves its deadline
	// to now. Expiring an unknown token is a no-op.
	ExpireByToken(ctx context.Context, accessToken string) error
}

// ItemStore persists catalogued media items.
type ItemStore interface {
	Create(ctx context.Context, it model.Item) (model.Item, error)
	GetByID(ctx context.Context, id string) (model.Item, error)
	List(ctx context.Context, q ListQuery, f ItemFilter) (Page[model.Item], error)
	Update(ctx context.Context, it model.Item) (model.Item, error)
	// Delete removes the item together with its item-genre rows and any
	// backlog entries referencing it.
	Delete(ctx context.Context, id string) error
}

// GenreStore persists genres.
type GenreStore interface {
	Create(ctx context.Context, g model.Genre) (model.Genre, error)
	GetByID(ctx context.Context, id string) (model.Genre, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (model.Genre, error)
	List(ctx context.Context, q ListQuery, f GenreFilter) (Page[model.Genre], error)
	Update(ctx context.Context, g model.Genre) (model.Genre, error)
	Delete(ctx context.Context, id string) error
}

// ItemGenreStore persists the item-genre join rows.
type ItemGenreStore interface {
	// Create fails with ErrConflict when the (item, genre) pair already
	// exists.
	Create(ctx context.Context, ig model.ItemGenre) (model.ItemGenre, error)
	List(ctx context.Context, q ListQuery, f ItemGenreFilter) (Page[model.ItemGenre], error)
	GetByPair(ctx context.Context, itemID, genreID string) (model.ItemGenre, error)
	DeleteByPair(ctx context.Context, itemID, genreID string) error
	// GenresByItem resolves the genres attached to an item, name ascending.
	GenresByItem(ctx context.Context, itemID string) ([]model.Genre, error)
}

// UserItemStore persists backlog entries.
type UserItemStore interface {
	// Create fails with ErrConflict when the user already tracks the item.
	Create(ctx context.Context, ui model.UserItem) (model.UserItem, error)
	ListByUser(ctx context.Context, userID string, q ListQuery, f BacklogFilter) (Page[model.UserItem], error)
	GetByUserAndItem(ctx context.Context, userID, itemID string) (model.UserItem, error)
	UpdateByUserAndItem(ctx context.Context, userID, itemID string, upd UserItemUpdate) (model.UserItem, error)
	DeleteByUserAndItem(ctx context.Context, userID, itemID string) (model.UserItem, error)
	StatsByUser(ctx context.Context, userID string) (model.BacklogStats, error)
}

// Stores bundles one implementation of every store interface. Which
// implementation backs it is decided once at startup (STORE_DRIVER).
type Stores struct {
	Users      UserStore
	Sessions   SessionStore
	Items      ItemStore
	Genres     GenreStore
	ItemGenres ItemGenreStore
	UserItems  UserItemStore
}

// NewMySQLStores wires the relational implementations over a shared
// connection pool.
func NewMySQLStores(db *sql.DB) *Stores {
	return &Stores{
		Users:      &UserRepo{DB: db},
		Sessions:   &SessionRepo{DB: db},
		Items:      &ItemRepo{DB: db},
		Genres:     &GenreRepo{DB: db},
		ItemGenres: &ItemGenreRepo{DB: db},
		UserItems:  &UserItemRepo{DB: db},
	}
}

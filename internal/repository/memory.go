package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/media-backlog/internal/model"
)

// memState is the process-lifetime storage shared by the in-memory
// stores. One mutex covers everything; the dataset is small and the
// stores exist for tests and driverless development, not throughput.
type memState struct {
	mu         sync.RWMutex
	users      map[string]model.User
	sessions   map[string]model.Session
	items      map[string]model.Item
	genres     map[string]model.Genre
	itemGenres map[string]model.ItemGenre
	userItems  map[string]model.UserItem
}

// NewMemoryStores wires the in-memory implementations over a shared
// state so cross-entity cascades (user delete, item delete) behave like
// the relational foreign keys.
func NewMemoryStores() *Stores {
	s := &memState{
		users:      map[string]model.User{},
		sessions:   map[string]model.Session{},
		items:      map[string]model.Item{},
		genres:     map[string]model.Genre{},
		itemGenres: map[string]model.ItemGenre{},
		userItems:  map[string]model.UserItem{},
	}
	return &Stores{
		Users:      &memUsers{s},
		Sessions:   &memSessions{s},
		Items:      &memItems{s},
		Genres:     &memGenres{s},
		ItemGenres: &memItemGenres{s},
		UserItems:  &memUserItems{s},
	}
}

// pageOf sorts the matching rows with less, then slices out the
// requested page. The total reflects the same filtered set.
func pageOf[T any](rows []T, less func(a, b T) bool, q ListQuery) Page[T] {
	q = q.Normalize()
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	total := int64(len(rows))
	start := q.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + q.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return NewPage(append([]T{}, rows[start:end]...), total, q)
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// ---- users ----

type memUsers struct{ s *memState }

func (m *memUsers) Create(_ context.Context, u model.User) (model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, ex := range m.s.users {
		if ex.Email == u.Email {
			return model.User{}, ErrEmailExists
		}
	}
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	m.s.users[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (model.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *memUsers) List(_ context.Context, q ListQuery, search string) (Page[model.User], error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	rows := []model.User{}
	for _, u := range m.s.users {
		if search != "" && !hasPrefixFold(u.Email, search) {
			continue
		}
		rows = append(rows, u)
	}
	return pageOf(rows, func(a, b model.User) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}, q), nil
}

func (m *memUsers) Update(_ context.Context, u model.User) (model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cur, ok := m.s.users[u.ID]
	if !ok {
		return model.User{}, ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for id, ex := range m.s.users {
		if id != u.ID && ex.Email == u.Email {
			return model.User{}, ErrEmailExists
		}
	}
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	m.s.users[u.ID] = u
	return u, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.users, id)
	for sid, sess := range m.s.sessions {
		if sess.UserID == id {
			delete(m.s.sessions, sid)
		}
	}
	for uid, ui := range m.s.userItems {
		if ui.UserID == id {
			delete(m.s.userItems, uid)
		}
	}
	for iid, it := range m.s.items {
		if it.UserID == id {
			delete(m.s.items, iid)
			for igid, ig := range m.s.itemGenres {
				if ig.ItemID == iid {
					delete(m.s.itemGenres, igid)
				}
			}
			for uid, ui := range m.s.userItems {
				if ui.ItemID == iid {
					delete(m.s.userItems, uid)
				}
			}
		}
	}
	return nil
}

// ---- sessions ----

type memSessions struct{ s *memState }

func (m *memSessions) Create(_ context.Context, sess model.Session) (model.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now().UTC()
	for _, ex := range m.s.sessions {
		if ex.UserID == sess.UserID && ex.Valid(now) {
			return model.Session{}, ErrActiveSession
		}
	}
	sess.ID = uuid.NewString()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	m.s.sessions[sess.ID] = sess
	return sess, nil
}

func (m *memSessions) GetByUserID(_ context.Context, userID string) (model.Session, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var best model.Session
	found := false
	for _, sess := range m.s.sessions {
		if sess.UserID != userID {
			continue
		}
		if !found || sess.CreatedAt.After(best.CreatedAt) {
			best = sess
			found = true
		}
	}
	if !found {
		return model.Session{}, ErrNotFound
	}
	return best, nil
}

func (m *memSessions) GetByToken(_ context.Context, accessToken string) (model.Session, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, sess := range m.s.sessions {
		if sess.AccessToken == accessToken {
			return sess, nil
		}
	}
	return model.Session{}, ErrNotFound
}

func (m *memSessions) ExpireByToken(_ context.Context, accessToken string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, sess := range m.s.sessions {
		if sess.AccessToken == accessToken && !sess.IsExpired {
			sess.IsExpired = true
			sess.ExpiredAt = time.Now().UTC()
			m.s.sessions[id] = sess
		}
	}
	return nil
}

// ---- items ----

type memItems struct{ s *memState }

func (m *memItems) Create(_ context.Context, it model.Item) (model.Item, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	it.ID = uuid.NewString()
	now := time.Now().UTC()
	it.CreatedAt, it.UpdatedAt = now, now
	m.s.items[it.ID] = it
	return it, nil
}

func (m *memItems) GetByID(_ context.Context, id string) (model.Item, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	it, ok := m.s.items[id]
	if !ok {
		return model.Item{}, ErrNotFound
	}
	return it, nil
}

func matchItem(it model.Item, f ItemFilter) bool {
	if f.Search != "" && !hasPrefixFold(it.Title, f.Search) {
		return false
	}
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	if f.OwnerID != "" && it.UserID != f.OwnerID {
		return false
	}
	if !f.IncludeHidden && !it.IsPublic && it.UserID != f.ViewerID {
		return false
	}
	return true
}

func (m *memItems) List(_ context.Context, q ListQuery, f ItemFilter) (Page[model.Item], error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	rows := []model.Item{}
	for _, it := range m.s.items {
		if matchItem(it, f) {
			rows = append(rows, it)
		}
	}
	return pageOf(rows, func(a, b model.Item) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}, q), nil
}

func (m *memItems) Update(_ context.Context, it model.Item) (model.Item, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cur, ok := m.s.items[it.ID]
	if !ok {
		return model.Item{}, ErrNotFound
	}
	it.UserID = cur.UserID
	it.CreatedAt = cur.CreatedAt
	it.UpdatedAt = time.Now().UTC()
	m.s.items[it.ID] = it
	return it, nil
}

func (m *memItems) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.items, id)
	for igid, ig := range m.s.itemGenres {
		if ig.ItemID == id {
			delete(m.s.itemGenres, igid)
		}
	}
	for uid, ui := range m.s.userItems {
		if ui.ItemID == id {
			delete(m.s.userItems, uid)
		}
	}
	return nil
}

// ---- genres ----

type memGenres struct{ s *memState }

func (m *memGenres) Create(_ context.Context, g model.Genre) (model.Genre, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, ex := range m.s.genres {
		if strings.EqualFold(ex.Name, g.Name) {
			return model.Genre{}, ErrConflict
		}
	}
	g.ID = uuid.NewString()
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	m.s.genres[g.ID] = g
	return g, nil
}

func (m *memGenres) GetByID(_ context.Context, id string) (model.Genre, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	g, ok := m.s.genres[id]
	if !ok {
		return model.Genre{}, ErrNotFound
	}
	return g, nil
}

func (m *memGenres) GetByName(_ context.Context, name string) (model.Genre, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	name = strings.TrimSpace(name)
	for _, g := range m.s.genres {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return model.Genre{}, ErrNotFound
}

func (m *memGenres) List(_ context.Context, q ListQuery, f GenreFilter) (Page[model.Genre], error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	rows := []model.Genre{}
	for _, g := range m.s.genres {
		if f.Search != "" && !hasPrefixFold(g.Name, f.Search) {
			continue
		}
		rows = append(rows, g)
	}
	return pageOf(rows, func(a, b model.Genre) bool {
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	}, q), nil
}

func (m *memGenres) Update(_ context.Context, g model.Genre) (model.Genre, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cur, ok := m.s.genres[g.ID]
	if !ok {
		return model.Genre{}, ErrNotFound
	}
	for id, ex := range m.s.genres {
		if id != g.ID && strings.EqualFold(ex.Name, g.Name) {
			return model.Genre{}, ErrConflict
		}
	}
	g.CreatedAt = cur.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	m.s.genres[g.ID] = g
	return g, nil
}

func (m *memGenres) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.genres[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.genres, id)
	for igid, ig := range m.s.itemGenres {
		if ig.GenreID == id {
			delete(m.s.itemGenres, igid)
		}
	}
	return nil
}

// ---- item genres ----

type memItemGenres struct{ s *memState }

func (m *memItemGenres) Create(_ context.Context, ig model.ItemGenre) (model.ItemGenre, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, ex := range m.s.itemGenres {
		if ex.ItemID == ig.ItemID && ex.GenreID == ig.GenreID {
			return model.ItemGenre{}, ErrConflict
		}
	}
	ig.ID = uuid.NewString()
	if ig.CreatedAt.IsZero() {
		ig.CreatedAt = time.Now().UTC()
	}
	m.s.itemGenres[ig.ID] = ig
	return ig, nil
}

func (m *memItemGenres) List(_ context.Context, q ListQuery, f ItemGenreFilter) (Page[model.ItemGenre], error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	rows := []model.ItemGenre{}
	for _, ig := range m.s.itemGenres {
		if f.ItemID != "" && ig.ItemID != f.ItemID {
			continue
		}
		if f.GenreID != "" && ig.GenreID != f.GenreID {
			continue
		}
		rows = append(rows, ig)
	}
	return pageOf(rows, func(a, b model.ItemGenre) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}, q), nil
}

func (m *memItemGenres) GetByPair(_ context.Context, itemID, genreID string) (model.ItemGenre, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, ig := range m.s.itemGenres {
		if ig.ItemID == itemID && ig.GenreID == genreID {
			return ig, nil
		}
	}
	return model.ItemGenre{}, ErrNotFound
}

func (m *memItemGenres) DeleteByPair(_ context.Context, itemID, genreID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, ig := range m.s.itemGenres {
		if ig.ItemID == itemID && ig.GenreID == genreID {
			delete(m.s.itemGenres, id)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memItemGenres) GenresByItem(_ context.Context, itemID string) ([]model.Genre, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := []model.Genre{}
	for _, ig := range m.s.itemGenres {
		if ig.ItemID != itemID {
			continue
		}
		if g, ok := m.s.genres[ig.GenreID]; ok {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// ---- user items ----

type memUserItems struct{ s *memState }

func (m *memUserItems) Create(_ context.Context, ui model.UserItem) (model.UserItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, ex := range m.s.userItems {
		if ex.UserID == ui.UserID && ex.ItemID == ui.ItemID {
			return model.UserItem{}, ErrConflict
		}
	}
	ui.ID = uuid.NewString()
	if ui.AddedAt.IsZero() {
		ui.AddedAt = time.Now().UTC()
	}
	m.s.userItems[ui.ID] = ui
	return ui, nil
}

func (m *memUserItems) ListByUser(_ context.Context, userID string, q ListQuery, f BacklogFilter) (Page[model.UserItem], error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	rows := []model.UserItem{}
	for _, ui := range m.s.userItems {
		if ui.UserID != userID {
			continue
		}
		if f.Status != "" && ui.Status != f.Status {
			continue
		}
		rows = append(rows, ui)
	}
	return pageOf(rows, func(a, b model.UserItem) bool {
		// user-defined order first, unranked entries after, then newest
		switch {
		case a.Order != nil && b.Order == nil:
			return true
		case a.Order == nil && b.Order != nil:
			return false
		case a.Order != nil && b.Order != nil && *a.Order != *b.Order:
			return *a.Order < *b.Order
		}
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.After(b.AddedAt)
		}
		return a.ID < b.ID
	}, q), nil
}

func (m *memUserItems) GetByUserAndItem(_ context.Context, userID, itemID string) (model.UserItem, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, ui := range m.s.userItems {
		if ui.UserID == userID && ui.ItemID == itemID {
			return ui, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (m *memUserItems) UpdateByUserAndItem(_ context.Context, userID, itemID string, upd UserItemUpdate) (model.UserItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, ui := range m.s.userItems {
		if ui.UserID != userID || ui.ItemID != itemID {
			continue
		}
		if upd.Status != nil {
			ui.Status = *upd.Status
		}
		if upd.Rating != nil {
			ui.Rating = upd.Rating
		}
		if upd.Order != nil {
			ui.Order = upd.Order
		}
		m.s.userItems[id] = ui
		return ui, nil
	}
	return model.UserItem{}, ErrNotFound
}

func (m *memUserItems) DeleteByUserAndItem(_ context.Context, userID, itemID string) (model.UserItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, ui := range m.s.userItems {
		if ui.UserID == userID && ui.ItemID == itemID {
			delete(m.s.userItems, id)
			return ui, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (m *memUserItems) StatsByUser(_ context.Context, userID string) (model.BacklogStats, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var stats model.BacklogStats
	for _, ui := range m.s.userItems {
		if ui.UserID != userID {
			continue
		}
		stats.Total++
		switch ui.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusInProgress:
			stats.InProgress++
		case model.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

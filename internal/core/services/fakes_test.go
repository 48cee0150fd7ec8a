package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
)

// memStore is an in-memory stand-in for the SQLite repository. It
// enforces the same unique constraints so the collision and conflict
// paths behave like the real store.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	links  map[string]*domain.Link
	clicks []domain.Click
	users  map[int64]*domain.User
}

func newMemStore() *memStore {
	return &memStore{
		links: make(map[string]*domain.Link),
		users: make(map[int64]*domain.User),
	}
}

func (m *memStore) CreateLink(_ context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.Key]; ok {
		return domain.ErrConflict
	}
	m.nextID++
	link.ID = m.nextID
	cp := *link
	m.links[link.Key] = &cp
	return nil
}

func (m *memStore) GetLinkByKey(_ context.Context, key string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[key]
	if !ok {
		return nil, nil
	}
	cp := *link
	return &cp, nil
}

func (m *memStore) ListLinks(_ context.Context, limit, offset int) ([]domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return window(m.sortedLinks(), limit, offset), nil
}

func (m *memStore) ListLinksByOwner(_ context.Context, ownerID int64, limit, offset int) ([]domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []domain.Link
	for _, l := range m.sortedLinks() {
		if l.OwnerID == ownerID {
			owned = append(owned, l)
		}
	}
	return window(owned, limit, offset), nil
}

func (m *memStore) UpdateActivation(_ context.Context, id int64, activated bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ID == id {
			l.Activated = activated
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) DeleteLink(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, l := range m.links {
		if l.ID == id {
			delete(m.links, key)
			m.dropClicks(id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) DeleteLinksByOwner(_ context.Context, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, l := range m.links {
		if l.OwnerID == ownerID {
			delete(m.links, key)
			m.dropClicks(l.ID)
		}
	}
	return nil
}

func (m *memStore) RecordClick(_ context.Context, click *domain.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	click.ID = m.nextID
	m.clicks = append(m.clicks, *click)
	return nil
}

func (m *memStore) CountClicksSince(_ context.Context, linkID int64, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.clicks {
		if c.LinkID == linkID && !c.OccurredAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrConflict
		}
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetUserByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	for key, l := range m.links {
		if l.OwnerID == id {
			delete(m.links, key)
			m.dropClicks(l.ID)
		}
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) clickCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clicks)
}

// dropClicks assumes m.mu is held.
func (m *memStore) dropClicks(linkID int64) {
	kept := m.clicks[:0]
	for _, c := range m.clicks {
		if c.LinkID != linkID {
			kept = append(kept, c)
		}
	}
	m.clicks = kept
}

// sortedLinks assumes m.mu is held.
func (m *memStore) sortedLinks() []domain.Link {
	out := make([]domain.Link, 0, len(m.links))
	for _, l := range m.links {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func window(links []domain.Link, limit, offset int) []domain.Link {
	if offset >= len(links) {
		return nil
	}
	links = links[offset:]
	if limit >= 0 && limit < len(links) {
		links = links[:limit]
	}
	return links
}

// memCache records cache traffic for assertions.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Resolution
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*domain.Resolution)}
}

func (c *memCache) GetResolution(_ context.Context, key string) (*domain.Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	return res, ok
}

func (c *memCache) SetResolution(_ context.Context, key string, res *domain.Resolution, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = res
}

func (c *memCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

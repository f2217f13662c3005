package store

import (
	"sync"
	"time"

	"leadsboard/server/internal/models"
)

// CachedStore memoizes worksheet reads for a short TTL to cut round trips.
// Any write invalidates both worksheets so the next read is fresh.
type CachedStore struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	leads   []models.RawLead
	leadsAt time.Time
	users   []models.User
	usersAt time.Time
}

func NewCached(store *Store, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, ttl: ttl, now: time.Now}
}

func (c *CachedStore) ReadLeads() ([]models.RawLead, error) {
	c.mu.RLock()
	if c.leads != nil && c.now().Sub(c.leadsAt) < c.ttl {
		rows := c.leads
		c.mu.RUnlock()
		return rows, nil
	}
	c.mu.RUnlock()

	rows, err := c.store.ReadLeads()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.leads = rows
	c.leadsAt = c.now()
	c.mu.Unlock()
	return rows, nil
}

func (c *CachedStore) ReadUsers() ([]models.User, error) {
	c.mu.RLock()
	if c.users != nil && c.now().Sub(c.usersAt) < c.ttl {
		users := c.users
		c.mu.RUnlock()
		return users, nil
	}
	c.mu.RUnlock()

	users, err := c.store.ReadUsers()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.users = users
	c.usersAt = c.now()
	c.mu.Unlock()
	return users, nil
}

func (c *CachedStore) SaveLeads(rows []models.RawLead) error {
	err := c.store.SaveLeads(rows)
	c.Invalidate()
	return err
}

func (c *CachedStore) WriteLeads(rows []models.RawLead) error {
	err := c.store.WriteLeads(rows)
	c.Invalidate()
	return err
}

func (c *CachedStore) DropLead(id int64) error {
	err := c.store.DropLead(id)
	c.Invalidate()
	return err
}

func (c *CachedStore) WriteUsers(users []models.User) error {
	err := c.store.WriteUsers(users)
	c.Invalidate()
	return err
}

// Invalidate clears both worksheet snapshots.
func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	c.leads = nil
	c.users = nil
	c.mu.Unlock()
}

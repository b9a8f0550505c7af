// Package results keeps generated summaries in memory so that the page and the
// download serve the same bytes. Nothing is persisted.
package results

import (
	"container/list"
	"sync"
	"time"

	"github.com/hyperjump/quotebench/internal/models"
)

// Store is an LRU of summaries whose entries expire after a fixed TTL.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

type entry struct {
	summary   models.QuoteSummary
	expiresAt time.Time
}

// NewStore returns a store holding at most maxEntries summaries for ttl each.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Store{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Put stores s under s.ID, replacing any previous entry with the same ID.
func (c *Store) Put(s models.QuoteSummary) {
	if s.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiresAt := now.Add(c.ttl)
	if elem, ok := c.entries[s.ID]; ok {
		e := elem.Value.(*entry)
		e.summary = s
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}
	c.entries[s.ID] = c.order.PushFront(&entry{summary: s, expiresAt: expiresAt})

	c.evictExpiredLocked(now)
	for len(c.entries) > c.maxEntries {
		c.removeElement(c.order.Back())
	}
}

// Get returns the summary stored under id. Expired entries are dropped.
func (c *Store) Get(id string) (models.QuoteSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[id]
	if !ok {
		return models.QuoteSummary{}, false
	}
	e := elem.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeElement(elem)
		return models.QuoteSummary{}, false
	}
	c.order.MoveToFront(elem)
	return e.summary, true
}

// Len returns the number of entries, expired or not.
func (c *Store) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Store) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry).expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *Store) removeElement(elem *list.Element) {
	delete(c.entries, elem.Value.(*entry).summary.ID)
	c.order.Remove(elem)
}

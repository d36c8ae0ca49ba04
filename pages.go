package folio

import (
	"sync"
	"time"
)

// Pages is the registry of mounted tabs, keyed by page id. Every removal
// path closes the page.
type Pages struct {
	mu      sync.Mutex
	entries map[string]*pageEntry
	idle    time.Duration
	limits  PageLimits
	factory func(visitor string) *Page
	now     func() time.Time
}

type pageEntry struct {
	page     *Page
	lastSeen time.Time
}

// PageLimits caps how many pages stay mounted. Zero means no cap.
type PageLimits struct {
	Total      int
	PerVisitor int
}

// NewPages returns a registry that builds pages with factory and drops
// pages idle for longer than idle.
func NewPages(idle time.Duration, limits PageLimits, factory func(visitor string) *Page) *Pages {
	return &Pages{
		entries: make(map[string]*pageEntry),
		idle:    idle,
		limits:  limits,
		factory: factory,
		now:     time.Now,
	}
}

// Build creates a page for visitor without registering it. Nothing can
// reach it afterwards; the caller closes it.
func (ps *Pages) Build(visitor string) *Page {
	return ps.factory(visitor)
}

// Mount creates and registers a fresh page for visitor. When a cap is hit
// the least recently seen page (of the visitor, then overall) is evicted.
func (ps *Pages) Mount(visitor string) *Page {
	p := ps.factory(visitor)
	var evicted []*Page

	ps.mu.Lock()
	if n := ps.limits.PerVisitor; n > 0 {
		for ps.countLocked(visitor) >= n {
			evicted = append(evicted, ps.evictOldestLocked(visitor, true))
		}
	}
	if n := ps.limits.Total; n > 0 {
		for len(ps.entries) >= n {
			evicted = append(evicted, ps.evictOldestLocked("", false))
		}
	}
	ps.entries[p.ID] = &pageEntry{page: p, lastSeen: ps.now()}
	ps.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}
	return p
}

func (ps *Pages) countLocked(visitor string) int {
	n := 0
	for _, e := range ps.entries {
		if e.page.Visitor == visitor {
			n++
		}
	}
	return n
}

// evictOldestLocked removes the least recently seen page, of visitor only
// when scoped. At least one candidate must exist.
func (ps *Pages) evictOldestLocked(visitor string, scoped bool) *Page {
	var oldest *pageEntry
	for _, e := range ps.entries {
		if scoped && e.page.Visitor != visitor {
			continue
		}
		if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
			oldest = e
		}
	}
	delete(ps.entries, oldest.page.ID)
	return oldest.page
}

// Get returns the page with id if it belongs to visitor, and marks it seen.
func (ps *Pages) Get(visitor, id string) (*Page, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	e, ok := ps.entries[id]
	if !ok || e.page.Visitor != visitor {
		return nil, false
	}
	e.lastSeen = ps.now()
	return e.page, true
}

// Unmount removes and closes a page. It reports whether the page existed.
func (ps *Pages) Unmount(visitor, id string) bool {
	ps.mu.Lock()
	e, ok := ps.entries[id]
	if ok && e.page.Visitor == visitor {
		delete(ps.entries, id)
	}
	ps.mu.Unlock()
	if !ok || e.page.Visitor != visitor {
		return false
	}
	e.page.Close()
	return true
}

// Len is the number of mounted pages.
func (ps *Pages) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.entries)
}

// Sweep closes pages that have been idle too long. Pages with a live
// pointer socket are never idle.
func (ps *Pages) Sweep() int {
	cutoff := ps.now().Add(-ps.idle)
	var stale []*Page

	ps.mu.Lock()
	for id, e := range ps.entries {
		if e.lastSeen.Before(cutoff) && !e.page.connected() {
			stale = append(stale, e.page)
			delete(ps.entries, id)
		}
	}
	ps.mu.Unlock()

	for _, p := range stale {
		p.Close()
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval. Returns a stop function.
func (ps *Pages) StartSweeper(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				ps.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// CloseAll closes and removes every page.
func (ps *Pages) CloseAll() {
	ps.mu.Lock()
	entries := ps.entries
	ps.entries = make(map[string]*pageEntry)
	ps.mu.Unlock()

	for _, e := range entries {
		e.page.Close()
	}
}

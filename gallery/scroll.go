package gallery

import "sync"

// Document is the surface whose scrolling a ScrollLock suppresses.
type Document interface {
	SetScrollLocked(locked bool)
}

// ScrollLock reference-counts holders of a document-level scroll lock.
// The document is locked while at least one Hold is outstanding.
type ScrollLock struct {
	mu    sync.Mutex
	doc   Document
	holds int
}

type nopDocument struct{}

func (nopDocument) SetScrollLocked(bool) {}

// NewScrollLock returns an unlocked ScrollLock over doc. A nil doc only
// counts holds.
func NewScrollLock(doc Document) *ScrollLock {
	if doc == nil {
		doc = nopDocument{}
	}
	return &ScrollLock{doc: doc}
}

// Acquire locks scrolling until the returned Hold is released.
func (l *ScrollLock) Acquire() *Hold {
	l.mu.Lock()
	l.holds++
	if l.holds == 1 {
		l.doc.SetScrollLocked(true)
	}
	l.mu.Unlock()
	return &Hold{lock: l}
}

// Locked reports whether any Hold is outstanding.
func (l *ScrollLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holds > 0
}

func (l *ScrollLock) release() {
	l.mu.Lock()
	l.holds--
	if l.holds == 0 {
		l.doc.SetScrollLocked(false)
	}
	l.mu.Unlock()
}

// Hold is one outstanding acquisition of a ScrollLock.
type Hold struct {
	lock *ScrollLock
	once sync.Once
}

// Release gives the hold back. Calling it more than once is harmless.
func (h *Hold) Release() {
	if h == nil {
		return
	}
	h.once.Do(h.lock.release)
}

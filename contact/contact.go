// Package contact implements the contact modal: an open flag owned by the
// page, and a transient "copied" acknowledgement that clears itself
// CopiedResetDelay after the last copy.
package contact

import (
	"context"
	"sync"
	"time"
)

// CopiedResetDelay is how long the copied acknowledgement stays up.
const CopiedResetDelay = 2 * time.Second

// Clipboard writes text to the visitor's clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// Modal is safe for concurrent use. The reset timer fires on its own
// goroutine.
type Modal struct {
	email string
	clock Clock

	mu     sync.Mutex
	open   bool
	copied bool
	reset  Timer
	gen    uint64
}

// New returns a closed modal for email. A nil clock means RealClock.
func New(email string, clock Clock) *Modal {
	if clock == nil {
		clock = RealClock{}
	}
	return &Modal{email: email, clock: clock}
}

// Email is the configured contact address.
func (m *Modal) Email() string { return m.email }

func (m *Modal) Open() {
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
}

func (m *Modal) Close() {
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()
}

// Toggle flips the modal and returns the new state.
func (m *Modal) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = !m.open
	return m.open
}

func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Copied reports whether the copied acknowledgement is showing.
func (m *Modal) Copied() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copied
}

// CopyEmail writes the email to cb and raises the copied flag. Clipboard
// failures are ignored. A pending reset is cancelled and a new one is
// scheduled, so the flag stays up until CopiedResetDelay after the latest
// copy.
func (m *Modal) CopyEmail(ctx context.Context, cb Clipboard) {
	if cb != nil {
		_ = cb.WriteText(ctx, m.email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.copied = true
	if m.reset != nil {
		m.reset.Stop()
	}
	m.gen++
	gen := m.gen
	m.reset = m.clock.AfterFunc(CopiedResetDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// A timer that lost the race with Stop must not clear a newer copy.
		if m.gen != gen {
			return
		}
		m.copied = false
		m.reset = nil
	})
}

// Shutdown cancels the pending reset and clears all state.
func (m *Modal) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reset != nil {
		m.reset.Stop()
		m.reset = nil
	}
	m.gen++
	m.open = false
	m.copied = false
}

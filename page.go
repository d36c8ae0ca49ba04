package folio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/reannemartin/folio/contact"
	"github.com/reannemartin/folio/content"
	"github.com/reannemartin/folio/dock"
	"github.com/reannemartin/folio/gallery"
	"github.com/reannemartin/folio/spotlight"
)

// ErrAssetIndex is returned when a zoom request names a gallery image or
// video clip the open project does not have.
var ErrAssetIndex = errors.New("folio: asset index out of range")

// Default viewport assumed until the browser reports its own.
const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
)

// pageDocument is the server's view of the tab's document: it records the
// scroll lock the browser is told to apply.
type pageDocument struct {
	locked bool
}

func (d *pageDocument) SetScrollLocked(locked bool) { d.locked = locked }

// Page is the interaction state of one mounted browser tab. It owns the
// contact modal and hands its Open method to the gallery, so a placeholder
// card can open the modal. Every method serialises on the page mutex; the
// modal's reset timer is the only state touched from another goroutine and
// it carries its own lock.
type Page struct {
	ID      string
	Visitor string
	Catalog *content.Catalog

	mu           sync.Mutex
	doc          pageDocument
	gallery      *gallery.Gallery
	contact      *contact.Modal
	spot         *spotlight.Tracker
	hero         *spotlight.Rect
	viewportSeen bool
	dock         *dock.Dock
	conns        int
	closed       bool
}

// NewPage mounts fresh interaction state for a tab. Nothing survives from a
// previous page.
func NewPage(id, visitor string, cat *content.Catalog, clock contact.Clock) *Page {
	p := &Page{
		ID:      id,
		Visitor: visitor,
		Catalog: cat,
		contact: contact.New(cat.Contact.Email, clock),
		spot:    spotlight.NewTracker(defaultViewportWidth, defaultViewportHeight),
		dock:    dock.New(dock.DefaultItems()),
	}
	p.gallery = gallery.New(cat, gallery.NewScrollLock(&p.doc), p.contact.Open)
	return p
}

// PageState is a snapshot for rendering.
type PageState struct {
	Selection    gallery.Selection
	Project      *content.Project
	ContactOpen  bool
	Copied       bool
	ScrollLocked bool
}

// State returns a snapshot of the gallery and modal.
func (p *Page) State() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Page) stateLocked() PageState {
	s := PageState{
		Selection:    p.gallery.Selection(),
		ContactOpen:  p.contact.IsOpen(),
		Copied:       p.contact.Copied(),
		ScrollLocked: p.doc.locked,
	}
	if proj, ok := p.gallery.OpenProject(); ok {
		s.Project = &proj
	}
	return s
}

// OpenProject selects a project card.
func (p *Page) OpenProject(id content.ProjectID) (gallery.Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gallery.Open(id)
}

func (p *Page) CloseProject() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gallery.Close()
}

// ZoomImage enlarges the n-th gallery image of the open project. It reports
// false when no project is open.
func (p *Page) ZoomImage(n int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	proj, ok := p.gallery.OpenProject()
	if !ok {
		return false, nil
	}
	if n < 0 || n >= len(proj.Gallery) {
		return false, ErrAssetIndex
	}
	return p.gallery.ZoomImage(proj.Gallery[n]), nil
}

// ZoomVideo enlarges the n-th video clip of the open project.
func (p *Page) ZoomVideo(n int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	proj, ok := p.gallery.OpenProject()
	if !ok {
		return false, nil
	}
	if n < 0 || n >= len(proj.Videos) {
		return false, ErrAssetIndex
	}
	return p.gallery.ZoomVideo(proj.Videos[n].URL), nil
}

func (p *Page) CloseZoom() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gallery.CloseZoom()
}

func (p *Page) OpenContact() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contact.Open()
}

func (p *Page) CloseContact() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contact.Close()
}

// CopyEmail writes the contact address to cb and raises the copied flag.
func (p *Page) CopyEmail(ctx context.Context, cb contact.Clipboard) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contact.CopyEmail(ctx, cb)
}

// Viewport records the tab's viewport. The first report re-centres the
// spotlight, as a fresh mount would.
func (p *Page) Viewport(w, h int) spotlight.Mask {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.viewportSeen {
		p.viewportSeen = true
		p.spot = spotlight.NewTracker(w, h)
		if p.hero != nil {
			p.spot.Mount(*p.hero)
		}
	} else {
		p.spot.Resize(w, h)
	}
	return p.spot.Mask()
}

// MountHero records the hero banner's bounding box.
func (p *Page) MountHero(r spotlight.Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hero = &r
	p.spot.Mount(r)
}

// UnmountHero forgets the hero banner; pointer moves are ignored until it
// is mounted again.
func (p *Page) UnmountHero() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hero = nil
	p.spot.Unmount()
}

// PointerMove moves the spotlight. The mask is returned only when it moved.
func (p *Page) PointerMove(clientX, clientY float64) (spotlight.Mask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.spot.Move(clientX, clientY) {
		return spotlight.Mask{}, false
	}
	return p.spot.Mask(), true
}

// Touch moves the spotlight to the first touch point.
func (p *Page) Touch(touches []spotlight.Point) (spotlight.Mask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.spot.Touch(touches) {
		return spotlight.Mask{}, false
	}
	return p.spot.Mask(), true
}

// Mask is the current spotlight.
func (p *Page) Mask() spotlight.Mask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spot.Mask()
}

// DockItems lists the dock entries in display order.
func (p *Page) DockItems() []dock.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dock.Items()
}

func (p *Page) DockLayout(boxes []dock.Box) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dock.Layout(boxes)
}

func (p *Page) DockMove(pageX float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dock.Move(pageX)
}

func (p *Page) DockLeave() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dock.Leave()
}

// StepDock advances the dock springs by dt. It reports false, without
// stepping, once every icon has settled.
func (p *Page) StepDock(dt time.Duration) ([]float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dock.Settled() {
		return nil, false
	}
	return p.dock.Step(dt), true
}

func (p *Page) attach() {
	p.mu.Lock()
	p.conns++
	p.mu.Unlock()
}

func (p *Page) detach() {
	p.mu.Lock()
	p.conns--
	p.mu.Unlock()
}

// connected reports whether a pointer socket is attached.
func (p *Page) connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns > 0
}

// Close tears the page down: the gallery releases its scroll lock, the
// copied timer is stopped and the spotlight forgets its container. Later
// gallery opens fail with gallery.ErrUnmounted.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.gallery.Unmount()
	p.contact.Shutdown()
	p.spot.Unmount()
	p.dock.Leave()
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Package gallery implements the project gallery: grid sizing and the
// selection state machine that decides which project is open and which of
// its assets is enlarged.
//
// States:
//
//	Closed -> ProjectOpen(id) -> ProjectOpen(id)+ImageZoomed(url)
//	                          -> ProjectOpen(id)+VideoZoomed(url)
//
// Zoom only exists inside an open project. While a project is open the
// gallery holds the document scroll lock; every path back to Closed gives it
// up, Unmount included.
package gallery

import (
	"errors"

	"github.com/reannemartin/folio/content"
)

var (
	// ErrProjectNotFound is returned when opening an id the catalog lacks.
	ErrProjectNotFound = errors.New("gallery: project not found")
	// ErrUnmounted is returned by Open after Unmount.
	ErrUnmounted = errors.New("gallery: unmounted")
)

// Outcome reports what Open did.
type Outcome int

const (
	// Opened means the project's detail view is now open.
	Opened Outcome = iota
	// RedirectedToContact means a placeholder card was clicked and the
	// contact flow was invoked instead.
	RedirectedToContact
)

func (o Outcome) String() string {
	switch o {
	case Opened:
		return "opened"
	case RedirectedToContact:
		return "redirected-to-contact"
	default:
		return "unknown"
	}
}

// ZoomKind tells which asset kind is enlarged.
type ZoomKind int

const (
	ZoomNone ZoomKind = iota
	ZoomImage
	ZoomVideo
)

// Zoom is the enlarged asset layered over an open project.
type Zoom struct {
	Kind ZoomKind
	URL  string
}

// Selection is a snapshot of the state machine.
type Selection struct {
	Open    bool
	Project content.ProjectID
	Zoom    Zoom
}

// Gallery is the selection state machine. It is not safe for concurrent
// use; its owner serialises calls.
type Gallery struct {
	catalog     *content.Catalog
	lock        *ScrollLock
	openContact func()

	open    *openProject
	hold    *Hold
	mounted bool
}

type openProject struct {
	id   content.ProjectID
	zoom Zoom
}

// New returns a Closed gallery over catalog. openContact is invoked when a
// placeholder card is opened. Either may be nil.
func New(catalog *content.Catalog, lock *ScrollLock, openContact func()) *Gallery {
	if lock == nil {
		lock = NewScrollLock(nil)
	}
	if openContact == nil {
		openContact = func() {}
	}
	return &Gallery{
		catalog:     catalog,
		lock:        lock,
		openContact: openContact,
		mounted:     true,
	}
}

// Open opens the detail view of project id. Placeholder projects never
// produce a detail view: the contact callback runs once and the selection
// is left as it was.
func (g *Gallery) Open(id content.ProjectID) (Outcome, error) {
	if !g.mounted {
		return Opened, ErrUnmounted
	}
	p, ok := g.catalog.Project(id)
	if !ok {
		return Opened, ErrProjectNotFound
	}
	if p.Placeholder {
		g.openContact()
		return RedirectedToContact, nil
	}
	g.open = &openProject{id: id}
	if g.hold == nil {
		g.hold = g.lock.Acquire()
	}
	return Opened, nil
}

// Close returns to Closed, dropping any zoom and the scroll lock.
func (g *Gallery) Close() {
	g.open = nil
	g.hold.Release()
	g.hold = nil
}

// ZoomImage enlarges an image of the open project. It reports false, and
// changes nothing, when no project is open.
func (g *Gallery) ZoomImage(url string) bool {
	return g.zoom(Zoom{Kind: ZoomImage, URL: url})
}

// ZoomVideo enlarges a video of the open project. It reports false, and
// changes nothing, when no project is open.
func (g *Gallery) ZoomVideo(url string) bool {
	return g.zoom(Zoom{Kind: ZoomVideo, URL: url})
}

func (g *Gallery) zoom(z Zoom) bool {
	if g.open == nil || z.URL == "" {
		return false
	}
	g.open.zoom = z
	return true
}

// CloseZoom drops the enlarged asset and keeps the project open.
func (g *Gallery) CloseZoom() {
	if g.open != nil {
		g.open.zoom = Zoom{}
	}
}

// Unmount tears the gallery down. After Unmount the scroll lock is free and
// Open fails with ErrUnmounted.
func (g *Gallery) Unmount() {
	g.Close()
	g.mounted = false
}

// OpenProjectID returns the open project, if any.
func (g *Gallery) OpenProjectID() (content.ProjectID, bool) {
	if g.open == nil {
		return "", false
	}
	return g.open.id, true
}

// OpenProject returns the open project record, if any.
func (g *Gallery) OpenProject() (content.Project, bool) {
	if g.open == nil {
		return content.Project{}, false
	}
	return g.catalog.Project(g.open.id)
}

// ZoomedImage returns the enlarged image URL, if any.
func (g *Gallery) ZoomedImage() (string, bool) {
	if g.open == nil || g.open.zoom.Kind != ZoomImage {
		return "", false
	}
	return g.open.zoom.URL, true
}

// ZoomedVideo returns the enlarged video URL, if any.
func (g *Gallery) ZoomedVideo() (string, bool) {
	if g.open == nil || g.open.zoom.Kind != ZoomVideo {
		return "", false
	}
	return g.open.zoom.URL, true
}

// Selection returns a snapshot of the current state.
func (g *Gallery) Selection() Selection {
	if g.open == nil {
		return Selection{}
	}
	return Selection{Open: true, Project: g.open.id, Zoom: g.open.zoom}
}

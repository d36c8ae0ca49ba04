package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/reannemartin/folio/contact"
	"github.com/reannemartin/folio/content"
	"github.com/reannemartin/folio/dock"
	"github.com/reannemartin/folio/gallery"
	"github.com/reannemartin/folio/spotlight"
)

func testCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	cat, err := content.Decode(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("decode test catalog: %v", err)
	}
	return cat
}

func newTestPage(t *testing.T) (*Page, *contact.ManualClock) {
	t.Helper()
	clock := &contact.ManualClock{}
	return NewPage("page-1", "visitor-1", testCatalog(t), clock), clock
}

func TestPagePlaceholderOpensContact(t *testing.T) {
	p, _ := newTestPage(t)

	out, err := p.OpenProject("cta")
	if err != nil {
		t.Fatal(err)
	}
	if out != gallery.RedirectedToContact {
		t.Errorf("outcome = %v, want RedirectedToContact", out)
	}
	s := p.State()
	if !s.ContactOpen {
		t.Error("contact modal should be open")
	}
	if s.Selection.Open || s.ScrollLocked {
		t.Errorf("selection should be unchanged: %+v", s)
	}
}

func TestPageOpenAndZoom(t *testing.T) {
	p, _ := newTestPage(t)

	if ok, err := p.ZoomImage(0); ok || err != nil {
		t.Errorf("zoom while closed = %v, %v; want false, nil", ok, err)
	}

	if _, err := p.OpenProject("alpha"); err != nil {
		t.Fatal(err)
	}
	s := p.State()
	if !s.ScrollLocked || s.Project == nil || s.Project.ID != "alpha" {
		t.Fatalf("state after open = %+v", s)
	}

	if ok, err := p.ZoomImage(1); !ok || err != nil {
		t.Fatalf("ZoomImage(1) = %v, %v", ok, err)
	}
	if z := p.State().Selection.Zoom; z.Kind != gallery.ZoomImage || z.URL != "https://cdn.example.com/a2.png" {
		t.Errorf("zoom = %+v", z)
	}

	if ok, err := p.ZoomVideo(0); !ok || err != nil {
		t.Fatalf("ZoomVideo(0) = %v, %v", ok, err)
	}
	if z := p.State().Selection.Zoom; z.Kind != gallery.ZoomVideo || z.URL != "https://cdn.example.com/teaser.mp4" {
		t.Errorf("video zoom replaced image zoom incorrectly: %+v", z)
	}

	if _, err := p.ZoomImage(7); !errors.Is(err, ErrAssetIndex) {
		t.Errorf("ZoomImage(7) err = %v, want ErrAssetIndex", err)
	}

	p.CloseZoom()
	if z := p.State().Selection.Zoom; z.Kind != gallery.ZoomNone {
		t.Errorf("zoom after CloseZoom = %+v", z)
	}

	p.CloseProject()
	if s := p.State(); s.Selection.Open || s.ScrollLocked {
		t.Errorf("state after close = %+v", s)
	}
}

func TestPageCloseReleasesEverything(t *testing.T) {
	p, clock := newTestPage(t)
	if _, err := p.OpenProject("alpha"); err != nil {
		t.Fatal(err)
	}
	p.OpenContact()
	p.CopyEmail(context.Background(), nil)

	p.Close()
	p.Close()

	s := p.State()
	if s.ScrollLocked || s.Selection.Open || s.ContactOpen || s.Copied {
		t.Errorf("state after Close = %+v", s)
	}
	clock.Advance(contact.CopiedResetDelay)
	if _, err := p.OpenProject("alpha"); !errors.Is(err, gallery.ErrUnmounted) {
		t.Errorf("open after Close err = %v, want ErrUnmounted", err)
	}
	if !p.Closed() {
		t.Error("Closed should report true")
	}
}

func TestPageCopyEmail(t *testing.T) {
	p, clock := newTestPage(t)
	var copied string
	p.CopyEmail(context.Background(), contact.ClipboardFunc(func(_ context.Context, text string) error {
		copied = text
		return nil
	}))
	if copied != "owner@example.com" || !p.State().Copied {
		t.Fatalf("copy wrote %q, copied=%v", copied, p.State().Copied)
	}
	clock.Advance(contact.CopiedResetDelay)
	if p.State().Copied {
		t.Error("copied should reset after the delay")
	}
}

func TestPageSpotlight(t *testing.T) {
	p, _ := newTestPage(t)

	if _, ok := p.PointerMove(10, 10); ok {
		t.Error("move without a hero should be ignored")
	}

	m := p.Viewport(500, 800)
	if m.Radius != spotlight.MobileRadius || m.X != 250 || m.Y != 400 {
		t.Errorf("first viewport mask = %+v", m)
	}

	p.MountHero(spotlight.Rect{Left: 30, Top: 20, Width: 400, Height: 600})
	m, ok := p.PointerMove(150, 100)
	if !ok || m.X != 120 || m.Y != 80 {
		t.Errorf("mask = %+v ok=%v", m, ok)
	}

	m = p.Viewport(1200, 800)
	if m.Radius != spotlight.DesktopRadius || m.X != 120 {
		t.Errorf("resize should keep the position and switch radius: %+v", m)
	}

	if m, ok := p.Touch([]spotlight.Point{{X: 40, Y: 40}}); !ok || m.X != 10 || m.Y != 20 {
		t.Errorf("touch mask = %+v ok=%v", m, ok)
	}

	p.UnmountHero()
	if _, ok := p.PointerMove(1, 1); ok {
		t.Error("move after UnmountHero should be ignored")
	}
}

func TestPageDock(t *testing.T) {
	p, _ := newTestPage(t)

	if _, ok := p.StepDock(16 * time.Millisecond); ok {
		t.Error("a dock at rest should not produce frames")
	}
	if err := p.DockLayout([]dock.Box{{Left: 0, Width: 40}, {Left: 50, Width: 40}, {Left: 100, Width: 40}, {Left: 150, Width: 40}}); err != nil {
		t.Fatal(err)
	}
	p.DockMove(20)
	widths, ok := p.StepDock(16 * time.Millisecond)
	if !ok || len(widths) != 4 || widths[0] <= dock.RestWidth {
		t.Errorf("frame = %v ok=%v", widths, ok)
	}
	p.DockLeave()
	for i := 0; i < 200; i++ {
		p.StepDock(16 * time.Millisecond)
	}
	if _, ok := p.StepDock(16 * time.Millisecond); ok {
		t.Error("dock should settle after leaving")
	}
}

func TestPagesRegistry(t *testing.T) {
	cat := testCatalog(t)
	n := 0
	ps := NewPages(time.Minute, PageLimits{}, func(visitor string) *Page {
		n++
		return NewPage(strings.Repeat("p", n), visitor, cat, &contact.ManualClock{})
	})
	now := time.Now()
	ps.now = func() time.Time { return now }

	a := ps.Mount("alice")
	b := ps.Mount("bob")
	if a.ID == b.ID || ps.Len() != 2 {
		t.Fatalf("mount: a=%q b=%q len=%d", a.ID, b.ID, ps.Len())
	}

	if _, ok := ps.Get("bob", a.ID); ok {
		t.Error("a visitor must not reach another visitor's page")
	}
	if got, ok := ps.Get("alice", a.ID); !ok || got != a {
		t.Error("Get should find alice's page")
	}

	if _, err := a.OpenProject("alpha"); err != nil {
		t.Fatal(err)
	}
	if ps.Unmount("bob", a.ID) {
		t.Error("bob should not unmount alice's page")
	}
	if !ps.Unmount("alice", a.ID) {
		t.Fatal("Unmount should report the page existed")
	}
	if !a.Closed() || a.State().ScrollLocked {
		t.Error("unmounted page should be closed and unlocked")
	}
	if ps.Unmount("alice", a.ID) {
		t.Error("second Unmount should report false")
	}

	c := ps.Mount("carol")
	c.attach()
	now = now.Add(2 * time.Minute)
	if swept := ps.Sweep(); swept != 1 {
		t.Errorf("Sweep removed %d pages, want 1", swept)
	}
	if !b.Closed() {
		t.Error("idle page should be closed by the sweeper")
	}
	if c.Closed() {
		t.Error("a page with a live socket should survive the sweep")
	}

	c.detach()
	ps.CloseAll()
	if ps.Len() != 0 || !c.Closed() {
		t.Error("CloseAll should close every page")
	}
}

func TestPagesCaps(t *testing.T) {
	cat := testCatalog(t)
	n := 0
	ps := NewPages(time.Minute, PageLimits{Total: 4, PerVisitor: 2}, func(visitor string) *Page {
		n++
		return NewPage(fmt.Sprintf("p%d", n), visitor, cat, &contact.ManualClock{})
	})
	now := time.Now()
	ps.now = func() time.Time { return now }
	mount := func(visitor string) *Page {
		now = now.Add(time.Second)
		return ps.Mount(visitor)
	}

	a1 := mount("alice")
	a2 := mount("alice")
	a3 := mount("alice")
	if !a1.Closed() || a2.Closed() || a3.Closed() {
		t.Error("the visitor's oldest page should be evicted first")
	}
	if ps.Len() != 2 {
		t.Errorf("len = %d, want 2", ps.Len())
	}
	if _, ok := ps.Get("alice", a1.ID); ok {
		t.Error("evicted page should be gone")
	}

	// a2 was just touched, so a3 is now alice's oldest page.
	now = now.Add(time.Second)
	ps.Get("alice", a2.ID)

	b1 := mount("bob")
	b2 := mount("bob")
	if ps.Len() != 4 {
		t.Fatalf("len = %d, want 4", ps.Len())
	}
	c1 := mount("carol")
	if ps.Len() != 4 || !a3.Closed() || a2.Closed() {
		t.Errorf("total cap should evict the least recently seen page: len=%d", ps.Len())
	}
	if b1.Closed() || b2.Closed() || c1.Closed() {
		t.Error("newer pages should survive")
	}
}

func TestPagesBuildDoesNotRegister(t *testing.T) {
	cat := testCatalog(t)
	ps := NewPages(time.Minute, PageLimits{}, func(visitor string) *Page {
		return NewPage("crawler", visitor, cat, &contact.ManualClock{})
	})
	p := ps.Build("bot")
	if p.Visitor != "bot" || ps.Len() != 0 {
		t.Errorf("Build registered the page: len=%d", ps.Len())
	}
	if _, ok := ps.Get("bot", p.ID); ok {
		t.Error("a built page must not be reachable")
	}
}

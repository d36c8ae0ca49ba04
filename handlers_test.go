package folio

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/reannemartin/folio/analytics"
	"github.com/reannemartin/folio/contact"
)

type testSite struct {
	app    *App
	srv    *httptest.Server
	client *http.Client
	jar    *cookiejar.Jar
	clock  *contact.ManualClock
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	dir := t.TempDir()
	cfg := SiteConfig{
		Name:                  "Folio",
		URL:                   "https://folio.example",
		SessionSecret:         "test-secret",
		CatalogPath:           writeCatalog(t, dir, testCatalogYAML),
		AnalyticsEnabled:      true,
		AnalyticsDatabasePath: filepath.Join(dir, "analytics.db"),
		LogLevel:              "off",
	}
	clock := &contact.ManualClock{}
	app := New(cfg, WithClock(clock), WithStaticDir(dir))
	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	srv := httptest.NewServer(app.Echo)
	jar, _ := cookiejar.New(nil)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return &testSite{
		app:   app,
		srv:   srv,
		jar:   jar,
		clock: clock,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (s *testSite) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Get(s.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

var pageIDPattern = regexp.MustCompile(`data-page="([^"]+)"`)

// mount loads the home page and returns the mounted page id.
func (s *testSite) mount(t *testing.T) string {
	t.Helper()
	resp, body := s.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}
	m := pageIDPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("home page has no data-page attribute")
	}
	return m[1]
}

func (s *testSite) csrf(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(s.srv.URL)
	for _, c := range s.jar.Cookies(u) {
		if c.Name == "_csrf" {
			return c.Value
		}
	}
	t.Fatal("no _csrf cookie")
	return ""
}

// htmx sends an htmx-style request carrying the page and CSRF headers.
func (s *testSite) htmx(t *testing.T, method, path, pageID string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(method, s.srv.URL+path, nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set(csrfHeader, s.csrf(t))
	if pageID != "" {
		req.Header.Set(pageHeader, pageID)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp, readBody(t, resp)
}

func TestHomeRendersCatalog(t *testing.T) {
	s := newTestSite(t)
	resp, body := s.get(t, "/")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	for _, want := range []string{
		`hx-post="/gallery/open/alpha/"`,
		"md:col-span-2 md:row-span-2",
		"tile-cta",
		"Skill Set 01",
		"Hello <strong>there</strong>",
		"--spotlight: radial-gradient(circle 350px at 640px 400px",
		`"@type":"Person"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if s.app.Pages.Len() != 1 {
		t.Errorf("mounted pages = %d, want 1", s.app.Pages.Len())
	}
}

func TestEveryLoadMountsFreshPage(t *testing.T) {
	s := newTestSite(t)
	first := s.mount(t)
	if _, body := s.htmx(t, http.MethodPost, "/gallery/open/alpha/", first); !strings.Contains(body, "detail") {
		t.Fatal("project did not open")
	}

	second := s.mount(t)
	if first == second {
		t.Fatal("reload reused the page id")
	}
	_, body := s.get(t, "/")
	if strings.Contains(body, `id="detail-title"`) {
		t.Error("fresh page should not show the previous selection")
	}
}

func TestCrawlersDoNotMountPages(t *testing.T) {
	s := newTestSite(t)
	for _, path := range []string{"/", "/work/alpha/", "/work/nope/"} {
		req, _ := http.NewRequest(http.MethodGet, s.srv.URL+path, nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		resp, err := s.client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		body := readBody(t, resp)
		if path != "/work/nope/" && (resp.StatusCode != http.StatusOK || !strings.Contains(body, "Alpha")) {
			t.Errorf("%s: crawler got %d", path, resp.StatusCode)
		}
	}
	if n := s.app.Pages.Len(); n != 0 {
		t.Errorf("pages = %d, want 0 after crawler loads", n)
	}
}

func TestReloadsAreCapped(t *testing.T) {
	s := newTestSite(t)
	s.app.Pages.limits.PerVisitor = 3

	first := s.mount(t)
	for i := 0; i < 5; i++ {
		s.mount(t)
	}
	if n := s.app.Pages.Len(); n != 3 {
		t.Errorf("pages = %d, want 3", n)
	}
	resp, _ := s.htmx(t, http.MethodPost, "/gallery/open/alpha/", first)
	if resp.StatusCode != http.StatusConflict || resp.Header.Get("HX-Refresh") != "true" {
		t.Errorf("evicted page = %d, want 409 with refresh", resp.StatusCode)
	}
}

func TestPageLoadsRateLimited(t *testing.T) {
	s := newTestSite(t)
	s.app.pageLimiter.max = 2

	s.mount(t)
	s.get(t, "/work/alpha/")
	if resp, _ := s.get(t, "/"); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("third load = %d, want 429", resp.StatusCode)
	}
	if n := s.app.Pages.Len(); n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}
}

func TestGalleryFlow(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	resp, body := s.htmx(t, http.MethodPost, "/gallery/open/alpha/", page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "<strong>Alpha</strong> project") {
		t.Error("detail should render the markdown description")
	}
	if !strings.Contains(body, `hx-post="/gallery/open/beta/"`) {
		t.Error("beta shares a tag and should be listed as related")
	}
	if got := resp.Header.Get("HX-Trigger"); !strings.Contains(got, `"folio:scroll":{"locked":true}`) {
		t.Errorf("HX-Trigger = %q, want scroll locked", got)
	}

	resp, body = s.htmx(t, http.MethodPost, "/gallery/zoom/image/1/", page)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `<img src="https://cdn.example.com/a2.png" alt="">`) {
		t.Errorf("zoom image = %d, body missing enlarged a2.png", resp.StatusCode)
	}

	_, body = s.htmx(t, http.MethodPost, "/gallery/zoom/video/0/", page)
	if !strings.Contains(body, `<video src="https://cdn.example.com/teaser.mp4" controls autoplay`) {
		t.Error("zoom video should replace the zoomed image")
	}
	if strings.Contains(body, `<img src="https://cdn.example.com/a2.png" alt="">`) {
		t.Error("image zoom should be gone")
	}

	_, body = s.htmx(t, http.MethodPost, "/gallery/zoom/close/", page)
	if strings.Contains(body, `class="zoom"`) {
		t.Error("zoom close left an enlarged asset")
	}
	if !strings.Contains(body, `id="detail-title"`) {
		t.Error("zoom close should keep the project open")
	}

	resp, body = s.htmx(t, http.MethodPost, "/gallery/close/", page)
	if strings.Contains(body, `id="detail-title"`) {
		t.Error("close should clear the overlay")
	}
	if got := resp.Header.Get("HX-Trigger"); !strings.Contains(got, `"locked":false`) {
		t.Errorf("HX-Trigger = %q, want scroll unlocked", got)
	}
}

func TestGalleryErrors(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown project", "/gallery/open/nope/", http.StatusNotFound},
		{"zoom while closed", "/gallery/zoom/image/0/", http.StatusOK},
		{"bad index", "/gallery/zoom/image/x/", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := s.htmx(t, http.MethodPost, tt.path, page)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	s.htmx(t, http.MethodPost, "/gallery/open/alpha/", page)
	if resp, _ := s.htmx(t, http.MethodPost, "/gallery/zoom/image/2/", page); resp.StatusCode != http.StatusNotFound {
		t.Errorf("out-of-range zoom = %d, want 404", resp.StatusCode)
	}
}

func TestPlaceholderOpensContact(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	resp, body := s.htmx(t, http.MethodPost, "/gallery/open/cta/", page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "contact-card") {
		t.Error("placeholder should open the contact modal")
	}
	if strings.Contains(body, `id="detail-title"`) {
		t.Error("placeholder should not open a project")
	}
	if got := resp.Header.Get("HX-Trigger"); !strings.Contains(got, `"locked":false`) {
		t.Errorf("HX-Trigger = %q, want scroll unlocked", got)
	}
}

func TestContactCopyFlow(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	s.htmx(t, http.MethodPost, "/contact/open/", page)
	resp, body := s.htmx(t, http.MethodPost, "/contact/copy/", page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("copy = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("HX-Trigger"); !strings.Contains(got, `"folio:copy":{"text":"owner@example.com"}`) {
		t.Errorf("HX-Trigger = %q, want folio:copy", got)
	}
	if !strings.Contains(body, "Copied!") {
		t.Error("copied acknowledgement missing")
	}

	s.clock.Advance(contact.CopiedResetDelay)
	_, body = s.htmx(t, http.MethodGet, "/contact/", page)
	if strings.Contains(body, "Copied!") {
		t.Error("acknowledgement should clear after the reset delay")
	}
	if !strings.Contains(body, "Copy Email") {
		t.Error("modal should still be open with the copy button")
	}

	_, body = s.htmx(t, http.MethodPost, "/contact/close/", page)
	if strings.Contains(body, "contact-card") {
		t.Error("close should hide the modal")
	}
}

func TestExpiredPageRefreshes(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	resp, _ := s.htmx(t, http.MethodPost, "/leave/", page)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("leave = %d", resp.StatusCode)
	}
	if s.app.Pages.Len() != 0 {
		t.Errorf("pages after leave = %d", s.app.Pages.Len())
	}

	resp, _ = s.htmx(t, http.MethodPost, "/gallery/open/alpha/", page)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
	if resp.Header.Get("HX-Refresh") != "true" {
		t.Error("missing HX-Refresh")
	}
}

func TestPagesAreScopedToVisitor(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	// A second browser on the same site gets its own visitor cookie.
	stranger := &testSite{app: s.app, srv: s.srv}
	stranger.jar, _ = cookiejar.New(nil)
	stranger.client = &http.Client{Jar: stranger.jar}
	stranger.mount(t)

	resp, _ := stranger.htmx(t, http.MethodPost, "/gallery/open/alpha/", page)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("foreign visitor got %d, want 409", resp.StatusCode)
	}
	if st := mustPage(t, s.app, page).State(); st.Selection.Open {
		t.Error("foreign visitor changed the page")
	}
}

func mustPage(t *testing.T, a *App, id string) *Page {
	t.Helper()
	a.Pages.mu.Lock()
	defer a.Pages.mu.Unlock()
	e, ok := a.Pages.entries[id]
	if !ok {
		t.Fatalf("page %s not mounted", id)
	}
	return e.page
}

func TestCSRFRequired(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	req, _ := http.NewRequest(http.MethodPost, s.srv.URL+"/gallery/open/alpha/", nil)
	req.Header.Set(pageHeader, page)
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestWorkDeepLink(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.get(t, "/work/alpha/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		`id="detail-title">Alpha</h2>`,
		"<title>Alpha | Test Owner</title>",
		`"@type":"CreativeWork"`,
		`<link rel="canonical" href="https://folio.example/work/alpha/">`,
		`<html lang="en" data-scroll-locked="true">`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("deep link missing %q", want)
		}
	}

	_, body = s.get(t, "/work/cta/")
	if !strings.Contains(body, "contact-card") {
		t.Error("placeholder deep link should open the contact modal")
	}
	if !strings.Contains(body, `data-scroll-locked="false"`) {
		t.Error("placeholder deep link should leave scrolling unlocked")
	}

	_, body = s.get(t, "/")
	if !strings.Contains(body, `data-scroll-locked="false"`) {
		t.Error("home should render unlocked")
	}

	resp, body = s.get(t, "/work/nope/")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "404") {
		t.Errorf("unknown project = %d", resp.StatusCode)
	}
	if n := s.app.Pages.Len(); n != 3 {
		t.Errorf("pages = %d, want 3 (404 should not leave a page mounted)", n)
	}

	resp, _ = s.get(t, "/work/alpha")
	if resp.StatusCode != http.StatusMovedPermanently {
		t.Errorf("missing slash = %d, want 301", resp.StatusCode)
	}
}

func TestSitemapAndFeed(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.get(t, "/sitemap.xml")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("sitemap content type = %q", ct)
	}
	if !strings.Contains(body, "<loc>https://folio.example/work/alpha/</loc>") {
		t.Error("sitemap missing alpha")
	}
	if strings.Contains(body, "/work/cta/") {
		t.Error("sitemap should skip the placeholder card")
	}

	_, body = s.get(t, "/feed.xml")
	if !strings.Contains(body, "<title>Alpha</title>") || !strings.Contains(body, "<category>Brand</category>") {
		t.Errorf("feed missing alpha item:\n%s", body)
	}
	if strings.Contains(body, "Collaborate") {
		t.Error("feed should skip the placeholder card")
	}

	_, body = s.get(t, "/robots.txt")
	if !strings.Contains(body, "Sitemap: https://folio.example/sitemap.xml") {
		t.Errorf("robots.txt = %q", body)
	}
}

func TestGrainAndHealth(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.get(t, "/grain.png")
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	img, err := png.Decode(bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("decode grain: %v", err)
	}
	if b := img.Bounds(); b.Dx() != grainSize || b.Dy() != grainSize {
		t.Errorf("grain bounds = %v", b)
	}

	s.mount(t)
	_, body = s.get(t, "/healthz")
	if !strings.Contains(body, `"pages":1`) || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("healthz = %s", body)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	s := newTestSite(t)
	for _, path := range []string{"/public/folio.js", "/public/folio.css"} {
		resp, body := s.get(t, path)
		if resp.StatusCode != http.StatusOK || body == "" {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
	}
}

func TestCopyRateLimited(t *testing.T) {
	s := newTestSite(t)
	s.app.copyLimiter.max = 2
	page := s.mount(t)

	for i := 0; i < 2; i++ {
		if resp, _ := s.htmx(t, http.MethodPost, "/contact/copy/", page); resp.StatusCode != http.StatusOK {
			t.Fatalf("copy %d = %d", i, resp.StatusCode)
		}
	}
	if resp, _ := s.htmx(t, http.MethodPost, "/contact/copy/", page); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("third copy = %d, want 429", resp.StatusCode)
	}
}

func TestInteractionsAreTracked(t *testing.T) {
	s := newTestSite(t)
	page := s.mount(t)

	s.htmx(t, http.MethodPost, "/gallery/open/alpha/", page)
	s.htmx(t, http.MethodPost, "/gallery/zoom/image/0/", page)
	s.htmx(t, http.MethodPost, "/gallery/close/", page)
	s.htmx(t, http.MethodPost, "/gallery/open/cta/", page)
	s.htmx(t, http.MethodPost, "/contact/copy/", page)

	now := time.Now().UTC()
	sum, err := s.app.Analytics.Summary(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	want := map[analytics.Kind]int{
		analytics.KindView:            1,
		analytics.KindProjectOpen:     1,
		analytics.KindZoomImage:       1,
		analytics.KindContactRedirect: 1,
		analytics.KindEmailCopy:       1,
	}
	for k, n := range want {
		if sum.ByKind[k] != n {
			t.Errorf("%s = %d, want %d", k, sum.ByKind[k], n)
		}
	}
}

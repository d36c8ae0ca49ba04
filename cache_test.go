package folio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testCatalogYAML = `owner: Test Owner
hero:
  headline: [TEST, OWNER]
  subtext: Designer
works:
  heading: Works
  years: "2024"
projects:
  - id: alpha
    title: Alpha
    category: Brand
    size: large
    image: https://cdn.example.com/alpha.png
    gallery: [https://cdn.example.com/a1.png, https://cdn.example.com/a2.png]
    videos:
      - {title: Teaser, url: https://cdn.example.com/teaser.mp4}
    tags: [Brand]
    description: "**Alpha** project"
  - id: beta
    title: Beta
    category: Brand
    image: https://cdn.example.com/beta.png
    tags: [brand]
  - id: cta
    title: Let's Collaborate
    category: Collaborate
    placeholder: true
skills:
  - {title: Systems, icon: layers}
about:
  bio: ["Hello **there**"]
  status: Open to Work
contact:
  email: owner@example.com
  social: https://linkedin.com/in/owner
  social_label: LinkedIn
footer: Footer text
`

func writeCatalog(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCatalogCacheEmbedded(t *testing.T) {
	c, err := NewCatalogCache("", time.Minute, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(c.Get().Projects); got != 10 {
		t.Errorf("embedded catalog has %d projects, want 10", got)
	}
}

func TestCatalogCacheReloads(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), testCatalogYAML)
	c, err := NewCatalogCache(path, time.Minute, echo.New().Logger)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	c.now = func() time.Time { return now }

	first := c.Get()
	if first.Owner != "Test Owner" {
		t.Fatalf("Owner = %q", first.Owner)
	}

	writeCatalog(t, filepath.Dir(path), strings.Replace(testCatalogYAML, "Test Owner", "New Owner", 1))
	if c.Get() != first {
		t.Error("catalog should not reload before the TTL")
	}

	now = now.Add(2 * time.Minute)
	if got := c.Get().Owner; got != "New Owner" {
		t.Errorf("after TTL Owner = %q, want New Owner", got)
	}
}

func TestCatalogCacheKeepsLastValid(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), testCatalogYAML)
	c, err := NewCatalogCache(path, time.Minute, echo.New().Logger)
	if err != nil {
		t.Fatal(err)
	}
	good := c.Get()

	// Two placeholders fail validation.
	writeCatalog(t, filepath.Dir(path), strings.Replace(testCatalogYAML, "placeholder: true", "placeholder: true\n  - id: cta2\n    title: Again\n    placeholder: true", 1))
	c.Invalidate()

	if got := c.Get(); got != good {
		t.Error("invalid reload should keep the previous snapshot")
	}
}

func TestCatalogCacheInitialLoadFails(t *testing.T) {
	if _, err := NewCatalogCache(filepath.Join(t.TempDir(), "missing.yaml"), time.Minute, nil); err == nil {
		t.Error("expected an error for a missing catalog")
	}
}

// Package analytics records privacy-first interaction events for the
// portfolio: page views, project opens, zooms and contact actions. Visitors
// are identified only by a salted hash of IP and User-Agent.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Kind is the type of a recorded interaction.
type Kind string

const (
	KindView            Kind = "view"
	KindProjectOpen     Kind = "project_open"
	KindContactRedirect Kind = "contact_redirect"
	KindZoomImage       Kind = "zoom_image"
	KindZoomVideo       Kind = "zoom_video"
	KindContactOpen     Kind = "contact_open"
	KindEmailCopy       Kind = "email_copy"
)

// Kinds lists every event kind in display order.
var Kinds = []Kind{
	KindView, KindProjectOpen, KindContactRedirect,
	KindZoomImage, KindZoomVideo, KindContactOpen, KindEmailCopy,
}

func (k Kind) valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

// Hit is what the server knows about one interaction.
type Hit struct {
	IP        string
	UserAgent string
	Kind      Kind
	ProjectID string
	Path      string
}

// Event is a stored human interaction.
type Event struct {
	VisitorHash string
	Kind        Kind
	ProjectID   string
	Path        string
	Browser     string
	OS          string
	Device      string
	Timestamp   time.Time
}

// BotVisit is a stored crawler request.
type BotVisit struct {
	BotName   string
	Path      string
	Timestamp time.Time
}

// Summary aggregates events over a period.
type Summary struct {
	From           time.Time
	To             time.Time
	UniqueVisitors int
	ByKind         map[Kind]int
	TopProjects    []DimensionStat
	Browsers       []DimensionStat
	Devices        []DimensionStat
	DailyViews     []DailyView
	BotVisits      int
}

// DimensionStat is one row of a breakdown.
type DimensionStat struct {
	Name  string
	Count int
}

// DailyView is the view count for one UTC day.
type DailyView struct {
	Date  string
	Views int
}

// InitSalt loads or generates the per-installation salt used for hashing.
func (s *Store) InitSalt() error {
	v, err := s.GetSetting("hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if v == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		v = hex.EncodeToString(b)
		if err := s.SetSetting("hash_salt", v); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	s.salt = v
	return nil
}

// HashVisitor returns a salted, truncated SHA-256 of ip and userAgent.
func HashVisitor(salt, ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(salt + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// Specific engines first: Edge and Opera also claim Chrome and Safari.
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android UAs contain "linux".
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile".
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return
}

var botMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"facebookexternalhit", "yandex", "baidu", "headlesschrome",
}

// IsBot reports whether the User-Agent looks like a crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for _, m := range botMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}

var botNames = []struct{ pattern, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"duckduckbot", "DuckDuckBot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"slurp", "Yahoo Slurp"},
	{"headlesschrome", "Headless Chrome"},
}

// BotName names a crawler from its User-Agent.
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range botNames {
		if strings.Contains(ua, b.pattern) {
			return b.name
		}
	}
	return "Other Bot"
}

// Package content holds the portfolio catalog: projects, skills, hero and
// about copy, and contact details. A Catalog is immutable once decoded;
// every other package reads it and none of them mutate it.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectID identifies a project card.
type ProjectID string

// Size is the layout category of a project card in the gallery grid.
type Size string

const (
	SizeLarge    Size = "large"
	SizeWide     Size = "wide"
	SizeTall     Size = "tall"
	SizeStandard Size = "standard"
)

// ParseSize maps a raw tag onto the closed set of sizes.
// Anything unrecognised becomes SizeStandard.
func ParseSize(tag string) Size {
	switch s := Size(tag); s {
	case SizeLarge, SizeWide, SizeTall, SizeStandard:
		return s
	default:
		return SizeStandard
	}
}

func (s Size) valid() bool {
	switch s {
	case SizeLarge, SizeWide, SizeTall, SizeStandard:
		return true
	}
	return false
}

// VideoClip is a titled video inside a project's detail view.
type VideoClip struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Project is a single gallery card and its detail view.
type Project struct {
	ID          ProjectID   `yaml:"id"`
	Title       string      `yaml:"title"`
	Category    string      `yaml:"category"`
	Size        Size        `yaml:"size"`
	Image       string      `yaml:"image"`
	Video       string      `yaml:"video"`   // optional promo video
	Gallery     []string    `yaml:"gallery"` // optional, ordered
	Videos      []VideoClip `yaml:"videos"`  // optional, ordered
	Tags        []string    `yaml:"tags"`
	Link        string      `yaml:"link"`
	Year        int         `yaml:"year"`
	Role        string      `yaml:"role"`
	Description string      `yaml:"description"` // markdown
	Placeholder bool        `yaml:"placeholder"` // "call to collaborate" card
}

// HasVideo reports whether the project carries a promo video.
func (p Project) HasVideo() bool { return p.Video != "" }

// HasGallery reports whether the gallery image section should render.
func (p Project) HasGallery() bool { return len(p.Gallery) > 0 }

// HasVideos reports whether the video clip section should render.
func (p Project) HasVideos() bool { return len(p.Videos) > 0 }

func (p Project) hasAssets() bool {
	return p.Image != "" || p.HasVideo() || p.HasGallery() || p.HasVideos()
}

// Skill is one entry of the skills timeline.
type Skill struct {
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
}

type Hero struct {
	Headline []string `yaml:"headline"`
	Subtext  string   `yaml:"subtext"`
}

type About struct {
	Bio    []string `yaml:"bio"` // markdown paragraphs
	Status string   `yaml:"status"`
	Photo  string   `yaml:"photo"`
}

type Contact struct {
	Email       string `yaml:"email"`
	Social      string `yaml:"social"`
	SocialLabel string `yaml:"social_label"`
}

// Works labels the gallery heading.
type Works struct {
	Heading string `yaml:"heading"`
	Years   string `yaml:"years"`
}

// Catalog is the whole site content.
type Catalog struct {
	Owner    string    `yaml:"owner"`
	Hero     Hero      `yaml:"hero"`
	Works    Works     `yaml:"works"`
	Projects []Project `yaml:"projects"`
	Skills   []Skill   `yaml:"skills"`
	About    About     `yaml:"about"`
	Contact  Contact   `yaml:"contact"`
	Footer   string    `yaml:"footer"`
}

// Project looks a project up by id.
func (c *Catalog) Project(id ProjectID) (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Placeholder returns the call-to-collaborate card, if the catalog has one.
func (c *Catalog) Placeholder() (Project, bool) {
	for _, p := range c.Projects {
		if p.Placeholder {
			return p, true
		}
	}
	return Project{}, false
}

// Related returns the non-placeholder projects sharing at least one tag
// with p, excluding p itself.
func (c *Catalog) Related(p Project) []Project {
	tags := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		tags[normalizeTag(t)] = struct{}{}
	}
	var related []Project
	for _, other := range c.Projects {
		if other.ID == p.ID || other.Placeholder {
			continue
		}
		for _, t := range other.Tags {
			if _, ok := tags[normalizeTag(t)]; ok {
				related = append(related, other)
				break
			}
		}
	}
	return related
}

// Decode parses a YAML catalog and validates it.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and validates the catalog file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	c, err := Decode(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic("content: embedded catalog is invalid: " + err.Error())
	}
	return c
}

// DefaultSource returns the YAML of the embedded catalog, as a starting
// point for an external catalog file.
func DefaultSource() []byte {
	return bytes.Clone(defaultCatalog)
}

// normalize fills in the empty size tag; explicit unknown tags are left for
// Validate to reject.
func (c *Catalog) normalize() {
	for i := range c.Projects {
		if c.Projects[i].Size == "" {
			c.Projects[i].Size = SizeStandard
		}
	}
}

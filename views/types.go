package views

import "html/template"

// SiteConfig holds the site-wide settings every page template needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// HomePage is everything the full-page template renders.
type HomePage struct {
	Site      SiteConfig
	Meta      PageMeta
	HXHeaders string // JSON for the body's hx-headers attribute
	PageID    string

	Hero      Hero
	Works     Works
	Cards     []ProjectCard
	Skills    []Skill
	About     About
	Dock      []DockItem
	Footer    string
	Year      int
	JSONLD    []template.JS
	Spotlight template.CSS

	// ScrollLocked mirrors the gallery's scroll lock at render time so a
	// deep link to an open project starts locked.
	ScrollLocked bool
	Interaction  Interaction
}

type Hero struct {
	Headline []string
	Subtext  string
}

type Works struct {
	Heading string
	Years   string
}

// ProjectCard is one tile of the works grid.
type ProjectCard struct {
	ID          string
	Title       string
	Category    string
	Image       string
	Video       string
	GridClass   string
	Placeholder bool
}

type Skill struct {
	Index string // "01", "02", ...
	Title string
	Icon  string
}

type About struct {
	Bio    []template.HTML
	Status string
	Photo  string
}

// DockItem is one entry of the floating dock.
type DockItem struct {
	Label   string
	Icon    string
	Anchor  string
	Contact bool
}

// Interaction is the server-owned overlay state: the open project with its
// zoom, and the contact modal.
type Interaction struct {
	Detail  *ProjectDetail
	Contact ContactModal
}

// ProjectDetail is the expanded view of an open project.
type ProjectDetail struct {
	ID          string
	Title       string
	Category    string
	Description template.HTML
	Link        string
	Year        int
	Role        string
	Tags        []string
	Image       string
	Video       string
	Gallery     []string
	Videos      []VideoClip
	Related     []ProjectCard

	ZoomedImage string
	ZoomedVideo string
}

type VideoClip struct {
	Title string
	URL   string
}

// ContactModal is the contact dialog.
type ContactModal struct {
	Open        bool
	Copied      bool
	Email       string
	Social      string
	SocialLabel string
}

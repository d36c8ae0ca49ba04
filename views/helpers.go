package views

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// GridClass returns the works-grid span classes for a tile spanning cols
// columns and rows rows.
func GridClass(cols, rows int) string {
	classes := []string{"tile"}
	if cols > 1 {
		classes = append(classes, fmt.Sprintf("md:col-span-%d", cols))
	}
	if rows > 1 {
		classes = append(classes, fmt.Sprintf("md:row-span-%d", rows))
	}
	return strings.Join(classes, " ")
}

// SkillIndex formats a 1-based position as the two-digit skill label.
func SkillIndex(i int) string {
	return fmt.Sprintf("%02d", i)
}

func marshalJSONLD(data map[string]any) template.JS {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}

// PersonJsonLD produces a Schema.org Person block for the portfolio owner.
func PersonJsonLD(cfg SiteConfig, jobTitle string, sameAs ...string) template.JS {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     cfg.Author,
		"url":      buildURL(cfg.URL),
	}
	if jobTitle != "" {
		data["jobTitle"] = jobTitle
	}
	var links []string
	for _, s := range sameAs {
		if s != "" {
			links = append(links, s)
		}
	}
	if len(links) > 0 {
		data["sameAs"] = links
	}
	return marshalJSONLD(data)
}

// CreativeWorkJsonLD produces a Schema.org CreativeWork block for a project.
func CreativeWorkJsonLD(cfg SiteConfig, d ProjectDetail) template.JS {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "CreativeWork",
		"name":     d.Title,
		"genre":    d.Category,
		"url":      buildURL(cfg.URL, "work", d.ID),
	}
	if d.Image != "" {
		data["image"] = d.Image
	}
	if d.Year > 0 {
		data["dateCreated"] = fmt.Sprint(d.Year)
	}
	if cfg.Author != "" {
		data["creator"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(d.Tags) > 0 {
		data["keywords"] = strings.Join(d.Tags, ", ")
	}
	return marshalJSONLD(data)
}

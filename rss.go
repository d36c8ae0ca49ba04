package folio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reannemartin/folio/content"
	"github.com/reannemartin/folio/markdown"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

// renderRSS publishes the projects as a feed. Projects only carry a year,
// so it is dated January 1st.
func (a *App) renderRSS(c echo.Context, cat *content.Catalog) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(cat.Projects))
	for _, p := range cat.Projects {
		if p.Placeholder {
			continue
		}
		pubDate := ""
		if p.Year > 0 {
			pubDate = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC1123Z)
		}
		link := BuildURL(base, "work", string(p.ID))
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: string(markdown.Render(p.Description)),
			Categories:  append([]string{p.Category}, p.Tags...),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	desc := a.Config.Description
	if desc == "" {
		desc = cat.Hero.Subtext
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       pageTitle(cat.Owner, a.Config.Name),
			Link:        base,
			Description: desc,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

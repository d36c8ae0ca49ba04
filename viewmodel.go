package folio

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reannemartin/folio/content"
	"github.com/reannemartin/folio/dock"
	"github.com/reannemartin/folio/gallery"
	"github.com/reannemartin/folio/markdown"
	"github.com/reannemartin/folio/views"
)

// siteView maps the config onto the template site settings. The author
// defaults to the catalog owner.
func (a *App) siteView(cat *content.Catalog) views.SiteConfig {
	author := a.Config.Author
	if author == "" {
		author = cat.Owner
	}
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      author,
	}
}

func (a *App) homeMeta(cat *content.Catalog) views.PageMeta {
	desc := a.Config.Description
	if desc == "" {
		desc = cat.Hero.Subtext
	}
	return views.PageMeta{
		Title:       pageTitle(cat.Owner, a.Config.Name),
		Description: desc,
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
	}
}

func (a *App) projectMeta(cat *content.Catalog, p content.Project) views.PageMeta {
	return views.PageMeta{
		Title:       pageTitle(p.Title, cat.Owner),
		Description: plainText(p.Description),
		URL:         BuildURL(a.Config.URL, "work", string(p.ID)),
		OGType:      "article",
		Image:       p.Image,
	}
}

func pageTitle(parts ...string) string {
	return strings.Join(FilterEmpty(parts), " | ")
}

// plainText flattens markdown into a single line for meta descriptions.
func plainText(md string) string {
	r := strings.NewReplacer("*", "", "_", "", "`", "", "#", "")
	return strings.Join(strings.Fields(r.Replace(md)), " ")
}

// homePage builds the full-page view for a freshly mounted page.
func (a *App) homePage(c echo.Context, page *Page, meta views.PageMeta) views.HomePage {
	cat := page.Catalog
	site := a.siteView(cat)
	state := page.State()
	interaction := interactionView(cat, state)

	headers, _ := json.Marshal(map[string]string{
		csrfHeader: CsrfToken(c),
		pageHeader: page.ID,
	})

	jsonLD := []template.JS{views.PersonJsonLD(site, a.Config.JobTitle, cat.Contact.Social)}
	if interaction.Detail != nil {
		jsonLD = append(jsonLD, views.CreativeWorkJsonLD(site, *interaction.Detail))
	}

	return views.HomePage{
		Site:         site,
		Meta:         meta,
		HXHeaders:    string(headers),
		PageID:       page.ID,
		Hero:         views.Hero{Headline: cat.Hero.Headline, Subtext: cat.Hero.Subtext},
		Works:        views.Works{Heading: cat.Works.Heading, Years: cat.Works.Years},
		Cards:        projectCards(cat.Projects),
		Skills:       skillViews(cat.Skills),
		About:        aboutView(cat.About),
		Dock:         dockViews(page.DockItems()),
		Footer:       cat.Footer,
		Year:         time.Now().Year(),
		JSONLD:       jsonLD,
		Spotlight:    template.CSS("--spotlight: " + page.Mask().CSS()),
		ScrollLocked: state.ScrollLocked,
		Interaction:  interaction,
	}
}

func projectCard(p content.Project) views.ProjectCard {
	span := gallery.SpanFor(p.Size)
	return views.ProjectCard{
		ID:          string(p.ID),
		Title:       p.Title,
		Category:    p.Category,
		Image:       p.Image,
		Video:       p.Video,
		GridClass:   views.GridClass(span.Cols, span.Rows),
		Placeholder: p.Placeholder,
	}
}

func projectCards(ps []content.Project) []views.ProjectCard {
	cards := make([]views.ProjectCard, 0, len(ps))
	for _, p := range ps {
		cards = append(cards, projectCard(p))
	}
	return cards
}

func skillViews(skills []content.Skill) []views.Skill {
	out := make([]views.Skill, 0, len(skills))
	for i, s := range skills {
		out = append(out, views.Skill{Index: views.SkillIndex(i + 1), Title: s.Title, Icon: s.Icon})
	}
	return out
}

func aboutView(a content.About) views.About {
	bio := make([]template.HTML, 0, len(a.Bio))
	for _, para := range a.Bio {
		bio = append(bio, markdown.Render(para))
	}
	return views.About{Bio: bio, Status: a.Status, Photo: a.Photo}
}

func dockViews(items []dock.Item) []views.DockItem {
	out := make([]views.DockItem, 0, len(items))
	for _, it := range items {
		out = append(out, views.DockItem{
			Label:   it.Label,
			Icon:    it.Icon,
			Anchor:  it.Anchor,
			Contact: it.Action == dock.OpenContact,
		})
	}
	return out
}

// interactionView renders a page state: the open project with its zoom, and
// the contact modal.
func interactionView(cat *content.Catalog, st PageState) views.Interaction {
	iv := views.Interaction{
		Contact: views.ContactModal{
			Open:        st.ContactOpen,
			Copied:      st.Copied,
			Email:       cat.Contact.Email,
			Social:      cat.Contact.Social,
			SocialLabel: cat.Contact.SocialLabel,
		},
	}
	if st.Project == nil {
		return iv
	}
	d := projectDetail(cat, *st.Project)
	switch st.Selection.Zoom.Kind {
	case gallery.ZoomImage:
		d.ZoomedImage = st.Selection.Zoom.URL
	case gallery.ZoomVideo:
		d.ZoomedVideo = st.Selection.Zoom.URL
	}
	iv.Detail = &d
	return iv
}

func projectDetail(cat *content.Catalog, p content.Project) views.ProjectDetail {
	clips := make([]views.VideoClip, 0, len(p.Videos))
	for _, v := range p.Videos {
		clips = append(clips, views.VideoClip{Title: v.Title, URL: v.URL})
	}
	return views.ProjectDetail{
		ID:          string(p.ID),
		Title:       p.Title,
		Category:    p.Category,
		Description: markdown.Render(p.Description),
		Link:        p.Link,
		Year:        p.Year,
		Role:        p.Role,
		Tags:        p.Tags,
		Image:       p.Image,
		Video:       p.Video,
		Gallery:     p.Gallery,
		Videos:      clips,
		Related:     projectCards(cat.Related(p)),
	}
}

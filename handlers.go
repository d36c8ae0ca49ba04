package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/reannemartin/folio/analytics"
	"github.com/reannemartin/folio/contact"
	"github.com/reannemartin/folio/content"
	"github.com/reannemartin/folio/gallery"
)

// pageGone answers an htmx request whose page has been unmounted or swept.
// HX-Refresh makes the browser reload and mount a new one.
func pageGone(c echo.Context) error {
	c.Response().Header().Set("HX-Refresh", "true")
	return echo.NewHTTPError(http.StatusConflict, "page expired")
}

// mountPage builds the page behind a full page load. Crawlers never send
// interactions, so their page is rendered once and not registered; the
// caller closes it when registered is false.
func (a *App) mountPage(c echo.Context) (page *Page, registered bool) {
	visitor := visitorID(c)
	if analytics.IsBot(c.Request().UserAgent()) {
		return a.Pages.Build(visitor), false
	}
	return a.Pages.Mount(visitor), true
}

func (a *App) handleHome(c echo.Context) error {
	page, registered := a.mountPage(c)
	if !registered {
		defer page.Close()
	}
	a.track(c, analytics.KindView, "")
	return Render(c, a.Views.Home(a.homePage(c, page, a.homeMeta(page.Catalog))))
}

// handleWork is a deep link: it mounts a page with the project already open,
// or with the contact modal open for the placeholder card.
func (a *App) handleWork(c echo.Context) error {
	id := content.ProjectID(c.Param("id"))
	page, registered := a.mountPage(c)
	if !registered {
		defer page.Close()
	}

	proj, ok := page.Catalog.Project(id)
	if !ok {
		if registered {
			a.Pages.Unmount(page.Visitor, page.ID)
		}
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	outcome, err := page.OpenProject(id)
	if err != nil {
		return err
	}
	a.track(c, analytics.KindView, string(id))
	a.trackOutcome(c, outcome, id)
	return Render(c, a.Views.Home(a.homePage(c, page, a.projectMeta(page.Catalog, proj))))
}

// currentPage resolves the page named by the X-Folio-Page header.
func (a *App) currentPage(c echo.Context) (*Page, error) {
	page, ok := a.Pages.Get(visitorID(c), c.Request().Header.Get(pageHeader))
	if !ok {
		return nil, pageGone(c)
	}
	return page, nil
}

// renderInteraction writes the overlay fragment for the page's current state
// and tells the browser whether to hold the scroll lock.
func (a *App) renderInteraction(c echo.Context, page *Page, events map[string]any) error {
	st := page.State()
	if events == nil {
		events = make(map[string]any)
	}
	events["folio:scroll"] = map[string]bool{"locked": st.ScrollLocked}
	if err := setTriggers(c, events); err != nil {
		return err
	}
	return Render(c, a.Views.Overlay(interactionView(page.Catalog, st)))
}

func (a *App) handleGalleryOpen(c echo.Context) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	id := content.ProjectID(c.Param("id"))
	outcome, err := page.OpenProject(id)
	switch {
	case errors.Is(err, gallery.ErrProjectNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, gallery.ErrUnmounted):
		return pageGone(c)
	case err != nil:
		return err
	}
	a.trackOutcome(c, outcome, id)
	return a.renderInteraction(c, page, nil)
}

func (a *App) handleGalleryClose(c echo.Context) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	page.CloseProject()
	return a.renderInteraction(c, page, nil)
}

func assetIndex(c echo.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid asset index")
	}
	return n, nil
}

func (a *App) handleZoomImage(c echo.Context) error {
	return a.zoom(c, analytics.KindZoomImage, (*Page).ZoomImage)
}

func (a *App) handleZoomVideo(c echo.Context) error {
	return a.zoom(c, analytics.KindZoomVideo, (*Page).ZoomVideo)
}

func (a *App) zoom(c echo.Context, kind analytics.Kind, zoom func(*Page, int) (bool, error)) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	n, err := assetIndex(c)
	if err != nil {
		return err
	}
	zoomed, err := zoom(page, n)
	if errors.Is(err, ErrAssetIndex) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	if zoomed {
		if id, ok := openProjectID(page); ok {
			a.track(c, kind, string(id))
		}
	}
	return a.renderInteraction(c, page, nil)
}

func openProjectID(page *Page) (content.ProjectID, bool) {
	st := page.State()
	return st.Selection.Project, st.Selection.Open
}

func (a *App) handleZoomClose(c echo.Context) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	page.CloseZoom()
	return a.renderInteraction(c, page, nil)
}

// handleContact re-renders the current state; the copied label polls it to
// drop the acknowledgement once the reset has fired.
func (a *App) handleContact(c echo.Context) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	return a.renderInteraction(c, page, nil)
}

func (a *App) handleContactOpen(c echo.Context) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	page.OpenContact()
	a.track(c, analytics.KindContactOpen, "")
	return a.renderInteraction(c, page, nil)
}

func (a *App) handleContactClose(c echo.Context) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	page.CloseContact()
	return a.renderInteraction(c, page, nil)
}

// handleContactCopy asks the browser to write the address to its clipboard
// through the folio:copy event.
func (a *App) handleContactCopy(c echo.Context) error {
	page, err := a.currentPage(c)
	if err != nil {
		return err
	}
	events := make(map[string]any)
	page.CopyEmail(c.Request().Context(), contact.ClipboardFunc(func(_ context.Context, text string) error {
		events["folio:copy"] = map[string]string{"text": text}
		return nil
	}))
	a.track(c, analytics.KindEmailCopy, "")
	return a.renderInteraction(c, page, events)
}

// handleLeave unmounts the page when the tab navigates away.
func (a *App) handleLeave(c echo.Context) error {
	id := c.Request().Header.Get(pageHeader)
	if id == "" {
		id = c.FormValue("page")
	}
	a.Pages.Unmount(visitorID(c), id)
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"pages":  a.Pages.Len(),
	})
}

func (a *App) handleRobots(c echo.Context) error {
	sitemap := strings.TrimSuffix(a.Config.URL, "/") + "/sitemap.xml"
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /ws/\n\nSitemap: %s\n", sitemap)
	return c.String(http.StatusOK, body)
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Catalog.Get())
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Catalog.Get())
}

func (a *App) handleGrain(c echo.Context) error {
	return c.Blob(http.StatusOK, "image/png", a.grain)
}

func (a *App) trackOutcome(c echo.Context, outcome gallery.Outcome, id content.ProjectID) {
	switch outcome {
	case gallery.Opened:
		a.track(c, analytics.KindProjectOpen, string(id))
	case gallery.RedirectedToContact:
		a.track(c, analytics.KindContactRedirect, string(id))
	}
}

// track records an interaction. Failures are logged and never reach the
// visitor.
func (a *App) track(c echo.Context, kind analytics.Kind, projectID string) {
	if a.Analytics == nil {
		return
	}
	err := a.Analytics.Track(c.Request().Context(), analytics.Hit{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		Kind:      kind,
		ProjectID: projectID,
		Path:      c.Request().URL.Path,
	})
	if err != nil {
		c.Logger().Warnf("analytics: %v", err)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && c.Request().Header.Get("HX-Request") != "true" {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

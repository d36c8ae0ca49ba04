// Package folio is a server-rendered portfolio site built with Go, Echo, and
// templ. Each browser tab mounts a Page on the server that owns the gallery
// selection, the contact modal, the hero spotlight and the dock springs;
// htmx swaps in server-rendered fragments and a WebSocket carries pointer
// events.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/reannemartin/folio/analytics"
	"github.com/reannemartin/folio/contact"
	"github.com/reannemartin/folio/views"
)

// ViewFuncs holds the components the handlers render. Replace them with
// WithViews to restyle the site without touching handler logic.
type ViewFuncs struct {
	Home        func(p views.HomePage) templ.Component
	Overlay     func(i views.Interaction) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// DefaultViews returns the components shipped in the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Overlay:     views.Overlay,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// sweepInterval is how often idle pages are looked for.
const sweepInterval = time.Minute

// App wires together the catalog, the mounted pages, analytics, handlers
// and middleware.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Catalog   *CatalogCache
	Pages     *Pages
	Views     ViewFuncs
	Analytics *analytics.Store

	pageLimiter    *RateLimiter
	copyLimiter    *RateLimiter
	pointerLimiter *RateLimiter
	upgrader       websocket.Upgrader
	clock          contact.Clock
	customRoutes   []func(*App)
	staticDir      string
	grain          []byte

	ready bool
	stops []func()
}

// New creates an App. Call Init (or Start, which calls it) before serving.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(),
		staticDir: "public",
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init validates the configuration, loads the catalog, opens analytics and
// registers middleware and routes.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("folio: invalid config: %w", err)
	}
	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	catalog, err := NewCatalogCache(a.Config.CatalogPath, a.Config.CatalogTTL, a.Echo.Logger)
	if err != nil {
		return fmt.Errorf("folio: load catalog: %w", err)
	}
	a.Catalog = catalog

	if a.Config.AnalyticsEnabled {
		store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("folio: init analytics: %w", err)
		}
		if err := store.InitSalt(); err != nil {
			store.Close()
			return fmt.Errorf("folio: init analytics salt: %w", err)
		}
		a.Analytics = store
		a.stops = append(a.stops, store.StartCleanupScheduler(a.Config.AnalyticsRetentionDays, 24*time.Hour, a.Echo.Logger))
	}

	limits := PageLimits{Total: a.Config.MaxPages, PerVisitor: a.Config.MaxPagesPerVisitor}
	a.Pages = NewPages(a.Config.PageIdleTimeout, limits, func(visitor string) *Page {
		return NewPage(uuid.NewString(), visitor, a.Catalog.Get(), a.clock)
	})
	a.stops = append(a.stops, a.Pages.StartSweeper(sweepInterval))

	a.pageLimiter = NewRateLimiter(a.Config.PageRateLimit, time.Minute)
	a.copyLimiter = NewRateLimiter(a.Config.CopyRateLimit, time.Minute)
	a.pointerLimiter = NewRateLimiter(a.Config.PointerRateLimit, time.Minute)
	a.stops = append(a.stops, a.pageLimiter.Stop, a.copyLimiter.Stop, a.pointerLimiter.Stop)

	grain, err := GrainTile(grainSize, grainSeed)
	if err != nil {
		return fmt.Errorf("folio: grain tile: %w", err)
	}
	a.grain = grain

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initialises the app if needed and serves until the server is shut
// down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully and then releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close tears down every mounted page and stops background work.
func (a *App) Close() error {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.Pages != nil {
		a.Pages.CloseAll()
	}
	if a.Analytics != nil {
		return a.Analytics.Close()
	}
	return nil
}

func parseLogLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded browser assets are served under /public/ and the rest of
	// /public falls through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	e.GET("/public/folio.js", embeddedHandler)
	e.GET("/public/folio.css", embeddedHandler)
	e.Static("/public", a.staticDir)

	e.GET("/", a.handleHome, limitByIP(a.pageLimiter))
	e.GET("/work/:id/", a.handleWork, limitByIP(a.pageLimiter))

	g := e.Group("/gallery")
	g.POST("/open/:id/", a.handleGalleryOpen)
	g.POST("/close/", a.handleGalleryClose)
	g.POST("/zoom/image/:n/", a.handleZoomImage)
	g.POST("/zoom/video/:n/", a.handleZoomVideo)
	g.POST("/zoom/close/", a.handleZoomClose)

	ct := e.Group("/contact")
	ct.GET("/", a.handleContact)
	ct.POST("/open/", a.handleContactOpen)
	ct.POST("/close/", a.handleContactClose)
	ct.POST("/copy/", a.handleContactCopy, limitByIP(a.copyLimiter))

	e.POST("/leave/", a.handleLeave)
	e.GET("/ws/pointer", a.handlePointer, limitByIP(a.pointerLimiter))

	e.GET("/grain.png", a.handleGrain)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)
}

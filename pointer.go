package folio

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// frameInterval paces dock animation frames.
const frameInterval = time.Second / 60

const (
	pointerWriteWait = 5 * time.Second
	pointerMaxMsg    = 4 << 10
)

// handlePointer upgrades to the pointer socket of an existing page. Pointer
// events update the page's spotlight and dock; the server answers with mask
// frames and, while the dock is animating, spring-smoothed widths.
func (a *App) handlePointer(c echo.Context) error {
	page, ok := a.Pages.Get(visitorID(c), c.QueryParam("page"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "page not mounted")
	}

	conn, err := a.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		c.Logger().Warnf("pointer upgrade: %v", err)
		return nil
	}
	defer conn.Close()

	page.attach()
	defer page.detach()

	conn.SetReadLimit(pointerMaxMsg)
	runPointer(c.Request().Context(), conn, page, frameInterval, c.Logger())
	return nil
}

// runPointer serves one socket until the peer goes away or ctx ends. The
// read loop runs on its own goroutine; all writes happen here.
func runPointer(ctx context.Context, conn *websocket.Conn, page *Page, interval time.Duration, logger echo.Logger) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan pointerFrame, 16)
	go func() {
		defer cancel()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warnf("pointer read: %v", err)
				}
				return
			}
			var ev pointerEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				ev = pointerEvent{Type: "invalid"}
			}
			frame, ok := applyPointerEvent(page, ev)
			if !ok {
				continue
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	write := func(f pointerFrame) bool {
		conn.SetWriteDeadline(time.Now().Add(pointerWriteWait))
		if err := conn.WriteJSON(f); err != nil {
			logger.Warnf("pointer write: %v", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-out:
			if !write(f) {
				return
			}
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if page.Closed() {
				return
			}
			widths, moving := page.StepDock(dt)
			if !moving {
				continue
			}
			if !write(pointerFrame{Type: "dock", Widths: widths}) {
				return
			}
		}
	}
}

// applyPointerEvent feeds one event to the page and returns the frame to
// send back, if any.
func applyPointerEvent(page *Page, ev pointerEvent) (pointerFrame, bool) {
	switch ev.Type {
	case "viewport":
		if ev.W <= 0 || ev.H <= 0 {
			return pointerFrame{Type: "error", Error: "viewport needs positive w and h"}, true
		}
		return maskFrame(page.Viewport(ev.W, ev.H)), true
	case "hero":
		if ev.Rect == nil {
			return pointerFrame{Type: "error", Error: "hero needs a rect"}, true
		}
		page.MountHero(*ev.Rect)
		return maskFrame(page.Mask()), true
	case "hero_leave":
		page.UnmountHero()
		return pointerFrame{}, false
	case "move":
		if m, ok := page.PointerMove(ev.X, ev.Y); ok {
			return maskFrame(m), true
		}
		return pointerFrame{}, false
	case "touch":
		if m, ok := page.Touch(ev.Touches); ok {
			return maskFrame(m), true
		}
		return pointerFrame{}, false
	case "dock_layout":
		if err := page.DockLayout(ev.Boxes); err != nil {
			return pointerFrame{Type: "error", Error: err.Error()}, true
		}
		return pointerFrame{}, false
	case "dock_move":
		page.DockMove(ev.X)
		return pointerFrame{}, false
	case "dock_leave":
		page.DockLeave()
		return pointerFrame{}, false
	default:
		return pointerFrame{Type: "error", Error: "unknown message type: " + ev.Type}, true
	}
}

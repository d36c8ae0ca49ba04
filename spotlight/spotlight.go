// Package spotlight tracks the pointer over the hero banner and derives the
// circular mask that reveals the illuminated headline.
package spotlight

import "fmt"

const (
	// MobileBreakpoint is the viewport width below which the page is
	// treated as mobile.
	MobileBreakpoint = 768

	DesktopRadius = 350
	MobileRadius  = 250
)

// Point is a position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mask is the reveal circle, in container coordinates.
type Mask struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius int     `json:"radius"`
}

// CSS renders the mask-image value for the illuminated layer.
func (m Mask) CSS() string {
	return fmt.Sprintf("radial-gradient(circle %dpx at %spx %spx, black 10%%, transparent 80%%)",
		m.Radius, formatPx(m.X), formatPx(m.Y))
}

func formatPx(v float64) string {
	return fmt.Sprintf("%g", v)
}

// Radius returns the reveal radius for a viewport width.
func Radius(viewportWidth int) int {
	if IsMobile(viewportWidth) {
		return MobileRadius
	}
	return DesktopRadius
}

// IsMobile reports whether a viewport width is below the breakpoint.
func IsMobile(viewportWidth int) bool {
	return viewportWidth < MobileBreakpoint
}

// Tracker holds the pointer position for one hero banner. It is not safe
// for concurrent use.
type Tracker struct {
	container *Rect
	pos       Point
	mobile    bool
}

// NewTracker starts the spotlight at the centre of the viewport.
func NewTracker(viewportWidth, viewportHeight int) *Tracker {
	return &Tracker{
		pos:    Point{X: float64(viewportWidth) / 2, Y: float64(viewportHeight) / 2},
		mobile: IsMobile(viewportWidth),
	}
}

// Mount records the container's bounding box.
func (t *Tracker) Mount(r Rect) { t.container = &r }

// Unmount forgets the container; later moves are ignored.
func (t *Tracker) Unmount() { t.container = nil }

// Mounted reports whether a container is known.
func (t *Tracker) Mounted() bool { return t.container != nil }

// Resize re-samples the viewport width.
func (t *Tracker) Resize(viewportWidth, _ int) {
	t.mobile = IsMobile(viewportWidth)
}

// Move updates the position from a pointer event in viewport coordinates.
// The result is relative to the container and is not clamped to it. Without
// a container the call does nothing and reports false.
func (t *Tracker) Move(clientX, clientY float64) bool {
	if t.container == nil {
		return false
	}
	t.pos = Point{X: clientX - t.container.Left, Y: clientY - t.container.Top}
	return true
}

// Touch updates the position from the first touch point.
func (t *Tracker) Touch(touches []Point) bool {
	if len(touches) == 0 {
		return false
	}
	return t.Move(touches[0].X, touches[0].Y)
}

// Position is the current container-relative position.
func (t *Tracker) Position() Point { return t.pos }

// IsMobile reports the last sampled viewport class.
func (t *Tracker) IsMobile() bool { return t.mobile }

// Mask returns the current reveal circle.
func (t *Tracker) Mask() Mask {
	r := DesktopRadius
	if t.mobile {
		r = MobileRadius
	}
	return Mask{X: t.pos.X, Y: t.pos.Y, Radius: r}
}

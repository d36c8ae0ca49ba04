package folio

import (
	"github.com/reannemartin/folio/dock"
	"github.com/reannemartin/folio/spotlight"
)

// pointerEvent is a message from the browser on the pointer socket.
type pointerEvent struct {
	Type    string            `json:"type"` // viewport, hero, hero_leave, move, touch, dock_layout, dock_move, dock_leave
	W       int               `json:"w,omitempty"`
	H       int               `json:"h,omitempty"`
	X       float64           `json:"x,omitempty"`
	Y       float64           `json:"y,omitempty"`
	Rect    *spotlight.Rect   `json:"rect,omitempty"`
	Touches []spotlight.Point `json:"touches,omitempty"`
	Boxes   []dock.Box        `json:"boxes,omitempty"`
}

// pointerFrame is a message to the browser.
type pointerFrame struct {
	Type   string          `json:"type"` // mask, dock, error
	Mask   *spotlight.Mask `json:"mask,omitempty"`
	CSS    string          `json:"css,omitempty"`
	Widths []float64       `json:"widths,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func maskFrame(m spotlight.Mask) pointerFrame {
	return pointerFrame{Type: "mask", Mask: &m, CSS: m.CSS()}
}

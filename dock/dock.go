// Package dock models the floating navigation dock whose icons grow as the
// pointer approaches them.
package dock

import (
	"errors"
	"math"
	"time"
)

const (
	// RestWidth is an icon's width when the pointer is far away.
	RestWidth = 40.0
	// PeakWidth is an icon's width with the pointer over its centre.
	PeakWidth = 80.0
	// Reach is the distance at which magnification falls back to rest.
	Reach = 150.0
)

// ErrLayoutMismatch is returned when a layout does not cover every item.
var ErrLayoutMismatch = errors.New("dock: layout does not match items")

// Magnify maps the distance between the pointer and an icon centre to the
// icon's target width. Non-finite distances mean "far away".
func Magnify(distance float64) float64 {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return RestWidth
	}
	d := math.Abs(distance)
	if d >= Reach {
		return RestWidth
	}
	return PeakWidth - (PeakWidth-RestWidth)*d/Reach
}

// Action is what activating a dock item does.
type Action int

const (
	// ScrollTo scrolls the page to the item's anchor.
	ScrollTo Action = iota
	// OpenContact opens the contact modal.
	OpenContact
)

// Item is one dock entry.
type Item struct {
	Label  string
	Icon   string
	Anchor string
	Action Action
}

// DefaultItems are the dock entries of the portfolio page.
func DefaultItems() []Item {
	return []Item{
		{Label: "Work", Icon: "grid", Anchor: "#work", Action: ScrollTo},
		{Label: "About", Icon: "user", Anchor: "#about", Action: ScrollTo},
		{Label: "Systems", Icon: "layers", Anchor: "#systems", Action: ScrollTo},
		{Label: "Contact", Icon: "mail", Action: OpenContact},
	}
}

// Box is an icon's horizontal layout box in page coordinates.
type Box struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Center is the horizontal centre of the box.
func (b Box) Center() float64 { return b.Left + b.Width/2 }

// Dock holds the pointer position and one spring per icon. It is not safe
// for concurrent use.
type Dock struct {
	items   []Item
	boxes   []Box
	pointer float64
	springs []*Spring
}

// New returns a dock with every icon at rest and the pointer away.
func New(items []Item) *Dock {
	d := &Dock{
		items:   append([]Item(nil), items...),
		pointer: math.Inf(1),
		springs: make([]*Spring, len(items)),
	}
	for i := range d.springs {
		d.springs[i] = NewSpring(RestWidth, DefaultSpringParams)
	}
	return d
}

func (d *Dock) Items() []Item { return d.items }

// Layout records the icons' measured boxes, one per item.
func (d *Dock) Layout(boxes []Box) error {
	if len(boxes) != len(d.items) {
		return ErrLayoutMismatch
	}
	d.boxes = append(d.boxes[:0], boxes...)
	return nil
}

// Move records the pointer's horizontal page coordinate.
func (d *Dock) Move(pageX float64) { d.pointer = pageX }

// Leave moves the pointer infinitely far away so every icon relaxes.
func (d *Dock) Leave() { d.pointer = math.Inf(1) }

// Pointer is the last recorded pointer coordinate.
func (d *Dock) Pointer() float64 { return d.pointer }

// Targets returns the width each icon is easing toward. Icons without a
// measured box stay at rest.
func (d *Dock) Targets() []float64 {
	out := make([]float64, len(d.items))
	for i := range out {
		if i >= len(d.boxes) {
			out[i] = RestWidth
			continue
		}
		out[i] = Magnify(d.pointer - d.boxes[i].Center())
	}
	return out
}

// Step advances every spring by dt and returns the smoothed widths.
func (d *Dock) Step(dt time.Duration) []float64 {
	targets := d.Targets()
	out := make([]float64, len(d.springs))
	for i, s := range d.springs {
		s.SetTarget(targets[i])
		out[i] = s.Step(dt)
	}
	return out
}

// Widths returns the current smoothed widths without advancing time.
func (d *Dock) Widths() []float64 {
	out := make([]float64, len(d.springs))
	for i, s := range d.springs {
		out[i] = s.Value()
	}
	return out
}

// Settled reports whether every icon has reached its target.
func (d *Dock) Settled() bool {
	targets := d.Targets()
	for i, s := range d.springs {
		if math.Abs(s.Value()-targets[i]) >= settleEpsilon || !s.Settled() {
			return false
		}
	}
	return true
}

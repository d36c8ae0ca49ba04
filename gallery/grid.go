package gallery

import "github.com/reannemartin/folio/content"

// Span is the number of grid columns and rows a card occupies.
type Span struct {
	Cols int
	Rows int
}

// SpanFor maps a card size onto its grid span. Unknown sizes lay out as
// standard cards.
func SpanFor(size content.Size) Span {
	switch size {
	case content.SizeLarge:
		return Span{Cols: 2, Rows: 2}
	case content.SizeWide:
		return Span{Cols: 2, Rows: 1}
	case content.SizeTall:
		return Span{Cols: 1, Rows: 2}
	default:
		return Span{Cols: 1, Rows: 1}
	}
}

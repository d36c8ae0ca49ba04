package folio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"

	"golang.org/x/image/draw"
)

const (
	grainSize = 128
	grainSeed = 0x5eed
	// grainCell is the edge, in pixels, of one noise sample.
	grainCell  = 2
	grainAlpha = 28
)

// GrainTile renders the repeating noise texture laid over the page. The
// same seed always gives the same bytes.
func GrainTile(size int, seed uint64) ([]byte, error) {
	if size < grainCell || size%grainCell != 0 {
		return nil, fmt.Errorf("grain size %d must be a positive multiple of %d", size, grainCell)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	n := size / grainCell
	src := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := uint8(rng.IntN(256))
			src.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: grainAlpha})
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode grain: %w", err)
	}
	return buf.Bytes(), nil
}

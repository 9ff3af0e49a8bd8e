package sink

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var ErrBoundsMismatch = errors.New("images differ in size")

// Distance summarizes per-pixel Euclidean RGB distance between two images.
type Distance struct {
	Mean   float64 `json:"mean"`
	Max    float64 `json:"max"`
	Pixels int     `json:"pixels"`
}

// Within reports whether the mean distance is at most limit.
func (d Distance) Within(limit float64) bool {
	return d.Mean <= limit
}

// Compare measures actual against reference pixel by pixel.
func Compare(actual, reference image.Image) (Distance, error) {
	a, b := actual.Bounds(), reference.Bounds()
	if a.Dx() != b.Dx() || a.Dy() != b.Dy() {
		return Distance{}, fmt.Errorf("%w: %v vs %v", ErrBoundsMismatch, a.Size(), b.Size())
	}
	var d Distance
	var sum float64
	for y := 0; y < a.Dy(); y++ {
		for x := 0; x < a.Dx(); x++ {
			r1, g1, b1, _ := actual.At(a.Min.X+x, a.Min.Y+y).RGBA()
			r2, g2, b2, _ := reference.At(b.Min.X+x, b.Min.Y+y).RGBA()
			dr := float64(r1>>8) - float64(r2>>8)
			dg := float64(g1>>8) - float64(g2>>8)
			db := float64(b1>>8) - float64(b2>>8)
			dist := math.Sqrt(dr*dr + dg*dg + db*db)
			sum += dist
			d.Max = max(d.Max, dist)
			d.Pixels++
		}
	}
	if d.Pixels > 0 {
		d.Mean = sum / float64(d.Pixels)
	}
	return d, nil
}

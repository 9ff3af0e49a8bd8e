package jpeg

import (
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// referenceIDCT is the textbook separable inverse DCT in floating point.
func referenceIDCT(coef []int32) [blockLength]byte {
	var out [blockLength]byte
	c := func(u int) float64 {
		if u == 0 {
			return 1 / math.Sqrt2
		}
		return 1
	}
	for y := 0; y < blockSize; y++ {
		for x := 0; x < blockSize; x++ {
			var sum float64
			for v := 0; v < blockSize; v++ {
				for u := 0; u < blockSize; u++ {
					sum += c(u) * c(v) * float64(coef[v*blockSize+u]) *
						math.Cos(float64(2*x+1)*float64(u)*math.Pi/16) *
						math.Cos(float64(2*y+1)*float64(v)*math.Pi/16)
				}
			}
			out[y*blockSize+x] = clamp8(int32(math.Round(sum/4)) + 128)
		}
	}
	return out
}

func TestIDCT_Flat(t *testing.T) {
	tests := []struct {
		dc   int32
		want byte
	}{
		{0, 128},
		{80, 138},
		{-1024, 0},
		{1016, 255},
		{2000, 255},
	}
	for _, tt := range tests {
		coef := make([]int32, blockLength)
		coef[0] = tt.dc
		out := make([]byte, blockLength)
		idct(coef, out, blockSize)
		for i, v := range out {
			assert.Equal(t, tt.want, v, "dc %d sample %d", tt.dc, i)
		}
	}
}

func TestIDCT_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		coef := make([]int32, blockLength)
		for i := range coef {
			if i == 0 || rng.Intn(3) == 0 {
				coef[i] = int32(rng.Intn(512) - 256)
			}
		}
		out := make([]byte, blockLength)
		idct(coef, out, blockSize)
		want := referenceIDCT(coef)
		for i := range out {
			assert.InDelta(t, float64(want[i]), float64(out[i]), 2, "block %d sample %d", n, i)
		}
	}
}

func TestIDCT_Stride(t *testing.T) {
	coef := make([]int32, blockLength)
	coef[0] = 80
	out := make([]byte, 3*blockSize*blockSize)
	idct(coef, out[blockSize:], 3*blockSize)
	for y := 0; y < blockSize; y++ {
		row := out[y*3*blockSize:]
		assert.Equal(t, byte(0), row[0])
		assert.Equal(t, byte(138), row[blockSize])
		assert.Equal(t, byte(138), row[2*blockSize-1])
		assert.Equal(t, byte(0), row[2*blockSize])
	}
}

func TestYCbCr(t *testing.T) {
	tests := []struct {
		y, cb, cr int32
	}{
		{128, 128, 128},
		{0, 128, 128},
		{255, 128, 128},
		{76, 85, 255},
		{150, 44, 21},
		{29, 255, 107},
		{200, 10, 240},
	}
	for _, tt := range tests {
		r, g, b := ycbcr(tt.y, tt.cb, tt.cr)
		wr, wg, wb := color.YCbCrToRGB(uint8(tt.y), uint8(tt.cb), uint8(tt.cr))
		assert.InDelta(t, float64(wr), float64(r), 1, "R of %v", tt)
		assert.InDelta(t, float64(wg), float64(g), 1, "G of %v", tt)
		assert.InDelta(t, float64(wb), float64(b), 1, "B of %v", tt)
	}
	r, g, b := ycbcr(128, 128, 128)
	assert.Equal(t, []byte{128, 128, 128}, []byte{r, g, b})
}

func TestPlane_Upsampling(t *testing.T) {
	p := plane{w: 2, h: 2, sx: 2, sy: 2, pix: []byte{1, 2, 3, 4}}
	var got []int32
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got = append(got, p.at(x, y))
		}
	}
	assert.Equal(t, []int32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, got)
}

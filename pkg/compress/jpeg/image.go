package jpeg

import (
	"image"
	"image/color"
)

// Image is a decoded picture: packed RGB, row major, 3 bytes per pixel.
type Image struct {
	Width   int
	Height  int
	Comment string
	Pix     []byte
}

// Stride returns the number of bytes in one row of Pix.
func (m *Image) Stride() int {
	return 3 * m.Width
}

// RGBAt returns the color of the pixel at (x, y).
func (m *Image) RGBAt(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0, 0, 0
	}
	i := y*m.Stride() + 3*x
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	r, g, b := m.RGBAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// Component describes one frame component as declared in SOF0 and bound in SOS.
type Component struct {
	ID byte `json:"id"`
	H  int  `json:"h"`  // horizontal sampling factor
	V  int  `json:"v"`  // vertical sampling factor
	Tq int  `json:"tq"` // quantization table
	Td int  `json:"td"` // DC huffman table
	Ta int  `json:"ta"` // AC huffman table
}

// Header is everything known about a stream once its scan header is read.
type Header struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Precision  int         `json:"precision"`
	Components []Component `json:"components"`
	Comment    string      `json:"comment,omitempty"`
	JFIF       bool        `json:"jfif"`
	EXIF       bool        `json:"exif"`
}

// Options configures decoding.
type Options struct {
	// MaxPixels bounds width*height declared by the frame header (0 = no limit).
	MaxPixels int
}

// DefaultOptions returns default decoding options
func DefaultOptions() *Options {
	return &Options{
		MaxPixels: 1 << 26,
	}
}

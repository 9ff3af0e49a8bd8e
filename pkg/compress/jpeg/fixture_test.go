package jpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stdjpeg "image/jpeg"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// streamBuilder assembles JPEG streams marker by marker.
type streamBuilder struct {
	buf bytes.Buffer
}

func (s *streamBuilder) marker(m Marker) *streamBuilder {
	s.buf.WriteByte(byte(m >> 8))
	s.buf.WriteByte(byte(m))
	return s
}

func (s *streamBuilder) segment(m Marker, payload []byte) *streamBuilder {
	s.marker(m)
	n := len(payload) + 2
	s.buf.WriteByte(byte(n >> 8))
	s.buf.WriteByte(byte(n))
	s.buf.Write(payload)
	return s
}

func (s *streamBuilder) soi() *streamBuilder { return s.marker(MarkerSOI) }
func (s *streamBuilder) eoi() *streamBuilder { return s.marker(MarkerEOI) }

func (s *streamBuilder) app0() *streamBuilder {
	return s.segment(MarkerAPP0, []byte{'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0})
}

// app1Exif writes an EXIF segment holding a minimal big-endian TIFF header.
func (s *streamBuilder) app1Exif() *streamBuilder {
	return s.segment(MarkerAPP1, []byte{'E', 'x', 'i', 'f', 0, 0, 'M', 'M', 0, 42, 0, 0, 0, 8, 0, 0})
}

func (s *streamBuilder) com(text string) *streamBuilder {
	return s.segment(MarkerCOM, []byte(text))
}

func (s *streamBuilder) dqt(id byte, zz [blockLength]byte) *streamBuilder {
	return s.segment(MarkerDQT, append([]byte{id}, zz[:]...))
}

func (s *streamBuilder) sof0(w, h int, comps ...Component) *streamBuilder {
	p := []byte{8, byte(h >> 8), byte(h), byte(w >> 8), byte(w), byte(len(comps))}
	for _, c := range comps {
		p = append(p, c.ID, byte(c.H<<4|c.V), byte(c.Tq))
	}
	return s.segment(MarkerSOF0, p)
}

func (s *streamBuilder) dht(class, id byte, t *testTable) *streamBuilder {
	counts := t.counts()
	p := append([]byte{class<<4 | id}, counts[:]...)
	p = append(p, t.symbols...)
	return s.segment(MarkerDHT, p)
}

func (s *streamBuilder) sos(comps ...Component) *streamBuilder {
	p := []byte{byte(len(comps))}
	for _, c := range comps {
		p = append(p, c.ID, byte(c.Td<<4|c.Ta))
	}
	p = append(p, 0, 63, 0)
	return s.segment(MarkerSOS, p)
}

func (s *streamBuilder) raw(b ...byte) *streamBuilder {
	s.buf.Write(b)
	return s
}

func (s *streamBuilder) bytes() []byte {
	return s.buf.Bytes()
}

// bitWriter packs entropy-coded bits MSB first, stuffing a zero after every
// 0xFF and padding the last byte with ones.
type bitWriter struct {
	out []byte
	cur byte
	n   uint
}

func (w *bitWriter) writeBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.cur = w.cur<<1 | byte(v>>uint(i)&1)
		w.n++
		if w.n == 8 {
			w.out = append(w.out, w.cur)
			if w.cur == 0xFF {
				w.out = append(w.out, 0x00)
			}
			w.cur, w.n = 0, 0
		}
	}
}

func (w *bitWriter) bytes() []byte {
	if w.n > 0 {
		w.writeBits(0xFF, int(8-w.n))
	}
	return w.out
}

// testTable gives every symbol a code of the same length, numbered in
// symbol order, which is exactly the canonical code for such a table.
type testTable struct {
	symbols []byte
	length  int
	codes   map[byte]uint32
}

func newTestTable(symbols ...byte) *testTable {
	t := &testTable{symbols: symbols, length: 1, codes: map[byte]uint32{}}
	for 1<<t.length <= len(symbols) {
		t.length++
	}
	for i, s := range symbols {
		t.codes[s] = uint32(i)
	}
	return t
}

func (t *testTable) counts() [maxCodeLength]byte {
	var c [maxCodeLength]byte
	c[t.length-1] = byte(len(t.symbols))
	return c
}

func (t *testTable) table() HuffmanCodeTable {
	table, err := NewHuffmanCodeTable(t.counts(), t.symbols)
	if err != nil {
		panic(err)
	}
	return table
}

func (t *testTable) put(w *bitWriter, sym byte) {
	code, ok := t.codes[sym]
	if !ok {
		panic(fmt.Sprintf("symbol 0x%02X not in table", sym))
	}
	w.writeBits(code, t.length)
}

// dcTable covers DC categories 0..11.
func dcTable() *testTable {
	syms := make([]byte, 12)
	for i := range syms {
		syms[i] = byte(i)
	}
	return newTestTable(syms...)
}

// acTable covers EOB, ZRL and every run/size pair up to size 10.
func acTable() *testTable {
	syms := []byte{0x00, 0xF0}
	for run := 0; run < 16; run++ {
		for size := 1; size <= 10; size++ {
			syms = append(syms, byte(run<<4|size))
		}
	}
	return newTestTable(syms...)
}

// magnitude returns the category of v and the bits that code it.
func magnitude(v int32) (int, uint32) {
	a, category := v, 0
	if a < 0 {
		a = -a
	}
	for a > 0 {
		category++
		a >>= 1
	}
	if v < 0 {
		return category, uint32(v + (1 << category) - 1)
	}
	return category, uint32(v)
}

// encodeBlock writes one block of zigzag coefficients, coding the DC as diff.
func encodeBlock(w *bitWriter, dc, ac *testTable, diff int32, zz [blockLength]int32) {
	category, bits := magnitude(diff)
	dc.put(w, byte(category))
	w.writeBits(bits, category)

	run := 0
	for k := 1; k < blockLength; k++ {
		if zz[k] == 0 {
			run++
			continue
		}
		for run > 15 {
			ac.put(w, 0xF0)
			run -= 16
		}
		size, bits := magnitude(zz[k])
		ac.put(w, byte(run<<4|size))
		w.writeBits(bits, size)
		run = 0
	}
	if run > 0 {
		ac.put(w, 0x00)
	}
}

func flat(q byte) [blockLength]byte {
	var zz [blockLength]byte
	for i := range zz {
		zz[i] = q
	}
	return zz
}

// grayStream codes blocks (zigzag order, absolute DC) as a one component
// frame of w×h pixels. Blocks are in raster order.
func grayStream(w, h int, q byte, blocks [][blockLength]int32) []byte {
	dc, ac := dcTable(), acTable()
	bw := &bitWriter{}
	var pred int32
	for _, zz := range blocks {
		encodeBlock(bw, dc, ac, zz[0]-pred, zz)
		pred = zz[0]
	}
	gray := Component{ID: 1, H: 1, V: 1}
	s := &streamBuilder{}
	return s.soi().app0().
		dqt(0, flat(q)).
		sof0(w, h, gray).
		dht(0, 0, dc).dht(1, 0, ac).
		sos(gray).
		raw(bw.bytes()...).
		eoi().bytes()
}

// soQualityStream is a 990×560 frame, luma sampled 1×2, whose blocks are all
// DC-only zero, coded with single-symbol tables.
func soQualityStream() []byte {
	dc, ac := newTestTable(0x00), newTestTable(0x00)
	comps := []Component{
		{ID: 1, H: 1, V: 2, Tq: 0},
		{ID: 2, H: 1, V: 1, Tq: 1},
		{ID: 3, H: 1, V: 1, Tq: 1},
	}
	mcusX, mcusY := divCeil(990, 8), divCeil(divCeil(560, 2), 8)
	bw := &bitWriter{}
	for i := 0; i < mcusX*mcusY*4; i++ {
		encodeBlock(bw, dc, ac, 0, [blockLength]int32{})
	}
	s := &streamBuilder{}
	return s.soi().app0().com("so quality").
		dqt(0, flat(2)).dqt(1, flat(3)).
		sof0(990, 560, comps...).
		dht(0, 0, dc).dht(1, 0, ac).
		sos(comps...).
		raw(bw.bytes()...).
		eoi().bytes()
}

// gradient is a smooth test picture with some texture along the diagonal.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * x / w),
				G: uint8(255 * y / h),
				B: uint8((x*y + 4*(x+y)) % 256),
				A: 0xFF,
			})
		}
	}
	return img
}

func stdlibEncode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, stdjpeg.Encode(&buf, img, &stdjpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// meanDistance is the mean per-pixel Euclidean RGB distance between two
// images of the same bounds.
func meanDistance(a, b image.Image) float64 {
	var sum, n float64
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r1, g1, b1, _ := a.At(x, y).RGBA()
			r2, g2, b2, _ := b.At(x, y).RGBA()
			dr := float64(r1>>8) - float64(r2>>8)
			dg := float64(g1>>8) - float64(g2>>8)
			db := float64(b1>>8) - float64(b2>>8)
			sum += math.Sqrt(dr*dr + dg*dg + db*db)
			n++
		}
	}
	return sum / n
}

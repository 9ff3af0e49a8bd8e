// Package jpeg implements a pure Go baseline JPEG (ITU-T T.81, JFIF/EXIF)
// decoder producing packed RGB images.
package jpeg

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
)

// parserState tracks where the marker parser is in the stream.
type parserState int

const (
	stateStart parserState = iota
	stateHeader
	stateFrame
	stateScanning
	stateDone
)

func (s parserState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateHeader:
		return "header"
	case stateFrame:
		return "frame"
	case stateScanning:
		return "scanning"
	default:
		return "done"
	}
}

// frameComponent is a Component plus its decode state.
type frameComponent struct {
	Component
	dc, ac tableKey
	bound  bool
	pred   int32 // running DC predictor

	// coefficient plane: blocksW×blocksH dequantized blocks in raster order
	blocksW, blocksH int
	coef             []int32
}

// block returns the coefficient storage of block (bx, by).
func (c *frameComponent) block(bx, by int) []int32 {
	off := (by*c.blocksW + bx) * blockLength
	return c.coef[off : off+blockLength]
}

// decoder walks the marker segments of one stream. It is used for a single
// decode and never shared.
type decoder struct {
	src    io.ByteReader
	br     *BitReader
	opts   Options
	state  parserState
	tables tableStore
	header Header
	comps  []*frameComponent

	hmax, vmax   int
	mcusX, mcusY int
}

// Decode reads a baseline JPEG from r.
func Decode(r io.Reader) (*Image, error) {
	return DecodeWithOptions(r, nil)
}

// DecodeWithOptions reads a baseline JPEG from r using opts (nil = defaults).
func DecodeWithOptions(r io.Reader, opts *Options) (*Image, error) {
	d := newDecoder(r, opts)
	if err := d.decode(false); err != nil {
		return nil, err
	}
	return d.reconstruct(), nil
}

// DecodeHeader parses r up to and including the scan header without
// decoding any entropy-coded data.
func DecodeHeader(r io.Reader) (*Header, error) {
	d := newDecoder(r, nil)
	if err := d.decode(true); err != nil {
		return nil, err
	}
	h := d.header
	h.Components = make([]Component, len(d.comps))
	for i, c := range d.comps {
		h.Components[i] = c.Component
	}
	return &h, nil
}

func newDecoder(r io.Reader, opts *Options) *decoder {
	if opts == nil {
		opts = DefaultOptions()
	}
	src, ok := r.(io.ByteReader)
	if !ok {
		src = bufio.NewReader(r)
	}
	return &decoder{
		src:  src,
		br:   NewBitReader(src),
		opts: *opts,
	}
}

func (d *decoder) decode(headerOnly bool) error {
	if err := d.readSOI(); err != nil {
		return err
	}
	for d.state != stateDone {
		marker, err := d.readMarker()
		if err != nil {
			return err
		}

		switch {
		case marker == MarkerSOF0:
			if d.state != stateHeader {
				return &UnexpectedMarkerError{Expected: MarkerSOS, Actual: marker}
			}
			err = d.segment(marker, d.readSOF0)
		case marker.IsSOF():
			// progressive, lossless and arithmetic frames
			return &UnexpectedMarkerError{Expected: MarkerSOF0, Actual: marker}
		case marker == MarkerDQT:
			err = d.segment(marker, d.readDQT)
		case marker == MarkerDHT:
			err = d.segment(marker, d.readDHT)
		case marker == MarkerDRI:
			err = d.segment(marker, d.readDRI)
		case marker == MarkerCOM:
			err = d.segment(marker, d.readCOM)
		case marker.IsAPP():
			err = d.segment(marker, func(n int) error { return d.readAPP(marker, n) })
		case marker == MarkerSOS:
			if d.state != stateFrame {
				return &UnexpectedMarkerError{Expected: MarkerSOF0, Actual: marker}
			}
			if err := d.segment(marker, d.readSOS); err != nil {
				return err
			}
			if headerOnly {
				return nil
			}
			if err := d.decodeScan(); err != nil {
				return err
			}
			err = d.readEOI()
		default:
			return &UnexpectedMarkerError{Actual: marker}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readSOI asserts the stream starts with SOI.
func (d *decoder) readSOI() error {
	word, err := d.br.ReadWord()
	if err != nil {
		return fmt.Errorf("reading SOI: %w", err)
	}
	if Marker(word) != MarkerSOI {
		return &UnexpectedMarkerError{Expected: MarkerSOI, Actual: Marker(word)}
	}
	d.state = stateHeader
	return nil
}

// readEOI asserts the scan is followed by EOI.
func (d *decoder) readEOI() error {
	marker, err := d.readMarker()
	if err != nil {
		return fmt.Errorf("reading EOI: %w", err)
	}
	if marker != MarkerEOI {
		return &UnexpectedMarkerError{Expected: MarkerEOI, Actual: marker}
	}
	d.state = stateDone
	return nil
}

// readMarker reads the next marker, skipping 0xFF fill bytes.
func (d *decoder) readMarker() (Marker, error) {
	c, err := d.br.ReadByte()
	if err != nil {
		return 0, err
	}
	if c != 0xFF {
		return 0, &UnexpectedMarkerError{Actual: Marker(c)}
	}
	for c == 0xFF {
		if c, err = d.br.ReadByte(); err != nil {
			return 0, err
		}
	}
	marker := 0xFF00 | Marker(c)
	if c == 0x00 || marker.IsRST() {
		return 0, &UnexpectedMarkerError{Actual: marker}
	}
	return marker, nil
}

// segment reads a length-prefixed segment and checks the handler consumed
// exactly its payload.
func (d *decoder) segment(marker Marker, handle func(n int) error) error {
	length, err := d.br.ReadWord()
	if err != nil {
		return fmt.Errorf("reading %v length: %w", marker, err)
	}
	if length < 2 {
		return fmt.Errorf("%w: %v length %d", ErrInvalidSegmentLength, marker, length)
	}
	n := int(length) - 2
	start := d.br.Offset()
	if err := handle(n); err != nil {
		return fmt.Errorf("%v: %w", marker, err)
	}
	if used := int(d.br.Offset() - start); used != n {
		return fmt.Errorf("%w: %v declared %d bytes, used %d", ErrInvalidSegmentLength, marker, n, used)
	}
	return nil
}

func (d *decoder) readAPP(marker Marker, n int) error {
	id := ""
	if n >= 5 {
		var err error
		if id, err = d.br.ReadString(min(n, 6)); err != nil {
			return err
		}
	}
	switch {
	case marker == MarkerAPP0 && id[:min(len(id), 5)] == "JFIF\x00":
		d.header.JFIF = true
	case marker == MarkerAPP1 && id == "Exif\x00\x00":
		d.header.EXIF = true
	}
	slog.Debug("jpeg: application segment skipped", slog.String("marker", marker.String()), slog.Int("bytes", n))
	return d.br.SkipBits(8 * (n - len(id)))
}

func (d *decoder) readCOM(n int) error {
	comment, err := d.br.ReadString(n)
	if err != nil {
		return err
	}
	d.header.Comment = comment
	return nil
}

func (d *decoder) readDRI(n int) error {
	if n != 2 {
		return fmt.Errorf("%w: DRI payload %d", ErrInvalidSegmentLength, n)
	}
	interval, err := d.br.ReadWord()
	if err != nil {
		return err
	}
	if interval != 0 {
		return fmt.Errorf("%w: restart interval %d", ErrUnsupported, interval)
	}
	return nil
}

func (d *decoder) readDQT(n int) error {
	for n > 0 {
		precision, err := d.br.ReadNibble()
		if err != nil {
			return err
		}
		if err := assertBit(precision, "precision"); err != nil {
			return err
		}
		id, err := d.br.ReadNibble()
		if err != nil {
			return err
		}
		if id >= maxQuantTables {
			return fmt.Errorf("%w: quantization table %d", ErrInvalidTableID, id)
		}
		width := entry8
		if precision == 1 {
			width = entry16
		}

		// several tables may share one segment
		payload := min(n-1, int(width)*blockLength)
		if side := quantSide(payload, width); side != blockSize {
			return fmt.Errorf("%w: %d bytes of %d-byte entries", ErrInvalidQuantTableSize, n-1, width)
		}

		q := &QuantTable{Width: width}
		for k := 0; k < blockLength; k++ {
			v, err := width.read(d.br)
			if err != nil {
				return err
			}
			q.Values[unzigzag[k]] = v
		}
		if err := d.tables.setQuant(int(id), q); err != nil {
			return err
		}
		n -= 1 + payload

		slog.Debug("jpeg: DQT parsed", slog.Int("id", int(id)), slog.Int("width", int(width)))
	}
	return nil
}

func (d *decoder) readSOF0(n int) error {
	precision, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	height, err := d.br.ReadWord()
	if err != nil {
		return err
	}
	width, err := d.br.ReadWord()
	if err != nil {
		return err
	}
	count, err := d.br.ReadByte()
	if err != nil {
		return err
	}

	if precision != 8 {
		return fmt.Errorf("%w: %d bits", ErrUnsupportedPrecision, precision)
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if limit := d.opts.MaxPixels; limit > 0 && int(width)*int(height) > limit {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, width, height, limit)
	}
	if count != 1 && count != 3 {
		return fmt.Errorf("%w: %d in frame", ErrUnsupportedComponentCount, count)
	}
	if n != 6+3*int(count) {
		return fmt.Errorf("%w: SOF0 payload %d for %d components", ErrInvalidSegmentLength, n, count)
	}

	d.header.Precision = int(precision)
	d.header.Width = int(width)
	d.header.Height = int(height)
	d.comps = make([]*frameComponent, 0, count)
	d.hmax, d.vmax = 1, 1

	for i := 0; i < int(count); i++ {
		c := &frameComponent{}
		if c.ID, err = d.br.ReadByte(); err != nil {
			return err
		}
		h, err := d.br.ReadNibble()
		if err != nil {
			return err
		}
		v, err := d.br.ReadNibble()
		if err != nil {
			return err
		}
		tq, err := d.br.ReadByte()
		if err != nil {
			return err
		}
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return fmt.Errorf("%w: component %d is %dx%d", ErrInvalidSamplingFactor, c.ID, h, v)
		}
		if tq >= maxQuantTables {
			return fmt.Errorf("%w: component %d uses quantization table %d", ErrInvalidTableID, c.ID, tq)
		}
		for _, prev := range d.comps {
			if prev.ID == c.ID {
				return fmt.Errorf("%w: id %d declared twice", ErrDuplicateComponent, c.ID)
			}
		}
		c.H, c.V, c.Tq = int(h), int(v), int(tq)
		d.hmax = max(d.hmax, c.H)
		d.vmax = max(d.vmax, c.V)
		d.comps = append(d.comps, c)
	}

	if len(d.comps) == 1 {
		// a lone component is coded one block per MCU whatever it declares
		d.comps[0].H, d.comps[0].V = 1, 1
		d.hmax, d.vmax = 1, 1
	}
	for _, c := range d.comps {
		if d.hmax%c.H != 0 || d.vmax%c.V != 0 {
			return fmt.Errorf("%w: component %d is %dx%d in a %dx%d frame",
				ErrInvalidSamplingFactor, c.ID, c.H, c.V, d.hmax, d.vmax)
		}
	}

	d.mcusX = divCeil(divCeil(d.header.Width, d.hmax), blockSize)
	d.mcusY = divCeil(divCeil(d.header.Height, d.vmax), blockSize)
	d.state = stateFrame

	slog.Debug("jpeg: SOF0 parsed",
		slog.Int("width", d.header.Width),
		slog.Int("height", d.header.Height),
		slog.Int("components", len(d.comps)),
		slog.Int("hmax", d.hmax),
		slog.Int("vmax", d.vmax))
	return nil
}

func (d *decoder) readDHT(n int) error {
	for n > 0 {
		class, err := d.br.ReadNibble()
		if err != nil {
			return err
		}
		if err := assertBit(class, "table class"); err != nil {
			return err
		}
		id, err := d.br.ReadNibble()
		if err != nil {
			return err
		}
		if id >= maxHuffmanTables {
			return fmt.Errorf("%w: %v huffman table %d", ErrInvalidTableID, tableClass(class), id)
		}
		if n < 1+maxCodeLength {
			return fmt.Errorf("%w: %d bytes left for code counts", ErrInvalidHuffmanTable, n-1)
		}

		var counts [maxCodeLength]byte
		total := 0
		for i := range counts {
			if counts[i], err = d.br.ReadByte(); err != nil {
				return err
			}
			total += int(counts[i])
		}
		if total > 256 || 1+maxCodeLength+total > n {
			return fmt.Errorf("%w: %d symbols in %d bytes", ErrInvalidHuffmanTable, total, n-1-maxCodeLength)
		}
		symbols := make([]byte, total)
		for i := range symbols {
			if symbols[i], err = d.br.ReadByte(); err != nil {
				return err
			}
		}

		table, err := NewHuffmanCodeTable(counts, symbols)
		if err != nil {
			return err
		}
		tree, err := BuildHuffmanTree(table)
		if err != nil {
			return err
		}
		if err := d.tables.setTree(tableKey{class: tableClass(class), id: int(id)}, tree); err != nil {
			return err
		}
		n -= 1 + maxCodeLength + total

		slog.Debug("jpeg: DHT parsed",
			slog.String("class", tableClass(class).String()),
			slog.Int("id", int(id)),
			slog.Int("symbols", total),
			slog.Int("depth", tree.Depth()))
	}
	return nil
}

func (d *decoder) readSOS(n int) error {
	count, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	if (count != 1 && count != 3) || int(count) != len(d.comps) {
		return fmt.Errorf("%w: %d in scan, %d in frame", ErrUnsupportedComponentCount, count, len(d.comps))
	}
	if n != 4+2*int(count) {
		return fmt.Errorf("%w: SOS payload %d for %d components", ErrInvalidSegmentLength, n, count)
	}

	for _, c := range d.comps {
		c.bound = false
		c.pred = 0
	}
	for i := 0; i < int(count); i++ {
		selector, err := d.br.ReadByte()
		if err != nil {
			return err
		}
		td, err := d.br.ReadNibble()
		if err != nil {
			return err
		}
		ta, err := d.br.ReadNibble()
		if err != nil {
			return err
		}

		c := d.component(selector)
		if c == nil {
			return fmt.Errorf("%w: scan selects %d", ErrUnknownComponent, selector)
		}
		if c.bound {
			return fmt.Errorf("%w: scan selects %d twice", ErrDuplicateComponent, selector)
		}
		c.dc = tableKey{class: classDC, id: int(td)}
		c.ac = tableKey{class: classAC, id: int(ta)}
		if _, err := d.tables.tree(c.dc); err != nil {
			return err
		}
		if _, err := d.tables.tree(c.ac); err != nil {
			return err
		}
		if _, err := d.tables.quantTable(c.Tq); err != nil {
			return err
		}
		c.Td, c.Ta = int(td), int(ta)
		c.bound = true
	}

	// spectral selection and successive approximation carry nothing for baseline
	var params [3]byte
	for i := range params {
		if params[i], err = d.br.ReadByte(); err != nil {
			return err
		}
	}
	d.state = stateScanning

	slog.Debug("jpeg: SOS parsed",
		slog.Int("components", int(count)),
		slog.Int("ss", int(params[0])),
		slog.Int("se", int(params[1])),
		slog.Int("ahal", int(params[2])))
	return nil
}

// component finds the frame component with identifier id.
func (d *decoder) component(id byte) *frameComponent {
	for _, c := range d.comps {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func divCeil(a, b int) int {
	return (a + b - 1) / b
}

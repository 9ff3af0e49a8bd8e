package jpeg

import (
	"fmt"
	"io"
	"log/slog"
)

// maxMagnitude is the largest coefficient category a baseline stream codes.
const maxMagnitude = 15

// dcRawSentinel is a DC category kept literally as the delta.
const dcRawSentinel = 255

// unstuffer hands entropy-coded bytes to a BitReader, dropping the zero that
// follows every 0xFF data byte. A marker inside the scan is an error.
type unstuffer struct {
	src io.ByteReader
}

func (u *unstuffer) ReadByte() (byte, error) {
	c, err := u.src.ReadByte()
	if err != nil || c != 0xFF {
		return c, err
	}
	next, err := u.src.ReadByte()
	if err != nil {
		return 0, err
	}
	if next != 0x00 {
		return 0, &UnexpectedMarkerError{Actual: 0xFF00 | Marker(next)}
	}
	return 0xFF, nil
}

// decodeScan runs the MCU loop, filling every component's coefficient plane
// with dequantized blocks.
func (d *decoder) decodeScan() error {
	quant := make([]*QuantTable, len(d.comps))
	for i, c := range d.comps {
		q, err := d.tables.quantTable(c.Tq)
		if err != nil {
			return err
		}
		quant[i] = q
		c.blocksW = d.mcusX * c.H
		c.blocksH = d.mcusY * c.V
		c.coef = make([]int32, c.blocksW*c.blocksH*blockLength)
	}

	scan := NewBitReader(&unstuffer{src: d.src})
	var zz [blockLength]int32

	for my := 0; my < d.mcusY; my++ {
		for mx := 0; mx < d.mcusX; mx++ {
			for i, c := range d.comps {
				for sy := 0; sy < c.V; sy++ {
					for sx := 0; sx < c.H; sx++ {
						zz = [blockLength]int32{}
						if err := d.decodeBlock(scan, c, &zz); err != nil {
							return fmt.Errorf("mcu (%d,%d) component %d: %w", mx, my, c.ID, err)
						}
						dequantize(&zz, quant[i], c.block(mx*c.H+sx, my*c.V+sy))
					}
				}
			}
		}
	}
	scan.Flush()

	slog.Debug("jpeg: scan decoded",
		slog.Int("mcusX", d.mcusX),
		slog.Int("mcusY", d.mcusY),
		slog.Int64("bytes", scan.Offset()))
	return nil
}

// decodeBlock reads one block's DC and AC coefficients in zigzag order.
func (d *decoder) decodeBlock(br *BitReader, c *frameComponent, zz *[blockLength]int32) error {
	dc, err := d.tables.tree(c.dc)
	if err != nil {
		return err
	}
	ac, err := d.tables.tree(c.ac)
	if err != nil {
		return err
	}
	if err := readDC(br, dc, c, zz); err != nil {
		return err
	}
	return readAC(br, ac, zz)
}

// readDC decodes a DC difference and folds it into the component predictor.
func readDC(br *BitReader, tree *HuffmanTree, c *frameComponent, zz *[blockLength]int32) error {
	category, err := tree.Decode(br)
	if err != nil {
		return err
	}
	var delta int32
	switch {
	case category == 0:
	case category == dcRawSentinel:
		delta = dcRawSentinel
	case category <= maxMagnitude:
		bits, err := br.ReadBits(int(category))
		if err != nil {
			return err
		}
		delta = extend(bits, int(category))
	default:
		return fmt.Errorf("%w: DC category %d", ErrCorruptHuffmanCode, category)
	}
	c.pred += delta
	zz[0] = c.pred
	return nil
}

// readAC decodes run/size coded AC coefficients until EOB or position 63.
func readAC(br *BitReader, tree *HuffmanTree, zz *[blockLength]int32) error {
	for k := 1; k < blockLength; k++ {
		symbol, err := tree.Decode(br)
		if err != nil {
			return err
		}
		if symbol == 0x00 {
			return nil // EOB
		}
		run, size := int(symbol>>4), int(symbol&0x0F)
		bits, err := br.ReadBits(size)
		if err != nil {
			return err
		}
		k += run
		if k >= blockLength {
			return fmt.Errorf("%w: zero run past coefficient 63", ErrCorruptHuffmanCode)
		}
		zz[k] = extend(bits, size)
	}
	return nil
}

// extend turns the raw bits of a magnitude category into a signed value:
// a leading zero bit marks a negative value.
func extend(v int32, category int) int32 {
	if category == 0 {
		return 0
	}
	if v < 1<<(category-1) {
		return v - (1<<category - 1)
	}
	return v
}

// dequantize multiplies zigzag ordered coefficients by the quantization
// table and stores them in raster order.
func dequantize(zz *[blockLength]int32, q *QuantTable, dst []int32) {
	for k, v := range zz {
		idx := unzigzag[k]
		dst[idx] = v * q.Values[idx]
	}
}

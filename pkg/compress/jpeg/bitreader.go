package jpeg

import (
	"errors"
	"fmt"
	"io"
)

// BitReader reads bytes and MSB-first bits from a forward-only byte source.
// It knows nothing about JPEG markers or byte stuffing.
type BitReader struct {
	src  io.ByteReader
	cur  byte // byte the bit cursor is walking
	off  uint // bits of cur already consumed; 0 means no partial byte
	read int64
}

// NewBitReader creates a bit reader over src.
func NewBitReader(src io.ByteReader) *BitReader {
	return &BitReader{src: src}
}

// Offset returns the number of bytes pulled from the source so far.
func (b *BitReader) Offset() int64 {
	return b.read
}

// next pulls one byte from the source.
func (b *BitReader) next() (byte, error) {
	c, err := b.src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w at byte %d", ErrUnexpectedEndOfInput, b.read)
		}
		return 0, err
	}
	b.read++
	return c, nil
}

// ReadByte reads the next 8 bits. It fails if a bit sequence is pending.
func (b *BitReader) ReadByte() (byte, error) {
	if b.off != 0 {
		return 0, fmt.Errorf("%w: %d bits into byte %d", ErrMisalignedRead, b.off, b.read)
	}
	return b.next()
}

// ReadBit reads one bit, most significant first within each byte.
func (b *BitReader) ReadBit() (byte, error) {
	if b.off == 0 {
		c, err := b.next()
		if err != nil {
			return 0, err
		}
		b.cur = c
	}
	bit := (b.cur >> (7 - b.off)) & 1
	b.off = (b.off + 1) % 8
	return bit, nil
}

// ReadBits reads n bits (n <= 16) into an unsigned value, MSB first.
func (b *BitReader) ReadBits(n int) (int32, error) {
	var v int32
	for i := 0; i < n; i++ {
		bit, err := b.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | int32(bit)
	}
	return v, nil
}

// ReadWord reads a big-endian 16 bit value.
func (b *BitReader) ReadWord() (uint16, error) {
	hi, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	lo, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// ReadNibble reads 4 bits, MSB first.
func (b *BitReader) ReadNibble() (byte, error) {
	var v byte
	for i := 0; i < 4; i++ {
		bit, err := b.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | bit
	}
	return v, nil
}

// SkipBits advances the cursor by n bits. Whole bytes come straight from the
// source; the remainder goes through the bit cursor.
func (b *BitReader) SkipBits(n int) error {
	for i := 0; i < n/8; i++ {
		c, err := b.next()
		if err != nil {
			return err
		}
		// the cursor keeps its position, now inside the newer byte
		b.cur = c
	}
	for i := 0; i < n%8; i++ {
		if _, err := b.ReadBit(); err != nil {
			return err
		}
	}
	return nil
}

// Flush drops the rest of a partially read byte.
func (b *BitReader) Flush() {
	b.off = 0
}

// ReadString reads n raw bytes.
func (b *BitReader) ReadString(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		c, err := b.ReadByte()
		if err != nil {
			return "", err
		}
		buf[i] = c
	}
	return string(buf), nil
}

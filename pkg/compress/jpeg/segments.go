package jpeg

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Segment is one marker found in a JPEG stream.
type Segment struct {
	Marker Marker `json:"marker"`
	Offset int    `json:"offset"` // position of the 0xFF that opens the marker
	Length int    `json:"length"` // declared length, including its own two bytes
	// ScanBytes is the size of the entropy-coded data after an SOS header.
	ScanBytes int `json:"scanBytes,omitempty"`
}

// Segments lists the markers of a JPEG stream without decoding it. Listing
// stops after EOI; anything that follows is ignored.
func Segments(data []byte) ([]Segment, error) {
	var out []Segment
	pos := 0
	for pos < len(data) {
		if data[pos] != 0xFF {
			return out, fmt.Errorf("%w: byte 0x%02X at %d", ErrUnexpectedMarker, data[pos], pos)
		}
		start := pos
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			return out, ErrUnexpectedEndOfInput
		}
		seg := Segment{Marker: 0xFF00 | Marker(data[pos]), Offset: start}
		pos++

		if seg.Marker.HasLength() {
			if pos+2 > len(data) {
				return out, fmt.Errorf("%w: %v length at %d", ErrUnexpectedEndOfInput, seg.Marker, pos)
			}
			seg.Length = int(binary.BigEndian.Uint16(data[pos:]))
			if seg.Length < 2 || pos+seg.Length > len(data) {
				return out, fmt.Errorf("%w: %v at %d declares %d bytes", ErrInvalidSegmentLength, seg.Marker, start, seg.Length)
			}
			pos += seg.Length
		}
		if seg.Marker == MarkerSOS {
			seg.ScanBytes = scanLength(data[pos:])
			pos += seg.ScanBytes
		}
		out = append(out, seg)
		if seg.Marker == MarkerEOI {
			break
		}
	}
	return out, nil
}

// scanLength finds the first marker that is neither a stuffed 0xFF nor a
// restart marker.
func scanLength(data []byte) int {
	n := 0
	for {
		i := bytes.IndexByte(data[n:], 0xFF)
		if i < 0 || n+i+1 >= len(data) {
			return len(data)
		}
		next := data[n+i+1]
		if next != 0x00 && !Marker(0xFF00|uint16(next)).IsRST() {
			return n + i
		}
		n += i + 2
	}
}

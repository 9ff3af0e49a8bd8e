package jpeg

import "fmt"

// Marker is a two byte JPEG marker code.
type Marker uint16

// JPEG markers
const (
	MarkerSOF0  Marker = 0xFFC0 // Baseline DCT
	MarkerSOF1  Marker = 0xFFC1 // Extended sequential DCT
	MarkerSOF2  Marker = 0xFFC2 // Progressive DCT
	MarkerSOF3  Marker = 0xFFC3 // Lossless
	MarkerDHT   Marker = 0xFFC4 // Define Huffman Table
	MarkerSOF15 Marker = 0xFFCF
	MarkerRST0  Marker = 0xFFD0
	MarkerRST7  Marker = 0xFFD7
	MarkerSOI   Marker = 0xFFD8 // Start of Image
	MarkerEOI   Marker = 0xFFD9 // End of Image
	MarkerSOS   Marker = 0xFFDA // Start of Scan
	MarkerDQT   Marker = 0xFFDB // Define Quantization Table
	MarkerDRI   Marker = 0xFFDD // Define Restart Interval
	MarkerAPP0  Marker = 0xFFE0 // JFIF
	MarkerAPP1  Marker = 0xFFE1 // EXIF
	MarkerAPP15 Marker = 0xFFEF
	MarkerCOM   Marker = 0xFFFE // Comment
)

var markerNames = map[Marker]string{
	MarkerSOF0: "SOF0",
	MarkerSOF1: "SOF1",
	MarkerSOF2: "SOF2",
	MarkerSOF3: "SOF3",
	MarkerDHT:  "DHT",
	MarkerSOI:  "SOI",
	MarkerEOI:  "EOI",
	MarkerSOS:  "SOS",
	MarkerDQT:  "DQT",
	MarkerDRI:  "DRI",
	MarkerCOM:  "COM",
}

func (m Marker) String() string {
	switch {
	case m.IsAPP():
		return fmt.Sprintf("APP%d", m-MarkerAPP0)
	case m.IsRST():
		return fmt.Sprintf("RST%d", m-MarkerRST0)
	}
	if name, ok := markerNames[m]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(m))
}

// IsAPP reports whether m is one of APP0..APP15.
func (m Marker) IsAPP() bool {
	return m >= MarkerAPP0 && m <= MarkerAPP15
}

// IsRST reports whether m is a restart marker.
func (m Marker) IsRST() bool {
	return m >= MarkerRST0 && m <= MarkerRST7
}

// IsSOF reports whether m starts a frame of any coding process.
func (m Marker) IsSOF() bool {
	if m < MarkerSOF0 || m > MarkerSOF15 {
		return false
	}
	// DHT, JPG and DAC share the SOF range
	return m != MarkerDHT && m != 0xFFC8 && m != 0xFFCC
}

// HasLength reports whether a length-prefixed payload follows m.
func (m Marker) HasLength() bool {
	return m != MarkerSOI && m != MarkerEOI && !m.IsRST() && m != 0xFF01
}

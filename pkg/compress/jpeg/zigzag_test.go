package jpeg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rasterOrder = [blockLength]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

func TestUnzigzag(t *testing.T) {
	assert.Equal(t, rasterOrder, unzigzag)

	seen := map[int]bool{}
	for _, idx := range unzigzag {
		seen[idx] = true
	}
	assert.Len(t, seen, blockLength)
}

func TestZigzag(t *testing.T) {
	tests := []struct {
		k        int
		row, col int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 0},
		{5, 0, 2},
		{35, 7, 0},
		{36, 7, 1},
		{63, 7, 7},
	}
	for _, tt := range tests {
		row, col := zigzag(tt.k)
		assert.Equal(t, tt.row, row, "row of %d", tt.k)
		assert.Equal(t, tt.col, col, "col of %d", tt.k)
	}
}

func TestQuantTable_Roundtrip(t *testing.T) {
	var zz [blockLength]byte
	for k := range zz {
		zz[k] = byte(k + 1)
	}
	s := &streamBuilder{}
	s.dqt(1, zz)

	d := newDecoder(bytes.NewReader(s.bytes()[2:]), nil)
	require.NoError(t, d.segment(MarkerDQT, d.readDQT))

	q, err := d.tables.quantTable(1)
	require.NoError(t, err)
	assert.Equal(t, entry8, q.Width)
	// entry k of the segment lands at raster position unzigzag[k]
	assert.Equal(t, int32(2), q.Values[1])
	assert.Equal(t, int32(3), q.Values[8])
	assert.Equal(t, int32(64), q.Values[63])

	got := q.Zigzag()
	for k := range zz {
		assert.Equal(t, int32(zz[k]), got[k])
	}
}

func TestReadDQT_SharedSegment(t *testing.T) {
	payload := []byte{0x00}
	for k := 0; k < blockLength; k++ {
		payload = append(payload, 1)
	}
	// 16 bit entries for table 1
	payload = append(payload, 0x11)
	for k := 0; k < blockLength; k++ {
		payload = append(payload, 0x01, 0x00)
	}
	s := &streamBuilder{}
	s.segment(MarkerDQT, payload)

	d := newDecoder(bytes.NewReader(s.bytes()[2:]), nil)
	require.NoError(t, d.segment(MarkerDQT, d.readDQT))

	q0, err := d.tables.quantTable(0)
	require.NoError(t, err)
	q1, err := d.tables.quantTable(1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), q0.Values[17])
	assert.Equal(t, entry16, q1.Width)
	assert.Equal(t, int32(256), q1.Values[17])
}

func TestQuantSide(t *testing.T) {
	assert.Equal(t, 8, quantSide(64, entry8))
	assert.Equal(t, 8, quantSide(128, entry16))
	assert.Equal(t, 4, quantSide(16, entry8))
	assert.Equal(t, 0, quantSide(32, entry8))
	assert.Equal(t, 0, quantSide(0, entry8))
}

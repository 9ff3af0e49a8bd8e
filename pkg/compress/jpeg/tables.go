package jpeg

import (
	"fmt"
	"math"
)

const (
	maxQuantTables   = 2
	maxHuffmanTables = 2
)

// tableClass selects the DC or AC half of the Huffman table store.
type tableClass int

const (
	classDC tableClass = 0
	classAC tableClass = 1
)

func (c tableClass) String() string {
	if c == classAC {
		return "AC"
	}
	return "DC"
}

// entryWidth is the size of one quantization table entry, picked once per
// table from its precision nibble.
type entryWidth int

const (
	entry8  entryWidth = 1
	entry16 entryWidth = 2
)

func (w entryWidth) read(br *BitReader) (int32, error) {
	if w == entry16 {
		v, err := br.ReadWord()
		return int32(v), err
	}
	v, err := br.ReadByte()
	return int32(v), err
}

// QuantTable is an 8×8 quantization matrix in raster order.
type QuantTable struct {
	Values [blockLength]int32
	Width  entryWidth
}

// Zigzag returns the table entries in the order they appear in a DQT segment.
func (q *QuantTable) Zigzag() [blockLength]int32 {
	var out [blockLength]int32
	for k := range out {
		out[k] = q.Values[unzigzag[k]]
	}
	return out
}

// quantSide derives the side length of a table from the bytes it occupies.
func quantSide(payload int, w entryWidth) int {
	if payload <= 0 {
		return 0
	}
	side := int(math.Round(math.Sqrt(float64(payload) / float64(w))))
	if side*side*int(w) != payload {
		return 0
	}
	return side
}

// tableKey addresses one Huffman tree in the store.
type tableKey struct {
	class tableClass
	id    int
}

// tableStore holds the tables defined by DQT and DHT segments. Components
// refer to entries by id; nothing is copied out of the store.
type tableStore struct {
	quant   [maxQuantTables]*QuantTable
	huffman [2][maxHuffmanTables]*HuffmanTree
}

func (s *tableStore) setQuant(id int, q *QuantTable) error {
	if id < 0 || id >= maxQuantTables {
		return fmt.Errorf("%w: quantization table %d", ErrInvalidTableID, id)
	}
	s.quant[id] = q
	return nil
}

func (s *tableStore) quantTable(id int) (*QuantTable, error) {
	if id < 0 || id >= maxQuantTables {
		return nil, fmt.Errorf("%w: quantization table %d", ErrInvalidTableID, id)
	}
	if s.quant[id] == nil {
		return nil, fmt.Errorf("%w: quantization table %d not defined", ErrMissingTable, id)
	}
	return s.quant[id], nil
}

func (s *tableStore) setTree(k tableKey, t *HuffmanTree) error {
	if k.id < 0 || k.id >= maxHuffmanTables {
		return fmt.Errorf("%w: %v huffman table %d", ErrInvalidTableID, k.class, k.id)
	}
	s.huffman[k.class][k.id] = t
	return nil
}

func (s *tableStore) tree(k tableKey) (*HuffmanTree, error) {
	if k.id < 0 || k.id >= maxHuffmanTables {
		return nil, fmt.Errorf("%w: %v huffman table %d", ErrInvalidTableID, k.class, k.id)
	}
	t := s.huffman[k.class][k.id]
	if t == nil {
		return nil, fmt.Errorf("%w: %v huffman table %d not defined", ErrMissingTable, k.class, k.id)
	}
	return t, nil
}

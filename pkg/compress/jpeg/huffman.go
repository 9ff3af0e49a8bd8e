package jpeg

import "fmt"

// maxCodeLength is the longest Huffman code JPEG allows.
const maxCodeLength = 16

// HuffmanCodeTable holds the symbols of a DHT segment bucketed by code
// length: bucket i has the symbols whose codes are i+1 bits long, in
// increasing code order.
type HuffmanCodeTable [maxCodeLength][]byte

// NewHuffmanCodeTable splits symbols into buckets using the 16 BITS counts
// of a DHT segment.
func NewHuffmanCodeTable(counts [maxCodeLength]byte, symbols []byte) (HuffmanCodeTable, error) {
	var t HuffmanCodeTable
	total := 0
	for _, c := range counts {
		total += int(c)
	}
	if total > 256 || total != len(symbols) {
		return t, fmt.Errorf("%w: %d codes for %d symbols", ErrInvalidHuffmanTable, total, len(symbols))
	}
	off := 0
	for i, c := range counts {
		t[i] = append([]byte(nil), symbols[off:off+int(c)]...)
		off += int(c)
	}
	return t, nil
}

// Len returns the number of symbols in the table.
func (t *HuffmanCodeTable) Len() int {
	n := 0
	for _, b := range t {
		n += len(b)
	}
	return n
}

type huffmanNode struct {
	left, right *huffmanNode
	symbol      byte
	leaf        bool
}

// HuffmanTree is a canonical Huffman decode tree. It is immutable once
// built and may be shared by every component that selects its table.
type HuffmanTree struct {
	root  *huffmanNode
	depth int
}

// huffmanBuilder owns the buckets being consumed while a tree is filled.
type huffmanBuilder struct {
	buckets   HuffmanCodeTable
	remaining int
	depth     int
}

// BuildHuffmanTree fills a decode tree top-down, left child first, so codes of
// each length are handed out in increasing order.
func BuildHuffmanTree(table HuffmanCodeTable) (*HuffmanTree, error) {
	b := &huffmanBuilder{}
	for i, bucket := range table {
		b.buckets[i] = append([]byte(nil), bucket...)
	}
	b.remaining = b.buckets.Len()

	root, err := b.fill(0)
	if err != nil {
		return nil, err
	}
	if b.remaining > 0 {
		return nil, fmt.Errorf("%w: %d symbols left without a code", ErrHuffmanTableTooLarge, b.remaining)
	}
	return &HuffmanTree{root: root, depth: b.depth}, nil
}

func (b *huffmanBuilder) fill(depth int) (*huffmanNode, error) {
	if depth > maxCodeLength {
		return nil, fmt.Errorf("%w: codes longer than %d bits", ErrHuffmanTableTooLarge, maxCodeLength)
	}
	if depth > 0 && len(b.buckets[depth-1]) > 0 {
		sym := b.buckets[depth-1][0]
		b.buckets[depth-1] = b.buckets[depth-1][1:]
		b.remaining--
		if depth > b.depth {
			b.depth = depth
		}
		return &huffmanNode{symbol: sym, leaf: true}, nil
	}
	if b.remaining == 0 {
		return nil, nil
	}
	left, err := b.fill(depth + 1)
	if err != nil {
		return nil, err
	}
	right, err := b.fill(depth + 1)
	if err != nil {
		return nil, err
	}
	return &huffmanNode{left: left, right: right}, nil
}

// Depth returns the length of the longest code in the tree.
func (t *HuffmanTree) Depth() int {
	return t.depth
}

// Decode reads bits until a leaf is reached and returns its symbol.
func (t *HuffmanTree) Decode(br *BitReader) (byte, error) {
	n := t.root
	if n == nil {
		return 0, fmt.Errorf("%w: empty table", ErrCorruptHuffmanCode)
	}
	code := 0
	for bits := 0; !n.leaf; bits++ {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | int(bit)
		if bit == 1 {
			n = n.right
		} else {
			n = n.left
		}
		if n == nil {
			return 0, fmt.Errorf("%w: no symbol for code %0*b", ErrCorruptHuffmanCode, bits+1, code)
		}
	}
	return n.symbol, nil
}

package jpeg

const (
	blockSize   = 8
	blockLength = blockSize * blockSize
)

// unzigzag maps a zigzag scan position to its raster index (row*8 + col).
var unzigzag = buildUnzigzag(blockSize)

// buildUnzigzag walks the anti-diagonals of an n×n matrix from the top-left
// corner. The first phase covers the upper triangle including the main
// anti-diagonal, the second the remaining lower triangle.
func buildUnzigzag(n int) [blockLength]int {
	var order [blockLength]int
	k := 0
	put := func(row, col int) {
		order[k] = row*n + col
		k++
	}
	for j := 0; j < n; j++ {
		for i := 0; i <= j; i++ {
			if j%2 == 1 {
				put(i, j-i)
			} else {
				put(j-i, i)
			}
		}
	}
	odd := n % 2
	for j := 1; j < n; j++ {
		for i := n - 1; i >= j; i-- {
			if (j+odd)%2 == 1 {
				put(i, j+n-1-i)
			} else {
				put(j+n-1-i, i)
			}
		}
	}
	return order
}

// zigzag returns the (row, col) of scan position k.
func zigzag(k int) (row, col int) {
	idx := unzigzag[k]
	return idx / blockSize, idx % blockSize
}

package jpeg

// Fixed point cosine constants, scaled by 2048.
const (
	w1 = 2841 // 2048*sqrt(2)*cos(1*pi/16)
	w2 = 2676 // 2048*sqrt(2)*cos(2*pi/16)
	w3 = 2408 // 2048*sqrt(2)*cos(3*pi/16)
	w5 = 1609 // 2048*sqrt(2)*cos(5*pi/16)
	w6 = 1108 // 2048*sqrt(2)*cos(6*pi/16)
	w7 = 565  // 2048*sqrt(2)*cos(7*pi/16)

	r2 = 181 // 256/sqrt(2)
)

// idct transforms one block of dequantized coefficients (raster order) into
// samples, level shifts them by 128 and writes them clamped to out.
func idct(coef []int32, out []byte, stride int) {
	var tmp [blockLength]int32

	// rows
	for y := 0; y < blockSize; y++ {
		row := y * blockSize

		if coef[row+1] == 0 && coef[row+2] == 0 && coef[row+3] == 0 &&
			coef[row+4] == 0 && coef[row+5] == 0 && coef[row+6] == 0 && coef[row+7] == 0 {
			dc := coef[row] << 3
			for x := 0; x < blockSize; x++ {
				tmp[row+x] = dc
			}
			continue
		}

		x0 := (coef[row+0] << 11) + 128
		x1 := coef[row+4] << 11
		x2 := coef[row+6]
		x3 := coef[row+2]
		x4 := coef[row+1]
		x5 := coef[row+7]
		x6 := coef[row+5]
		x7 := coef[row+3]

		x8 := w7 * (x4 + x5)
		x4 = x8 + (w1-w7)*x4
		x5 = x8 - (w1+w7)*x5
		x8 = w3 * (x6 + x7)
		x6 = x8 - (w3-w5)*x6
		x7 = x8 - (w3+w5)*x7

		x8 = x0 + x1
		x0 -= x1
		x1 = w6 * (x3 + x2)
		x2 = x1 - (w2+w6)*x2
		x3 = x1 + (w2-w6)*x3
		x1 = x4 + x6
		x4 -= x6
		x6 = x5 + x7
		x5 -= x7

		x7 = x8 + x3
		x8 -= x3
		x3 = x0 + x2
		x0 -= x2
		x2 = (r2*(x4+x5) + 128) >> 8
		x4 = (r2*(x4-x5) + 128) >> 8

		tmp[row+0] = (x7 + x1) >> 8
		tmp[row+1] = (x3 + x2) >> 8
		tmp[row+2] = (x0 + x4) >> 8
		tmp[row+3] = (x8 + x6) >> 8
		tmp[row+4] = (x8 - x6) >> 8
		tmp[row+5] = (x0 - x4) >> 8
		tmp[row+6] = (x3 - x2) >> 8
		tmp[row+7] = (x7 - x1) >> 8
	}

	// columns, with level shift and range limiting
	for x := 0; x < blockSize; x++ {
		y0 := (tmp[0*8+x] << 8) + 8192
		y1 := tmp[4*8+x] << 8
		y2 := tmp[6*8+x]
		y3 := tmp[2*8+x]
		y4 := tmp[1*8+x]
		y5 := tmp[7*8+x]
		y6 := tmp[5*8+x]
		y7 := tmp[3*8+x]

		y8 := w7*(y4+y5) + 4
		y4 = (y8 + (w1-w7)*y4) >> 3
		y5 = (y8 - (w1+w7)*y5) >> 3
		y8 = w3*(y6+y7) + 4
		y6 = (y8 - (w3-w5)*y6) >> 3
		y7 = (y8 - (w3+w5)*y7) >> 3

		y8 = y0 + y1
		y0 -= y1
		y1 = w6*(y3+y2) + 4
		y2 = (y1 - (w2+w6)*y2) >> 3
		y3 = (y1 + (w2-w6)*y3) >> 3
		y1 = y4 + y6
		y4 -= y6
		y6 = y5 + y7
		y5 -= y7

		y7 = y8 + y3
		y8 -= y3
		y3 = y0 + y2
		y0 -= y2
		y2 = (r2*(y4+y5) + 128) >> 8
		y4 = (r2*(y4-y5) + 128) >> 8

		out[0*stride+x] = clamp8(((y7 + y1) >> 14) + 128)
		out[1*stride+x] = clamp8(((y3 + y2) >> 14) + 128)
		out[2*stride+x] = clamp8(((y0 + y4) >> 14) + 128)
		out[3*stride+x] = clamp8(((y8 + y6) >> 14) + 128)
		out[4*stride+x] = clamp8(((y8 - y6) >> 14) + 128)
		out[5*stride+x] = clamp8(((y0 - y4) >> 14) + 128)
		out[6*stride+x] = clamp8(((y3 - y2) >> 14) + 128)
		out[7*stride+x] = clamp8(((y7 - y1) >> 14) + 128)
	}
}

func clamp8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

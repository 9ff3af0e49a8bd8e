package jpeg

import "log/slog"

// plane is one component's samples at its own resolution.
type plane struct {
	w, h   int
	sx, sy int // upsampling factors to the MCU grid
	pix    []byte
}

// reconstruct turns the coefficient planes into a cropped RGB image.
func (d *decoder) reconstruct() *Image {
	planes := make([]plane, len(d.comps))
	for i, c := range d.comps {
		planes[i] = c.samples(d.hmax/c.H, d.vmax/c.V)
	}

	img := &Image{
		Width:   d.header.Width,
		Height:  d.header.Height,
		Comment: d.header.Comment,
	}
	img.Pix = make([]byte, img.Stride()*img.Height)

	if len(planes) == 1 {
		grayToRGB(img, planes[0])
	} else {
		ycbcrToRGB(img, planes[0], planes[1], planes[2])
	}

	slog.Debug("jpeg: image reconstructed",
		slog.Int("width", img.Width),
		slog.Int("height", img.Height),
		slog.Int("components", len(planes)))
	return img
}

// samples runs the inverse DCT over every block of the component.
func (c *frameComponent) samples(sx, sy int) plane {
	p := plane{
		w:  c.blocksW * blockSize,
		h:  c.blocksH * blockSize,
		sx: sx,
		sy: sy,
	}
	p.pix = make([]byte, p.w*p.h)
	for by := 0; by < c.blocksH; by++ {
		for bx := 0; bx < c.blocksW; bx++ {
			off := by*blockSize*p.w + bx*blockSize
			idct(c.block(bx, by), p.pix[off:], p.w)
		}
	}
	return p
}

// at returns the sample covering output pixel (x, y), replicating
// subsampled values over their factor.
func (p plane) at(x, y int) int32 {
	return int32(p.pix[(y/p.sy)*p.w+x/p.sx])
}

func grayToRGB(img *Image, gray plane) {
	for y := 0; y < img.Height; y++ {
		row := img.Pix[y*img.Stride():]
		for x := 0; x < img.Width; x++ {
			v := byte(gray.at(x, y))
			row[3*x], row[3*x+1], row[3*x+2] = v, v, v
		}
	}
}

func ycbcrToRGB(img *Image, yp, cbp, crp plane) {
	for y := 0; y < img.Height; y++ {
		row := img.Pix[y*img.Stride():]
		for x := 0; x < img.Width; x++ {
			r, g, b := ycbcr(yp.at(x, y), cbp.at(x, y), crp.at(x, y))
			row[3*x], row[3*x+1], row[3*x+2] = r, g, b
		}
	}
}

// ycbcr converts one full range BT.601 sample to RGB in 16.16 fixed point.
func ycbcr(y, cb, cr int32) (r, g, b byte) {
	yy := y<<16 + 1<<15
	cb -= 128
	cr -= 128
	r = clamp8((yy + 91881*cr) >> 16)
	g = clamp8((yy - 22554*cb - 46802*cr) >> 16)
	b = clamp8((yy + 116130*cb) >> 16)
	return r, g, b
}

package bounds

import (
	"context"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// histogramBounds renders the page and scans for pixels that differ from
// the dominant colour.
func histogramBounds(dpi int) pageFunc {
	return func(ctx context.Context, src document.Source, i int, _ pdftrim.Rect) (pdftrim.Rect, bool, error) {
		r, err := src.RenderPixels(ctx, i, dpi)
		if err != nil {
			return pdftrim.Rect{}, false, err
		}
		x0, y0, x1, y1, ok := ContentBox(r, DominantColor(r))
		if !ok {
			return pdftrim.Rect{}, false, nil
		}
		// A single row or column still covers one rendered pixel.
		if x1 == x0 {
			x1++
		}
		if y1 == y0 {
			y1++
		}
		content := pdftrim.Rect{X0: float64(x0), Y0: float64(y0), X1: float64(x1), Y1: float64(y1)}
		if dpi > 0 {
			f := 72.0 / float64(dpi)
			content = pdftrim.Rect{X0: content.X0 * f, Y0: content.Y0 * f, X1: content.X1 * f, Y1: content.Y1 * f}
		}
		return content, true, nil
	}
}

// DominantColor returns the most frequent colour of r. Ties go to the
// lowest packed RGB value.
func DominantColor(r *document.Raster) document.RGB {
	counts := make(map[uint32]int)
	for i := 0; i+2 < len(r.Pix); i += 3 {
		counts[uint32(r.Pix[i])<<16|uint32(r.Pix[i+1])<<8|uint32(r.Pix[i+2])]++
	}
	var best uint32
	bestN := -1
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	return document.RGB{uint8(best >> 16), uint8(best >> 8), uint8(best)}
}

// BorderCuts counts the uniform non-background columns and rows at each
// edge of r. Columns are cut first; rows are then tested only inside the
// surviving column range.
func BorderCuts(r *document.Raster, bg document.RGB) (left, top, right, bottom int) {
	w, h := r.Width, r.Height
	for left < w && uniformColumn(r, left, 0, h-1, bg) {
		left++
	}
	for right < w-left && uniformColumn(r, w-1-right, 0, h-1, bg) {
		right++
	}
	c0, c1 := left, w-1-right
	for top < h && uniformRow(r, top, c0, c1, bg) {
		top++
	}
	for bottom < h-top && uniformRow(r, h-1-bottom, c0, c1, bg) {
		bottom++
	}
	return left, top, right, bottom
}

// uniformColumn reports whether every pixel of column x in rows y0..y1
// differs from bg. An empty range is never uniform.
func uniformColumn(r *document.Raster, x, y0, y1 int, bg document.RGB) bool {
	if y0 > y1 {
		return false
	}
	for y := y0; y <= y1; y++ {
		if r.At(x, y) == bg {
			return false
		}
	}
	return true
}

// uniformRow reports whether every pixel of row y in columns x0..x1
// differs from bg. An empty range is never uniform.
func uniformRow(r *document.Raster, y, x0, x1 int, bg document.RGB) bool {
	if x0 > x1 {
		return false
	}
	for x := x0; x <= x1; x++ {
		if r.At(x, y) == bg {
			return false
		}
	}
	return true
}

// ContentBox returns the pixel indices of the leftmost, topmost, rightmost
// and bottommost non-background pixels inside the window left after
// BorderCuts. ok is false when the window holds only background.
func ContentBox(r *document.Raster, bg document.RGB) (x0, y0, x1, y1 int, ok bool) {
	left, top, right, bottom := BorderCuts(r, bg)
	wx0, wx1 := left, r.Width-1-right
	wy0, wy1 := top, r.Height-1-bottom
	if wx0 > wx1 || wy0 > wy1 {
		return 0, 0, 0, 0, false
	}

	// leftmost: column-major, left to right
	x0 = -1
	for x := wx0; x <= wx1 && x0 < 0; x++ {
		for y := wy0; y <= wy1; y++ {
			if r.At(x, y) != bg {
				x0 = x
				break
			}
		}
	}
	if x0 < 0 {
		return 0, 0, 0, 0, false
	}

	// topmost: row-major, top to bottom
	y0 = -1
	for y := wy0; y <= wy1 && y0 < 0; y++ {
		for x := wx0; x <= wx1; x++ {
			if r.At(x, y) != bg {
				y0 = y
				break
			}
		}
	}

	// rightmost: column-major, right to left
	x1 = -1
	for x := wx1; x >= wx0 && x1 < 0; x-- {
		for y := wy1; y >= wy0; y-- {
			if r.At(x, y) != bg {
				x1 = x
				break
			}
		}
	}

	// bottommost: row-major, bottom to top
	y1 = -1
	for y := wy1; y >= wy0 && y1 < 0; y-- {
		for x := wx1; x >= wx0; x-- {
			if r.At(x, y) != bg {
				y1 = y
				break
			}
		}
	}
	return x0, y0, x1, y1, true
}

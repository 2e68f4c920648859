package bounds

import (
	"testing"

	"github.com/lvillar/pdftrim/document"
)

var white = document.RGB{255, 255, 255}

// buildRaster returns a w x h raster filled with bg.
func buildRaster(t *testing.T, w, h int, bg document.RGB) *document.Raster {
	t.Helper()
	r := document.NewRaster(w, h)
	r.Fill(bg)
	return r
}

func setRow(r *document.Raster, y int, c document.RGB) {
	for x := 0; x < r.Width; x++ {
		r.Set(x, y, c)
	}
}

func setCol(r *document.Raster, x int, c document.RGB) {
	for y := 0; y < r.Height; y++ {
		r.Set(x, y, c)
	}
}

type cuts struct{ left, top, right, bottom int }

func borderCuts(r *document.Raster) cuts {
	l, t, rt, b := BorderCuts(r, white)
	return cuts{l, t, rt, b}
}

func TestBorderCutsTopRows(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	setRow(r, 0, document.RGB{0, 0, 0})
	setRow(r, 1, document.RGB{0, 0, 0})
	if got := borderCuts(r); got != (cuts{0, 2, 0, 0}) {
		t.Errorf("got %+v", got)
	}
}

func TestBorderCutsBottomRows(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	setRow(r, 7, document.RGB{0, 0, 0})
	setRow(r, 6, document.RGB{0, 0, 0})
	if got := borderCuts(r); got != (cuts{0, 0, 0, 2}) {
		t.Errorf("got %+v", got)
	}
}

func TestBorderCutsLeftColumns(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	setCol(r, 0, document.RGB{20, 20, 20})
	setCol(r, 1, document.RGB{20, 20, 20})
	if got := borderCuts(r); got != (cuts{2, 0, 0, 0}) {
		t.Errorf("got %+v", got)
	}
}

func TestBorderCutsRightColumns(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	setCol(r, 9, document.RGB{30, 30, 30})
	setCol(r, 8, document.RGB{30, 30, 30})
	if got := borderCuts(r); got != (cuts{0, 0, 2, 0}) {
		t.Errorf("got %+v", got)
	}
}

func TestBorderCutsNonUniformEdge(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	setRow(r, 0, document.RGB{0, 0, 0})
	r.Set(0, 0, white)
	if got := borderCuts(r); got != (cuts{0, 0, 0, 0}) {
		t.Errorf("got %+v", got)
	}
}

func TestBorderCutsAllSides(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	black := document.RGB{0, 0, 0}
	setRow(r, 0, black)
	setRow(r, 7, black)
	setCol(r, 0, black)
	setCol(r, 9, black)
	if got := borderCuts(r); got != (cuts{1, 1, 1, 1}) {
		t.Errorf("got %+v", got)
	}
}

func TestDominantColor(t *testing.T) {
	r := buildRaster(t, 4, 4, document.RGB{10, 20, 30})
	r.Set(1, 1, document.RGB{0, 0, 0})
	if got := DominantColor(r); got != (document.RGB{10, 20, 30}) {
		t.Errorf("got %v", got)
	}
}

func TestContentBoxSinglePixel(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	r.Set(4, 3, document.RGB{1, 2, 3})
	x0, y0, x1, y1, ok := ContentBox(r, white)
	if !ok || x0 != 4 || y0 != 3 || x1 != 4 || y1 != 3 {
		t.Errorf("got (%d,%d,%d,%d) ok=%v", x0, y0, x1, y1, ok)
	}
}

func TestContentBoxUniformPageIsEmpty(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	if _, _, _, _, ok := ContentBox(r, DominantColor(r)); ok {
		t.Error("uniform page should be empty")
	}
}

func TestContentBoxIgnoresEdgeRule(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	setCol(r, 0, document.RGB{0, 0, 0})
	r.Set(5, 4, document.RGB{0, 0, 0})
	r.Set(7, 6, document.RGB{0, 0, 0})
	x0, y0, x1, y1, ok := ContentBox(r, white)
	if !ok || x0 != 5 || y0 != 4 || x1 != 7 || y1 != 6 {
		t.Errorf("got (%d,%d,%d,%d) ok=%v", x0, y0, x1, y1, ok)
	}
}

func TestContentBoxTouchingEdge(t *testing.T) {
	r := buildRaster(t, 10, 8, white)
	r.Set(0, 0, document.RGB{0, 0, 0})
	r.Set(9, 7, document.RGB{0, 0, 0})
	x0, y0, x1, y1, ok := ContentBox(r, white)
	if !ok || x0 != 0 || y0 != 0 || x1 != 9 || y1 != 7 {
		t.Errorf("got (%d,%d,%d,%d) ok=%v", x0, y0, x1, y1, ok)
	}
}

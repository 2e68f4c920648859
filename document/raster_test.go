package document_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/lvillar/pdftrim/document"
)

func TestFromImageSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	sub := img.SubImage(image.Rect(2, 1, 4, 3))

	r := document.FromImage(sub)
	if r.Width != 2 || r.Height != 2 {
		t.Fatalf("size %dx%d", r.Width, r.Height)
	}
	if got := r.At(0, 0); got != (document.RGB{10, 20, 30}) {
		t.Errorf("top-left = %v", got)
	}
	if got := r.At(1, 1); got != (document.RGB{}) {
		t.Errorf("bottom-right = %v", got)
	}
}

func TestFromImageGeneric(t *testing.T) {
	img := image.NewGray(image.Rect(5, 5, 7, 6))
	img.SetGray(6, 5, color.Gray{Y: 200})
	r := document.FromImage(img)
	if got := r.At(1, 0); got != (document.RGB{200, 200, 200}) {
		t.Errorf("got %v", got)
	}
}

func TestRasterImageRoundTrip(t *testing.T) {
	r := document.NewRaster(3, 2)
	r.Fill(document.RGB{255, 255, 255})
	r.Set(2, 1, document.RGB{1, 2, 3})
	back := document.FromImage(r.Image())
	if back.At(2, 1) != (document.RGB{1, 2, 3}) || back.At(0, 0) != (document.RGB{255, 255, 255}) {
		t.Errorf("round trip lost pixels: %v %v", back.At(2, 1), back.At(0, 0))
	}
}

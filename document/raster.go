package document

import (
	"image"
	"image/color"
)

// RGB is a single 8-bit colour.
type RGB [3]uint8

// Raster is a packed RGB pixel buffer, rows top to bottom.
type Raster struct {
	Width, Height int
	DPI           int
	Pix           []uint8
}

// NewRaster allocates a black raster of w x h pixels.
func NewRaster(w, h int) *Raster {
	return &Raster{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

// At returns the colour at (x, y).
func (r *Raster) At(x, y int) RGB {
	i := (y*r.Width + x) * 3
	return RGB{r.Pix[i], r.Pix[i+1], r.Pix[i+2]}
}

// Set stores c at (x, y).
func (r *Raster) Set(x, y int, c RGB) {
	i := (y*r.Width + x) * 3
	r.Pix[i], r.Pix[i+1], r.Pix[i+2] = c[0], c[1], c[2]
}

// Fill paints the whole raster with c.
func (r *Raster) Fill(c RGB) {
	for i := 0; i < len(r.Pix); i += 3 {
		r.Pix[i], r.Pix[i+1], r.Pix[i+2] = c[0], c[1], c[2]
	}
}

// FromImage copies img into a new raster, dropping alpha.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				o := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				r.Set(x, y, RGB{rgba.Pix[o], rgba.Pix[o+1], rgba.Pix[o+2]})
			}
		}
		return r
	}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			r.Set(x, y, RGB{c.R, c.G, c.B})
		}
	}
	return r
}

// Image returns the raster as an image.Image.
func (r *Raster) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := r.At(x, y)
			o := img.PixOffset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c[0], c[1], c[2], 0xff
		}
	}
	return img
}

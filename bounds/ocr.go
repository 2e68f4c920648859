package bounds

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/draw"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// DefaultOCRDPI is the rendering resolution used for OCR when none is
// configured.
const DefaultOCRDPI = 500

// maxOCRSide bounds the longest edge handed to Tesseract, which rejects
// images over 32767 pixels on a side.
const maxOCRSide = 32000

// Word is a recognised word box in pixels.
type Word struct {
	Text string
	Box  image.Rectangle
}

// Recognizer finds words in a grayscale page image.
type Recognizer interface {
	Words(ctx context.Context, img *image.Gray, dpi int) ([]Word, error)
}

// TesseractRecognizer runs Tesseract through gosseract.
type TesseractRecognizer struct {
	Languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer returns a recognizer for langs.
func NewTesseractRecognizer(langs ...string) *TesseractRecognizer {
	return &TesseractRecognizer{Languages: langs, clientFactory: gosseract.NewClient}
}

// Words recognises the words of img with a fresh client, since a client
// may not be shared across goroutines.
func (t *TesseractRecognizer) Words(ctx context.Context, img *image.Gray, dpi int) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	c := t.clientFactory()
	defer c.Close()
	if len(t.Languages) > 0 {
		if err := c.SetLanguage(t.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(dpi)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{Text: b.Word, Box: b.Box})
	}
	return words, nil
}

type ocrExtractor struct {
	dpi int
	rec Recognizer
}

func newOCR(cfg *pdftrim.Config) *ocrExtractor {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = DefaultOCRDPI
	}
	return &ocrExtractor{dpi: dpi, rec: NewTesseractRecognizer(cfg.OCRLanguages...)}
}

// NewOCR returns an OCR extractor backed by rec, for callers that bring
// their own recognizer.
func NewOCR(rec Recognizer, cfg *pdftrim.Config) Extractor {
	if cfg == nil {
		cfg = pdftrim.NewConfig()
	}
	o := newOCR(cfg)
	o.rec = rec
	return &runner{name: OCR, fn: o.bounds, cfg: cfg}
}

func (o *ocrExtractor) bounds(ctx context.Context, src document.Source, i int, _ pdftrim.Rect) (pdftrim.Rect, bool, error) {
	r, err := src.RenderPixels(ctx, i, o.dpi)
	if err != nil {
		return pdftrim.Rect{}, false, err
	}
	img, dpi := OCRImage(r, o.dpi)
	words, err := o.rec.Words(ctx, img, int(math.Round(dpi)))
	if err != nil {
		return pdftrim.Rect{}, false, err
	}

	f := 72.0 / dpi
	var content pdftrim.Rect
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		content = content.Union(pdftrim.Rect{
			X0: float64(w.Box.Min.X) * f,
			Y0: float64(w.Box.Min.Y) * f,
			X1: float64(w.Box.Max.X) * f,
			Y1: float64(w.Box.Max.Y) * f,
		})
	}
	return content, !content.IsEmpty(), nil
}

// Grayscale converts a raster to an 8-bit gray image.
func Grayscale(r *document.Raster) *image.Gray {
	rgba := r.Image()
	gray := image.NewGray(rgba.Bounds())
	draw.Draw(gray, gray.Bounds(), rgba, image.Point{}, draw.Src)
	return gray
}

// OCRImage prepares r for recognition at dpi. A raster rendered at another
// resolution is resampled, and pages too large for Tesseract are shrunk to
// fit. It returns the grayscale image and its effective resolution.
func OCRImage(r *document.Raster, dpi int) (*image.Gray, float64) {
	have := r.DPI
	if have <= 0 {
		have = dpi
	}
	if r.Width == 0 || r.Height == 0 {
		return Grayscale(r), float64(have)
	}
	scale := float64(dpi) / float64(have)
	if longest := float64(max(r.Width, r.Height)) * scale; longest > maxOCRSide {
		scale *= maxOCRSide / longest
	}
	w := max(int(math.Round(float64(r.Width)*scale)), 1)
	h := max(int(math.Round(float64(r.Height)*scale)), 1)
	if w == r.Width && h == r.Height {
		return Grayscale(r), float64(have)
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(gray, gray.Bounds(), r.Image(), image.Rect(0, 0, r.Width, r.Height), draw.Src, nil)
	return gray, float64(have) * float64(w) / float64(r.Width)
}

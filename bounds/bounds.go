// Package bounds detects the content rectangle of every page.
//
// Each Extractor variant inspects a different signal (page box, text runs,
// images, OCR words or raw pixels). Pages are independent, so extraction
// runs concurrently with a bounded number of workers; results are always
// returned in page order.
package bounds

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Extractor computes one rectangle per page. Empty pages yield the full
// page rectangle; other pages yield the padded content bounds clipped to
// the page.
type Extractor interface {
	Bounds(ctx context.Context, src document.Source) ([]pdftrim.Rect, error)
}

// Names of the available extractors.
const (
	Page       = "page"
	Text       = "text"
	TextImages = "text_images"
	OCR        = "ocr"
	Histogram  = "histogram"
)

// Names lists the extractor names accepted by New.
func Names() []string {
	return []string{Page, Text, TextImages, OCR, Histogram}
}

// New returns the extractor registered under name.
func New(name string, cfg *pdftrim.Config) (Extractor, error) {
	if cfg == nil {
		cfg = pdftrim.NewConfig()
	}
	var fn pageFunc
	switch name {
	case Page:
		fn = pageBounds
	case Text:
		fn = textBounds(false)
	case TextImages:
		fn = textBounds(true)
	case OCR:
		fn = newOCR(cfg).bounds
	case Histogram:
		fn = histogramBounds(cfg.DPI)
	default:
		return nil, fmt.Errorf("%w: %q", pdftrim.ErrUnknownExtractor, name)
	}
	return &runner{name: name, fn: fn, cfg: cfg}, nil
}

// pageFunc finds the raw content bounds of page i. ok is false for an
// empty page.
type pageFunc func(ctx context.Context, src document.Source, i int, page pdftrim.Rect) (content pdftrim.Rect, ok bool, err error)

// runner fans a pageFunc out over all pages.
type runner struct {
	name string
	fn   pageFunc
	cfg  *pdftrim.Config
}

func (r *runner) Bounds(ctx context.Context, src document.Source) ([]pdftrim.Rect, error) {
	n := src.PageCount()
	out := make([]pdftrim.Rect, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Workers, 1))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			page, err := src.PageRect(i)
			if err != nil {
				return pdftrim.NewError("Bounds", i, err)
			}
			content, ok, err := r.fn(ctx, src, i, page)
			if err != nil {
				return pdftrim.NewError("Bounds", i, err)
			}
			if !ok {
				r.cfg.Logger.Debug("empty page", "extractor", r.name, "page", i+1)
				out[i] = page
				return nil
			}
			out[i] = pdftrim.AdjustBounds(content, page, r.cfg.Borders)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// pageBounds reports the page itself as content.
func pageBounds(_ context.Context, _ document.Source, _ int, page pdftrim.Rect) (pdftrim.Rect, bool, error) {
	return page, true, nil
}

// textBounds unions text run boxes, and image boxes when withImages is set.
func textBounds(withImages bool) pageFunc {
	return func(_ context.Context, src document.Source, i int, _ pdftrim.Rect) (pdftrim.Rect, bool, error) {
		blocks, err := src.TextBlocks(i)
		if err != nil {
			return pdftrim.Rect{}, false, err
		}
		var content pdftrim.Rect
		for _, b := range blocks {
			content = content.Union(b.Normalize())
		}
		if withImages {
			images, err := src.ImageBoxes(i)
			if err != nil {
				return pdftrim.Rect{}, false, err
			}
			for _, b := range images {
				content = content.Union(b.Normalize())
			}
		}
		return content, !content.IsEmpty(), nil
	}
}

// Package crop applies per-page content bounds to a document.
//
// The box cropper only moves each page's crop box. The scale cropper
// redraws the content region onto a page of the original size and then
// re-projects annotations, links and bookmarks into the new coordinates.
package crop

import (
	"context"
	"fmt"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Cropper applies bounds, one per source page, to dst.
type Cropper interface {
	Crop(ctx context.Context, src document.Source, dst document.Sink, bounds []pdftrim.Rect) error
}

// Names of the available croppers.
const (
	BoxName   = "box"
	ScaleName = "scale"
)

// New returns the cropper registered under name.
func New(name string, cfg *pdftrim.Config) (Cropper, error) {
	if cfg == nil {
		cfg = pdftrim.NewConfig()
	}
	switch name {
	case BoxName:
		return &Box{}, nil
	case ScaleName:
		return &Scale{Logger: cfg.Logger}, nil
	}
	return nil, fmt.Errorf("%w: %q", pdftrim.ErrUnknownCropper, name)
}

// Box sets each output page's crop box to its bounds. Content,
// annotations and links stay in source coordinates. The sink must
// already hold the source pages.
type Box struct{}

func (*Box) Crop(ctx context.Context, src document.Source, dst document.Sink, bounds []pdftrim.Rect) error {
	if len(bounds) != src.PageCount() {
		return fmt.Errorf("crop: %d bounds for %d pages", len(bounds), src.PageCount())
	}
	for i, r := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := dst.SetCropBox(i, r); err != nil {
			return pdftrim.NewError("SetCropBox", i, err)
		}
	}
	return nil
}

// pageMapping ties a source page to its output page.
type pageMapping struct {
	out    int
	height float64 // source page height, for raw destinations
	tr     *pdftrim.Transformer
}

// Scale redraws each page's bounds region to fill a page of the original
// size, then remaps the outline, annotations and links.
type Scale struct {
	Logger pdftrim.Logger
}

func (s *Scale) logger() pdftrim.Logger {
	if s.Logger == nil {
		return pdftrim.NopLogger{}
	}
	return s.Logger
}

func (s *Scale) Crop(ctx context.Context, src document.Source, dst document.Sink, bounds []pdftrim.Rect) error {
	n := src.PageCount()
	if len(bounds) != n {
		return fmt.Errorf("crop: %d bounds for %d pages", len(bounds), n)
	}

	pages := make([]pageMapping, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := src.PageRect(i)
		if err != nil {
			return pdftrim.NewError("PageRect", i, err)
		}
		w, h := page.Width(), page.Height()
		region := bounds[i].Normalize()
		if region.IsEmpty() {
			s.logger().Warn("empty content bounds, keeping full page", "page", i+1, "bounds", bounds[i])
			region = page
		}
		out, err := dst.NewPage(w, h)
		if err != nil {
			return pdftrim.NewError("NewPage", i, err)
		}
		if err := dst.DrawRegion(out, pdftrim.Rect{X0: 0, Y0: 0, X1: w, Y1: h}, i, region); err != nil {
			return pdftrim.NewError("DrawRegion", i, err)
		}
		pages[i] = pageMapping{out: out, height: h, tr: pdftrim.NewTransformer(region, w, h)}
	}

	res := newResolver(src, n, s.logger())
	if err := s.copyOutline(ctx, src, dst, pages, res); err != nil {
		return err
	}
	if err := s.copyAnnotations(ctx, src, dst, pages, make(map[int]int)); err != nil {
		return err
	}
	return s.copyLinks(ctx, src, dst, pages, res)
}

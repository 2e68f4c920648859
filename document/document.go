// Package document defines the contract between the trimming pipeline and
// a concrete PDF engine.
//
// A Source exposes the read-only view of the input document: page sizes,
// rendered pixels, text and image boxes, annotations, links and the
// outline. A Sink receives the output document page by page. All
// coordinates are PDF points relative to the top-left corner of the page
// with y growing downward.
package document

import (
	"context"

	"github.com/lvillar/pdftrim"
)

// Source is the read side of a document engine.
type Source interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageRect returns the visible page rectangle, anchored at (0,0).
	PageRect(i int) (pdftrim.Rect, error)
	// RenderPixels rasterises page i. A dpi of 0 uses the renderer
	// default of 72.
	RenderPixels(ctx context.Context, i, dpi int) (*Raster, error)
	// TextBlocks returns the boxes of the text runs drawn on page i.
	TextBlocks(i int) ([]pdftrim.Rect, error)
	// ImageBoxes returns the placement boxes of images drawn on page i.
	ImageBoxes(i int) ([]pdftrim.Rect, error)
	// Annotations returns the annotations of page i in document order.
	Annotations(i int) ([]AnnotationRecord, error)
	// Links returns the link annotations of page i.
	Links(i int) ([]LinkRecord, error)
	// Outline returns the flattened bookmark tree in document order.
	Outline() ([]OutlineEntry, error)
	// RawObject returns the serialised form of an object by number.
	RawObject(xref int) (string, error)
}

// Sink is the write side of a document engine.
type Sink interface {
	// NewPage appends an empty page and returns its index.
	NewPage(width, height float64) (int, error)
	// DrawRegion draws the src region of source page srcPage into dest
	// on page, scaled uniformly and centred.
	DrawRegion(page int, dest pdftrim.Rect, srcPage int, src pdftrim.Rect) error
	// SetCropBox sets the visible window of page.
	SetCropBox(page int, r pdftrim.Rect) error
	// AddAnnotation creates an annotation on page and returns its id.
	AddAnnotation(page int, a Annotation) (int, error)
	// InsertLink adds a link annotation to page.
	InsertLink(page int, l Link) error
	// SetOutline replaces the document outline.
	SetOutline(entries []OutlineEntry) error
}

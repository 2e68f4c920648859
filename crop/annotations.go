package crop

import (
	"context"
	"errors"
	"fmt"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// rebuildContext carries what a rebuild function needs.
type rebuildContext struct {
	rec  document.AnnotationRecord
	tr   *pdftrim.Transformer
	rect pdftrim.Rect // transformed annotation rectangle
}

type rebuildFunc func(c *rebuildContext) (document.Body, error)

// rebuilders maps each supported kind to the function producing its body.
var rebuilders = map[document.Kind]rebuildFunc{
	document.KindText: func(c *rebuildContext) (document.Body, error) {
		return document.TextBody{At: c.rect.TopLeft()}, nil
	},
	document.KindFreeText: func(c *rebuildContext) (document.Body, error) {
		body := freeTextBody(c.rec, c.tr.Scale())
		if c.rec.Geometry != nil {
			body.Callout = c.tr.Points(c.rec.Geometry.Points)
		}
		return body, nil
	},
	document.KindFileAttachment: func(c *rebuildContext) (document.Body, error) {
		if c.rec.File == nil {
			return nil, errors.New("no embedded file")
		}
		f := *c.rec.File
		if f.Name == "" {
			f.Name = "attachment"
		}
		if f.UName == "" {
			f.UName = f.Name
		}
		return document.FileBody{At: c.rect.TopLeft(), File: f}, nil
	},
	document.KindInk: func(c *rebuildContext) (document.Body, error) {
		g, err := vertices(c)
		if err != nil {
			return nil, err
		}
		return document.InkBody{Strokes: g.Strokes}, nil
	},
	document.KindLine: func(c *rebuildContext) (document.Body, error) {
		g, err := vertices(c)
		if err != nil {
			return nil, err
		}
		if len(g.Points) < 2 {
			return nil, fmt.Errorf("line has %d vertices", len(g.Points))
		}
		return document.LineBody{Start: g.Points[0], End: g.Points[1]}, nil
	},
	document.KindSquare: shape,
	document.KindCircle: shape,
	document.KindRedact: func(c *rebuildContext) (document.Body, error) {
		body := document.RedactBody{
			Overlay: c.rec.Common.Info.Content,
			Style:   appearanceStyle(c.rec),
			Fill:    c.rec.Common.Colors.Fill,
		}
		if c.rec.Geometry != nil {
			body.Quads = c.tr.Geometry(c.rec.Geometry).Quads
		}
		return body, nil
	},
	document.KindPolyLine:  poly,
	document.KindPolygon:   poly,
	document.KindUnderline: markup,
	document.KindStrikeOut: markup,
	document.KindSquiggly:  markup,
	document.KindHighlight: markup,
	document.KindStamp: func(c *rebuildContext) (document.Body, error) {
		return document.StampBody{Appearance: c.rec.Appearance}, nil
	},
	document.KindCaret: func(c *rebuildContext) (document.Body, error) {
		return document.CaretBody{At: c.rect.TopLeft()}, nil
	},
}

func shape(*rebuildContext) (document.Body, error) {
	return document.ShapeBody{}, nil
}

func poly(c *rebuildContext) (document.Body, error) {
	g, err := vertices(c)
	if err != nil {
		return nil, err
	}
	return document.PolyBody{Vertices: g.Points}, nil
}

func markup(c *rebuildContext) (document.Body, error) {
	g, err := vertices(c)
	if err != nil {
		return nil, err
	}
	return document.MarkupBody{Quads: g.Quads}, nil
}

// vertices returns the transformed geometry, which must be present and of
// the shape the kind expects.
func vertices(c *rebuildContext) (*pdftrim.Geometry, error) {
	g := c.rec.Geometry
	if g == nil {
		return nil, errors.New("annotation has no vertices")
	}
	if want, ok := c.rec.Kind.Geometry(); ok && g.Kind != want {
		return nil, fmt.Errorf("expected %s geometry, got %s", want, g.Kind)
	}
	return c.tr.Geometry(g), nil
}

// RebuildAnnotation maps rec into output space. The in-reply-to link is
// left for the caller, which owns the id remapping.
func RebuildAnnotation(rec document.AnnotationRecord, tr *pdftrim.Transformer) (document.Annotation, error) {
	rebuild, ok := rebuilders[rec.Kind]
	if !ok {
		return document.Annotation{}, fmt.Errorf("%w: %s", pdftrim.ErrUnsupportedAnnotation, rec.Subtype)
	}
	c := &rebuildContext{rec: rec, tr: tr, rect: tr.Rect(rec.Rect)}
	body, err := rebuild(c)
	if err != nil {
		return document.Annotation{}, fmt.Errorf("%w: %s: %v", pdftrim.ErrAnnotationReconstruction, rec.Kind, err)
	}

	a := document.Annotation{
		Kind:   rec.Kind,
		Body:   body,
		Common: copyCommon(rec, tr),
	}
	if rec.Kind.HasRect() {
		r := c.rect
		a.Rect = &r
	}
	if rec.Popup != nil {
		p := tr.Rect(*rec.Popup)
		a.Popup = &p
	}
	return a, nil
}

// copyCommon carries the shared properties over, scaling the border width
// and dropping colours for free text, whose colours live in its style.
func copyCommon(rec document.AnnotationRecord, tr *pdftrim.Transformer) document.Common {
	c := rec.Common
	if c.Border != nil {
		b := *c.Border
		b.Width *= tr.Scale()
		c.Border = &b
	}
	if rec.Kind == document.KindFreeText {
		c.Colors = document.Colors{}
	}
	return c
}

// copyAnnotations rebuilds every annotation in document order. remap
// accumulates source object numbers to output ids so that replies can
// point at annotations created earlier.
func (s *Scale) copyAnnotations(ctx context.Context, src document.Source, dst document.Sink, pages []pageMapping, remap map[int]int) error {
	log := s.logger()
	for i, pm := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := src.Annotations(i)
		if err != nil {
			return pdftrim.NewError("Annotations", i, err)
		}
		for _, rec := range records {
			a, err := RebuildAnnotation(rec, pm.tr)
			if errors.Is(err, pdftrim.ErrUnsupportedAnnotation) {
				log.Warn("unsupported annotation, skipping", "subtype", rec.Subtype, "page", i+1)
				continue
			}
			if err != nil {
				log.Error("cannot copy annotation", err, "kind", rec.Kind, "page", i+1)
				continue
			}
			if rec.InReplyTo != 0 {
				if id, ok := remap[rec.InReplyTo]; ok {
					a.InReplyTo = id
				} else {
					log.Warn("annotation replies to an unmapped annotation, dropping reply link",
						"kind", rec.Kind, "page", i+1, "irt", rec.InReplyTo)
				}
			}
			id, err := dst.AddAnnotation(pm.out, a)
			if err != nil {
				log.Error("cannot add annotation", err, "kind", rec.Kind, "page", i+1)
				continue
			}
			remap[rec.Xref] = id
		}
	}
	return nil
}

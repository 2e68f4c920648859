package pdftrim

import "math"

// Transformer maps coordinates from a source rectangle onto a destination
// page of the given size. The source is scaled uniformly to fit and then
// centred, leaving equal letterbox margins on the axis that does not fill.
type Transformer struct {
	src    Rect
	scale  float64
	dx, dy float64
}

// NewTransformer builds the mapping from src onto a dstWidth x dstHeight
// page. A source axis of zero extent is ignored when choosing the scale;
// if both are zero the scale is 1.
func NewTransformer(src Rect, dstWidth, dstHeight float64) *Transformer {
	src = src.Normalize()
	sw, sh := src.Width(), src.Height()

	var s float64
	switch {
	case sw > 0 && sh > 0:
		s = math.Min(dstWidth/sw, dstHeight/sh)
	case sw > 0:
		s = dstWidth / sw
	case sh > 0:
		s = dstHeight / sh
	default:
		s = 1
	}
	return &Transformer{
		src:   src,
		scale: s,
		dx:    (dstWidth - sw*s) / 2,
		dy:    (dstHeight - sh*s) / 2,
	}
}

// Scale returns the uniform scale factor.
func (t *Transformer) Scale() float64 { return t.scale }

// Offset returns the letterbox offset applied after scaling.
func (t *Transformer) Offset() (dx, dy float64) { return t.dx, t.dy }

// Source returns the normalised source rectangle.
func (t *Transformer) Source() Rect { return t.src }

// Point maps a source point into destination space.
func (t *Transformer) Point(p Point) Point {
	return Point{
		X: t.dx + (p.X-t.src.X0)*t.scale,
		Y: t.dy + (p.Y-t.src.Y0)*t.scale,
	}
}

// InversePoint maps a destination point back into source space.
func (t *Transformer) InversePoint(p Point) Point {
	return Point{
		X: t.src.X0 + (p.X-t.dx)/t.scale,
		Y: t.src.Y0 + (p.Y-t.dy)/t.scale,
	}
}

// Rect maps both corners of r and normalises the result.
func (t *Transformer) Rect(r Rect) Rect {
	a := t.Point(Point{r.X0, r.Y0})
	b := t.Point(Point{r.X1, r.Y1})
	return Rect{a.X, a.Y, b.X, b.Y}.Normalize()
}

// Quad maps the four corners of q.
func (t *Transformer) Quad(q Quad) Quad {
	return Quad{
		UL: t.Point(q.UL),
		UR: t.Point(q.UR),
		LL: t.Point(q.LL),
		LR: t.Point(q.LR),
	}
}

// Points maps every point of pts, preserving nil.
func (t *Transformer) Points(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Point(p)
	}
	return out
}

// Strokes maps every stroke, preserving stroke and point counts.
func (t *Transformer) Strokes(strokes [][]Point) [][]Point {
	if strokes == nil {
		return nil
	}
	out := make([][]Point, len(strokes))
	for i, s := range strokes {
		out[i] = t.Points(s)
	}
	return out
}

// Geometry maps g. A nil g stays nil and empty lists stay empty.
func (t *Transformer) Geometry(g *Geometry) *Geometry {
	if g == nil {
		return nil
	}
	out := &Geometry{Kind: g.Kind}
	switch g.Kind {
	case GeometryPoints:
		out.Points = t.Points(g.Points)
	case GeometryQuads:
		if g.Quads != nil {
			out.Quads = make([]Quad, len(g.Quads))
			for i, q := range g.Quads {
				out.Quads[i] = t.Quad(q)
			}
		}
	case GeometryStrokes:
		out.Strokes = t.Strokes(g.Strokes)
	}
	return out
}

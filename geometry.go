// Package pdftrim trims whitespace margins from PDF documents.
//
// Page content bounds are detected per page, padded by an optional border
// and then applied either as a crop box or by rescaling the content to fill
// the original page. When scaling, annotations, links and outline
// destinations are re-projected into the new coordinate space.
//
// All geometry uses PDF points with the origin at the top-left corner of
// the page and y growing downward.
package pdftrim

import "math"

// Point is a position on a page.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle given by two corners.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return math.Abs(r.X1 - r.X0) }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return math.Abs(r.Y1 - r.Y0) }

// Normalize returns r with X0 <= X1 and Y0 <= Y1.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// IsEmpty reports whether r encloses no area.
func (r Rect) IsEmpty() bool {
	return r.X0 >= r.X1 || r.Y0 >= r.Y1
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// Union returns the smallest rectangle enclosing r and o. An empty r is
// treated as absent.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// TopLeft returns the upper-left corner of r.
func (r Rect) TopLeft() Point { return Point{r.X0, r.Y0} }

// Quad is a quadrilateral as used by text markup annotations.
type Quad struct {
	UL, UR, LL, LR Point
}

// Rect returns the bounding rectangle of q.
func (q Quad) Rect() Rect {
	xs := [4]float64{q.UL.X, q.UR.X, q.LL.X, q.LR.X}
	ys := [4]float64{q.UL.Y, q.UR.Y, q.LL.Y, q.LR.Y}
	r := Rect{X0: xs[0], Y0: ys[0], X1: xs[0], Y1: ys[0]}
	for i := 1; i < 4; i++ {
		r.X0 = math.Min(r.X0, xs[i])
		r.X1 = math.Max(r.X1, xs[i])
		r.Y0 = math.Min(r.Y0, ys[i])
		r.Y1 = math.Max(r.Y1, ys[i])
	}
	return r
}

// GeometryKind tells which field of a Geometry is populated.
type GeometryKind int

const (
	GeometryPoints GeometryKind = iota // flat point list: line, polyline, polygon, callout
	GeometryQuads                      // text markup and redaction quads
	GeometryStrokes                    // ink: list of point lists
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryPoints:
		return "points"
	case GeometryQuads:
		return "quads"
	case GeometryStrokes:
		return "strokes"
	}
	return "unknown"
}

// Geometry holds the vertex data of an annotation. The shape is decided
// once from the annotation kind. A nil *Geometry means no vertices.
type Geometry struct {
	Kind    GeometryKind
	Points  []Point
	Quads   []Quad
	Strokes [][]Point
}

// PointsGeometry wraps a flat point list.
func PointsGeometry(pts []Point) *Geometry {
	return &Geometry{Kind: GeometryPoints, Points: pts}
}

// QuadsGeometry wraps a quad list.
func QuadsGeometry(qs []Quad) *Geometry {
	return &Geometry{Kind: GeometryQuads, Quads: qs}
}

// StrokesGeometry wraps a list of strokes.
func StrokesGeometry(strokes [][]Point) *Geometry {
	return &Geometry{Kind: GeometryStrokes, Strokes: strokes}
}

// Bounds returns the bounding rectangle of all vertices in g, and false
// when g has no vertices.
func (g *Geometry) Bounds() (Rect, bool) {
	if g == nil {
		return Rect{}, false
	}
	var pts []Point
	switch g.Kind {
	case GeometryPoints:
		pts = g.Points
	case GeometryQuads:
		for _, q := range g.Quads {
			pts = append(pts, q.UL, q.UR, q.LL, q.LR)
		}
	case GeometryStrokes:
		for _, s := range g.Strokes {
			pts = append(pts, s...)
		}
	}
	if len(pts) == 0 {
		return Rect{}, false
	}
	r := Rect{X0: pts[0].X, Y0: pts[0].Y, X1: pts[0].X, Y1: pts[0].Y}
	for _, p := range pts[1:] {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r, true
}

// PageGeometry pairs a page rectangle with the content bounds found on it.
type PageGeometry struct {
	Page    Rect
	Content Rect
}

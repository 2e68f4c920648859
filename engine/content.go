package engine

import (
	"bytes"
	"errors"
	"io"
	"math"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/internal/syntax"
)

// Glyph metrics used when estimating the extent of a text run. Fonts are
// not loaded, so every glyph is assumed to be half an em wide.
const (
	glyphWidth   = 0.5
	glyphAscent  = 0.8
	glyphDescent = 0.2
	maxFormDepth = 8
)

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

func translate(x, y float64) matrix { return matrix{1, 0, 0, 1, x, y} }

// box maps the rectangle (x0,y0)-(x1,y1) through m and returns its
// bounding box in PDF user space.
func (m matrix) box(x0, y0, x1, y1 float64) pdftrim.Rect {
	r := pdftrim.Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, p := range [4][2]float64{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		x, y := m.apply(p[0], p[1])
		r.X0, r.X1 = math.Min(r.X0, x), math.Max(r.X1, x)
		r.Y0, r.Y1 = math.Min(r.Y0, y), math.Max(r.Y1, y)
	}
	return r
}

// xobject is a resolved XObject. Forms carry their own content and
// resources.
type xobject struct {
	image     bool
	matrix    matrix
	content   []byte
	resources resources
}

// resources resolves XObject names for a content stream.
type resources interface {
	xobject(name string) (*xobject, bool)
}

// noResources resolves nothing.
type noResources struct{}

func (noResources) xobject(string) (*xobject, bool) { return nil, false }

// scanResult holds the boxes found in a content stream, in PDF user space.
type scanResult struct {
	text   []pdftrim.Rect
	images []pdftrim.Rect
}

type graphicsState struct {
	ctm matrix
}

type textState struct {
	tm, tlm matrix
	size    float64
	leading float64
	scale   float64 // Tz / 100
	charSp  float64
	wordSp  float64
	rise    float64
}

type scanner struct {
	out   *scanResult
	depth int
}

// scanContent walks a content stream and collects the boxes of text runs
// and image placements.
func scanContent(data []byte, res resources) (*scanResult, error) {
	s := &scanner{out: &scanResult{}}
	if err := s.scan(data, res, identity); err != nil {
		return nil, err
	}
	return s.out, nil
}

func (s *scanner) scan(data []byte, res resources, base matrix) error {
	if res == nil {
		res = noResources{}
	}
	p := syntax.New(data)
	gs := graphicsState{ctm: base}
	var stack []graphicsState
	ts := textState{scale: 1}

	for {
		op, args, err := p.NextOp()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch op {
		case "q":
			stack = append(stack, gs)
		case "Q":
			if n := len(stack); n > 0 {
				gs, stack = stack[n-1], stack[:n-1]
			}
		case "cm":
			if m, ok := matrixOf(args); ok {
				gs.ctm = m.mul(gs.ctm)
			}
		case "BT":
			ts.tm, ts.tlm = identity, identity
		case "Tf":
			if v, ok := lastNumber(args); ok {
				ts.size = v
			}
		case "TL":
			if v, ok := lastNumber(args); ok {
				ts.leading = v
			}
		case "Tz":
			if v, ok := lastNumber(args); ok {
				ts.scale = v / 100
			}
		case "Tc":
			if v, ok := lastNumber(args); ok {
				ts.charSp = v
			}
		case "Tw":
			if v, ok := lastNumber(args); ok {
				ts.wordSp = v
			}
		case "Ts":
			if v, ok := lastNumber(args); ok {
				ts.rise = v
			}
		case "Td", "TD":
			if len(args) == 2 {
				tx, _ := syntax.Number(args[0])
				ty, _ := syntax.Number(args[1])
				if op == "TD" {
					ts.leading = -ty
				}
				ts.tlm = translate(tx, ty).mul(ts.tlm)
				ts.tm = ts.tlm
			}
		case "Tm":
			if m, ok := matrixOf(args); ok {
				ts.tm, ts.tlm = m, m
			}
		case "T*":
			ts.nextLine()
		case "Tj":
			s.show(&ts, gs.ctm, args)
		case "'":
			ts.nextLine()
			s.show(&ts, gs.ctm, args)
		case "\"":
			if len(args) == 3 {
				ts.wordSp, _ = syntax.Number(args[0])
				ts.charSp, _ = syntax.Number(args[1])
				ts.nextLine()
				s.show(&ts, gs.ctm, args[2:])
			}
		case "TJ":
			if len(args) == 1 {
				if arr, ok := args[0].(syntax.Array); ok {
					s.show(&ts, gs.ctm, arr)
				}
			}
		case "Do":
			if len(args) == 1 {
				if name, ok := args[0].(syntax.Name); ok {
					if err := s.invoke(string(name), res, gs.ctm); err != nil {
						return err
					}
				}
			}
		}
	}
}

func (ts *textState) nextLine() {
	ts.tlm = translate(0, -ts.leading).mul(ts.tlm)
	ts.tm = ts.tlm
}

// show records the box of a text run and advances the text matrix. Items
// are strings or TJ position adjustments.
func (s *scanner) show(ts *textState, ctm matrix, items []syntax.Object) {
	var width float64
	for _, it := range items {
		switch v := it.(type) {
		case syntax.String:
			n := float64(len(v.Value))
			spaces := float64(bytes.Count(v.Value, []byte{' '}))
			width += (n*glyphWidth*ts.size + n*ts.charSp + spaces*ts.wordSp) * ts.scale
		default:
			if adj, ok := syntax.Number(it); ok {
				width -= adj / 1000 * ts.size * ts.scale
			}
		}
	}
	if width > 0 && ts.size != 0 {
		trm := ts.tm.mul(ctm)
		lo := ts.rise - glyphDescent*ts.size
		hi := ts.rise + glyphAscent*ts.size
		s.out.text = append(s.out.text, trm.box(0, lo, width, hi))
	}
	ts.tm = translate(width, 0).mul(ts.tm)
}

func (s *scanner) invoke(name string, res resources, ctm matrix) error {
	x, ok := res.xobject(name)
	if !ok {
		return nil
	}
	if x.image {
		s.out.images = append(s.out.images, ctm.box(0, 0, 1, 1))
		return nil
	}
	if s.depth >= maxFormDepth {
		return nil
	}
	s.depth++
	defer func() { s.depth-- }()
	return s.scan(x.content, x.resources, x.matrix.mul(ctm))
}

func matrixOf(args []syntax.Object) (matrix, bool) {
	if len(args) != 6 {
		return matrix{}, false
	}
	var m matrix
	for i, a := range args {
		v, ok := syntax.Number(a)
		if !ok {
			return matrix{}, false
		}
		m[i] = v
	}
	return m, true
}

func lastNumber(args []syntax.Object) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	return syntax.Number(args[len(args)-1])
}

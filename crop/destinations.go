package crop

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
	"github.com/lvillar/pdftrim/internal/syntax"
)

// Outcome tells what the resolver did with a link.
type Outcome int

const (
	Unchanged Outcome = iota // not a named link
	Converted                // rewritten as a goto link
	Invalid                  // destination page unusable; drop the link
)

// pointResolver extracts a destination point from one of the partial
// forms a named link may carry.
type pointResolver func(r *resolver, l document.LinkRecord, page int) (pdftrim.Point, bool)

// pointResolvers are tried in order; the first match wins.
var pointResolvers = []pointResolver{
	explicitPoint,
	zoomTriplet,
	fitDestination,
	rawDestArray,
}

var fitModes = map[string]bool{
	"/Fit": true, "/FitB": true, "/FitH": true,
	"/FitV": true, "/FitBH": true, "/FitBV": true,
}

type resolver struct {
	src       document.Source
	pageCount int
	log       pdftrim.Logger
}

func newResolver(src document.Source, pageCount int, log pdftrim.Logger) *resolver {
	return &resolver{src: src, pageCount: pageCount, log: log}
}

// Resolve converts a named link into a goto link. Links that are not
// named pass through unchanged. When no point can be found the result is
// a page-only goto link.
func (r *resolver) Resolve(l document.LinkRecord) (document.LinkRecord, Outcome) {
	if l.Kind != document.LinkNamed {
		return l, Unchanged
	}
	page, ok := r.parsePage(l)
	if !ok {
		return l, Invalid
	}

	out := document.LinkRecord{
		Kind: document.LinkGoto,
		From: l.From,
		Page: &page,
		Xref: l.Xref,
	}
	for _, resolve := range pointResolvers {
		if pt, ok := resolve(r, l, page); ok {
			out.To = &pt
			return out, Converted
		}
	}
	r.log.Warn("cannot resolve destination point, keeping page only",
		"page", page+1, "name", l.Name, "xref", l.Xref)
	return out, Converted
}

// parsePage returns the zero-based destination page. An integer page is
// already zero-based; a textual page is one-based.
func (r *resolver) parsePage(l document.LinkRecord) (int, bool) {
	var p int
	switch {
	case l.Page != nil:
		p = *l.Page
	case l.PageText != "":
		s := strings.TrimSpace(l.PageText)
		if s == "" || strings.Trim(s, "0123456789") != "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, false
		}
		p = n - 1
	default:
		return 0, false
	}
	if p < 0 || p >= r.pageCount {
		return 0, false
	}
	return p, true
}

func explicitPoint(_ *resolver, l document.LinkRecord, _ int) (pdftrim.Point, bool) {
	if l.To == nil {
		return pdftrim.Point{}, false
	}
	return *l.To, true
}

// zoomTriplet reads "left,top,zoom" and ignores the zoom. A missing or
// NaN top falls back to the third slot.
func zoomTriplet(_ *resolver, l document.LinkRecord, _ int) (pdftrim.Point, bool) {
	if l.Zoom == "" {
		return pdftrim.Point{}, false
	}
	x, y := ParseZoomTriplet(l.Zoom)
	return pdftrim.Point{X: x, Y: y}, true
}

// ParseZoomTriplet extracts a point from a "a,b,c" viewer triplet:
// x is a or 0, y is b, else c, else 0. NaN counts as absent.
func ParseZoomTriplet(zoom string) (x, y float64) {
	parts := strings.Split(zoom, ",")
	slot := func(i int) (float64, bool) {
		if i >= len(parts) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	}
	a, okA := slot(0)
	b, okB := slot(1)
	c, okC := slot(2)
	if okA {
		x = a
	}
	switch {
	case okB:
		y = b
	case okC:
		y = c
	}
	return x, y
}

// fitDestination sends fit-mode links to the top of the page.
func fitDestination(_ *resolver, l document.LinkRecord, _ int) (pdftrim.Point, bool) {
	if fitModes[l.Dest] || l.View == "Fit" {
		return pdftrim.Point{}, true
	}
	return pdftrim.Point{}, false
}

// destArrayRe matches a /Dest entry or the /D entry of a GoTo action.
// Border dash arrays also match /D and are rejected by parseDestArray.
var destArrayRe = regexp.MustCompile(`(?s)/D(?:est)?\s*\[(.*?)\]`)

// rawDestArray reads the destination array straight from the object that
// carries the link.
func rawDestArray(r *resolver, l document.LinkRecord, page int) (pdftrim.Point, bool) {
	if l.Xref <= 0 {
		return pdftrim.Point{}, false
	}
	raw, err := r.src.RawObject(l.Xref)
	if err != nil {
		return pdftrim.Point{}, false
	}
	for _, m := range destArrayRe.FindAllStringSubmatch(raw, -1) {
		if pt, ok := r.parseDestArray(strings.TrimSpace(m[1]), page); ok {
			return pt, true
		}
	}
	return pdftrim.Point{}, false
}

// parseDestArray interprets "<page ref> /Mode args..." and returns a point
// in top-down page coordinates.
func (r *resolver) parseDestArray(content string, page int) (pdftrim.Point, bool) {
	objs, err := syntax.ParseAll(content)
	if err != nil || len(objs) < 2 {
		return pdftrim.Point{}, false
	}
	mode, ok := objs[1].(syntax.Name)
	if !ok {
		return pdftrim.Point{}, false
	}
	// Dash arrays and other plain number arrays have no mode.
	switch objs[0].(type) {
	case syntax.Reference, syntax.Integer:
	default:
		return pdftrim.Point{}, false
	}
	arg := func(k int) (float64, bool) {
		if k+2 >= len(objs) {
			return 0, false
		}
		return syntax.Number(objs[k+2])
	}
	height := func() (float64, bool) {
		rect, err := r.src.PageRect(page)
		if err != nil {
			return 0, false
		}
		return rect.Height(), true
	}

	switch {
	case mode == "XYZ":
		x, _ := arg(0)
		top, ok := arg(1)
		if !ok {
			return pdftrim.Point{X: x}, true
		}
		h, ok := height()
		if !ok {
			return pdftrim.Point{}, false
		}
		return pdftrim.Point{X: x, Y: h - top}, true
	case mode == "FitR":
		left, okL := arg(0)
		top, okT := arg(3)
		h, okH := height()
		if !okL || !okT || !okH {
			return pdftrim.Point{}, false
		}
		return pdftrim.Point{X: left, Y: h - top}, true
	case fitModes[mode.String()]:
		return pdftrim.Point{}, true
	}
	r.log.Warn("unhandled destination mode", "mode", mode.String(), "dest", content)
	return pdftrim.Point{}, false
}

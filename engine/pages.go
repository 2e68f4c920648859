package engine

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim"
)

// pageBox is the visible page box in PDF user space. It converts between
// user space and top-down page coordinates.
type pageBox struct {
	llx, lly float64
	w, h     float64
}

func boxOf(v []float64) (pageBox, bool) {
	if len(v) != 4 {
		return pageBox{}, false
	}
	r := pdftrim.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}.Normalize()
	if r.IsEmpty() {
		return pageBox{}, false
	}
	return pageBox{llx: r.X0, lly: r.Y0, w: r.Width(), h: r.Height()}, true
}

func (b pageBox) rect() pdftrim.Rect { return pdftrim.Rect{X1: b.w, Y1: b.h} }

// point converts a user space point to page coordinates.
func (b pageBox) point(x, y float64) pdftrim.Point {
	return pdftrim.Point{X: x - b.llx, Y: b.lly + b.h - y}
}

// user converts a page point back to user space.
func (b pageBox) user(p pdftrim.Point) (float64, float64) {
	return b.llx + p.X, b.lly + b.h - p.Y
}

// fromUser converts a user space rectangle given by two corners.
func (b pageBox) fromUser(r pdftrim.Rect) pdftrim.Rect {
	p := b.point(r.X0, r.Y0)
	q := b.point(r.X1, r.Y1)
	return pdftrim.Rect{X0: p.X, Y0: p.Y, X1: q.X, Y1: q.Y}.Normalize()
}

// toUser returns r as a [llx lly urx ury] array.
func (b pageBox) toUser(r pdftrim.Rect) types.Array {
	r = r.Normalize()
	x0, y0 := b.user(pdftrim.Point{X: r.X0, Y: r.Y1})
	x1, y1 := b.user(pdftrim.Point{X: r.X1, Y: r.Y0})
	return floats(x0, y0, x1, y1)
}

// pageEntry is a page of the page tree with its inheritable attributes
// resolved.
type pageEntry struct {
	dict      types.Dict
	ref       types.IndirectRef
	mediaBox  []float64
	box       pageBox // crop box when present, else media box
	resources types.Object
}

// loadPages walks the page tree in document order.
func loadPages(o objects) ([]pageEntry, error) {
	n := o.ctx.PageCount
	pages := make([]pageEntry, n)
	for i := 0; i < n; i++ {
		d, ref, _, err := o.ctx.PageDict(i+1, false)
		if err != nil {
			return nil, fmt.Errorf("engine: page %d: %w", i+1, err)
		}
		if d == nil || ref == nil {
			return nil, fmt.Errorf("engine: page %d: missing page dictionary", i+1)
		}
		p := pageEntry{dict: d, ref: *ref}
		p.mediaBox = o.numbers(o.inherited(d, "MediaBox"))
		media, ok := boxOf(p.mediaBox)
		if !ok {
			// Letter, as viewers assume.
			p.mediaBox = []float64{0, 0, 612, 792}
			media, _ = boxOf(p.mediaBox)
		}
		p.box = media
		if crop, ok := boxOf(o.numbers(o.inherited(d, "CropBox"))); ok {
			p.box = crop
		}
		p.resources = o.inherited(d, "Resources")
		pages[i] = p
	}
	return pages, nil
}

// inherited looks key up on d and then along its /Parent chain.
func (o objects) inherited(d types.Dict, key string) types.Object {
	for depth := 0; d != nil && depth < 64; depth++ {
		if v, ok := d[key]; ok {
			return v
		}
		d = o.dict(d["Parent"])
	}
	return nil
}

// contents returns the concatenated, decoded content streams of a page.
func (o objects) contents(d types.Dict) ([]byte, error) {
	var out []byte
	add := func(obj types.Object) error {
		data, err := o.stream(obj)
		if err != nil {
			return err
		}
		out = append(out, data...)
		out = append(out, '\n')
		return nil
	}
	c := d["Contents"]
	if arr := o.array(c); arr != nil {
		for _, s := range arr {
			if err := add(s); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if c == nil {
		return nil, nil
	}
	if err := add(c); err != nil {
		return nil, err
	}
	return out, nil
}

// xobjects resolves the XObjects of a resource dictionary for the
// content scanner.
type xobjects struct {
	o   objects
	res types.Dict
}

func (x xobjects) xobject(name string) (*xobject, bool) {
	xd := x.o.dict(x.res["XObject"])
	if xd == nil {
		return nil, false
	}
	entry := xd[name]
	sd, _, err := x.o.ctx.DereferenceStreamDict(entry)
	if err != nil || sd == nil {
		return nil, false
	}
	switch x.o.name(sd.Dict["Subtype"]) {
	case "Image":
		return &xobject{image: true}, true
	case "Form":
		data, err := x.o.stream(entry)
		if err != nil {
			return nil, false
		}
		m := identity
		if v := x.o.numbers(sd.Dict["Matrix"]); len(v) == 6 {
			copy(m[:], v)
		}
		var res resources = x
		if rd := x.o.dict(sd.Dict["Resources"]); rd != nil {
			res = xobjects{o: x.o, res: rd}
		}
		return &xobject{matrix: m, content: data, resources: res}, true
	}
	return nil, false
}

package engine

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Links returns the link annotations of page i.
func (r *Reader) Links(i int) ([]document.LinkRecord, error) {
	p, err := r.page("Links", i)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	refs, dicts := r.annots(p)
	var out []document.LinkRecord
	for k, d := range dicts {
		if r.o.name(d["Subtype"]) != "Link" {
			continue
		}
		v := r.o.numbers(d["Rect"])
		if len(v) != 4 {
			continue
		}
		l := r.target(d, refNumber(refs[k]))
		l.From = p.box.fromUser(pdftrim.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]})
		out = append(out, l)
	}
	return out, nil
}

// Outline returns the bookmarks in document order, depth first.
func (r *Reader) Outline() ([]document.OutlineEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cat, err := r.o.ctx.Catalog()
	if err != nil {
		return nil, err
	}
	root := r.o.dict(cat["Outlines"])
	if root == nil {
		return nil, nil
	}
	var out []document.OutlineEntry
	seen := make(map[int]bool)
	var walk func(first types.Object, level int)
	walk = func(item types.Object, level int) {
		for item != nil {
			n := refNumber(item)
			if n != 0 {
				if seen[n] {
					r.log.Warn("outline loop, truncating", "object", n)
					return
				}
				seen[n] = true
			}
			d := r.o.dict(item)
			if d == nil {
				return
			}
			out = append(out, document.OutlineEntry{
				Level: level,
				Title: r.o.str(d, "Title"),
				Dest:  r.target(d, n),
			})
			walk(d["First"], level+1)
			item = d["Next"]
		}
	}
	walk(root["First"], 1)
	return out, nil
}

// target reads the destination of a link annotation or outline item held
// in object xref.
func (r *Reader) target(d types.Dict, xref int) document.LinkRecord {
	if dest, ok := d["Dest"]; ok {
		l := r.destination(dest)
		l.Xref = xref
		return l
	}
	a := r.o.dict(d["A"])
	if a == nil {
		return document.LinkRecord{Kind: document.LinkNone, Xref: xref}
	}
	l := r.action(a)
	l.Xref = xref
	return l
}

func (r *Reader) action(a types.Dict) document.LinkRecord {
	o := r.o
	switch o.name(a["S"]) {
	case "GoTo":
		return r.destination(a["D"])
	case "URI":
		return uriLink(o.str(a, "URI"))
	case "Launch":
		return document.LinkRecord{Kind: document.LinkLaunch, File: r.fileName(a["F"])}
	case "GoToR":
		l := document.LinkRecord{Kind: document.LinkGotoR, File: r.fileName(a["F"])}
		arr := o.array(a["D"])
		if len(arr) > 0 {
			if n, ok := o.number(arr[0]); ok {
				page := int(n)
				l.Page = &page
			}
		}
		if len(arr) >= 4 && o.name(arr[1]) == "XYZ" {
			x, _ := o.number(arr[2])
			y, _ := o.number(arr[3])
			l.To = &pdftrim.Point{X: x, Y: y}
		}
		if name, ok := o.text(a["D"]); ok {
			l.Name = name
		}
		return l
	}
	return document.LinkRecord{Kind: document.LinkNone}
}

// uriLink treats "#page=N&zoom=l,t,z" fragments as internal links.
func uriLink(uri string) document.LinkRecord {
	if !strings.HasPrefix(uri, "#") {
		return document.LinkRecord{Kind: document.LinkURI, URI: uri}
	}
	q, err := url.ParseQuery(uri[1:])
	if err != nil || q.Get("page") == "" {
		return document.LinkRecord{Kind: document.LinkURI, URI: uri}
	}
	return document.LinkRecord{
		Kind:     document.LinkNamed,
		PageText: q.Get("page"),
		Zoom:     q.Get("zoom"),
		View:     q.Get("view"),
	}
}

func (r *Reader) fileName(obj types.Object) string {
	if s, ok := r.o.text(obj); ok {
		return s
	}
	if fs := r.o.dict(obj); fs != nil {
		if uf := r.o.str(fs, "UF"); uf != "" {
			return uf
		}
		return r.o.str(fs, "F")
	}
	return ""
}

// destination reads an explicit destination array or looks a named
// destination up. XYZ, FitR and the fit modes that carry a coordinate
// yield a point; whole-page fits are passed on with their mode for the
// cropper to resolve.
func (r *Reader) destination(obj types.Object) document.LinkRecord {
	o := r.o
	var name string
	if s, ok := o.text(obj); ok {
		name = s
		obj = r.namedDestination(s)
		if obj == nil {
			return document.LinkRecord{Kind: document.LinkNamed, Name: name}
		}
	}
	arr := o.array(obj)
	if len(arr) < 2 {
		return document.LinkRecord{Kind: document.LinkNamed, Name: name}
	}
	page, ok := r.pageIndex[refNumber(arr[0])]
	if !ok {
		if n, isNum := o.number(arr[0]); isNum {
			page, ok = int(n), true
		}
	}
	if !ok || page < 0 || page >= len(r.pages) {
		return document.LinkRecord{Kind: document.LinkNamed, Name: name}
	}

	mode := o.name(arr[1])
	if pt, ok := r.destPoint(page, mode, arr[2:]); ok {
		return document.LinkRecord{Kind: document.LinkGoto, Page: &page, To: &pt, Name: name}
	}
	return document.LinkRecord{
		Kind:     document.LinkNamed,
		PageText: strconv.Itoa(page + 1),
		Dest:     "/" + mode,
		Name:     name,
	}
}

// destPoint returns the target point of an explicit destination on page.
// A null left reads as the left edge and a null top as the top edge.
// Whole-page fit modes have no point.
func (r *Reader) destPoint(page int, mode string, args types.Array) (pdftrim.Point, bool) {
	box := r.pages[page].box
	left, top := box.llx, box.lly+box.h
	arg := func(k int, def float64) float64 {
		if k < len(args) {
			if v, ok := r.o.number(args[k]); ok {
				return v
			}
		}
		return def
	}
	switch mode {
	case "XYZ":
		return box.point(arg(0, left), arg(1, top)), true
	case "FitR":
		if len(args) < 4 {
			return pdftrim.Point{}, false
		}
		return box.point(arg(0, left), arg(3, top)), true
	case "FitH", "FitBH":
		if _, ok := r.o.number(elem(args, 0)); ok {
			return box.point(left, arg(0, top)), true
		}
	case "FitV", "FitBV":
		if _, ok := r.o.number(elem(args, 0)); ok {
			return box.point(arg(0, left), top), true
		}
	}
	return pdftrim.Point{}, false
}

func elem(a types.Array, k int) types.Object {
	if k < len(a) {
		return a[k]
	}
	return nil
}

// namedDestination looks name up in the catalog /Dests dictionary and the
// /Names /Dests name tree. It returns the destination array, or nil.
func (r *Reader) namedDestination(name string) types.Object {
	o := r.o
	cat, err := o.ctx.Catalog()
	if err != nil {
		return nil
	}
	if dests := o.dict(cat["Dests"]); dests != nil {
		if v, ok := dests[name]; ok {
			return r.destArray(v)
		}
	}
	names := o.dict(cat["Names"])
	if names == nil {
		return nil
	}
	if v := r.nameTreeLookup(o.dict(names["Dests"]), name, 0); v != nil {
		return r.destArray(v)
	}
	return nil
}

// destArray unwraps a destination that may be given as << /D [...] >>.
func (r *Reader) destArray(v types.Object) types.Object {
	if d := r.o.dict(v); d != nil {
		return d["D"]
	}
	return v
}

func (r *Reader) nameTreeLookup(node types.Dict, name string, depth int) types.Object {
	if node == nil || depth > 32 {
		return nil
	}
	o := r.o
	if lim := o.array(node["Limits"]); len(lim) == 2 {
		lo, _ := o.text(lim[0])
		hi, _ := o.text(lim[1])
		if name < lo || name > hi {
			return nil
		}
	}
	if pairs := o.array(node["Names"]); pairs != nil {
		for k := 0; k+1 < len(pairs); k += 2 {
			if key, _ := o.text(pairs[k]); key == name {
				return pairs[k+1]
			}
		}
	}
	for _, kid := range o.array(node["Kids"]) {
		if v := r.nameTreeLookup(o.dict(kid), name, depth+1); v != nil {
			return v
		}
	}
	return nil
}

package engine

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Annotations returns the non-link annotations of page i. Popups are
// attached to their parent rather than listed.
func (r *Reader) Annotations(i int) ([]document.AnnotationRecord, error) {
	p, err := r.page("Annotations", i)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	refs, dicts := r.annots(p)
	var out []document.AnnotationRecord
	for k, d := range dicts {
		subtype := r.o.name(d["Subtype"])
		if subtype == "Link" || subtype == "Popup" {
			continue
		}
		out = append(out, r.annotationRecord(p.box, refNumber(refs[k]), subtype, d))
	}
	return out, nil
}

func (r *Reader) annotationRecord(box pageBox, xref int, subtype string, d types.Dict) document.AnnotationRecord {
	o := r.o
	kind := document.KindOf(subtype)
	rec := document.AnnotationRecord{
		Xref:              xref,
		Kind:              kind,
		Subtype:           subtype,
		Common:            r.common(d),
		InReplyTo:         refNumber(d["IRT"]),
		DefaultStyle:      o.str(d, "DS"),
		DefaultAppearance: o.str(d, "DA"),
	}
	if v := o.numbers(d["Rect"]); len(v) == 4 {
		rec.Rect = box.fromUser(pdftrim.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]})
	}
	if pd := o.dict(d["Popup"]); pd != nil {
		if v := o.numbers(pd["Rect"]); len(v) == 4 {
			pr := box.fromUser(pdftrim.Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]})
			rec.Popup = &pr
		}
	}
	if rc, ok := r.richText(d["RC"]); ok {
		rec.RichText = &rc
	}
	if q, ok := o.number(d["Q"]); ok {
		n := int(q)
		rec.Quadding = &n
	}
	if kind == document.KindFileAttachment {
		rec.File = r.fileSpec(d["FS"])
	}
	if ap := o.dict(d["AP"]); ap != nil {
		rec.Appearance = refNumber(ap["N"])
	}
	rec.Geometry = r.geometry(box, kind, d)
	return rec
}

// richText reads /RC, which may be a text string or a stream.
func (r *Reader) richText(obj types.Object) (string, bool) {
	if obj == nil {
		return "", false
	}
	if s, ok := r.o.text(obj); ok {
		return s, true
	}
	data, err := r.o.stream(obj)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (r *Reader) common(d types.Dict) document.Common {
	o := r.o
	c := document.Common{
		Info: document.Info{
			Title:        o.str(d, "T"),
			Subject:      o.str(d, "Subj"),
			Content:      o.str(d, "Contents"),
			Icon:         o.name(d["Name"]),
			CreationDate: o.str(d, "CreationDate"),
			ModDate:      o.str(d, "M"),
		},
		BlendMode: o.name(d["BM"]),
		Colors: document.Colors{
			Stroke: o.numbers(d["C"]),
			Fill:   o.numbers(d["IC"]),
		},
		Name:    o.str(d, "NM"),
		OC:      refNumber(d["OC"]),
		Opacity: 1,
	}
	if f, ok := o.number(d["F"]); ok {
		c.Flags = int(f)
	}
	if ca, ok := o.number(d["CA"]); ok {
		c.Opacity = ca
	}
	if rot, ok := o.number(d["Rotate"]); ok {
		c.Rotation = int(rot)
	}
	if b, ok := o.deref(d["Open"]).(types.Boolean); ok {
		c.Open = bool(b)
	}
	for _, le := range o.array(d["LE"]) {
		c.LineEnds = append(c.LineEnds, o.name(le))
	}
	c.Border = r.border(d)
	return c
}

// border reads /BS, falling back to the legacy /Border array.
func (r *Reader) border(d types.Dict) *document.Border {
	o := r.o
	if bs := o.dict(d["BS"]); bs != nil {
		b := &document.Border{Width: 1}
		if w, ok := o.number(bs["W"]); ok {
			b.Width = w
		}
		b.Dashes = o.numbers(bs["D"])
		return b
	}
	arr := o.array(d["Border"])
	if len(arr) < 3 {
		return nil
	}
	w, ok := o.number(arr[2])
	if !ok {
		return nil
	}
	b := &document.Border{Width: w}
	if len(arr) > 3 {
		b.Dashes = o.numbers(arr[3])
	}
	return b
}

func (r *Reader) fileSpec(obj types.Object) *document.FileSpec {
	o := r.o
	fs := o.dict(obj)
	if fs == nil {
		if name, ok := o.text(obj); ok {
			return &document.FileSpec{Name: name}
		}
		return nil
	}
	spec := &document.FileSpec{
		Name:        o.str(fs, "F"),
		UName:       o.str(fs, "UF"),
		Description: o.str(fs, "Desc"),
	}
	if ef := o.dict(fs["EF"]); ef != nil {
		stream := ef["F"]
		if stream == nil {
			stream = ef["UF"]
		}
		if data, err := o.stream(stream); err == nil {
			spec.Data = data
		} else {
			r.log.Warn("cannot read embedded file", "name", spec.Name, "error", err)
		}
	}
	return spec
}

// geometry reads the vertices of d in the shape its kind uses. It
// returns nil when the entry is missing.
func (r *Reader) geometry(box pageBox, kind document.Kind, d types.Dict) *pdftrim.Geometry {
	o := r.o
	switch kind {
	case document.KindInk:
		list := o.array(d["InkList"])
		if list == nil {
			return nil
		}
		strokes := make([][]pdftrim.Point, 0, len(list))
		for _, s := range list {
			strokes = append(strokes, points(box, o.numbers(s)))
		}
		return pdftrim.StrokesGeometry(strokes)
	case document.KindLine:
		if v := o.numbers(d["L"]); len(v) == 4 {
			return pdftrim.PointsGeometry(points(box, v))
		}
	case document.KindPolyLine, document.KindPolygon:
		if v := o.numbers(d["Vertices"]); v != nil {
			return pdftrim.PointsGeometry(points(box, v))
		}
	case document.KindFreeText:
		if v := o.numbers(d["CL"]); v != nil {
			return pdftrim.PointsGeometry(points(box, v))
		}
	case document.KindUnderline, document.KindStrikeOut, document.KindSquiggly,
		document.KindHighlight, document.KindRedact:
		v := o.numbers(d["QuadPoints"])
		if v == nil {
			return nil
		}
		pts := points(box, v)
		quads := make([]pdftrim.Quad, 0, len(pts)/4)
		for k := 0; k+3 < len(pts); k += 4 {
			quads = append(quads, pdftrim.Quad{UL: pts[k], UR: pts[k+1], LL: pts[k+2], LR: pts[k+3]})
		}
		return pdftrim.QuadsGeometry(quads)
	}
	return nil
}

// points pairs up a flat coordinate list and converts it to page space.
func points(box pageBox, v []float64) []pdftrim.Point {
	pts := make([]pdftrim.Point, 0, len(v)/2)
	for k := 0; k+1 < len(v); k += 2 {
		pts = append(pts, box.point(v[k], v[k+1]))
	}
	return pts
}

package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Fallback icon size for point-anchored annotations without a rectangle.
const iconSize = 20

var alignNames = []string{"left", "center", "right"}

// AddAnnotation creates a as a new annotation object on page and returns
// its object number.
func (w *Writer) AddAnnotation(page int, a document.Annotation) (int, error) {
	p, err := w.page("AddAnnotation", page)
	if err != nil {
		return 0, err
	}
	b := &annotBuilder{w: w, box: p.out, d: types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name(a.Kind.Subtype()),
		"P":       p.ref,
	}}
	if a.Kind.Subtype() == "" {
		return 0, fmt.Errorf("%w: %s", pdftrim.ErrUnsupportedAnnotation, a.Kind)
	}
	b.common(a.Common)
	if err := b.body(a.Body); err != nil {
		return 0, err
	}
	rect, ok := b.rect(a)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no extent", pdftrim.ErrAnnotationReconstruction, a.Kind)
	}
	b.d["Rect"] = p.out.toUser(rect)
	if a.InReplyTo != 0 {
		b.d["IRT"] = *types.NewIndirectRef(a.InReplyTo, 0)
	}

	ref, err := w.newObject(b.d)
	if err != nil {
		return 0, err
	}
	w.addAnnot(p, ref)

	if a.Popup != nil {
		popup := types.Dict{
			"Type":    types.Name("Annot"),
			"Subtype": types.Name("Popup"),
			"Parent":  ref,
			"Rect":    p.out.toUser(*a.Popup),
			"Open":    types.Boolean(a.Common.Open),
		}
		pref, err := w.newObject(popup)
		if err != nil {
			return 0, err
		}
		b.d["Popup"] = pref
		w.addAnnot(p, pref)
	}
	return int(ref.ObjectNumber), nil
}

type annotBuilder struct {
	w   *Writer
	box pageBox
	d   types.Dict
	// extent of the vertices, for kinds without an explicit rectangle
	extent    pdftrim.Rect
	hasExtent bool
}

func (b *annotBuilder) setText(key, s string) {
	if s != "" {
		b.d[key] = pdfText(s)
	}
}

func (b *annotBuilder) setColor(key string, c []float64) {
	if len(c) > 0 {
		b.d[key] = floats(c...)
	}
}

func (b *annotBuilder) common(c document.Common) {
	b.setText("T", c.Info.Title)
	b.setText("Subj", c.Info.Subject)
	b.setText("Contents", c.Info.Content)
	b.setText("CreationDate", c.Info.CreationDate)
	b.setText("M", c.Info.ModDate)
	b.setText("NM", c.Name)
	if c.Info.Icon != "" {
		b.d["Name"] = types.Name(c.Info.Icon)
	}
	if c.BlendMode != "" {
		b.d["BM"] = types.Name(c.BlendMode)
	}
	b.setColor("C", c.Colors.Stroke)
	b.setColor("IC", c.Colors.Fill)
	if c.Flags != 0 {
		b.d["F"] = types.Integer(c.Flags)
	}
	if c.Opacity < 1 {
		b.d["CA"] = types.Float(c.Opacity)
	}
	if c.Rotation != 0 {
		b.d["Rotate"] = types.Integer(c.Rotation)
	}
	if c.Open {
		b.d["Open"] = types.Boolean(true)
	}
	if c.OC != 0 {
		b.d["OC"] = *types.NewIndirectRef(c.OC, 0)
	}
	if len(c.LineEnds) > 0 {
		le := make(types.Array, len(c.LineEnds))
		for i, n := range c.LineEnds {
			le[i] = types.Name(n)
		}
		b.d["LE"] = le
	}
	if c.Border != nil {
		bs := types.Dict{"W": types.Float(c.Border.Width)}
		if len(c.Border.Dashes) > 0 {
			bs["S"] = types.Name("D")
			bs["D"] = floats(c.Border.Dashes...)
		}
		b.d["BS"] = bs
	}
}

// user returns the flat user space coordinates of pts and grows the
// vertex extent.
func (b *annotBuilder) user(pts ...pdftrim.Point) types.Array {
	out := make(types.Array, 0, 2*len(pts))
	for _, p := range pts {
		r := pdftrim.Rect{X0: p.X, Y0: p.Y, X1: p.X, Y1: p.Y}
		if b.hasExtent {
			b.extent = pdftrim.Rect{
				X0: math.Min(b.extent.X0, p.X), Y0: math.Min(b.extent.Y0, p.Y),
				X1: math.Max(b.extent.X1, p.X), Y1: math.Max(b.extent.Y1, p.Y),
			}
		} else {
			b.extent, b.hasExtent = r, true
		}
		x, y := b.box.user(p)
		out = append(out, types.Float(x), types.Float(y))
	}
	return out
}

func (b *annotBuilder) quads(qs []pdftrim.Quad) types.Array {
	var out types.Array
	for _, q := range qs {
		out = append(out, b.user(q.UL, q.UR, q.LL, q.LR)...)
	}
	return out
}

func (b *annotBuilder) body(body document.Body) error {
	switch v := body.(type) {
	case document.TextBody:
		b.anchor(v.At)
	case document.CaretBody:
		b.anchor(v.At)
	case document.FreeTextBody:
		b.freeText(v)
	case document.FileBody:
		return b.file(v)
	case document.InkBody:
		list := make(types.Array, len(v.Strokes))
		for i, s := range v.Strokes {
			list[i] = b.user(s...)
		}
		b.d["InkList"] = list
	case document.LineBody:
		b.d["L"] = b.user(v.Start, v.End)
	case document.ShapeBody:
	case document.PolyBody:
		b.d["Vertices"] = b.user(v.Vertices...)
	case document.MarkupBody:
		b.d["QuadPoints"] = b.quads(v.Quads)
	case document.RedactBody:
		if len(v.Quads) > 0 {
			b.d["QuadPoints"] = b.quads(v.Quads)
		}
		b.setText("OverlayText", v.Overlay)
		b.d["DA"] = types.StringLiteral(defaultAppearance(v.Style))
		b.d["Q"] = types.Integer(v.Style.Align)
		b.setColor("IC", v.Fill)
	case document.StampBody:
		if v.Appearance != 0 {
			b.d["AP"] = types.Dict{"N": *types.NewIndirectRef(v.Appearance, 0)}
		}
	default:
		return fmt.Errorf("%w: body %T", pdftrim.ErrUnsupportedAnnotation, body)
	}
	return nil
}

// anchor records a point-anchored annotation. The explicit rectangle, when
// present, takes precedence.
func (b *annotBuilder) anchor(at pdftrim.Point) {
	b.extent = pdftrim.Rect{X0: at.X, Y0: at.Y, X1: at.X + iconSize, Y1: at.Y + iconSize}
	b.hasExtent = true
}

func (b *annotBuilder) freeText(v document.FreeTextBody) {
	if v.RichText {
		b.d["RC"] = pdfText(v.Text)
	} else {
		b.setText("Contents", v.Text)
	}
	b.d["DA"] = types.StringLiteral(defaultAppearance(v.Style))
	b.d["DS"] = pdfText(displayStyle(v.Style))
	b.d["Q"] = types.Integer(v.Style.Align)
	b.setColor("IC", v.Fill)
	b.setColor("C", v.BorderColor)
	bs := types.Dict{"W": types.Float(v.BorderWidth)}
	if len(v.Dashes) > 0 {
		bs["S"] = types.Name("D")
		bs["D"] = floats(v.Dashes...)
	}
	b.d["BS"] = bs
	if len(v.Callout) > 0 {
		b.d["CL"] = b.user(v.Callout...)
		b.d["IT"] = types.Name("FreeTextCallout")
		b.d["LE"] = types.Name(v.LineEnd)
	}
	if v.Opacity > 0 && v.Opacity < 1 {
		b.d["CA"] = types.Float(v.Opacity)
	}
	if v.Rotate != 0 {
		b.d["Rotate"] = types.Integer(v.Rotate)
	}
}

func (b *annotBuilder) file(v document.FileBody) error {
	b.anchor(v.At)
	ef, err := b.w.newStream(v.File.Data, types.Dict{
		"Type":   types.Name("EmbeddedFile"),
		"Params": types.Dict{"Size": types.Integer(len(v.File.Data))},
	})
	if err != nil {
		return err
	}
	fs := types.Dict{
		"Type": types.Name("Filespec"),
		"F":    pdfText(v.File.Name),
		"UF":   pdfText(v.File.UName),
		"EF":   types.Dict{"F": ef},
	}
	if v.File.Description != "" {
		fs["Desc"] = pdfText(v.File.Description)
	}
	b.d["FS"] = fs
	return nil
}

// rect returns the annotation rectangle: the explicit one, or the vertex
// extent padded by the border width.
func (b *annotBuilder) rect(a document.Annotation) (pdftrim.Rect, bool) {
	if a.Rect != nil {
		return *a.Rect, true
	}
	if !b.hasExtent {
		return pdftrim.Rect{}, false
	}
	pad := 1.0
	if a.Common.Border != nil {
		pad = math.Max(a.Common.Border.Width, 1)
	}
	r := b.extent
	return pdftrim.Rect{X0: r.X0 - pad, Y0: r.Y0 - pad, X1: r.X1 + pad, Y1: r.Y1 + pad}, true
}

// defaultAppearance renders a /DA string such as "/Helv 11 Tf 0 0 0 rg".
func defaultAppearance(s document.TextStyle) string {
	font := s.Font
	if font == "" {
		font = "Helv"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "/%s %s Tf", strings.ReplaceAll(font, " ", ""), num(s.Size))
	switch len(s.Color) {
	case 1:
		fmt.Fprintf(&sb, " %s g", num(s.Color[0]))
	case 3:
		fmt.Fprintf(&sb, " %s %s %s rg", num(s.Color[0]), num(s.Color[1]), num(s.Color[2]))
	case 4:
		fmt.Fprintf(&sb, " %s %s %s %s k", num(s.Color[0]), num(s.Color[1]), num(s.Color[2]), num(s.Color[3]))
	default:
		sb.WriteString(" 0 g")
	}
	return sb.String()
}

// displayStyle renders a /DS string.
func displayStyle(s document.TextStyle) string {
	font := s.Font
	if font == "" {
		font = "Helvetica"
	}
	align := "left"
	if s.Align >= 0 && s.Align < len(alignNames) {
		align = alignNames[s.Align]
	}
	css := fmt.Sprintf("font: %s %spt; text-align:%s", font, num(s.Size), align)
	if len(s.Color) == 3 {
		css += fmt.Sprintf("; color:#%02X%02X%02X", channel(s.Color[0]), channel(s.Color[1]), channel(s.Color[2]))
	}
	return css
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// InsertLink creates a link annotation on page.
func (w *Writer) InsertLink(page int, l document.Link) error {
	p, err := w.page("InsertLink", page)
	if err != nil {
		return err
	}
	d := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Link"),
		"Rect":    p.out.toUser(l.From),
		"Border":  types.Array{types.Integer(0), types.Integer(0), types.Integer(0)},
		"P":       p.ref,
	}
	switch l.Kind {
	case document.LinkGoto:
		dest, err := w.xyz(l.Page, &l.To)
		if err != nil {
			return err
		}
		d["Dest"] = dest
	case document.LinkURI:
		d["A"] = types.Dict{"S": types.Name("URI"), "URI": types.StringLiteral(escapeLiteral(l.URI))}
	case document.LinkLaunch:
		d["A"] = types.Dict{"S": types.Name("Launch"), "F": pdfText(l.File)}
	case document.LinkGotoR:
		d["A"] = types.Dict{
			"S": types.Name("GoToR"),
			"F": pdfText(l.File),
			"D": types.Array{types.Integer(l.Page), types.Name("XYZ"), types.Float(l.To.X), types.Float(l.To.Y), nil},
		}
	default:
		return fmt.Errorf("%w: link kind %s", pdftrim.ErrUnsupported, l.Kind)
	}
	ref, err := w.newObject(d)
	if err != nil {
		return err
	}
	w.addAnnot(p, ref)
	return nil
}

// xyz builds an explicit destination on output page i. A nil point
// fits the page.
func (w *Writer) xyz(i int, to *pdftrim.Point) (types.Array, error) {
	p, err := w.page("Destination", i)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return types.Array{p.ref, types.Name("Fit")}, nil
	}
	x, y := p.out.user(*to)
	return types.Array{p.ref, types.Name("XYZ"), types.Float(x), types.Float(y), nil}, nil
}

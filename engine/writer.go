package engine

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Writer edits a copy of the source document. It starts with the source
// pages in place: SetCropBox adjusts them directly, while NewPage recycles
// them in order as blank pages whose content is drawn from a snapshot of
// the original pages.
type Writer struct {
	o     objects
	pages []writerPage
	used  int
	forms map[int]types.IndirectRef // source page -> form XObject
}

type writerPage struct {
	pageEntry
	content []byte // original content, decoded
	out     pageBox
}

var _ document.Sink = (*Writer)(nil)

// NewWriter opens data for editing.
func NewWriter(data []byte) (*Writer, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}
	o := objects{ctx: ctx}
	entries, err := loadPages(o)
	if err != nil {
		return nil, err
	}
	w := &Writer{o: o, pages: make([]writerPage, len(entries)), forms: make(map[int]types.IndirectRef)}
	for i, e := range entries {
		content, err := o.contents(e.dict)
		if err != nil {
			return nil, pdftrim.NewError("NewWriter", i, err)
		}
		w.pages[i] = writerPage{pageEntry: e, content: content, out: e.box}
	}
	return w, nil
}

func (w *Writer) page(op string, i int) (*writerPage, error) {
	if i < 0 || i >= len(w.pages) {
		return nil, pdftrim.PageError(op, i, len(w.pages))
	}
	return &w.pages[i], nil
}

// NewPage turns the next source page slot into a blank page of the given
// size. Annotations and boxes other than the media box are removed.
func (w *Writer) NewPage(width, height float64) (int, error) {
	if w.used >= len(w.pages) {
		return 0, fmt.Errorf("%w: more output pages than source pages", pdftrim.ErrUnsupported)
	}
	i := w.used
	w.used++
	p := &w.pages[i]
	d := p.dict
	d["MediaBox"] = floats(0, 0, width, height)
	for _, key := range []string{"CropBox", "TrimBox", "BleedBox", "ArtBox", "Annots", "Contents"} {
		delete(d, key)
	}
	d["Resources"] = types.Dict{}
	p.out = pageBox{w: width, h: height}
	return i, nil
}

// DrawRegion places the src region of source page srcPage into dest,
// scaled uniformly, centred and clipped to the region.
func (w *Writer) DrawRegion(page int, dest pdftrim.Rect, srcPage int, src pdftrim.Rect) error {
	p, err := w.page("DrawRegion", page)
	if err != nil {
		return err
	}
	sp, err := w.page("DrawRegion", srcPage)
	if err != nil {
		return err
	}
	form, err := w.form(srcPage, sp)
	if err != nil {
		return pdftrim.NewError("DrawRegion", srcPage, err)
	}

	dest = dest.Normalize()
	tr := pdftrim.NewTransformer(src, dest.Width(), dest.Height())
	s := tr.Scale()
	dx, dy := tr.Offset()
	src = tr.Source()
	sb := sp.box

	// Source user space -> output user space.
	e := dest.X0 + dx - s*(sb.llx+src.X0)
	f := p.out.h - dest.Y0 - dy - s*(sb.lly+sb.h-src.Y0)

	clip := tr.Rect(src)
	clip.X0 += dest.X0
	clip.X1 += dest.X0
	clip.Y0 += dest.Y0
	clip.Y1 += dest.Y0
	cx, cy := p.out.user(pdftrim.Point{X: clip.X0, Y: clip.Y1})

	name := "Fx" + strconv.Itoa(srcPage)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "q\n%s %s %s %s re W n\n", num(cx), num(cy), num(clip.Width()), num(clip.Height()))
	fmt.Fprintf(&buf, "%s 0 0 %s %s %s cm\n/%s Do\nQ\n", num(s), num(s), num(e), num(f), name)

	ref, err := w.newStream(buf.Bytes(), nil)
	if err != nil {
		return pdftrim.NewError("DrawRegion", page, err)
	}

	res := w.o.dict(p.dict["Resources"])
	if res == nil {
		res = types.Dict{}
		p.dict["Resources"] = res
	}
	xo := w.o.dict(res["XObject"])
	if xo == nil {
		xo = types.Dict{}
		res["XObject"] = xo
	}
	xo[name] = form

	switch c := p.dict["Contents"].(type) {
	case nil:
		p.dict["Contents"] = ref
	case types.Array:
		p.dict["Contents"] = append(c, ref)
	default:
		p.dict["Contents"] = types.Array{c, ref}
	}
	return nil
}

// form returns the form XObject wrapping the original content of page i,
// creating it on first use.
func (w *Writer) form(i int, p *writerPage) (types.IndirectRef, error) {
	if ref, ok := w.forms[i]; ok {
		return ref, nil
	}
	d := types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    floats(p.mediaBox...),
	}
	if p.resources != nil {
		d["Resources"] = p.resources
	}
	ref, err := w.newStream(p.content, d)
	if err != nil {
		return types.IndirectRef{}, err
	}
	w.forms[i] = ref
	return ref, nil
}

// newStream stores data as a new compressed stream object with the
// entries of d.
func (w *Writer) newStream(data []byte, d types.Dict) (types.IndirectRef, error) {
	sd, err := w.o.ctx.NewStreamDictForBuf(data)
	if err != nil {
		return types.IndirectRef{}, err
	}
	for k, v := range d {
		sd.Dict[k] = v
	}
	if err := sd.Encode(); err != nil {
		return types.IndirectRef{}, err
	}
	ref, err := w.o.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

func (w *Writer) newObject(obj types.Object) (types.IndirectRef, error) {
	ref, err := w.o.ctx.IndRefForNewObject(obj)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

// SetCropBox sets the crop box of page to r, given in page coordinates.
func (w *Writer) SetCropBox(page int, r pdftrim.Rect) error {
	p, err := w.page("SetCropBox", page)
	if err != nil {
		return err
	}
	p.dict["CropBox"] = p.out.toUser(r)
	return nil
}

// addAnnot appends ref to the annotation array of page.
func (w *Writer) addAnnot(p *writerPage, ref types.IndirectRef) {
	annots := w.o.array(p.dict["Annots"])
	p.dict["Annots"] = append(append(types.Array{}, annots...), ref)
}

// Write serialises the edited document.
func (w *Writer) Write(out io.Writer) error {
	if err := api.WriteContext(w.o.ctx, out); err != nil {
		return fmt.Errorf("engine: writing document: %w", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

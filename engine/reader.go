// Package engine implements document.Source and document.Sink on top of
// pdfcpu, with MuPDF (through go-fitz) for rasterisation.
//
// A Reader and a Writer are opened on the same bytes. The Writer edits its
// own copy of the object graph in place, so catalog entries such as the
// document information, page labels, attachments and optional content
// survive unchanged.
package engine

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Reader is a read-only view of a PDF document.
type Reader struct {
	log pdftrim.Logger

	mu        sync.Mutex // guards o; pdfcpu contexts are not safe for concurrent use
	o         objects
	pages     []pageEntry
	pageIndex map[int]int // page object number -> page index
	raster    *rasterizer
}

var _ document.Source = (*Reader)(nil)

// Open parses a PDF document held in memory.
func Open(data []byte, log pdftrim.Logger) (*Reader, error) {
	if log == nil {
		log = pdftrim.NopLogger{}
	}
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}
	o := objects{ctx: ctx}
	pages, err := loadPages(o)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		log:       log,
		o:         o,
		pages:     pages,
		pageIndex: make(map[int]int, len(pages)),
		raster:    newRasterizer(data),
	}
	for i, p := range pages {
		r.pageIndex[int(p.ref.ObjectNumber)] = i
	}
	return r, nil
}

// ReadFrom reads the whole of rd and opens it.
func ReadFrom(rd io.Reader, log pdftrim.Logger) (*Reader, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("engine: reading input: %w", err)
	}
	return Open(data, log)
}

// Close releases the renderer.
func (r *Reader) Close() error {
	return r.raster.close()
}

func (r *Reader) page(op string, i int) (*pageEntry, error) {
	if i < 0 || i >= len(r.pages) {
		return nil, pdftrim.PageError(op, i, len(r.pages))
	}
	return &r.pages[i], nil
}

func (r *Reader) PageCount() int { return len(r.pages) }

func (r *Reader) PageRect(i int) (pdftrim.Rect, error) {
	p, err := r.page("PageRect", i)
	if err != nil {
		return pdftrim.Rect{}, err
	}
	return p.box.rect(), nil
}

func (r *Reader) RenderPixels(ctx context.Context, i, dpi int) (*document.Raster, error) {
	if _, err := r.page("RenderPixels", i); err != nil {
		return nil, err
	}
	return r.raster.render(ctx, i, dpi)
}

// scan decodes the content of page i and scans it for text and images.
// Decoding holds the lock; scanning runs unlocked.
func (r *Reader) scan(op string, i int) (*scanResult, *pageEntry, error) {
	p, err := r.page(op, i)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	data, err := r.o.contents(p.dict)
	var res resources = noResources{}
	if rd := r.o.dict(p.resources); rd != nil {
		res = &lockedResources{mu: &r.mu, x: xobjects{o: r.o, res: rd}}
	}
	r.mu.Unlock()
	if err != nil {
		return nil, nil, pdftrim.NewError(op, i, err)
	}

	out, err := scanContent(data, res)
	if err != nil {
		return nil, nil, pdftrim.NewError(op, i, err)
	}
	return out, p, nil
}

func (r *Reader) TextBlocks(i int) ([]pdftrim.Rect, error) {
	out, p, err := r.scan("TextBlocks", i)
	if err != nil {
		return nil, err
	}
	return toPage(p.box, out.text), nil
}

func (r *Reader) ImageBoxes(i int) ([]pdftrim.Rect, error) {
	out, p, err := r.scan("ImageBoxes", i)
	if err != nil {
		return nil, err
	}
	return toPage(p.box, out.images), nil
}

func toPage(b pageBox, rs []pdftrim.Rect) []pdftrim.Rect {
	out := make([]pdftrim.Rect, len(rs))
	for i, r := range rs {
		out[i] = b.fromUser(r)
	}
	return out
}

// lockedResources takes the reader lock around XObject lookups made
// while scanning.
type lockedResources struct {
	mu *sync.Mutex
	x  xobjects
}

func (l *lockedResources) xobject(name string) (*xobject, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	x, ok := l.x.xobject(name)
	if ok && !x.image {
		if xr, isX := x.resources.(xobjects); isX {
			x.resources = &lockedResources{mu: l.mu, x: xr}
		}
	}
	return x, ok
}

func (r *Reader) RawObject(xref int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, err := r.o.ctx.FindObject(xref)
	if err != nil {
		return "", fmt.Errorf("engine: object %d: %w", xref, err)
	}
	if obj == nil {
		return "null", nil
	}
	return obj.PDFString(), nil
}

// annots returns the annotation references of page i with their
// dictionaries.
func (r *Reader) annots(p *pageEntry) ([]types.Object, []types.Dict) {
	arr := r.o.array(p.dict["Annots"])
	refs := make([]types.Object, 0, len(arr))
	dicts := make([]types.Dict, 0, len(arr))
	for _, a := range arr {
		d := r.o.dict(a)
		if d == nil {
			continue
		}
		refs = append(refs, a)
		dicts = append(dicts, d)
	}
	return refs, dicts
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/go-fitz"

	"github.com/lvillar/pdftrim/document"
)

// DefaultDPI is the resolution used when a caller asks for dpi 0.
const DefaultDPI = 72

// ErrClosed is returned when rendering from a closed Reader.
var ErrClosed = errors.New("engine: reader closed")

// rasterizer renders pages with MuPDF. The MuPDF context is not safe for
// concurrent use, so renders are serialised.
type rasterizer struct {
	data []byte

	once sync.Once
	err  error
	mu     sync.Mutex
	doc    *fitz.Document
	closed bool
}

func newRasterizer(data []byte) *rasterizer {
	return &rasterizer{data: data}
}

func (r *rasterizer) open() error {
	r.once.Do(func() {
		r.doc, r.err = fitz.NewFromMemory(r.data)
		if r.err != nil {
			r.err = fmt.Errorf("engine: opening renderer: %w", r.err)
		}
	})
	return r.err
}

func (r *rasterizer) render(ctx context.Context, page, dpi int) (*document.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	img, err := r.doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("engine: rendering page %d: %w", page+1, err)
	}

	ras := document.FromImage(img)
	ras.DPI = dpi
	return ras, nil
}

func (r *rasterizer) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}

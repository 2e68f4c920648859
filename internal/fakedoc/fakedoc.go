// Package fakedoc provides in-memory document.Source and document.Sink
// implementations for tests.
package fakedoc

import (
	"context"
	"fmt"
	"sync"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// Page is the content of one source page.
type Page struct {
	Rect        pdftrim.Rect
	Raster      *document.Raster
	Text        []pdftrim.Rect
	Images      []pdftrim.Rect
	Annotations []document.AnnotationRecord
	Links       []document.LinkRecord
}

// Source is an in-memory document.Source.
type Source struct {
	Pages   []Page
	Toc     []document.OutlineEntry
	Objects map[int]string

	mu       sync.Mutex
	Rendered map[int]int // page -> dpi requested
}

var _ document.Source = (*Source)(nil)

func (s *Source) page(i int) (*Page, error) {
	if i < 0 || i >= len(s.Pages) {
		return nil, pdftrim.PageError("fakedoc", i, len(s.Pages))
	}
	return &s.Pages[i], nil
}

func (s *Source) PageCount() int { return len(s.Pages) }

func (s *Source) PageRect(i int) (pdftrim.Rect, error) {
	p, err := s.page(i)
	if err != nil {
		return pdftrim.Rect{}, err
	}
	return p.Rect, nil
}

func (s *Source) RenderPixels(ctx context.Context, i, dpi int) (*document.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.page(i)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.Rendered == nil {
		s.Rendered = make(map[int]int)
	}
	s.Rendered[i] = dpi
	s.mu.Unlock()
	if p.Raster == nil {
		return nil, fmt.Errorf("fakedoc: page %d has no raster", i)
	}
	return p.Raster, nil
}

func (s *Source) TextBlocks(i int) ([]pdftrim.Rect, error) {
	p, err := s.page(i)
	if err != nil {
		return nil, err
	}
	return p.Text, nil
}

func (s *Source) ImageBoxes(i int) ([]pdftrim.Rect, error) {
	p, err := s.page(i)
	if err != nil {
		return nil, err
	}
	return p.Images, nil
}

func (s *Source) Annotations(i int) ([]document.AnnotationRecord, error) {
	p, err := s.page(i)
	if err != nil {
		return nil, err
	}
	return p.Annotations, nil
}

func (s *Source) Links(i int) ([]document.LinkRecord, error) {
	p, err := s.page(i)
	if err != nil {
		return nil, err
	}
	return p.Links, nil
}

func (s *Source) Outline() ([]document.OutlineEntry, error) { return s.Toc, nil }

func (s *Source) RawObject(xref int) (string, error) {
	obj, ok := s.Objects[xref]
	if !ok {
		return "", fmt.Errorf("fakedoc: object %d not found", xref)
	}
	return obj, nil
}

// Draw records a DrawRegion call.
type Draw struct {
	Page, SrcPage int
	Dest, Src     pdftrim.Rect
}

// SinkPage is one output page.
type SinkPage struct {
	Width, Height float64
	CropBox       *pdftrim.Rect
	Annotations   []document.Annotation
	IDs           []int
	Links         []document.Link
}

// Sink is an in-memory document.Sink. Pages may be pre-seeded to model a
// sink that starts as a copy of the source.
type Sink struct {
	Pages   []SinkPage
	Draws   []Draw
	Outline []document.OutlineEntry
	// FailAnnotation makes AddAnnotation fail for the given kind.
	FailAnnotation map[document.Kind]error

	nextID int
}

var _ document.Sink = (*Sink)(nil)

func (s *Sink) page(i int) (*SinkPage, error) {
	if i < 0 || i >= len(s.Pages) {
		return nil, pdftrim.PageError("fakedoc", i, len(s.Pages))
	}
	return &s.Pages[i], nil
}

func (s *Sink) NewPage(width, height float64) (int, error) {
	s.Pages = append(s.Pages, SinkPage{Width: width, Height: height})
	return len(s.Pages) - 1, nil
}

func (s *Sink) DrawRegion(page int, dest pdftrim.Rect, srcPage int, src pdftrim.Rect) error {
	if _, err := s.page(page); err != nil {
		return err
	}
	s.Draws = append(s.Draws, Draw{Page: page, SrcPage: srcPage, Dest: dest, Src: src})
	return nil
}

func (s *Sink) SetCropBox(page int, r pdftrim.Rect) error {
	p, err := s.page(page)
	if err != nil {
		return err
	}
	p.CropBox = &r
	return nil
}

func (s *Sink) AddAnnotation(page int, a document.Annotation) (int, error) {
	p, err := s.page(page)
	if err != nil {
		return 0, err
	}
	if err := s.FailAnnotation[a.Kind]; err != nil {
		return 0, err
	}
	s.nextID++
	id := 1000 + s.nextID
	p.Annotations = append(p.Annotations, a)
	p.IDs = append(p.IDs, id)
	return id, nil
}

func (s *Sink) InsertLink(page int, l document.Link) error {
	p, err := s.page(page)
	if err != nil {
		return err
	}
	p.Links = append(p.Links, l)
	return nil
}

func (s *Sink) SetOutline(entries []document.OutlineEntry) error {
	s.Outline = entries
	return nil
}

// Record is a logged line.
type Record struct {
	Level  string
	Msg    string
	Err    error
	Fields []any
}

// Logger records log calls.
type Logger struct {
	mu      sync.Mutex
	Records []Record
}

var _ pdftrim.Logger = (*Logger)(nil)

func (l *Logger) add(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Records = append(l.Records, r)
}

func (l *Logger) Debug(msg string, fields ...any) { l.add(Record{Level: "debug", Msg: msg, Fields: fields}) }
func (l *Logger) Info(msg string, fields ...any)  { l.add(Record{Level: "info", Msg: msg, Fields: fields}) }
func (l *Logger) Warn(msg string, fields ...any)  { l.add(Record{Level: "warn", Msg: msg, Fields: fields}) }
func (l *Logger) Error(msg string, err error, fields ...any) {
	l.add(Record{Level: "error", Msg: msg, Err: err, Fields: fields})
}

// Count returns the number of records at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.Records {
		if r.Level == level {
			n++
		}
	}
	return n
}

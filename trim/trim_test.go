package trim_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
	"github.com/lvillar/pdftrim/engine"
	"github.com/lvillar/pdftrim/internal/pdftest"
	"github.com/lvillar/pdftrim/logger"
	"github.com/lvillar/pdftrim/trim"
)

// createTestPDF builds a one page document with a single text run whose
// estimated box is (20,42)-(45,52), a highlight over it and a link back
// to the page.
func createTestPDF(t *testing.T) []byte {
	t.Helper()
	return pdftest.Build([]pdftest.Page{{
		Width: 200, Height: 300,
		Content: "BT /F1 10 Tf 20 250 Td (Hello) Tj ET",
		Annots: []string{
			"<< /Type /Annot /Subtype /Highlight /Rect [20 248 45 258] /QuadPoints [20 258 45 258 20 248 45 248] >>",
			"<< /Type /Annot /Subtype /Link /Rect [20 248 45 258] /Border [0 0 0] /Dest [{p1} /XYZ 20 258 null] >>",
		},
	}}, "").Bytes()
}

func near(a, b pdftrim.Rect) bool {
	const eps = 1e-6
	return math.Abs(a.X0-b.X0) < eps && math.Abs(a.Y0-b.Y0) < eps &&
		math.Abs(a.X1-b.X1) < eps && math.Abs(a.Y1-b.Y1) < eps
}

func trimT(t *testing.T, data []byte, opts ...pdftrim.Option) *engine.Reader {
	t.Helper()
	var out bytes.Buffer
	if err := trim.Trim(context.Background(), &out, bytes.NewReader(data), opts...); err != nil {
		t.Fatalf("Trim: %v", err)
	}
	r, err := engine.Open(out.Bytes(), nil)
	if err != nil {
		t.Fatalf("reading trimmed PDF: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestBounds(t *testing.T) {
	rects, err := trim.Bounds(context.Background(), createTestPDF(t), pdftrim.WithExtractor("text"))
	if err != nil {
		t.Fatal(err)
	}
	want := pdftrim.Rect{X0: 20, Y0: 42, X1: 45, Y1: 52}
	if len(rects) != 1 || !near(rects[0], want) {
		t.Errorf("got %+v, want %+v", rects, want)
	}
}

func TestTrimBox(t *testing.T) {
	borders, err := pdftrim.ParseBorders("10")
	if err != nil {
		t.Fatal(err)
	}
	r := trimT(t, createTestPDF(t),
		pdftrim.WithExtractor("text"),
		pdftrim.WithCropper("box"),
		pdftrim.WithBorders(borders),
	)
	page, _ := r.PageRect(0)
	if !near(page, pdftrim.Rect{X1: 45, Y1: 30}) {
		t.Errorf("page = %+v", page)
	}
	recs, _ := r.Annotations(0)
	links, _ := r.Links(0)
	if len(recs) != 1 || len(links) != 1 {
		t.Errorf("box crop must keep annotations and links: %d, %d", len(recs), len(links))
	}
}

func TestTrimScale(t *testing.T) {
	var logs bytes.Buffer
	r := trimT(t, createTestPDF(t),
		pdftrim.WithExtractor("text"),
		pdftrim.WithLogger(logger.New("info", &logs)),
	)
	page, _ := r.PageRect(0)
	if !near(page, pdftrim.Rect{X1: 200, Y1: 300}) {
		t.Errorf("scale must keep the page size, got %+v", page)
	}

	// 25x10 content scaled by 8 and centred vertically
	want := pdftrim.Rect{X0: 0, Y0: 110, X1: 200, Y1: 190}
	text, err := r.TextBlocks(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(text) != 1 || !near(text[0], want) {
		t.Errorf("text = %+v, want %+v", text, want)
	}

	recs, _ := r.Annotations(0)
	if len(recs) != 1 || recs[0].Kind != document.KindHighlight {
		t.Fatalf("annotations = %+v", recs)
	}
	if b, ok := recs[0].Geometry.Bounds(); !ok || !near(b, want) {
		t.Errorf("highlight = %+v", b)
	}

	links, _ := r.Links(0)
	if len(links) != 1 || links[0].Kind != document.LinkGoto {
		t.Fatalf("links = %+v", links)
	}
	if !near(links[0].From, want) || links[0].To == nil || *links[0].To != (pdftrim.Point{X: 0, Y: 110}) {
		t.Errorf("link = %+v to %+v", links[0].From, links[0].To)
	}

	if !strings.Contains(logs.String(), "pages cropped") {
		t.Errorf("missing progress log:\n%s", logs.String())
	}
}

func TestTrimFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	out := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(in, createTestPDF(t), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := trim.TrimFile(context.Background(), in, out, pdftrim.WithExtractor("page")); err != nil {
		t.Fatalf("TrimFile: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Fatalf("output missing: %v", err)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestTrimErrors(t *testing.T) {
	ctx := context.Background()
	data := createTestPDF(t)
	var out bytes.Buffer

	if err := trim.Trim(ctx, &out, bytes.NewReader(data), pdftrim.WithExtractor("magic")); !errors.Is(err, pdftrim.ErrUnknownExtractor) {
		t.Errorf("expected ErrUnknownExtractor, got %v", err)
	}
	if err := trim.Trim(ctx, &out, bytes.NewReader(data), pdftrim.WithCropper("stretch")); !errors.Is(err, pdftrim.ErrUnknownCropper) {
		t.Errorf("expected ErrUnknownCropper, got %v", err)
	}
	if err := trim.Trim(ctx, &out, strings.NewReader("garbage")); err == nil {
		t.Error("expected error for invalid input")
	}
	if err := trim.TrimFile(ctx, filepath.Join(t.TempDir(), "missing.pdf"), "out.pdf"); err == nil {
		t.Error("expected error for missing input")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := trim.Trim(cancelled, &out, bytes.NewReader(data), pdftrim.WithExtractor("text")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

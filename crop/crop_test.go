package crop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/bounds"
	"github.com/lvillar/pdftrim/crop"
	"github.com/lvillar/pdftrim/document"
	"github.com/lvillar/pdftrim/internal/fakedoc"
)

func intPtr(i int) *int { return &i }

func squarePages(n int) *fakedoc.Source {
	src := &fakedoc.Source{}
	for i := 0; i < n; i++ {
		src.Pages = append(src.Pages, fakedoc.Page{Rect: pdftrim.Rect{X1: 200, Y1: 200}})
	}
	return src
}

func TestNewUnknownCropper(t *testing.T) {
	_, err := crop.New("stretch", nil)
	if !errors.Is(err, pdftrim.ErrUnknownCropper) {
		t.Errorf("expected ErrUnknownCropper, got %v", err)
	}
	for _, name := range []string{crop.BoxName, crop.ScaleName} {
		if _, err := crop.New(name, pdftrim.NewConfig()); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestBoxSetsCropBoxes(t *testing.T) {
	src := squarePages(2)
	dst := &fakedoc.Sink{Pages: make([]fakedoc.SinkPage, 2)}
	rects := []pdftrim.Rect{{X0: 10, Y0: 20, X1: 100, Y1: 150}, {X1: 200, Y1: 200}}

	if err := (&crop.Box{}).Crop(context.Background(), src, dst, rects); err != nil {
		t.Fatal(err)
	}
	for i, p := range dst.Pages {
		if p.CropBox == nil || *p.CropBox != rects[i] {
			t.Errorf("page %d crop box = %v, want %v", i, p.CropBox, rects[i])
		}
	}
	if len(dst.Draws) != 0 {
		t.Error("box cropper must not redraw content")
	}
}

func TestCropBoundsCountMismatch(t *testing.T) {
	src := squarePages(2)
	for _, c := range []crop.Cropper{&crop.Box{}, &crop.Scale{}} {
		if err := c.Crop(context.Background(), src, &fakedoc.Sink{}, []pdftrim.Rect{{X1: 1, Y1: 1}}); err == nil {
			t.Errorf("%T: expected error", c)
		}
	}
}

func TestScaleDrawsEachPage(t *testing.T) {
	src := squarePages(2)
	dst := &fakedoc.Sink{}
	rects := []pdftrim.Rect{{X0: 50, Y0: 50, X1: 150, Y1: 150}, {X0: 0, Y0: 0, X1: 200, Y1: 100}}

	if err := (&crop.Scale{}).Crop(context.Background(), src, dst, rects); err != nil {
		t.Fatal(err)
	}
	if len(dst.Pages) != 2 || len(dst.Draws) != 2 {
		t.Fatalf("pages=%d draws=%d", len(dst.Pages), len(dst.Draws))
	}
	for i, d := range dst.Draws {
		if d.Page != i || d.SrcPage != i || d.Src != rects[i] {
			t.Errorf("draw %d = %+v", i, d)
		}
		if d.Dest != (pdftrim.Rect{X1: 200, Y1: 200}) {
			t.Errorf("draw %d dest = %+v", i, d.Dest)
		}
		if dst.Pages[i].Width != 200 || dst.Pages[i].Height != 200 {
			t.Errorf("page %d size %vx%v", i, dst.Pages[i].Width, dst.Pages[i].Height)
		}
	}
}

func TestScaleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&crop.Scale{}).Crop(ctx, squarePages(1), &fakedoc.Sink{}, []pdftrim.Rect{{X1: 200, Y1: 200}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScaleRemapsLinks(t *testing.T) {
	src := squarePages(2)
	src.Pages[0].Links = []document.LinkRecord{
		// goto into page 2, mapped with the second page's transformer
		{Kind: document.LinkGoto, From: pdftrim.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}, Page: intPtr(1), To: &pdftrim.Point{X: 60, Y: 70}},
		{Kind: document.LinkURI, From: pdftrim.Rect{X1: 10, Y1: 10}, URI: "https://example.com"},
		// zero-width hot zone
		{Kind: document.LinkURI, From: pdftrim.Rect{X0: 5, Y0: 5, X1: 5, Y1: 10}, URI: "https://example.org"},
		{Kind: document.LinkNamed, From: pdftrim.Rect{X1: 10, Y1: 10}, PageText: "9"},
		{Kind: document.LinkGoto, From: pdftrim.Rect{X1: 10, Y1: 10}},
		{Kind: document.LinkNone, From: pdftrim.Rect{X1: 10, Y1: 10}},
		{Kind: document.LinkNamed, From: pdftrim.Rect{X1: 10, Y1: 10}, PageText: "2", Zoom: "60,70,100"},
		{Kind: document.LinkGotoR, From: pdftrim.Rect{X1: 10, Y1: 10}, File: "other.pdf", Page: intPtr(4), To: &pdftrim.Point{X: 1, Y: 2}},
	}
	dst := &fakedoc.Sink{}
	log := &fakedoc.Logger{}
	rects := []pdftrim.Rect{{X1: 100, Y1: 100}, {X0: 50, Y0: 50, X1: 150, Y1: 150}}

	if err := (&crop.Scale{Logger: log}).Crop(context.Background(), src, dst, rects); err != nil {
		t.Fatal(err)
	}

	links := dst.Pages[0].Links
	if len(links) != 4 {
		t.Fatalf("expected 4 links, got %d: %+v", len(links), links)
	}
	goto1 := links[0]
	if goto1.From != (pdftrim.Rect{X0: 20, Y0: 20, X1: 40, Y1: 40}) {
		t.Errorf("hot zone = %+v", goto1.From)
	}
	if goto1.Page != 1 || goto1.To != (pdftrim.Point{X: 20, Y: 40}) {
		t.Errorf("destination = page %d %+v", goto1.Page, goto1.To)
	}
	if links[1].Kind != document.LinkURI || links[1].URI != "https://example.com" {
		t.Errorf("uri link = %+v", links[1])
	}
	if links[2].Kind != document.LinkGoto || links[2].Page != 1 || links[2].To != (pdftrim.Point{X: 20, Y: 40}) {
		t.Errorf("named link = %+v", links[2])
	}
	if links[3].Kind != document.LinkGotoR || links[3].Page != 4 || links[3].To != (pdftrim.Point{X: 1, Y: 2}) || links[3].File != "other.pdf" {
		t.Errorf("remote link = %+v", links[3])
	}
	if log.Count("warn") != 2 {
		t.Errorf("expected 2 warnings, got %d", log.Count("warn"))
	}
}

func TestScaleOutline(t *testing.T) {
	src := squarePages(2)
	src.Toc = []document.OutlineEntry{
		{Level: 1, Title: "Intro", Dest: document.LinkRecord{Kind: document.LinkGoto, Page: intPtr(0), To: &pdftrim.Point{X: 50, Y: 50}}},
		{Level: 2, Title: "Detail", Dest: document.LinkRecord{Kind: document.LinkNamed, PageText: "2", Dest: "/Fit"}},
		{Level: 1, Title: "Lost", Dest: document.LinkRecord{Kind: document.LinkNamed, PageText: "7"}},
		{Level: 1, Title: "Web", Dest: document.LinkRecord{Kind: document.LinkURI, URI: "https://example.com"}},
	}
	dst := &fakedoc.Sink{}
	rects := []pdftrim.Rect{{X0: 50, Y0: 50, X1: 150, Y1: 150}, {X1: 200, Y1: 200}}

	if err := (&crop.Scale{}).Crop(context.Background(), src, dst, rects); err != nil {
		t.Fatal(err)
	}
	if len(dst.Outline) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(dst.Outline))
	}
	intro := dst.Outline[0].Dest
	if *intro.Page != 0 || *intro.To != (pdftrim.Point{}) {
		t.Errorf("intro = page %d %+v", *intro.Page, *intro.To)
	}
	detail := dst.Outline[1].Dest
	if detail.Kind != document.LinkGoto || *detail.Page != 1 || *detail.To != (pdftrim.Point{}) {
		t.Errorf("detail = %+v", detail)
	}
	if lost := dst.Outline[2].Dest; lost.Kind != document.LinkNamed || lost.PageText != "7" {
		t.Errorf("unresolvable entry must be kept, got %+v", lost)
	}
	if dst.Outline[3].Dest.URI != "https://example.com" || dst.Outline[1].Level != 2 {
		t.Error("entries must keep their level and non-goto destinations")
	}
}

func TestScaleKeepsExplicitDestinationsWithoutPoint(t *testing.T) {
	src := squarePages(2)
	src.Objects = map[int]string{
		5: "<</Type /Annot /Subtype /Link /A <</S /GoTo /D [7 0 R /XYZ null 150 null]>>>>",
		6: "<</Type /Annot /Subtype /Link /Dest [7 0 R /FitR 10 20 110 120]>>",
	}
	src.Pages[0].Links = []document.LinkRecord{
		{Kind: document.LinkNamed, From: pdftrim.Rect{X1: 10, Y1: 10}, PageText: "2", Dest: "/XYZ", Xref: 5},
		{Kind: document.LinkNamed, From: pdftrim.Rect{X0: 20, X1: 30, Y1: 10}, PageText: "1", Dest: "/FitR", Xref: 6},
	}
	dst := &fakedoc.Sink{}
	log := &fakedoc.Logger{}
	rects := []pdftrim.Rect{{X1: 200, Y1: 200}, {X1: 200, Y1: 200}}

	if err := (&crop.Scale{Logger: log}).Crop(context.Background(), src, dst, rects); err != nil {
		t.Fatal(err)
	}
	links := dst.Pages[0].Links
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d (%d warnings)", len(links), log.Count("warn"))
	}
	if links[0].Page != 1 || links[0].To != (pdftrim.Point{X: 0, Y: 50}) {
		t.Errorf("null-left XYZ link = %+v", links[0])
	}
	if links[1].Page != 0 || links[1].To != (pdftrim.Point{X: 10, Y: 80}) {
		t.Errorf("FitR link = %+v", links[1])
	}
	if log.Count("warn") != 0 {
		t.Errorf("unexpected warnings: %d", log.Count("warn"))
	}
}

func TestScaleSinglePixelContent(t *testing.T) {
	ras := document.NewRaster(10, 8)
	ras.Fill(document.RGB{255, 255, 255})
	ras.Set(4, 3, document.RGB{1, 2, 3})
	src := &fakedoc.Source{Pages: []fakedoc.Page{{Rect: pdftrim.Rect{X1: 10, Y1: 8}, Raster: ras}}}

	ex, err := bounds.New(bounds.Histogram, nil)
	if err != nil {
		t.Fatal(err)
	}
	rects, err := ex.Bounds(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if rects[0] != (pdftrim.Rect{X0: 4, Y0: 3, X1: 5, Y1: 4}) {
		t.Fatalf("bounds = %+v", rects[0])
	}

	dst := &fakedoc.Sink{}
	if err := (&crop.Scale{}).Crop(context.Background(), src, dst, rects); err != nil {
		t.Fatal(err)
	}
	if len(dst.Draws) != 1 || dst.Draws[0].Src.IsEmpty() {
		t.Fatalf("draws = %+v", dst.Draws)
	}
}

func TestScaleEmptyBoundsKeepsPage(t *testing.T) {
	src := squarePages(1)
	src.Pages[0].Annotations = []document.AnnotationRecord{{
		Kind: document.KindSquare, Subtype: "Square", Rect: pdftrim.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20},
	}}
	dst := &fakedoc.Sink{}
	log := &fakedoc.Logger{}
	if err := (&crop.Scale{Logger: log}).Crop(context.Background(), src, dst, []pdftrim.Rect{{X0: 5, Y0: 5, X1: 5, Y1: 9}}); err != nil {
		t.Fatal(err)
	}
	if dst.Draws[0].Src != (pdftrim.Rect{X1: 200, Y1: 200}) {
		t.Errorf("src = %+v", dst.Draws[0].Src)
	}
	annots := dst.Pages[0].Annotations
	if len(annots) != 1 || annots[0].Rect == nil || *annots[0].Rect != (pdftrim.Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}) {
		t.Errorf("annotations = %+v", annots)
	}
	if log.Count("warn") != 1 {
		t.Errorf("expected 1 warning, got %d", log.Count("warn"))
	}
}

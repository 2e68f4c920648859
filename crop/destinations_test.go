package crop

import (
	"testing"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
	"github.com/lvillar/pdftrim/internal/fakedoc"
)

func newTestResolver(t *testing.T, src *fakedoc.Source) (*resolver, *fakedoc.Logger) {
	t.Helper()
	log := &fakedoc.Logger{}
	return newResolver(src, src.PageCount(), log), log
}

func threePages() *fakedoc.Source {
	page := fakedoc.Page{Rect: pdftrim.Rect{X1: 600, Y1: 800}}
	return &fakedoc.Source{Pages: []fakedoc.Page{page, page, page}}
}

func intPtr(i int) *int { return &i }

func TestResolveLeavesNonNamedLinks(t *testing.T) {
	r, _ := newTestResolver(t, threePages())
	l := document.LinkRecord{Kind: document.LinkURI, URI: "https://example.com"}
	got, outcome := r.Resolve(l)
	if outcome != Unchanged || got.URI != l.URI {
		t.Errorf("got %v %+v", outcome, got)
	}
}

func TestResolveZoomTriplets(t *testing.T) {
	r, _ := newTestResolver(t, threePages())
	cases := []struct {
		zoom string
		want pdftrim.Point
	}{
		{"0,nan,72", pdftrim.Point{X: 0, Y: 72}},
		{"10,20,30", pdftrim.Point{X: 10, Y: 20}},
		{"nan,nan,nan", pdftrim.Point{}},
		{"5", pdftrim.Point{X: 5}},
	}
	for _, tc := range cases {
		got, outcome := r.Resolve(document.LinkRecord{Kind: document.LinkNamed, PageText: "2", Zoom: tc.zoom})
		if outcome != Converted {
			t.Fatalf("%q: outcome %v", tc.zoom, outcome)
		}
		if got.Kind != document.LinkGoto || *got.Page != 1 || got.To == nil || *got.To != tc.want {
			t.Errorf("%q: got page=%v to=%v, want page 1 to %v", tc.zoom, *got.Page, got.To, tc.want)
		}
	}
}

func TestResolvePageParsing(t *testing.T) {
	r, _ := newTestResolver(t, threePages())
	invalid := []document.LinkRecord{
		{Kind: document.LinkNamed, PageText: "0"},
		{Kind: document.LinkNamed, PageText: "4"},
		{Kind: document.LinkNamed, PageText: "two"},
		{Kind: document.LinkNamed, Page: intPtr(3)},
		{Kind: document.LinkNamed, Page: intPtr(-1)},
		{Kind: document.LinkNamed},
	}
	for _, l := range invalid {
		if _, outcome := r.Resolve(l); outcome != Invalid {
			t.Errorf("%+v: expected Invalid, got %v", l, outcome)
		}
	}

	got, _ := r.Resolve(document.LinkRecord{Kind: document.LinkNamed, Page: intPtr(2), To: &pdftrim.Point{X: 1, Y: 2}})
	if *got.Page != 2 || *got.To != (pdftrim.Point{X: 1, Y: 2}) {
		t.Errorf("integer page should be zero-based, got %+v", got)
	}
	got, _ = r.Resolve(document.LinkRecord{Kind: document.LinkNamed, PageText: " 3 ", Dest: "/Fit"})
	if *got.Page != 2 || *got.To != (pdftrim.Point{}) {
		t.Errorf("text page should be one-based, got %+v", got)
	}
}

func TestResolveExplicitPointWins(t *testing.T) {
	r, _ := newTestResolver(t, threePages())
	got, _ := r.Resolve(document.LinkRecord{
		Kind: document.LinkNamed, Page: intPtr(0), To: &pdftrim.Point{X: 7, Y: 9}, Zoom: "1,2,3", Dest: "/Fit",
	})
	if *got.To != (pdftrim.Point{X: 7, Y: 9}) {
		t.Errorf("got %+v", *got.To)
	}
}

func TestResolveFitView(t *testing.T) {
	r, _ := newTestResolver(t, threePages())
	got, outcome := r.Resolve(document.LinkRecord{Kind: document.LinkNamed, Page: intPtr(1), View: "Fit"})
	if outcome != Converted || got.To == nil || *got.To != (pdftrim.Point{}) {
		t.Errorf("got %v %+v", outcome, got)
	}
}

func TestResolveRawDestArray(t *testing.T) {
	src := threePages()
	src.Objects = map[int]string{
		40: "<</Title (Chapter) /Dest [532 0 R /XYZ 36 700.5 null] /Parent 3 0 R>>",
		41: "<</Title (Fit) /Dest [12 0 R /FitH 500]>>",
		42: "<</Title (Null top) /Dest [12 0 R /XYZ 15 null 0]>>",
		43: "<</Title (Rect) /Dest [12 0 R /FitR 0 0 10 10]>>",
		44: "<</Title (Odd) /Dest [12 0 R /Zoom 2]>>",
	}
	r, log := newTestResolver(t, src)

	got, _ := r.Resolve(document.LinkRecord{Kind: document.LinkNamed, Page: intPtr(1), Xref: 40})
	if got.To == nil || *got.To != (pdftrim.Point{X: 36, Y: 99.5}) {
		t.Errorf("XYZ: got %+v", got.To)
	}
	got, _ = r.Resolve(document.LinkRecord{Kind: document.LinkNamed, Page: intPtr(1), Xref: 41})
	if got.To == nil || *got.To != (pdftrim.Point{}) {
		t.Errorf("FitH: got %+v", got.To)
	}
	got, _ = r.Resolve(document.LinkRecord{Kind: document.LinkNamed, Page: intPtr(1), Xref: 42})
	if got.To == nil || *got.To != (pdftrim.Point{X: 15}) {
		t.Errorf("null top: got %+v", got.To)
	}
	got, _ = r.Resolve(document.LinkRecord{Kind: document.LinkNamed, Page: intPtr(1), Xref: 43})
	if got.To == nil || *got.To != (pdftrim.Point{X: 0, Y: 790}) {
		t.Errorf("FitR: got %+v", got.To)
	}

	got, outcome := r.Resolve(document.LinkRecord{Kind: document.LinkNamed, Page: intPtr(1), Xref: 44})
	if outcome != Converted || got.To != nil || got.Kind != document.LinkGoto {
		t.Errorf("unhandled mode should give a page-only goto, got %v %+v", outcome, got)
	}
	if log.Count("warn") != 2 {
		t.Errorf("expected 2 warnings, got %d", log.Count("warn"))
	}
}

func TestResolveGoToActionDest(t *testing.T) {
	src := threePages()
	src.Objects = map[int]string{
		50: "<</Type /Annot /Subtype /Link /BS << /W 1 /D [3 2] >> /A << /S /GoTo /D [5 0 R /XYZ null 700 null] >> >>",
	}
	r, log := newTestResolver(t, src)
	got, outcome := r.Resolve(document.LinkRecord{Kind: document.LinkNamed, PageText: "2", Dest: "/XYZ", Xref: 50})
	if outcome != Converted || got.To == nil || *got.To != (pdftrim.Point{X: 0, Y: 100}) {
		t.Errorf("got %v %+v", outcome, got.To)
	}
	if log.Count("warn") != 0 {
		t.Errorf("unexpected warnings: %d", log.Count("warn"))
	}
}

func TestParseZoomTriplet(t *testing.T) {
	x, y := ParseZoomTriplet("12.5, NaN, 40")
	if x != 12.5 || y != 40 {
		t.Errorf("got (%v,%v)", x, y)
	}
}

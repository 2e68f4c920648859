package crop

import (
	"reflect"
	"testing"

	"github.com/lvillar/pdftrim/document"
)

func TestParseDisplayStyle(t *testing.T) {
	s := parseDisplayStyle("font: Helvetica,sans-serif 12.5pt; text-align:center; color:#FF0080")
	if s.Font != "Helvetica" || s.Size != 12.5 || s.Align != 1 {
		t.Errorf("unexpected style %+v", s)
	}
	if !reflect.DeepEqual(s.Color, []float64{1, 0, 128.0 / 255}) {
		t.Errorf("unexpected color %v", s.Color)
	}
	if !s.complete() {
		t.Error("style should be complete")
	}
}

func TestParseDisplayStyleIgnoresBackgroundColor(t *testing.T) {
	s := parseDisplayStyle("font: Arial 10pt; background-color:#00FF00")
	if s.Color != nil {
		t.Errorf("background colour leaked into text colour: %v", s.Color)
	}
	if s.Font != "Arial" {
		t.Errorf("font = %q", s.Font)
	}
}

func TestParseDefaultAppearance(t *testing.T) {
	s := parseDefaultAppearance("0.9725 0.3922 0.3922 rg /Helv 12 Tf")
	if s.Font != "Helv" || s.Size != 12 {
		t.Errorf("unexpected font %+v", s)
	}
	if !reflect.DeepEqual(s.Color, []float64{0.9725, 0.3922, 0.3922}) {
		t.Errorf("unexpected color %v", s.Color)
	}
}

func TestFreeTextRichTextWins(t *testing.T) {
	rc := "<body><p>Hi</p></body>"
	rec := document.AnnotationRecord{
		Kind:         document.KindFreeText,
		RichText:     &rc,
		DefaultStyle: "font: Helvetica 12pt; text-align:left; color:#000000",
		Common: document.Common{
			Colors: document.Colors{Stroke: []float64{1, 0, 0}},
			Info:   document.Info{Content: "plain"},
		},
	}
	body := freeTextBody(rec, 1)
	if !body.RichText || body.Text != rc {
		t.Errorf("rich text should win, got %+v", body)
	}
	if !reflect.DeepEqual(body.BorderColor, []float64{1, 0, 0}) {
		t.Errorf("border colour should come from stroke, got %v", body.BorderColor)
	}
}

func TestFreeTextCompleteDisplayStyle(t *testing.T) {
	q := 2
	rec := document.AnnotationRecord{
		Kind:              document.KindFreeText,
		DefaultStyle:      "font: Courier 9pt; text-align:center; color:#000000",
		DefaultAppearance: "/Helv 20 Tf 1 0 0 rg",
		Quadding:          &q,
		Common:            document.Common{Info: document.Info{Content: "note"}},
	}
	body := freeTextBody(rec, 1)
	want := document.TextStyle{Font: "Courier", Size: 9, Color: []float64{0, 0, 0}, Align: 1}
	if !reflect.DeepEqual(body.Style, want) || body.Text != "note" {
		t.Errorf("got %+v, want %+v", body.Style, want)
	}
}

func TestFreeTextMergesAppearanceAndDisplayStyle(t *testing.T) {
	rec := document.AnnotationRecord{
		Kind:              document.KindFreeText,
		DefaultStyle:      "text-align:right; color:#FFFFFF",
		DefaultAppearance: "/Helv 14 Tf",
	}
	body := freeTextBody(rec, 1)
	want := document.TextStyle{Font: "Helv", Size: 14, Color: []float64{1, 1, 1}, Align: 2}
	if !reflect.DeepEqual(body.Style, want) {
		t.Errorf("got %+v, want %+v", body.Style, want)
	}
}

func TestFreeTextFallbacks(t *testing.T) {
	body := freeTextBody(document.AnnotationRecord{Kind: document.KindFreeText}, 1)
	if body.Style.Size != defaultFontSize || body.Style.Align != defaultAlign {
		t.Errorf("got %+v", body.Style)
	}
	if body.LineEnd != defaultLineEnd {
		t.Errorf("line end = %q", body.LineEnd)
	}
}

func TestMergeStylesAlignFromSecond(t *testing.T) {
	first := unsetStyle()
	first.Size = 10
	second := unsetStyle()
	second.Align = 2
	if m := mergeStyles(first, second); m.Align != 2 || m.Size != 10 {
		t.Errorf("got %+v", m)
	}
}

func TestAlignFromQuadding(t *testing.T) {
	one, bad := 1, 7
	if alignFromQuadding(&one) != 1 || alignFromQuadding(&bad) != -1 || alignFromQuadding(nil) != -1 {
		t.Error("unexpected quadding mapping")
	}
}

package document

import "github.com/lvillar/pdftrim"

// Kind identifies the annotation subtypes the pipeline knows how to rebuild.
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindFreeText
	KindFileAttachment
	KindInk
	KindLine
	KindSquare
	KindCircle
	KindRedact
	KindPolyLine
	KindPolygon
	KindUnderline
	KindStrikeOut
	KindSquiggly
	KindHighlight
	KindStamp
	KindCaret
)

var subtypes = map[Kind]string{
	KindText:           "Text",
	KindFreeText:       "FreeText",
	KindFileAttachment: "FileAttachment",
	KindInk:            "Ink",
	KindLine:           "Line",
	KindSquare:         "Square",
	KindCircle:         "Circle",
	KindRedact:         "Redact",
	KindPolyLine:       "PolyLine",
	KindPolygon:        "Polygon",
	KindUnderline:      "Underline",
	KindStrikeOut:      "StrikeOut",
	KindSquiggly:       "Squiggly",
	KindHighlight:      "Highlight",
	KindStamp:          "Stamp",
	KindCaret:          "Caret",
}

// KindOf maps a PDF /Subtype name to a Kind.
func KindOf(subtype string) Kind {
	for k, s := range subtypes {
		if s == subtype {
			return k
		}
	}
	return KindUnsupported
}

// Subtype returns the PDF /Subtype name of k.
func (k Kind) Subtype() string {
	return subtypes[k]
}

func (k Kind) String() string {
	if s, ok := subtypes[k]; ok {
		return s
	}
	return "Unsupported"
}

// HasRect reports whether the rectangle of a k annotation is set
// explicitly. Vertex-based kinds derive it from their geometry.
func (k Kind) HasRect() bool {
	switch k {
	case KindInk, KindLine, KindPolyLine, KindPolygon,
		KindUnderline, KindStrikeOut, KindSquiggly, KindHighlight:
		return false
	}
	return true
}

// Geometry returns the vertex shape used by k, and false when k carries
// no vertices.
func (k Kind) Geometry() (pdftrim.GeometryKind, bool) {
	switch k {
	case KindInk:
		return pdftrim.GeometryStrokes, true
	case KindLine, KindPolyLine, KindPolygon, KindFreeText:
		return pdftrim.GeometryPoints, true
	case KindUnderline, KindStrikeOut, KindSquiggly, KindHighlight, KindRedact:
		return pdftrim.GeometryQuads, true
	}
	return 0, false
}

// Info holds the descriptive entries of an annotation.
type Info struct {
	Title        string // /T
	Subject      string // /Subj
	Content      string // /Contents
	Icon         string // /Name
	CreationDate string // /CreationDate
	ModDate      string // /M
}

// Border describes the annotation border style.
type Border struct {
	Width  float64
	Dashes []float64
}

// Colors holds stroke (/C) and interior (/IC) colours. Each has 0, 1, 3
// or 4 components.
type Colors struct {
	Stroke []float64
	Fill   []float64
}

// Common holds the properties copied onto every rebuilt annotation.
type Common struct {
	Info      Info
	Border    *Border
	BlendMode string
	Colors    Colors
	Flags     int
	LineEnds  []string // /LE names, start then end
	Name      string   // /NM
	OC        int      // optional content object, 0 when absent
	Opacity   float64  // /CA, 1 when absent
	Open      bool
	Rotation  int
}

// FileSpec is an embedded file carried by a file attachment annotation.
type FileSpec struct {
	Name        string
	UName       string
	Description string
	Data        []byte
}

// AnnotationRecord is an annotation as read from the source.
type AnnotationRecord struct {
	Xref      int
	Kind      Kind
	Subtype   string
	Rect      pdftrim.Rect
	Geometry  *pdftrim.Geometry
	Common    Common
	InReplyTo int // source object of /IRT, 0 when absent
	Popup     *pdftrim.Rect

	// Free text and redaction styling sources.
	RichText          *string // /RC
	DefaultStyle      string  // /DS
	DefaultAppearance string  // /DA
	Quadding          *int    // /Q

	File       *FileSpec
	Appearance int // normal appearance stream object, 0 when absent
}

// TextStyle is the resolved font styling of a text-bearing annotation.
type TextStyle struct {
	Font  string
	Size  float64
	Color []float64
	Align int // 0 left, 1 centre, 2 right
}

// Annotation is an annotation to create on the output. Rect is nil for
// kinds whose rectangle is derived from their geometry.
type Annotation struct {
	Kind      Kind
	Rect      *pdftrim.Rect
	Body      Body
	Common    Common
	InReplyTo int // output id of the parent annotation, 0 when absent
	Popup     *pdftrim.Rect
}

// Body is the kind-specific payload of an Annotation.
type Body interface {
	annotationBody()
}

// TextBody is a sticky note anchored at a point.
type TextBody struct {
	At pdftrim.Point
}

// FreeTextBody is a text box.
type FreeTextBody struct {
	Text        string
	RichText    bool
	Style       TextStyle
	Fill        []float64
	BorderColor []float64
	BorderWidth float64
	Dashes      []float64
	Callout     []pdftrim.Point
	LineEnd     string
	Opacity     float64
	Rotate      int
}

// FileBody is a file attachment icon anchored at a point.
type FileBody struct {
	At   pdftrim.Point
	File FileSpec
}

// InkBody holds freehand strokes.
type InkBody struct {
	Strokes [][]pdftrim.Point
}

// LineBody is a straight line.
type LineBody struct {
	Start, End pdftrim.Point
}

// ShapeBody is a square or circle filling the annotation rectangle.
type ShapeBody struct{}

// RedactBody marks areas for redaction.
type RedactBody struct {
	Quads   []pdftrim.Quad
	Overlay string
	Style   TextStyle
	Fill    []float64
}

// PolyBody is an open or closed polyline.
type PolyBody struct {
	Vertices []pdftrim.Point
}

// MarkupBody is a text markup over quads.
type MarkupBody struct {
	Quads []pdftrim.Quad
}

// StampBody reuses the source appearance stream.
type StampBody struct {
	Appearance int
}

// CaretBody is a caret anchored at a point.
type CaretBody struct {
	At pdftrim.Point
}

func (TextBody) annotationBody()     {}
func (FreeTextBody) annotationBody() {}
func (FileBody) annotationBody()     {}
func (InkBody) annotationBody()      {}
func (LineBody) annotationBody()     {}
func (ShapeBody) annotationBody()    {}
func (RedactBody) annotationBody()   {}
func (PolyBody) annotationBody()     {}
func (MarkupBody) annotationBody()   {}
func (StampBody) annotationBody()    {}
func (CaretBody) annotationBody()    {}

package document

import "github.com/lvillar/pdftrim"

// LinkKind classifies link targets.
type LinkKind int

const (
	LinkNone LinkKind = iota
	LinkGoto
	LinkURI
	LinkLaunch
	LinkGotoR
	LinkNamed
)

func (k LinkKind) String() string {
	switch k {
	case LinkGoto:
		return "goto"
	case LinkURI:
		return "uri"
	case LinkLaunch:
		return "launch"
	case LinkGotoR:
		return "gotor"
	case LinkNamed:
		return "named"
	}
	return "none"
}

// LinkRecord is a link or bookmark target as read from the source.
// Named links may carry their destination in several partial forms; the
// cropper decides which one to trust.
type LinkRecord struct {
	Kind     LinkKind
	From     pdftrim.Rect
	Page     *int           // zero-based destination page
	PageText string         // one-based destination page as written, e.g. "12"
	To       *pdftrim.Point // destination point on the target page
	Zoom     string         // viewer triplet "left,top,zoom"; NaN marks unset
	Dest     string         // fit mode of the destination, e.g. "/Fit"
	View     string
	URI      string
	File     string
	Name     string // named destination
	Xref     int    // object holding the raw destination, 0 when unknown
}

// Link is a link to create on the output.
type Link struct {
	Kind LinkKind
	From pdftrim.Rect
	Page int
	To   pdftrim.Point
	URI  string
	File string
}

// OutlineEntry is one bookmark. Level starts at 1.
type OutlineEntry struct {
	Level int
	Title string
	Dest  LinkRecord
}

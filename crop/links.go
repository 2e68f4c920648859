package crop

import (
	"context"

	"github.com/lvillar/pdftrim"
	"github.com/lvillar/pdftrim/document"
)

// copyLinks re-creates the links of every page. Hot zones use the
// transformer of the link's own page; goto destinations use the
// transformer of the target page.
func (s *Scale) copyLinks(ctx context.Context, src document.Source, dst document.Sink, pages []pageMapping, res *resolver) error {
	log := s.logger()
	for i, pm := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		links, err := src.Links(i)
		if err != nil {
			return pdftrim.NewError("Links", i, err)
		}
		for _, l := range links {
			resolved, outcome := res.Resolve(l)
			if outcome == Invalid {
				log.Warn("cannot convert named link to goto, dropping",
					"page", i+1, "dest_page", l.PageText, "name", l.Name)
				continue
			}
			from := pm.tr.Rect(l.From)
			if from.IsEmpty() {
				continue
			}
			out, ok := s.remapLink(resolved, from, pages, i)
			if !ok {
				continue
			}
			if err := dst.InsertLink(pm.out, out); err != nil {
				log.Error("cannot insert link", err, "page", i+1)
			}
		}
	}
	return nil
}

func (s *Scale) remapLink(l document.LinkRecord, from pdftrim.Rect, pages []pageMapping, page int) (document.Link, bool) {
	out := document.Link{Kind: l.Kind, From: from, URI: l.URI, File: l.File}
	switch l.Kind {
	case document.LinkGoto:
		to, target, ok := remapDestination(l, pages)
		if !ok {
			s.logger().Warn("invalid goto destination, dropping link",
				"page", page+1, "dest_page", pageField(l.Page), "has_point", l.To != nil)
			return out, false
		}
		out.Page, out.To = target, to
	case document.LinkGotoR:
		if l.Page != nil {
			out.Page = *l.Page
		}
		if l.To != nil {
			out.To = *l.To
		}
	case document.LinkURI, document.LinkLaunch:
	default:
		return out, false
	}
	return out, true
}

// remapDestination maps a goto destination into output space. It needs
// both a valid page and a point.
func remapDestination(l document.LinkRecord, pages []pageMapping) (pdftrim.Point, int, bool) {
	if l.Page == nil || l.To == nil || *l.Page < 0 || *l.Page >= len(pages) {
		return pdftrim.Point{}, 0, false
	}
	pm := pages[*l.Page]
	return pm.tr.Point(*l.To), pm.out, true
}

func pageField(p *int) any {
	if p == nil {
		return "none"
	}
	return *p + 1
}

package crop

import (
	"context"

	"github.com/lvillar/pdftrim/document"
)

// copyOutline rewrites bookmark destinations into output space. Entries
// whose destination cannot be resolved keep it unchanged.
func (s *Scale) copyOutline(ctx context.Context, src document.Source, dst document.Sink, pages []pageMapping, res *resolver) error {
	entries, err := src.Outline()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out := make([]document.OutlineEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		resolved, outcome := res.Resolve(e.Dest)
		if outcome == Invalid {
			s.logger().Warn("cannot resolve bookmark destination, keeping it", "title", e.Title)
			continue
		}
		if resolved.Kind != document.LinkGoto {
			continue
		}
		to, target, ok := remapDestination(resolved, pages)
		if !ok {
			s.logger().Warn("bookmark destination has no point, keeping it", "title", e.Title)
			continue
		}
		resolved.Page, resolved.To = &target, &to
		out[i].Dest = resolved
	}
	return dst.SetOutline(out)
}

package engine

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/lvillar/pdftrim/document"
)

// SetOutline replaces the document outline. Entries are given depth
// first with levels starting at 1.
func (w *Writer) SetOutline(entries []document.OutlineEntry) error {
	cat, err := w.o.ctx.Catalog()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		delete(cat, "Outlines")
		return nil
	}

	root := types.Dict{"Type": types.Name("Outlines")}
	rootRef, err := w.newObject(root)
	if err != nil {
		return err
	}

	type node struct {
		d    types.Dict
		ref  types.IndirectRef
		last *types.IndirectRef
		n    int
	}
	stack := []*node{{d: root, ref: rootRef}}

	for _, e := range entries {
		level := max(e.Level, 1)
		for len(stack) > level {
			w.closeOutline(stack[len(stack)-1].d, stack[len(stack)-1].n)
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]

		d := types.Dict{
			"Title":  pdfText(e.Title),
			"Parent": parent.ref,
		}
		w.outlineTarget(d, e.Dest)
		ref, err := w.newObject(d)
		if err != nil {
			return err
		}
		if parent.last == nil {
			parent.d["First"] = ref
		} else {
			d["Prev"] = *parent.last
			prev := w.o.dict(*parent.last)
			prev["Next"] = ref
		}
		parent.d["Last"] = ref
		parent.last = &ref
		parent.n++

		// Deeper levels than one below the parent attach to this entry.
		stack = append(stack, &node{d: d, ref: ref})
	}
	for len(stack) > 1 {
		w.closeOutline(stack[len(stack)-1].d, stack[len(stack)-1].n)
		stack = stack[:len(stack)-1]
	}
	root["Count"] = types.Integer(stack[0].n)
	cat["Outlines"] = rootRef
	return nil
}

// closeOutline records the number of children of an item. Items are
// written closed.
func (w *Writer) closeOutline(d types.Dict, children int) {
	if children > 0 {
		d["Count"] = types.Integer(-children)
	}
}

// outlineTarget sets the destination of an outline item. Unresolved
// targets are written back in the form they were read.
func (w *Writer) outlineTarget(d types.Dict, l document.LinkRecord) {
	switch l.Kind {
	case document.LinkGoto:
		if l.Page == nil {
			return
		}
		if dest, err := w.xyz(*l.Page, l.To); err == nil {
			d["Dest"] = dest
		}
	case document.LinkNamed:
		if l.Name != "" {
			d["Dest"] = pdfText(l.Name)
		}
	case document.LinkURI:
		d["A"] = types.Dict{"S": types.Name("URI"), "URI": types.StringLiteral(escapeLiteral(l.URI))}
	case document.LinkLaunch:
		d["A"] = types.Dict{"S": types.Name("Launch"), "F": pdfText(l.File)}
	case document.LinkGotoR:
		a := types.Dict{"S": types.Name("GoToR"), "F": pdfText(l.File)}
		if l.Page != nil {
			dest := types.Array{types.Integer(*l.Page), types.Name("Fit")}
			if l.To != nil {
				dest = types.Array{types.Integer(*l.Page), types.Name("XYZ"), types.Float(l.To.X), types.Float(l.To.Y), nil}
			}
			a["D"] = dest
		}
		d["A"] = a
	}
}

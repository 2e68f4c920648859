// Package pdftest assembles small uncompressed PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Doc is a list of indirect objects. Object numbers start at 1.
type Doc struct {
	objs []string
}

// Reserve allocates an object number to be filled in later with Set.
func (d *Doc) Reserve() int {
	d.objs = append(d.objs, "null")
	return len(d.objs)
}

// Add appends obj and returns its object number.
func (d *Doc) Add(obj string) int {
	d.objs = append(d.objs, obj)
	return len(d.objs)
}

// Set replaces object n.
func (d *Doc) Set(n int, obj string) {
	d.objs[n-1] = obj
}

// Stream formats a stream object with an uncompressed body.
func Stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// Bytes serialises the document with root as the catalog.
func (d *Doc) Bytes(root int) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, len(d.objs))
	for i, obj := range d.objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(d.objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(d.objs)+1, root, xref)
	return b.Bytes()
}

// Page describes one page for Build.
type Page struct {
	Width, Height float64
	Content       string
	Annots        []string // annotation dictionaries, stored as indirect objects
	Extra         string   // additional page dictionary entries
}

// Built is a document produced by Build, with the object numbers tests
// need to cross-reference.
type Built struct {
	Doc     *Doc
	Catalog int
	Tree    int
	Pages   []int   // page object numbers
	Annots  [][]int // annotation object numbers per page
}

// Build lays out pages under a single page tree node with a shared
// Helvetica font as /F1 and a catalog. catalogExtra is appended to the
// catalog dictionary. Annotation strings may contain "{pN}" which is
// replaced by the reference of page N (one-based).
func Build(pages []Page, catalogExtra string) *Built {
	d := &Doc{}
	b := &Built{Doc: d}
	b.Catalog = d.Reserve()
	tree := d.Reserve()
	b.Tree = tree
	font := d.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for range pages {
		b.Pages = append(b.Pages, d.Reserve())
	}
	refs := func(s string) string {
		for i, n := range b.Pages {
			s = strings.ReplaceAll(s, fmt.Sprintf("{p%d}", i+1), fmt.Sprintf("%d 0 R", n))
		}
		return s
	}

	kids := make([]string, len(pages))
	for i, p := range pages {
		content := d.Add(Stream("", p.Content))
		var annots []string
		var nums []int
		for _, a := range p.Annots {
			n := d.Add(refs(a))
			nums = append(nums, n)
			annots = append(annots, fmt.Sprintf("%d 0 R", n))
		}
		b.Annots = append(b.Annots, nums)
		dict := fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %g %g] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R",
			tree, p.Width, p.Height, font, content)
		if len(annots) > 0 {
			dict += " /Annots [" + strings.Join(annots, " ") + "]"
		}
		if p.Extra != "" {
			dict += " " + refs(p.Extra)
		}
		d.Set(b.Pages[i], dict+" >>")
		kids[i] = fmt.Sprintf("%d 0 R", b.Pages[i])
	}
	d.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	b.SetCatalog(refs(catalogExtra))
	return b
}

// SetCatalog rewrites the catalog with extra entries, for objects added
// after Build.
func (b *Built) SetCatalog(extra string) {
	b.Doc.Set(b.Catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R %s >>", b.Tree, extra))
}

// Bytes serialises the built document.
func (b *Built) Bytes() []byte {
	return b.Doc.Bytes(b.Catalog)
}

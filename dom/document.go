package dom

import "github.com/arkcall/xmlmatch/sax"

// Document is the top-level container: an optional declaration and
// doctype plus whitespace/comments before the root (before_root), the
// single root Element, and whitespace/comments after it (after_root)
// (spec.md §4.3).
type Document struct {
	BeforeRoot *Fragment
	Root       *Element
	AfterRoot  *Fragment
	SourceFile string

	hasDeclaration bool
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{BeforeRoot: NewFragment(), AfterRoot: NewFragment()}
}

// AddChild implements spec.md §4.3's add_child dispatch table:
//
//   - Element      → becomes root if unset; else appended to root if the
//     root is completed; else rejected (ElementParse).
//   - Declaration  → rejected if the document already has one
//     (DeclarationParse); otherwise placed in before_root.
//   - Text         → only whitespace-only text is accepted outside the
//     root (before_root if root is unset, after_root otherwise);
//     non-whitespace text is rejected (NotWellFormed).
//   - Comment      → before_root before the root is set, after_root
//     after.
//   - Doctype      → before_root.
//   - CData        → rejected; CDATA sections are only meaningful
//     inside element content.
func (d *Document) AddChild(n Node) sax.Error {
	switch v := n.(type) {
	case *Element:
		if d.Root == nil {
			d.Root = v
			return sax.NoError
		}
		if !d.Root.Completed() {
			return sax.ElementParse
		}
		d.Root.AddChild(v)
		return sax.NoError
	case *Declaration:
		if d.hasDeclaration {
			return sax.DeclarationParse
		}
		d.hasDeclaration = true
		d.BeforeRoot.Add(v)
		return sax.NoError
	case *Text:
		if !v.IsBlank() {
			return sax.NotWellFormed
		}
		if d.Root == nil {
			d.BeforeRoot.Add(v)
		} else {
			d.AfterRoot.Add(v)
		}
		return sax.NoError
	case *Comment:
		if d.Root == nil {
			d.BeforeRoot.Add(v)
		} else {
			d.AfterRoot.Add(v)
		}
		return sax.NoError
	case *Doctype:
		d.BeforeRoot.Add(v)
		return sax.NoError
	default:
		return sax.NotWellFormed
	}
}

// Declaration returns the document's declaration node, if any.
func (d *Document) Declaration() *Declaration {
	for _, n := range d.BeforeRoot.Nodes() {
		if decl, ok := n.(*Declaration); ok {
			return decl
		}
	}
	return nil
}

// Clone returns a fully detached deep copy.
func (d *Document) Clone() *Document {
	out := &Document{
		BeforeRoot:     d.BeforeRoot.Clone(),
		AfterRoot:      d.AfterRoot.Clone(),
		SourceFile:     d.SourceFile,
		hasDeclaration: d.hasDeclaration,
	}
	if d.Root != nil {
		out.Root = d.Root.Clone().(*Element)
	}
	return out
}

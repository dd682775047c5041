// Package dom implements the in-memory XML tree spec.md §3/§4.3
// describes: a tagged union of Element/Text/CData/Comment/Declaration/
// Doctype nodes owned by a Fragment or Document, namespace-aware,
// mutable, and serialisable with escaping and auth-masking.
//
// Node hierarchy follows spec.md §9's explicit guidance: a small shared
// header (here, `base`) embedded by each concrete type, dispatched on a
// Kind tag rather than emulated virtual inheritance — grounded on the
// teacher's own xpath.Datum interface + per-kind-struct pattern.
package dom

// Kind tags the six node variants spec.md §3 names.
type Kind int

const (
	ElementKind Kind = iota
	TextKind
	CDataKind
	CommentKind
	DeclarationKind
	DoctypeKind
)

var kindNames = [...]string{
	ElementKind:     "Element",
	TextKind:        "Text",
	CDataKind:       "CData",
	CommentKind:     "Comment",
	DeclarationKind: "Declaration",
	DoctypeKind:     "Doctype",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Node is the common capability of every DOM tree member. Parent links
// are non-owning (spec.md §9, "Weak references to hosts"): a detached
// node's Parent returns nil, and any namespace bindings it needs after
// detaching were snapshotted into its own inheritedNS beforehand.
type Node interface {
	Kind() Kind
	Parent() *Element
	// Clone returns a deep, fully detached copy of this node.
	Clone() Node

	setParent(*Element)
}

type base struct {
	parent *Element
}

func (b *base) Parent() *Element    { return b.parent }
func (b *base) setParent(e *Element) { b.parent = e }

// Text is a plain character-data child.
type Text struct {
	base
	Value string
}

func NewText(value string) *Text { return &Text{Value: value} }

func (t *Text) Kind() Kind   { return TextKind }
func (t *Text) Clone() Node  { return &Text{Value: t.Value} }
func (t *Text) IsBlank() bool {
	for i := 0; i < len(t.Value); i++ {
		switch t.Value[i] {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return false
	}
	return true
}

// CData is a `<![CDATA[ ... ]]>` section.
type CData struct {
	base
	Value string
}

func NewCData(value string) *CData { return &CData{Value: value} }

func (c *CData) Kind() Kind  { return CDataKind }
func (c *CData) Clone() Node { return &CData{Value: c.Value} }

// Comment is a `<!-- ... -->` node.
type Comment struct {
	base
	Value string
}

func NewComment(value string) *Comment { return &Comment{Value: value} }

func (c *Comment) Kind() Kind  { return CommentKind }
func (c *Comment) Clone() Node { return &Comment{Value: c.Value} }

// Declaration is the `<?xml ... ?>` prolog. A Document holds at most one.
type Declaration struct {
	base
	Attrs *AttrMap
}

func NewDeclaration() *Declaration { return &Declaration{Attrs: NewAttrMap()} }

func (d *Declaration) Kind() Kind { return DeclarationKind }
func (d *Declaration) Clone() Node {
	return &Declaration{Attrs: d.Attrs.Clone()}
}

// Doctype holds a `<!DOCTYPE ...>` declaration verbatim; spec.md §4.2/§9:
// "captured as opaque text; not validated".
type Doctype struct {
	base
	Value string
}

func NewDoctype(value string) *Doctype { return &Doctype{Value: value} }

func (d *Doctype) Kind() Kind  { return DoctypeKind }
func (d *Doctype) Clone() Node { return &Doctype{Value: d.Value} }

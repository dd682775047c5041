package dom

import (
	"io"

	"github.com/arkcall/xmlmatch/internal/escape"
)

// SerializeOptions controls output formatting (spec.md §4.3
// "Serialisation").
type SerializeOptions struct {
	// Indent is repeated once per nesting depth and written before each
	// element's opening tag and before its closing tag, when non-empty.
	Indent string
	// LineIndent is written once per line, before Indent's
	// depth-multiplied copies; typically "" or "\n".
	LineIndent string
	// RawAttrValues suppresses entity-escaping of attribute values.
	RawAttrValues bool
	// CompletedOnly suppresses elements whose Completed() is false.
	CompletedOnly bool
	// AuthMask names tags and attributes whose values must be replaced
	// by "***" in output. Mandatory for any serialisation that may reach
	// a log: spec.md §4.3 "must not leak secrets".
	AuthMask map[string]bool
}

const maskedValue = "***"

func (o SerializeOptions) newline(w io.Writer, depth int) {
	if o.Indent == "" && o.LineIndent == "" {
		return
	}
	io.WriteString(w, o.LineIndent)
	for i := 0; i < depth; i++ {
		io.WriteString(w, o.Indent)
	}
}

// Serialize writes the document: declaration, before_root, root,
// after_root, in order.
func (d *Document) Serialize(w io.Writer, opts SerializeOptions) {
	for _, n := range d.BeforeRoot.Nodes() {
		serializeNode(w, n, 0, opts)
	}
	if d.Root != nil {
		serializeNode(w, d.Root, 0, opts)
	}
	for _, n := range d.AfterRoot.Nodes() {
		serializeNode(w, n, 0, opts)
	}
}

// Serialize writes every node in the fragment at the given depth.
func (f *Fragment) Serialize(w io.Writer, depth int, opts SerializeOptions) {
	for _, n := range f.nodes {
		serializeNode(w, n, depth, opts)
	}
}

func serializeNode(w io.Writer, n Node, depth int, opts SerializeOptions) {
	switch v := n.(type) {
	case *Element:
		v.serialize(w, depth, opts)
	case *Text:
		opts.newline(w, depth)
		w.Write(escape.Escape(nil, []byte(v.Value)))
	case *CData:
		opts.newline(w, depth)
		io.WriteString(w, "<![CDATA[")
		io.WriteString(w, v.Value)
		io.WriteString(w, "]]>")
	case *Comment:
		opts.newline(w, depth)
		io.WriteString(w, "<!--")
		io.WriteString(w, v.Value)
		io.WriteString(w, "-->")
	case *Declaration:
		opts.newline(w, depth)
		io.WriteString(w, "<?xml")
		v.Attrs.ForEach(func(name, value string) bool {
			writeAttr(w, name, value, opts, nil)
			return true
		})
		io.WriteString(w, "?>")
	case *Doctype:
		opts.newline(w, depth)
		io.WriteString(w, "<!DOCTYPE ")
		io.WriteString(w, v.Value)
		io.WriteString(w, ">")
	}
}

func (e *Element) serialize(w io.Writer, depth int, opts SerializeOptions) {
	if opts.CompletedOnly && !e.completed && !e.empty {
		return
	}
	opts.newline(w, depth)
	io.WriteString(w, "<")
	io.WriteString(w, e.tag)

	maskTag := opts.AuthMask != nil && opts.AuthMask[e.tag]
	e.attrs.ForEach(func(name, value string) bool {
		if maskTag || (opts.AuthMask != nil && opts.AuthMask[name]) {
			value = maskedValue
		}
		writeAttr(w, name, value, opts, nil)
		return true
	})

	if len(e.children) == 0 {
		if e.empty || e.completed {
			io.WriteString(w, "/>")
		} else {
			io.WriteString(w, ">")
		}
		return
	}
	io.WriteString(w, ">")
	for _, c := range e.children {
		if maskTag {
			if t, ok := c.(*Text); ok {
				opts.newline(w, depth+1)
				io.WriteString(w, maskedValue)
				_ = t
				continue
			}
		}
		serializeNode(w, c, depth+1, opts)
	}
	opts.newline(w, depth)
	io.WriteString(w, "</")
	io.WriteString(w, e.tag)
	io.WriteString(w, ">")
}

func writeAttr(w io.Writer, name, value string, opts SerializeOptions, _ any) {
	io.WriteString(w, " ")
	io.WriteString(w, name)
	io.WriteString(w, `="`)
	if opts.RawAttrValues {
		io.WriteString(w, value)
	} else {
		w.Write(escape.Escape(nil, []byte(value)))
	}
	io.WriteString(w, `"`)
}

package dom

import (
	"strings"

	"github.com/arkcall/xmlmatch/internal/charclass"
	"github.com/arkcall/xmlmatch/param"
	"github.com/arkcall/xmlmatch/sax"
)

// Element is the owning tree node for attributes and children. Parent
// pointers are non-owning (base.parent); dropping an Element drops its
// children recursively simply because nothing else references them.
type Element struct {
	base
	tag         string
	attrs       *AttrMap
	children    []Node
	inheritedNS map[string]string // snapshot captured when this element is detached
	completed   bool              // false: start tag seen, end tag not yet seen
	empty       bool              // true: self-closing "<tag/>"
}

// NewElement creates a detached element. tag must be a well-formed XML
// Name (spec.md §3 invariant 1).
func NewElement(tag string) (*Element, sax.Error) {
	if !charclass.ValidName(tag) {
		return nil, sax.InvalidElementName
	}
	return &Element{tag: tag, attrs: NewAttrMap()}, sax.NoError
}

func (e *Element) Kind() Kind { return ElementKind }

// Tag returns the element's full tag as written (may include a prefix).
func (e *Element) Tag() string { return e.tag }

// TagParts splits the tag into its namespace prefix (empty if none) and
// local name, per spec.md §4.3 "Tag access returns prefix and local name
// separately".
func (e *Element) TagParts() (prefix, local string) {
	if i := strings.IndexByte(e.tag, ':'); i >= 0 {
		return e.tag[:i], e.tag[i+1:]
	}
	return "", e.tag
}

// Attrs returns the element's attribute map for direct manipulation.
func (e *Element) Attrs() *AttrMap { return e.attrs }

// Completed reports whether the matching end tag has been seen.
func (e *Element) Completed() bool { return e.completed }

// SetCompleted marks the element's end tag as seen (or unseen); used by
// the DOM parser build and by callers constructing trees programmatically.
func (e *Element) SetCompleted(c bool) { e.completed = c }

// Empty reports whether the element was written as a self-closing tag.
func (e *Element) Empty() bool { return e.empty }

// SetEmpty marks the element as self-closing.
func (e *Element) SetEmpty(v bool) { e.empty = v }

// Children returns the live child slice; callers must not retain it
// across mutation.
func (e *Element) Children() []Node { return e.children }

// AddChild appends n as the last child of e, setting n's parent. Unlike
// Document.AddChild, Element.AddChild has no variant-specific rejection
// rules: any node kind may be a child of an element (spec.md §3 models
// children as "ordered list<node>" with no further constraint at this
// level).
func (e *Element) AddChild(n Node) {
	if el, ok := n.(*Element); ok {
		el.setParent(e)
	} else {
		n.setParent(e)
	}
	e.children = append(e.children, n)
}

// RemoveChild detaches n from e, if n is currently a child. Before
// clearing n's parent link, any Element being removed has its inherited
// namespace bindings snapshotted so that later namespace lookups remain
// stable (spec.md §3 invariant 6, §9 "Weak references to hosts").
func (e *Element) RemoveChild(n Node) bool {
	for i, c := range e.children {
		if c == n {
			if el, ok := n.(*Element); ok {
				el.snapshotNamespaces()
			}
			n.setParent(nil)
			e.children = append(e.children[:i], e.children[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes all children, detaching each.
func (e *Element) Clear() {
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			el.snapshotNamespaces()
		}
		c.setParent(nil)
	}
	e.children = nil
}

func (e *Element) snapshotNamespaces() {
	snap := make(map[string]string)
	for p := e.parent; p != nil; p = p.parent {
		p.attrs.ForEach(func(name, value string) bool {
			if prefix, ok := nsAttrPrefix(name); ok {
				if _, have := snap[prefix]; !have {
					snap[prefix] = value
				}
			}
			return true
		})
	}
	for k, v := range e.inheritedNS {
		if _, have := snap[k]; !have {
			snap[k] = v
		}
	}
	e.inheritedNS = snap
}

// Clone returns a deep, fully detached copy of e and its subtree.
func (e *Element) Clone() Node {
	out := &Element{tag: e.tag, attrs: e.attrs.Clone(), completed: e.completed, empty: e.empty}
	for k, v := range e.inheritedNS {
		if out.inheritedNS == nil {
			out.inheritedNS = make(map[string]string)
		}
		out.inheritedNS[k] = v
	}
	for _, c := range e.children {
		cc := c.Clone()
		out.AddChild(cc)
	}
	return out
}

// FindChild returns the first Element child whose tag matches, starting
// the search at from (use 0 to search from the start). tag == "*" is a
// wildcard. If matchPrefix is false, a "prefix:local" child tag is
// compared only by its local part. Returns (nil, -1) if no match.
func (e *Element) FindChild(from int, tag string, matchPrefix bool) (*Element, int) {
	for i := from; i < len(e.children); i++ {
		el, ok := e.children[i].(*Element)
		if !ok {
			continue
		}
		if tagMatches(el.tag, tag, matchPrefix) {
			return el, i
		}
	}
	return nil, -1
}

// FindChildNS is FindChild additionally filtered by the child's resolved
// namespace URI (resolved via LookupNamespace on the child's own prefix).
func (e *Element) FindChildNS(from int, tag, ns string, matchPrefix bool) (*Element, int) {
	for i := from; i < len(e.children); i++ {
		el, ok := e.children[i].(*Element)
		if !ok {
			continue
		}
		if !tagMatches(el.tag, tag, matchPrefix) {
			continue
		}
		prefix, _ := el.TagParts()
		uri, _ := el.LookupNamespace(prefix)
		if uri == ns {
			return el, i
		}
	}
	return nil, -1
}

func tagMatches(got, want string, matchPrefix bool) bool {
	if want == "*" || want == "" {
		return true
	}
	if matchPrefix {
		return got == want
	}
	_, local := splitTag(got)
	_, wantLocal := splitTag(want)
	return local == wantLocal
}

func splitTag(tag string) (prefix, local string) {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[:i], tag[i+1:]
	}
	return "", tag
}

// Text returns the value of the first Text child, or "" if there is none
// (spec.md §4.3 "text() returns reference to the text value of the first
// text child or empty").
func (e *Element) Text() string {
	for _, c := range e.children {
		if t, ok := c.(*Text); ok {
			return t.Value
		}
	}
	return ""
}

// SetText replaces the first Text child's value, creates one if none
// exists, or removes the first Text child if value is nil.
func (e *Element) SetText(value *string) {
	for i, c := range e.children {
		if t, ok := c.(*Text); ok {
			if value == nil {
				t.setParent(nil)
				e.children = append(e.children[:i], e.children[i+1:]...)
				return
			}
			t.Value = *value
			return
		}
	}
	if value != nil {
		e.AddChild(NewText(*value))
	}
}

// AddText appends a new Text child, regardless of any existing text.
func (e *Element) AddText(value string) {
	e.AddChild(NewText(value))
}

// GetParam returns attribute name's value, or sax.ErrParamMissing if
// absent.
func (e *Element) GetParam(name string) (string, sax.Error) {
	v, ok := e.attrs.Get(name)
	if !ok {
		return "", sax.ErrParamMissing
	}
	if v == "" {
		return "", sax.ErrParamEmpty
	}
	return v, sax.NoError
}

// ExportParams copies e's attributes into out, each key optionally
// prefixed (spec.md §4.3 "Parameter import/export copies element
// attributes to/from a flat ordered name→value map with an optional
// prefix").
func (e *Element) ExportParams(out *param.Map, prefix string) {
	e.attrs.ForEach(func(name, value string) bool {
		out.Add(prefix+name, value)
		return true
	})
}

// ImportParams sets attributes on e from every entry in in whose name
// begins with prefix, stripping the prefix.
func (e *Element) ImportParams(in *param.Map, prefix string) {
	in.ForEach(func(name, value string) bool {
		if strings.HasPrefix(name, prefix) {
			e.attrs.Set(name[len(prefix):], value)
		}
		return true
	})
}

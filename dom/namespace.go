package dom

import "strings"

// nsAttrPrefix reports whether attribute name declares a namespace
// binding ("xmlns" or "xmlns:prefix"), returning the bound prefix ("" for
// the default namespace).
func nsAttrPrefix(name string) (prefix string, ok bool) {
	if name == "xmlns" {
		return "", true
	}
	if strings.HasPrefix(name, "xmlns:") && len(name) > len("xmlns:") {
		return name[len("xmlns:"):], true
	}
	return "", false
}

// LookupNamespace resolves prefix (use "" for the default namespace) to
// its bound URI, per spec.md §4.3: search e's own xmlns attributes, then
// walk ancestors, then fall back to any namespace bindings e inherited
// before being detached from its original tree (spec.md §3 invariant 6).
func (e *Element) LookupNamespace(prefix string) (string, bool) {
	wantAttr := "xmlns"
	if prefix != "" {
		wantAttr = "xmlns:" + prefix
	}
	for el := e; el != nil; el = el.parent {
		if v, ok := el.attrs.Get(wantAttr); ok {
			return v, true
		}
	}
	if v, ok := e.inheritedNS[prefix]; ok {
		return v, true
	}
	return "", false
}

// Namespace resolves e's own tag prefix to its bound URI.
func (e *Element) Namespace() (string, bool) {
	prefix, _ := e.TagParts()
	return e.LookupNamespace(prefix)
}

// DeclareNamespace sets an xmlns (or xmlns:prefix) attribute directly on
// e, binding prefix to uri for e and its descendants.
func (e *Element) DeclareNamespace(prefix, uri string) {
	name := "xmlns"
	if prefix != "" {
		name = "xmlns:" + prefix
	}
	e.attrs.Set(name, uri)
}

package dom

import (
	"strings"

	"github.com/arkcall/xmlmatch/param"
)

// ReplaceParams scans e's attribute values, text, and CDATA children
// (recursively, across e's whole subtree) for "${name}" and
// "${name$default}" occurrences, replacing each with the value of name
// looked up in params (falling back to default when name is absent),
// per spec.md §4.3 "Parameter substitution".
func (e *Element) ReplaceParams(params *param.Map) {
	e.attrs.list = replaceAttrList(e.attrs.list, params)
	for _, c := range e.children {
		switch v := c.(type) {
		case *Text:
			v.Value = substitute(v.Value, params)
		case *CData:
			v.Value = substitute(v.Value, params)
		case *Element:
			v.ReplaceParams(params)
		}
	}
}

func replaceAttrList(list []Attr, params *param.Map) []Attr {
	for i := range list {
		list[i].Value = substitute(list[i].Value, params)
	}
	return list
}

// substitute replaces every "${name}" or "${name$default}" occurrence in
// s. An unresolved reference with no default expands to "".
func substitute(s string, params *param.Map) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var out strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			out.WriteString(s)
			break
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			out.WriteString(s)
			break
		}
		end += start
		out.WriteString(s[:start])

		ref := s[start+2 : end]
		name, def, hasDef := ref, "", false
		if i := strings.IndexByte(ref, '$'); i >= 0 {
			name, def, hasDef = ref[:i], ref[i+1:], true
		}
		if v, ok := params.Get(name); ok {
			out.WriteString(v)
		} else if hasDef {
			out.WriteString(def)
		}
		s = s[end+1:]
	}
	return out.String()
}

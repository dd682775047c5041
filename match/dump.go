package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arkcall/xmlmatch/dom"
	"github.com/arkcall/xmlmatch/param"
)

// DumpOptions controls the three dump forms of spec.md §4.5.
type DumpOptions struct {
	// StringEnclose / RegexEnclose bracket a compact-text leaf's value,
	// e.g. "'" or "/".
	StringEnclose string
	RegexEnclose  string
	IgnoreEmpty   bool // omit items whose value is empty
	IgnoreName    bool // omit the "name: " prefix
}

func (o DumpOptions) enclose(s, bracket string) string {
	if bracket == "" {
		return s
	}
	return bracket + s + bracket
}

func flagLetters(negated, caseInsensitive, basic bool) string {
	var b strings.Builder
	if negated {
		b.WriteByte('!')
	}
	if caseInsensitive {
		b.WriteByte('i')
	}
	if basic {
		b.WriteByte('b')
	}
	return b.String()
}

// DumpText renders m as the compact text form: configurable enclose
// characters, "name: value" separator, and a prop-flag letter run.
func DumpText(m Matcher, opts DumpOptions) string {
	var body, flags string
	switch v := m.(type) {
	case *StringItem:
		if opts.IgnoreEmpty && v.Value == "" {
			return ""
		}
		body = opts.enclose(v.Value, opts.StringEnclose)
		flags = flagLetters(v.negated, v.CaseInsensitive, false)
	case *RegexpItem:
		if opts.IgnoreEmpty && v.Pattern == "" {
			return ""
		}
		body = opts.enclose(v.Pattern, opts.RegexEnclose)
		flags = flagLetters(v.negated, v.CaseInsensitive, v.Basic)
	case *XPathItem:
		body = v.Path.String()
		if v.Inner != nil {
			body += " -> " + DumpText(v.Inner, opts)
		}
		flags = flagLetters(v.negated, false, false)
	case *RandomItem:
		body = fmt.Sprintf("%d/%d", v.Val, v.Max)
		flags = flagLetters(v.negated, false, false)
	case *ListItem:
		parts := make([]string, 0, len(v.Items))
		for _, c := range v.Items {
			if t := DumpText(c, opts); t != "" {
				parts = append(parts, t)
			}
		}
		sep := " & "
		if !v.MatchAll {
			sep = " | "
		}
		body = "(" + strings.Join(parts, sep) + ")"
		flags = flagLetters(v.negated, false, false)
	case *CustomItem:
		body = v.Payload
		flags = flagLetters(v.negated, false, false)
	}

	var b strings.Builder
	if !opts.IgnoreName {
		if name := itemName(m); name != "" {
			b.WriteString(name)
			b.WriteString(": ")
		}
	}
	b.WriteString(body)
	if flags != "" {
		b.WriteString(" [")
		b.WriteString(flags)
		b.WriteString("]")
	}
	return b.String()
}

func itemName(m Matcher) string {
	switch v := m.(type) {
	case *StringItem:
		return v.Name
	case *RegexpItem:
		return v.Name
	case *XPathItem:
		return v.Name
	case *RandomItem:
		return v.Name
	case *CustomItem:
		return v.Name
	}
	return ""
}

func itemFlagsString(m Matcher) string {
	var words []string
	if m.Negated() {
		words = append(words, "negated")
	}
	switch v := m.(type) {
	case *StringItem:
		if v.CaseInsensitive {
			words = append(words, "caseinsensitive")
		}
	case *RegexpItem:
		if v.CaseInsensitive {
			words = append(words, "caseinsensitive")
		}
		if v.Basic {
			words = append(words, "basic")
		}
	case *ListItem:
		if !v.MatchAll {
			words = append(words, "any")
		}
	}
	switch m.Missing() {
	case Match:
		words = append(words, "missing_match")
	case NoMatch:
		words = append(words, "missing_no_match")
	}
	return strings.Join(words, " ")
}

// DumpXML renders m as a dom.Element tree whose tag names the matcher
// type (spec.md §4.5/§6).
func DumpXML(m Matcher) *dom.Element {
	var el *dom.Element
	switch v := m.(type) {
	case *StringItem:
		el, _ = dom.NewElement("string")
		el.AddText(v.Value)
	case *RegexpItem:
		el, _ = dom.NewElement("regexp")
		el.AddText(v.Pattern)
	case *XPathItem:
		el, _ = dom.NewElement("xpath")
		el.AddText(v.Path.String())
		if v.Inner != nil {
			matchWrap, _ := dom.NewElement("match")
			matchWrap.AddChild(DumpXML(v.Inner))
			el.AddChild(matchWrap)
		}
	case *RandomItem:
		el, _ = dom.NewElement("random")
		el.AddText(fmt.Sprintf("%d/%d", v.Val, v.Max))
	case *ListItem:
		el, _ = dom.NewElement("list")
		for _, c := range v.Items {
			el.AddChild(DumpXML(c))
		}
	case *CustomItem:
		el, _ = dom.NewElement(v.TypeTag)
		el.AddText(v.Payload)
	default:
		el, _ = dom.NewElement("unknown")
	}
	if name := itemName(m); name != "" {
		el.Attrs().Set("name", name)
	}
	if flags := itemFlagsString(m); flags != "" {
		el.Attrs().Set("flags", flags)
	}
	if m.ID() != "" {
		el.Attrs().Set("id", m.ID())
	}
	el.SetCompleted(true)
	return el
}

// DumpParams renders m as a flat parameter list under prefix, in the
// form LoadFromParams reads. An XPath item's inner matcher is not
// written, and a list nested inside a list is written only as a
// "list"-typed entry without its children, which LoadFromParams rejects.
func DumpParams(m Matcher, out *param.Map, prefix string) {
	switch v := m.(type) {
	case *ListItem:
		if flags := itemFlagsString(v); flags != "" {
			out.Set(prefix+":listflags", flags)
		}
		for i, c := range v.Items {
			childPrefix := prefix + ":item:" + strconv.Itoa(i)
			out.Set(childPrefix, typeName(c))
			DumpParamFields(c, out, childPrefix)
		}
	default:
		name := itemName(m)
		out.Set(prefix+":"+name, valueOf(m))
		if typ := typeName(m); typ != "string" {
			out.Set(prefix+":type:"+name, typ)
		}
		if flags := itemFlagsString(m); flags != "" {
			out.Set(prefix+":flags:"+name, flags)
		}
		if m.ID() != "" {
			out.Set(prefix+":id:"+name, m.ID())
		}
	}
}

// DumpParamFields writes a nested item's own fields under childPrefix
// (the "P:item:<id>:field" form).
func DumpParamFields(m Matcher, out *param.Map, childPrefix string) {
	out.Set(childPrefix+":name", itemName(m))
	out.Set(childPrefix+":value", valueOf(m))
	if flags := itemFlagsString(m); flags != "" {
		out.Set(childPrefix+":flags", flags)
	}
	if m.ID() != "" {
		out.Set(childPrefix+":id", m.ID())
	}
}

// typeName is the type string the loader dispatches on: a custom item's
// own TypeTag, otherwise its Kind name.
func typeName(m Matcher) string {
	if c, ok := m.(*CustomItem); ok {
		return c.TypeTag
	}
	return m.Kind().String()
}

func valueOf(m Matcher) string {
	switch v := m.(type) {
	case *StringItem:
		return v.Value
	case *RegexpItem:
		return v.Pattern
	case *XPathItem:
		return v.Path.String()
	case *RandomItem:
		return fmt.Sprintf("%d/%d", v.Val, v.Max)
	case *CustomItem:
		return v.Payload
	}
	return ""
}

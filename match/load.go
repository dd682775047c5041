package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arkcall/xmlmatch/dom"
	"github.com/arkcall/xmlmatch/param"
	"github.com/arkcall/xmlmatch/sax"
	"github.com/arkcall/xmlmatch/xpath"
	"github.com/sirupsen/logrus"
)

// LoadFlags is the loader's bitmask configuration (spec.md §4.5).
type LoadFlags uint

const (
	IgnoreFailed LoadFlags = 1 << iota
	AcceptInvalidLeaves
	PreserveIDs
	ValidateRegex
	ValidateXPath
	ValidateRandom
	SkipOptimize
	RequireNames
	DetectCaretRegex           // value starting with '^' is treated as a regexp
	DetectTrailingCaretNegated // a regex also ending in '^' is a negated marker
	DefaultListOr
	PreferBasicRegex
)

// ItemFlags are the per-item booleans carried in an item's "flags"
// field/attribute, space-separated on the wire (spec.md §4.5/§6:
// "negated caseinsensitive basic any missing_match missing_no_match").
type ItemFlags uint

const (
	FlagNegated ItemFlags = 1 << iota
	FlagCaseInsensitive
	FlagBasic
	FlagAny // list-is-any: match_all = false
	FlagMissingMatch
	FlagMissingNoMatch
)

func parseItemFlags(s string) ItemFlags {
	var f ItemFlags
	for _, word := range strings.Fields(s) {
		switch word {
		case "negated":
			f |= FlagNegated
		case "caseinsensitive":
			f |= FlagCaseInsensitive
		case "basic":
			f |= FlagBasic
		case "any":
			f |= FlagAny
		case "missing_match":
			f |= FlagMissingMatch
		case "missing_no_match":
			f |= FlagMissingNoMatch
		}
	}
	return f
}

func missingFromFlags(f ItemFlags) MissingPolicy {
	switch {
	case f&FlagMissingMatch != 0:
		return Match
	case f&FlagMissingNoMatch != 0:
		return NoMatch
	default:
		return RunMatch
	}
}

// LoadOptions parameterises a loader pass.
type LoadOptions struct {
	Flags    LoadFlags
	Log      logrus.FieldLogger
	LogLevel logrus.Level // level for skipped-item warnings; defaults to Warn
	Allow    map[string]bool
	Deny     map[string]bool
}

func (o LoadOptions) logger() logrus.FieldLogger {
	if o.Log != nil {
		return o.Log
	}
	return logrus.StandardLogger()
}

func (o LoadOptions) logLevel() logrus.Level {
	if o.LogLevel == 0 {
		return logrus.WarnLevel
	}
	return o.LogLevel
}

func (o LoadOptions) logSkip(detail string) {
	o.logger().Log(o.logLevel(), "match: skipped item during load: ", detail)
}

func (o LoadOptions) typeAllowed(typ string) bool {
	if o.Deny != nil && o.Deny[typ] {
		return false
	}
	if o.Allow != nil {
		return o.Allow[typ]
	}
	return true
}

// LoadFromParams implements spec.md §4.5/§6's flat parameter-map form:
// every key "{prefix}:{suffix}" (excluding the reserved suffixes below)
// describes one implicit-type leaf item named suffix; "{prefix}:type:S",
// "{prefix}:flags:S", "{prefix}:id:S" refine it; "{prefix}:item:<id>"
// (optionally ":field") describes an explicitly nested item;
// "{prefix}:xml" embeds an XML-described item; "{prefix}:listflags"
// configures the implicit wrapping List.
func LoadFromParams(opts LoadOptions, params *param.Map, prefix string) (Matcher, error) {
	type fieldSet struct {
		value    string
		hasValue bool
		typ      string
		flags    string
		id       string
	}
	fields := map[string]*fieldSet{}
	var order []string
	getField := func(s string) *fieldSet {
		f, ok := fields[s]
		if !ok {
			f = &fieldSet{}
			fields[s] = f
			order = append(order, s)
		}
		return f
	}

	nested := map[string]map[string]string{}
	var nestedOrder []string

	var inlineXML string
	var hasInlineXML bool
	var listFlagsStr string

	prefixColon := prefix + ":"
	params.ForEach(func(name, value string) bool {
		if !strings.HasPrefix(name, prefixColon) {
			return true
		}
		rest := name[len(prefixColon):]
		switch {
		case rest == "xml":
			inlineXML, hasInlineXML = value, true
		case rest == "listflags":
			listFlagsStr = value
		case strings.HasPrefix(rest, "item:"):
			rem := rest[len("item:"):]
			parts := strings.SplitN(rem, ":", 2)
			id := parts[0]
			m, ok := nested[id]
			if !ok {
				m = map[string]string{}
				nested[id] = m
				nestedOrder = append(nestedOrder, id)
			}
			if len(parts) == 1 {
				m["type"] = value
			} else {
				m[parts[1]] = value
			}
		case strings.HasPrefix(rest, "type:"):
			getField(rest[len("type:"):]).typ = value
		case strings.HasPrefix(rest, "flags:"):
			getField(rest[len("flags:"):]).flags = value
		case strings.HasPrefix(rest, "id:"):
			getField(rest[len("id:"):]).id = value
		default:
			f := getField(rest)
			f.value, f.hasValue = value, true
		}
		return true
	})

	var items []Matcher

	if hasInlineXML {
		m, err := LoadFromXMLString(opts, inlineXML)
		if err != nil {
			if opts.Flags&IgnoreFailed == 0 {
				return nil, err
			}
			opts.logSkip(fmt.Sprintf("inline xml: %v", err))
		} else {
			items = append(items, m)
		}
	}

	for _, s := range order {
		f := fields[s]
		if !f.hasValue {
			continue
		}
		m, err := buildLeaf(opts, "", s, f.value, f.typ, f.flags, f.id)
		if err != nil {
			if opts.Flags&IgnoreFailed == 0 {
				return nil, err
			}
			opts.logSkip(fmt.Sprintf("item %s: %v", s, err))
			continue
		}
		items = append(items, m)
	}

	for _, id := range nestedOrder {
		f := nested[id]
		m, err := buildLeaf(opts, id, f["name"], f["value"], f["type"], f["flags"], f["id"])
		if err != nil {
			if opts.Flags&IgnoreFailed == 0 {
				return nil, err
			}
			opts.logSkip(fmt.Sprintf("nested item %s: %v", id, err))
			continue
		}
		items = append(items, m)
	}

	listFlags := parseItemFlags(listFlagsStr)
	matchAll := listFlags&FlagAny == 0
	if opts.Flags&DefaultListOr != 0 && listFlagsStr == "" {
		matchAll = false
	}
	list := NewListItem("", matchAll, items, listFlags&FlagNegated != 0, missingFromFlags(listFlags))
	if opts.Flags&SkipOptimize != 0 {
		return list, nil
	}
	return Optimize(list), nil
}

// buildLeaf constructs one leaf (or custom) item. id is the item's own
// id (for nested items, its child-id doubles as id unless overridden by
// an explicit "id" field); name is the parameter name the item reads.
func buildLeaf(opts LoadOptions, id, name, value, typ, flagsStr, overrideID string) (Matcher, error) {
	if overrideID != "" {
		id = overrideID
	}
	if opts.Flags&RequireNames != 0 && name == "" {
		return nil, fmt.Errorf("match: item requires a name")
	}
	flags := parseItemFlags(flagsStr)
	negated := flags&FlagNegated != 0
	missing := missingFromFlags(flags)
	caseInsensitive := flags&FlagCaseInsensitive != 0
	basic := flags&FlagBasic != 0 || opts.Flags&PreferBasicRegex != 0

	effectiveType := typ
	if effectiveType == "" {
		effectiveType = "string"
		if opts.Flags&DetectCaretRegex != 0 && strings.HasPrefix(value, "^") {
			effectiveType = "regexp"
			if opts.Flags&DetectTrailingCaretNegated != 0 && strings.HasSuffix(value, "^") && len(value) > 1 {
				negated = !negated
				value = value[:len(value)-1]
			}
		}
	}
	if !opts.typeAllowed(effectiveType) {
		return nil, fmt.Errorf("match: type %q not allowed", effectiveType)
	}

	switch effectiveType {
	case "string":
		return NewStringItem(id, name, value, caseInsensitive, negated, missing), nil
	case "regexp":
		item := NewRegexpItem(id, name, value, caseInsensitive, basic, negated, missing)
		if opts.Flags&ValidateRegex != 0 {
			if err := item.Compile(); err != nil {
				return nil, fmt.Errorf("match: invalid regexp %q: %w", value, err)
			}
		}
		return item, nil
	case "xpath":
		item := NewXPathItem(id, name, value, nil, negated, missing)
		if opts.Flags&ValidateXPath != 0 && item.Path.Status() != xpath.NoError {
			return nil, fmt.Errorf("match: invalid xpath %q: %s", value, item.Path.Error())
		}
		return item, nil
	case "random":
		val, max, err := parseRandomSpec(value)
		if err != nil {
			return nil, fmt.Errorf("match: invalid random spec %q: %w", value, err)
		}
		return NewRandomItem(id, name, val, max, negated, missing), nil
	case "list":
		return nil, fmt.Errorf("match: nested list-by-type-name not supported in flat parameter form")
	default:
		if factory, ok := Lookup(effectiveType); ok {
			m := factory.Build(id, name)
			if custom, ok := m.(*CustomItem); ok {
				custom.Payload = value
				custom.negated = negated
				custom.missing = missing
			}
			return m, nil
		}
		if opts.Flags&AcceptInvalidLeaves != 0 {
			return NewCustomItem(id, effectiveType, name, value, negated, missing), nil
		}
		return nil, fmt.Errorf("match: unknown matcher type %q", effectiveType)
	}
}

// parseRandomSpec parses a random matcher's value as "val/max".
func parseRandomSpec(value string) (val, max uint32, err error) {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"val/max\"")
	}
	v, err1 := strconv.ParseUint(parts[0], 10, 32)
	m, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("non-numeric random spec")
	}
	return uint32(v), uint32(m), nil
}

// LoadFromXML implements spec.md §4.5/§6's XML element form: the tag
// names the matcher type, attributes carry name/flags/id, text content
// is the value, and children are sub-items (for list) or a single
// "match" element (for xpath) holding the inner matcher.
func LoadFromXML(opts LoadOptions, el *dom.Element) (Matcher, error) {
	typ := el.Tag()
	if !opts.typeAllowed(typ) {
		return nil, fmt.Errorf("match: type %q not allowed", typ)
	}
	name, _ := el.Attrs().Get("name")
	flagsStr, _ := el.Attrs().Get("flags")
	id, _ := el.Attrs().Get("id")
	flags := parseItemFlags(flagsStr)
	negated := flags&FlagNegated != 0
	missing := missingFromFlags(flags)

	switch typ {
	case "list":
		var items []Matcher
		for _, c := range el.Children() {
			childEl, ok := c.(*dom.Element)
			if !ok {
				continue
			}
			m, err := LoadFromXML(opts, childEl)
			if err != nil {
				if opts.Flags&IgnoreFailed == 0 {
					return nil, err
				}
				opts.logSkip(fmt.Sprintf("list child <%s>: %v", childEl.Tag(), err))
				continue
			}
			items = append(items, m)
		}
		matchAll := flags&FlagAny == 0
		list := NewListItem(id, matchAll, items, negated, missing)
		if opts.Flags&SkipOptimize != 0 {
			return list, nil
		}
		return Optimize(list), nil
	case "xpath":
		pathText := el.Text()
		var inner Matcher
		if child, _ := el.FindChild(0, "match", true); child != nil {
			if grandchild, _ := child.FindChild(0, "*", true); grandchild != nil {
				m, err := LoadFromXML(opts, grandchild)
				if err != nil && opts.Flags&IgnoreFailed == 0 {
					return nil, err
				}
				inner = m
			}
		}
		item := NewXPathItem(id, name, pathText, inner, negated, missing)
		if opts.Flags&ValidateXPath != 0 && item.Path.Status() != xpath.NoError {
			return nil, fmt.Errorf("match: invalid xpath %q: %s", pathText, item.Path.Error())
		}
		return item, nil
	case "string":
		return NewStringItem(id, name, el.Text(), flags&FlagCaseInsensitive != 0, negated, missing), nil
	case "regexp":
		item := NewRegexpItem(id, name, el.Text(), flags&FlagCaseInsensitive != 0, flags&FlagBasic != 0, negated, missing)
		if opts.Flags&ValidateRegex != 0 {
			if err := item.Compile(); err != nil {
				return nil, fmt.Errorf("match: invalid regexp %q: %w", el.Text(), err)
			}
		}
		return item, nil
	case "random":
		val, max, err := parseRandomSpec(el.Text())
		if err != nil {
			return nil, fmt.Errorf("match: invalid random spec %q: %w", el.Text(), err)
		}
		return NewRandomItem(id, name, val, max, negated, missing), nil
	default:
		if factory, ok := Lookup(typ); ok {
			return factory.LoadFromXML(opts.Flags, el.Text())
		}
		if opts.Flags&AcceptInvalidLeaves != 0 {
			return NewCustomItem(id, typ, name, el.Text(), negated, missing), nil
		}
		return nil, fmt.Errorf("match: unknown matcher type tag %q", typ)
	}
}

// LoadFromXMLString parses xmlText then delegates to LoadFromXML
// (spec.md §4.5 "an XML-formatted string: it is parsed then delegated").
// The loader's own logger (if any) is passed down to the embedded SAX
// parser, so a parse failure and a load failure land in the same log.
func LoadFromXMLString(opts LoadOptions, xmlText string) (Matcher, error) {
	doc := dom.NewDocument()
	if err := doc.Parse([]byte(xmlText), sax.WithLogger(opts.logger())); err != nil {
		return nil, fmt.Errorf("match: xml parse error: %v", err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("match: xml item has no root element")
	}
	return LoadFromXML(opts, doc.Root)
}

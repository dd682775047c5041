package match

import (
	"strings"

	"github.com/arkcall/xmlmatch/param"
)

// StringItem matches a named parameter's value by equality (spec.md §3).
type StringItem struct {
	header
	Name            string
	Value           string
	CaseInsensitive bool
}

// NewStringItem builds a detached String matcher.
func NewStringItem(id, name, value string, caseInsensitive, negated bool, missing MissingPolicy) *StringItem {
	return &StringItem{
		header: header{id: id, negated: negated, missing: missing},
		Name:   name, Value: value, CaseInsensitive: caseInsensitive,
	}
}

func (s *StringItem) Kind() Kind { return StringKind }

func (s *StringItem) raw(v string) bool {
	if s.CaseInsensitive {
		return strings.EqualFold(v, s.Value)
	}
	return v == s.Value
}

func (s *StringItem) Match(ctx *Context, params *param.Map) Matcher {
	value, present := params.Get(s.Name)
	if s.applyMissing(present, value, s.raw) {
		return s
	}
	return nil
}

func (s *StringItem) MatchStringOpt(ctx *Context, value *string) bool {
	if value == nil {
		return s.applyMissing(false, "", s.raw)
	}
	return s.applyMissing(true, *value, s.raw)
}

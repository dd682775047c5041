package match

import (
	"regexp"
	"strings"

	"github.com/arkcall/xmlmatch/param"
)

// RegexpItem matches a named parameter's value against a compiled regex
// (spec.md §3). Pattern is compiled once, lazily, on first use.
type RegexpItem struct {
	header
	Name            string
	Pattern         string
	CaseInsensitive bool
	Basic           bool // POSIX basic/extended dialect, per spec.md §4.4's 'b' flag

	compiled *regexp.Regexp
}

// NewRegexpItem builds a detached Regexp matcher.
func NewRegexpItem(id, name, pattern string, caseInsensitive, basic, negated bool, missing MissingPolicy) *RegexpItem {
	return &RegexpItem{
		header:          header{id: id, negated: negated, missing: missing},
		Name:            name,
		Pattern:         pattern,
		CaseInsensitive: caseInsensitive,
		Basic:           basic,
	}
}

func (r *RegexpItem) Kind() Kind { return RegexpKind }

// Compile forces (and caches) regex compilation, returning any error so
// callers (typically the loader) can validate eagerly.
func (r *RegexpItem) Compile() error {
	if r.compiled != nil {
		return nil
	}
	pattern := r.Pattern
	// regexp.CompilePOSIX does not accept "(?i)", so Basic+CaseInsensitive
	// lower-cases the pattern here and the subject in raw.
	if r.Basic && r.CaseInsensitive {
		pattern = strings.ToLower(pattern)
	} else if r.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	var re *regexp.Regexp
	var err error
	if r.Basic {
		re, err = regexp.CompilePOSIX(pattern)
	} else {
		re, err = regexp.Compile(pattern)
	}
	if err != nil {
		return err
	}
	r.compiled = re
	return nil
}

func (r *RegexpItem) raw(v string) bool {
	if err := r.Compile(); err != nil {
		return false
	}
	if r.Basic && r.CaseInsensitive {
		v = strings.ToLower(v)
	}
	return r.compiled.MatchString(v)
}

func (r *RegexpItem) Match(ctx *Context, params *param.Map) Matcher {
	value, present := params.Get(r.Name)
	if r.applyMissing(present, value, r.raw) {
		return r
	}
	return nil
}

func (r *RegexpItem) MatchStringOpt(ctx *Context, value *string) bool {
	if value == nil {
		return r.applyMissing(false, "", r.raw)
	}
	return r.applyMissing(true, *value, r.raw)
}

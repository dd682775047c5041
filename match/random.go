package match

import "github.com/arkcall/xmlmatch/param"

// RandomItem matches iff val > uniform(0, max-1). val=0 never matches;
// val>=max always matches (spec.md §3). It ignores whatever parameter
// value is supplied; it is a pseudo-random gate, not a comparison.
type RandomItem struct {
	header
	Name string
	Val  uint32
	Max  uint32
}

// NewRandomItem builds a detached Random matcher.
func NewRandomItem(id, name string, val, max uint32, negated bool, missing MissingPolicy) *RandomItem {
	return &RandomItem{
		header: header{id: id, negated: negated, missing: missing},
		Name:   name, Val: val, Max: max,
	}
}

func (r *RandomItem) Kind() Kind { return RandomKind }

func (r *RandomItem) draw(ctx *Context) bool {
	if r.Val == 0 {
		return false
	}
	if r.Max == 0 || r.Val >= r.Max {
		return true
	}
	return r.Val > ctx.uniform(r.Max)
}

// Match draws against the per-pass Context regardless of whether Name is
// present in params; the parameter name exists only so Random can sit
// inside a List alongside parameter-named siblings and still report
// "missing" consistently when Name is used purely as a selector key by
// callers (spec.md §4.5 leaves this loose; the draw itself never
// consults the parameter value).
func (r *RandomItem) Match(ctx *Context, params *param.Map) Matcher {
	present := r.Name == "" || params.Has(r.Name)
	result := r.draw(ctx)
	if !present {
		switch r.missing {
		case Match:
			result = true
		case NoMatch:
			result = false
		}
	}
	if r.negated {
		result = !result
	}
	if result {
		return r
	}
	return nil
}

func (r *RandomItem) MatchStringOpt(ctx *Context, value *string) bool {
	present := value != nil
	result := r.draw(ctx)
	if !present {
		switch r.missing {
		case Match:
			result = true
		case NoMatch:
			result = false
		}
	}
	if r.negated {
		result = !result
	}
	return result
}

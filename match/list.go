package match

import "github.com/arkcall/xmlmatch/param"

// ListItem is an internal AND/OR node over an ordered list of children
// (spec.md §3). MatchAll=true is AND (empty list never matches);
// MatchAll=false is OR (empty list never matches). Negating a list
// negates the whole AND/OR result, not each child individually.
type ListItem struct {
	header
	MatchAll bool
	Items    []Matcher
}

// NewListItem builds a detached List matcher.
func NewListItem(id string, matchAll bool, items []Matcher, negated bool, missing MissingPolicy) *ListItem {
	return &ListItem{
		header:   header{id: id, negated: negated, missing: missing},
		MatchAll: matchAll,
		Items:    items,
	}
}

func (l *ListItem) Kind() Kind { return ListKind }

// Match iterates children in order. For MatchAll, any failed child
// returns no match; for OR, the first matched child returns that child.
// Empty list never matches (spec.md §4.5).
func (l *ListItem) Match(ctx *Context, params *param.Map) Matcher {
	if len(l.Items) == 0 {
		return l.finish(false, l)
	}
	if l.MatchAll {
		for _, item := range l.Items {
			if item.Match(ctx, params) == nil {
				return l.finish(false, l)
			}
		}
		return l.finish(true, l)
	}
	for _, item := range l.Items {
		if m := item.Match(ctx, params); m != nil {
			return l.finish(true, m)
		}
	}
	return l.finish(false, l)
}

// MatchStringOpt applies the same AND/OR logic, evaluating every child
// against the same scalar value.
func (l *ListItem) MatchStringOpt(ctx *Context, value *string) bool {
	if len(l.Items) == 0 {
		return l.negated
	}
	if l.MatchAll {
		for _, item := range l.Items {
			if !item.MatchStringOpt(ctx, value) {
				return l.negated
			}
		}
		return !l.negated
	}
	for _, item := range l.Items {
		if item.MatchStringOpt(ctx, value) {
			return !l.negated
		}
	}
	return l.negated
}

// finish applies List's own negation to a raw AND/OR verdict, returning
// matched (to report upward) when the final boolean is true, else nil.
func (l *ListItem) finish(raw bool, matched Matcher) Matcher {
	result := raw
	if l.negated {
		result = !result
	}
	if result {
		return matched
	}
	return nil
}

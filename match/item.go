// Package match implements the composable matching-item predicate tree
// of spec.md §3/§4.5: String/Regexp/XPath/Random/List/Custom leaves and
// internal nodes, each carrying a shared negated/missing-parameter/id
// header, evaluated over param.Map parameter maps.
//
// Variant dispatch follows the same tagged-union shape as dom's node
// hierarchy (spec.md §9): a Kind byte enum, a shared header struct
// embedded by each concrete type, and a Matcher interface rather than
// emulated virtual inheritance.
package match

import "github.com/arkcall/xmlmatch/param"

// Kind tags the six matching-item variants of spec.md §3.
type Kind byte

const (
	StringKind Kind = iota
	RegexpKind
	XPathKind
	RandomKind
	ListKind
	CustomKind
)

var kindNames = [...]string{
	StringKind: "string",
	RegexpKind: "regexp",
	XPathKind:  "xpath",
	RandomKind: "random",
	ListKind:   "list",
	CustomKind: "custom",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// MissingPolicy governs what happens when a leaf's named parameter is
// absent from the map being matched (spec.md §3).
type MissingPolicy int

const (
	RunMatch MissingPolicy = iota // evaluate as if the value were ""
	Match                         // short-circuit to matched
	NoMatch                       // short-circuit to not-matched
)

// Matcher is the common capability of every matching-item tree node.
type Matcher interface {
	Kind() Kind
	ID() string
	Negated() bool
	SetNegated(bool)
	Missing() MissingPolicy

	// Match evaluates this node against params, returning the matched
	// node (itself for a leaf, the matched descendant or self for a
	// List) or nil if no match (spec.md §4.5 "match(item, parameters)").
	Match(ctx *Context, params *param.Map) Matcher

	// MatchStringOpt evaluates this node against a single optional
	// scalar value; a nil value simulates an absent parameter and
	// triggers the missing_match policy (spec.md §4.5 "match_string_opt").
	MatchStringOpt(ctx *Context, value *string) bool
}

// MatchString is match_string(item, value): MatchStringOpt with value
// always present.
func MatchString(ctx *Context, m Matcher, value string) bool {
	return m.MatchStringOpt(ctx, &value)
}

// header is embedded by every concrete Matcher and carries the fields
// spec.md §3 requires on every node: "negated: bool, missing_match,
// and an optional id string".
type header struct {
	id      string
	negated bool
	missing MissingPolicy
}

func (h *header) ID() string                 { return h.id }
func (h *header) Negated() bool              { return h.negated }
func (h *header) SetNegated(v bool)          { h.negated = v }
func (h *header) Missing() MissingPolicy      { return h.missing }

// applyMissing resolves the missing-parameter policy and negation
// around raw, the node's concrete (un-negated) match predicate. present
// is whether the relevant parameter was found; value is the string to
// feed raw when present, or when the policy is RunMatch ("" otherwise,
// per spec.md §3 "RunMatch evaluates as if the value were empty
// string").
func (h *header) applyMissing(present bool, value string, raw func(string) bool) bool {
	var result bool
	switch {
	case present:
		result = raw(value)
	case h.missing == Match:
		result = true
	case h.missing == NoMatch:
		result = false
	default: // RunMatch
		result = raw("")
	}
	if h.negated {
		result = !result
	}
	return result
}

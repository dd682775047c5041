package match

import "github.com/arkcall/xmlmatch/param"

// CustomItem delegates matching to an installed Factory's vtable
// (spec.md §4.5 "Custom: delegates to an installed vtable").
type CustomItem struct {
	header
	TypeTag string
	Name    string
	Payload string
}

// NewCustomItem builds a detached Custom matcher wrapping payload, to be
// interpreted by the factory registered for typeTag.
func NewCustomItem(id, typeTag, name, payload string, negated bool, missing MissingPolicy) *CustomItem {
	return &CustomItem{
		header:  header{id: id, negated: negated, missing: missing},
		TypeTag: typeTag, Name: name, Payload: payload,
	}
}

func (c *CustomItem) Kind() Kind { return CustomKind }

func (c *CustomItem) Match(ctx *Context, params *param.Map) Matcher {
	factory, ok := Lookup(c.TypeTag)
	if !ok {
		return nil
	}
	present := c.Name == "" || params.Has(c.Name)
	raw := func(string) bool { return factory.MatchListParam(ctx, c, params) }
	if c.applyMissing(present, "", raw) {
		return c
	}
	return nil
}

func (c *CustomItem) MatchStringOpt(ctx *Context, value *string) bool {
	factory, ok := Lookup(c.TypeTag)
	if !ok {
		return false
	}
	raw := func(v string) bool { return factory.MatchString(ctx, c, v) }
	if value == nil {
		return c.applyMissing(false, "", raw)
	}
	return c.applyMissing(true, *value, raw)
}

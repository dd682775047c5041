package match

// Optimize implements spec.md §4.5's post-load optimisation pass: nested
// lists are recursively optimised first; an empty list is pruned from
// its parent (carried forward verbatim from
// original_source/engine/MatchingItem.cpp, even though an empty AND-list
// and an empty OR-list have different boolean identities — see
// DESIGN.md); and a list with exactly one surviving child is replaced by
// that child, with the list's own negation pushed into the child
// (flipping its negated bit) when the list itself was negated.
//
// Optimize is a no-op (returns m unchanged) for every non-List kind.
func Optimize(m Matcher) Matcher {
	list, ok := m.(*ListItem)
	if !ok {
		return m
	}

	kept := list.Items[:0]
	for _, child := range list.Items {
		child = Optimize(child)
		if cl, isList := child.(*ListItem); isList && len(cl.Items) == 0 {
			continue
		}
		kept = append(kept, child)
	}
	list.Items = kept

	if len(list.Items) == 1 {
		only := list.Items[0]
		if list.negated {
			only.SetNegated(!only.Negated())
		}
		return only
	}
	return list
}

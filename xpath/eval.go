package xpath

import (
	"regexp"
	"strings"

	"github.com/arkcall/xmlmatch/dom"
)

// FindKind is a bitmask of what an Eval call should collect, carried
// forward from original_source/yatexml.h's XPath::Find bitmask
// (FindXml|FindText|FindAttr|FindAny) — spec.md §4.4 describes
// "requested find-kinds" but never names the bitmask explicitly.
type FindKind uint

const (
	FindXml FindKind = 1 << iota
	FindText
	FindAttr
	FindAny = FindXml | FindText | FindAttr
)

// AttrResult is one (name, value) pair collected from an attribute step.
type AttrResult struct {
	Name  string
	Value string
}

// Result accumulates whatever Eval was asked to find. Elements and
// attribute values are borrowed references into the source DOM: the
// evaluator never mutates or deep-copies (spec.md §4.4).
type Result struct {
	Elements []*dom.Element
	Texts    []string
	Attrs    []AttrResult
}

// Eval walks p against source, collecting the kinds named by find. The
// index-predicate short-circuit in matchElementStep below is this
// package's rendition of spec.md §9's three-valued predicate
// continuation logic (HandleContinue/HandleStop/Cont/Stop): a position
// filter both selects a candidate and signals that no later candidate
// can still match, since positions only increase.
func (p *Path) Eval(source *dom.Element, find FindKind) (*Result, Status) {
	if p.Status() != NoError {
		return nil, p.status
	}
	if source == nil || len(p.Steps) == 0 {
		return &Result{}, NoError
	}

	current := []*dom.Element{source}
	for i, step := range p.Steps {
		last := i == len(p.Steps)-1

		switch step.NodeType {
		case ElementNode:
			var next []*dom.Element
			for _, el := range current {
				var pool []*dom.Element
				if i == 0 && p.Absolute {
					pool = []*dom.Element{el}
				} else {
					pool = elementChildren(el)
				}
				next = append(next, matchElementStep(pool, step)...)
			}
			current = next
			if last {
				res := &Result{}
				collectElements(res, current, find)
				return res, NoError
			}
		case AttributeNode:
			res := &Result{}
			for _, el := range filterByPredicates(current, step.Predicates) {
				collectAttribute(res, el, step.Name, find)
			}
			return res, NoError
		case TextNode:
			res := &Result{}
			for _, el := range filterByPredicates(current, step.Predicates) {
				if find&FindText != 0 {
					res.Texts = append(res.Texts, el.Text())
				}
			}
			return res, NoError
		case ChildTextNode:
			res := &Result{}
			for _, el := range filterByPredicates(current, step.Predicates) {
				for _, c := range el.Children() {
					if t, ok := c.(*dom.Text); ok && find&FindText != 0 {
						res.Texts = append(res.Texts, t.Value)
					}
				}
			}
			return res, NoError
		}
	}
	res := &Result{}
	collectElements(res, current, find)
	return res, NoError
}

func elementChildren(e *dom.Element) []*dom.Element {
	var out []*dom.Element
	for _, c := range e.Children() {
		if el, ok := c.(*dom.Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// matchElementStep applies a step's tag filter and predicates to pool,
// honouring the index-predicate short-circuit of spec.md §9: positions
// only increase, so scanning stops as soon as no further candidate could
// satisfy the index.
func matchElementStep(pool []*dom.Element, step Step) []*dom.Element {
	var indexPred *Predicate
	for i := range step.Predicates {
		if step.Predicates[i].Kind == IndexPred {
			indexPred = &step.Predicates[i]
			break
		}
	}

	var matched []*dom.Element
	pos := uint32(0)
	for _, el := range pool {
		if !tagMatches(el.Tag(), step.Name) {
			continue
		}
		pos++
		if indexPred != nil && pos > indexPred.Index {
			break
		}
		if evalPredicates(el, step.Predicates, pos) {
			matched = append(matched, el)
		}
		if indexPred != nil && pos == indexPred.Index {
			break
		}
	}
	return matched
}

func tagMatches(got, want string) bool {
	return want == "" || want == "*" || got == want
}

func filterByPredicates(els []*dom.Element, preds []Predicate) []*dom.Element {
	if len(preds) == 0 {
		return els
	}
	var out []*dom.Element
	for _, el := range els {
		if evalPredicates(el, preds, 1) {
			out = append(out, el)
		}
	}
	return out
}

func evalPredicates(el *dom.Element, preds []Predicate, pos uint32) bool {
	for _, pred := range preds {
		if !evalOnePredicate(el, pred, pos) {
			return false
		}
	}
	return true
}

func evalOnePredicate(el *dom.Element, pred Predicate, pos uint32) bool {
	switch pred.Kind {
	case IndexPred:
		return pos == pred.Index
	case AttributePred:
		if pred.Name == "" {
			return el.Attrs().Len() > 0
		}
		v, ok := el.Attrs().Get(pred.Name)
		if !ok {
			return false
		}
		if pred.Op == OpNone {
			return true
		}
		return compareOp(v, pred)
	case ChildPred:
		child, _ := el.FindChild(0, pred.Name, true)
		if child == nil {
			return false
		}
		if pred.Op == OpNone {
			return true
		}
		return compareOp(child.Text(), pred)
	case TextPred:
		text := el.Text()
		if pred.Op == OpNone {
			return text != ""
		}
		return compareOp(text, pred)
	}
	return false
}

func compareOp(value string, pred Predicate) bool {
	switch pred.Op {
	case OpEq:
		return value == pred.Value
	case OpNe:
		return value != pred.Value
	case OpMatches:
		return matchRegex(value, pred.Value, pred.Flags)
	case OpNotMatches:
		return !matchRegex(value, pred.Value, pred.Flags)
	}
	return true
}

// matchRegex compiles pred's regex source per its flags ('i' case
// insensitive, 'b' basic/POSIX). Go's POSIX engine (regexp.CompilePOSIX)
// does not support the "(?i)" inline flag, so the 'b'+'i' combination is
// approximated by lower-casing both pattern and subject — documented in
// DESIGN.md as a deliberate approximation, since original_source's PCRE-
// flavoured basic-regex-plus-insensitive combination has no exact Go
// stdlib equivalent.
func matchRegex(value, pattern, flags string) bool {
	insensitive := strings.ContainsRune(flags, 'i')
	basic := strings.ContainsRune(flags, 'b')

	var re *regexp.Regexp
	var err error
	if basic {
		p := pattern
		v := value
		if insensitive {
			p = strings.ToLower(p)
			v = strings.ToLower(v)
		}
		re, err = regexp.CompilePOSIX(p)
		if err != nil {
			return false
		}
		return re.MatchString(v)
	}
	p := pattern
	if insensitive {
		p = "(?i)" + p
	}
	re, err = regexp.Compile(p)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func collectElements(res *Result, els []*dom.Element, find FindKind) {
	for _, el := range els {
		if find&FindXml != 0 {
			res.Elements = append(res.Elements, el)
		}
		if find&FindText != 0 {
			res.Texts = append(res.Texts, el.Text())
		}
	}
}

func collectAttribute(res *Result, el *dom.Element, name string, find FindKind) {
	if name == "" {
		el.Attrs().ForEach(func(n, v string) bool {
			if find&FindAttr != 0 {
				res.Attrs = append(res.Attrs, AttrResult{Name: n, Value: v})
			}
			if find&FindText != 0 {
				res.Texts = append(res.Texts, v)
			}
			return true
		})
		return
	}
	v, ok := el.Attrs().Get(name)
	if !ok {
		return
	}
	if find&FindAttr != 0 {
		res.Attrs = append(res.Attrs, AttrResult{Name: name, Value: v})
	}
	if find&FindText != 0 {
		res.Texts = append(res.Texts, v)
	}
}

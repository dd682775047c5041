package dom

import "github.com/arkcall/xmlmatch/internal/charclass"

// Attr is one name/value attribute pair.
type Attr struct {
	Name  string
	Value string
}

// AttrMap is an ordered map of attribute name to value with unique
// names (spec.md §3 invariant 2), distinct from param.Map's multimap:
// XML attributes on one element may never repeat.
type AttrMap struct {
	list []Attr
	idx  map[string]int
}

// NewAttrMap returns an empty AttrMap.
func NewAttrMap() *AttrMap {
	return &AttrMap{idx: make(map[string]int)}
}

// Set upserts name=value, validating name is a well-formed XML Name.
func (m *AttrMap) Set(name, value string) bool {
	if !charclass.ValidName(name) {
		return false
	}
	if i, ok := m.idx[name]; ok {
		m.list[i].Value = value
		return true
	}
	m.idx[name] = len(m.list)
	m.list = append(m.list, Attr{Name: name, Value: value})
	return true
}

// Get returns the value of name, if present.
func (m *AttrMap) Get(name string) (string, bool) {
	if i, ok := m.idx[name]; ok {
		return m.list[i].Value, true
	}
	return "", false
}

// Has reports whether name is present.
func (m *AttrMap) Has(name string) bool {
	_, ok := m.idx[name]
	return ok
}

// Delete removes name, if present.
func (m *AttrMap) Delete(name string) {
	i, ok := m.idx[name]
	if !ok {
		return
	}
	m.list = append(m.list[:i], m.list[i+1:]...)
	delete(m.idx, name)
	for n, a := range m.list {
		m.idx[a.Name] = n
	}
}

// Len returns the number of attributes.
func (m *AttrMap) Len() int { return len(m.list) }

// ForEach visits attributes in insertion order, stopping early if fn
// returns false.
func (m *AttrMap) ForEach(fn func(name, value string) bool) {
	for _, a := range m.list {
		if !fn(a.Name, a.Value) {
			return
		}
	}
}

// Clone returns a deep copy.
func (m *AttrMap) Clone() *AttrMap {
	out := NewAttrMap()
	for _, a := range m.list {
		out.Set(a.Name, a.Value)
	}
	return out
}

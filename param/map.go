// Package param implements the ordered parameter multimap spec.md §3
// calls for: "Ordered multimap of name→value strings. Iteration order is
// insertion order. A parameter value may optionally carry an attached
// polymorphic object" — the Aux slot match's XPath matcher uses to cache
// a parsed dom.Document across repeated lookups within one match pass.
package param

// Entry is one name/value pair, with an optional caller-attached value.
type Entry struct {
	Name  string
	Value string
	Aux   any
}

// Map is an ordered multimap: names may repeat, and iteration order is
// always insertion order (spec.md §3, §5 "ordering... is part of the
// contract").
type Map struct {
	entries []Entry
}

// New returns an empty Map.
func New() *Map { return &Map{} }

// Add appends a new name/value pair, even if name already exists.
func (m *Map) Add(name, value string) {
	m.entries = append(m.entries, Entry{Name: name, Value: value})
}

// Set replaces the value of the first entry named name, or appends a new
// entry if name is not yet present.
func (m *Map) Set(name, value string) {
	for i := range m.entries {
		if m.entries[i].Name == name {
			m.entries[i].Value = value
			return
		}
	}
	m.Add(name, value)
}

// Get returns the value of the first entry named name.
func (m *Map) Get(name string) (string, bool) {
	for _, e := range m.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// GetAll returns the values of every entry named name, in order.
func (m *Map) GetAll(name string) []string {
	var out []string
	for _, e := range m.entries {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

// Has reports whether any entry is named name.
func (m *Map) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Delete removes every entry named name.
func (m *Map) Delete(name string) {
	out := m.entries[:0]
	for _, e := range m.entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	m.entries = out
}

// Len returns the total number of entries (counting repeats).
func (m *Map) Len() int { return len(m.entries) }

// ForEach visits every entry in insertion order, stopping early if fn
// returns false.
func (m *Map) ForEach(fn func(name, value string) bool) {
	for _, e := range m.entries {
		if !fn(e.Name, e.Value) {
			return
		}
	}
}

// SetAux attaches aux to the first entry named name, for later retrieval
// by Aux. Used to cache a parsed XML DOM on the value of an XPath-typed
// matching parameter across one match pass. Returns false if name is
// absent.
func (m *Map) SetAux(name string, aux any) bool {
	for i := range m.entries {
		if m.entries[i].Name == name {
			m.entries[i].Aux = aux
			return true
		}
	}
	return false
}

// Aux returns the value attached by SetAux to the first entry named
// name, if any.
func (m *Map) Aux(name string) (any, bool) {
	for _, e := range m.entries {
		if e.Name == name {
			return e.Aux, e.Aux != nil
		}
	}
	return nil, false
}

// Clone returns a deep copy; Aux values are copied by reference (they
// are typically read-only caches).
func (m *Map) Clone() *Map {
	out := &Map{entries: make([]Entry, len(m.entries))}
	copy(out.entries, m.entries)
	return out
}

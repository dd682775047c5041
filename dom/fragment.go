package dom

// Fragment is an ordered list of arbitrary nodes with no constraints on
// kind or count (spec.md §4.3 "an ordered list of arbitrary nodes; no
// constraints"). Document uses two Fragments to hold the nodes that sit
// before and after the root element.
type Fragment struct {
	nodes []Node
}

// NewFragment returns an empty Fragment.
func NewFragment() *Fragment { return &Fragment{} }

// Nodes returns the live node slice; callers must not retain it across
// mutation.
func (f *Fragment) Nodes() []Node { return f.nodes }

// Len returns the number of nodes.
func (f *Fragment) Len() int { return len(f.nodes) }

// Add appends n.
func (f *Fragment) Add(n Node) {
	f.nodes = append(f.nodes, n)
}

// Remove detaches n, if present.
func (f *Fragment) Remove(n Node) bool {
	for i, c := range f.nodes {
		if c == n {
			if el, ok := n.(*Element); ok {
				el.snapshotNamespaces()
			}
			n.setParent(nil)
			f.nodes = append(f.nodes[:i], f.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Clear detaches every node.
func (f *Fragment) Clear() {
	for _, c := range f.nodes {
		if el, ok := c.(*Element); ok {
			el.snapshotNamespaces()
		}
		c.setParent(nil)
	}
	f.nodes = nil
}

// Clone returns a deep copy; every cloned node is fully detached.
func (f *Fragment) Clone() *Fragment {
	out := NewFragment()
	for _, n := range f.nodes {
		out.Add(n.Clone())
	}
	return out
}

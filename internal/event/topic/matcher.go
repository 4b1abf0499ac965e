package topic

import "sync"

// Matcher indexes subscription patterns in a trie so a published topic can be
// resolved to every matching pattern in O(segments).
// It is safe for concurrent use.
type Matcher struct {
	mu   sync.RWMutex
	root *node
}

type node struct {
	children map[string]*node
	patterns []Topic
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{root: newNode()}
}

// Add indexes a pattern. Adding the same pattern twice is a no-op.
func (m *Matcher) Add(pattern Topic) {
	if pattern == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.root
	for _, seg := range pattern.Segments() {
		child := n.children[seg]
		if child == nil {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	for _, p := range n.patterns {
		if p == pattern {
			return
		}
	}
	n.patterns = append(n.patterns, pattern)
}

// Remove drops a pattern and prunes empty branches.
func (m *Matcher) Remove(pattern Topic) {
	if pattern == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(m.root, pattern, pattern.Segments())
}

// remove reports whether n became empty and can be pruned by its parent.
func (m *Matcher) remove(n *node, pattern Topic, segments []string) bool {
	if len(segments) == 0 {
		for i, p := range n.patterns {
			if p == pattern {
				n.patterns = append(n.patterns[:i], n.patterns[i+1:]...)
				break
			}
		}
	} else if child := n.children[segments[0]]; child != nil {
		if m.remove(child, pattern, segments[1:]) {
			delete(n.children, segments[0])
		}
	}
	return len(n.children) == 0 && len(n.patterns) == 0
}

// Has reports whether the exact pattern is indexed.
func (m *Matcher) Has(pattern Topic) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.root
	for _, seg := range pattern.Segments() {
		n = n.children[seg]
		if n == nil {
			return false
		}
	}
	for _, p := range n.patterns {
		if p == pattern {
			return true
		}
	}
	return false
}

// Match returns every indexed pattern that matches the concrete topic.
// A pattern appears at most once in the result.
func (m *Matcher) Match(t Topic) []Topic {
	if t == "" {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[Topic]struct{})
	var out []Topic
	m.match(m.root, t.Segments(), seen, &out)
	return out
}

func (m *Matcher) match(n *node, segments []string, seen map[Topic]struct{}, out *[]Topic) {
	if len(segments) == 0 {
		for _, p := range n.patterns {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				*out = append(*out, p)
			}
		}
		if multi := n.children[WildcardMulti]; multi != nil {
			m.match(multi, segments, seen, out)
		}
		return
	}

	if child := n.children[segments[0]]; child != nil {
		m.match(child, segments[1:], seen, out)
	}
	if single := n.children[WildcardSingle]; single != nil {
		m.match(single, segments[1:], seen, out)
	}
	if multi := n.children[WildcardMulti]; multi != nil {
		for i := 0; i <= len(segments); i++ {
			m.match(multi, segments[i:], seen, out)
		}
	}
}

// Count returns the number of indexed patterns.
func (m *Matcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int
	var walk func(*node)
	walk = func(n *node) {
		count += len(n.patterns)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
	return count
}

// Clear removes all patterns.
func (m *Matcher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = newNode()
}

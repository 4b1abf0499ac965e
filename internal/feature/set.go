package feature

import (
	"slices"
	"sort"
	"strings"
	"sync"
)

// Set is a concurrency-safe set of enabled feature names.
type Set struct {
	mu       sync.RWMutex
	enabled  map[string]struct{}
	defaults []string
}

// NewSet returns a set with defaults enabled. Reset restores them.
func NewSet(defaults ...string) *Set {
	s := &Set{defaults: normalizeAll(defaults)}
	s.Reset()
	return s
}

// Enable turns name on and reports whether it was off.
func (s *Set) Enable(name string) bool {
	name = normalize(name)
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enabled[name]; ok {
		return false
	}
	s.enabled[name] = struct{}{}
	return true
}

// Disable turns name off and reports whether it was on.
func (s *Set) Disable(name string) bool {
	name = normalize(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enabled[name]; !ok {
		return false
	}
	delete(s.enabled, name)
	return true
}

// IsEnabled reports whether name is on.
func (s *Set) IsEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.enabled[normalize(name)]
	return ok
}

// List returns the enabled names in sorted order.
func (s *Set) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.enabled))
	for name := range s.enabled {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of enabled features.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.enabled)
}

// Defaults returns the names Reset restores.
func (s *Set) Defaults() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.defaults)
}

// Reset restores the defaults, discarding every change.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = make(map[string]struct{}, len(s.defaults))
	for _, name := range s.defaults {
		s.enabled[name] = struct{}{}
	}
}

// Replace enables exactly names and makes them the new defaults. It returns
// the names that were turned on and off.
func (s *Set) Replace(names []string) (added, removed []string) {
	names = normalizeAll(names)
	next := make(map[string]struct{}, len(names))
	for _, n := range names {
		next[n] = struct{}{}
	}

	s.mu.Lock()
	for n := range next {
		if _, ok := s.enabled[n]; !ok {
			added = append(added, n)
		}
	}
	for n := range s.enabled {
		if _, ok := next[n]; !ok {
			removed = append(removed, n)
		}
	}
	s.enabled = next
	s.defaults = names
	s.mu.Unlock()

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = normalize(n); n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

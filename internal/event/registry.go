package event

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/kazi-app/ups/internal/event/topic"
)

// Registry indexes subscriptions by type pattern.
//
// Patterns are kept in a topic.Matcher trie so a concrete event type is
// resolved to every matching pattern, wildcards included, without scanning
// all subscriptions. Match returns each subscription once even when several
// of its patterns match, ordered by priority and then registration.
//
// Thread-safety: All methods are safe for concurrent use. Match returns a
// snapshot, so subscriptions added or removed during a publish take effect
// on the next one.
type Registry struct {
	mu      sync.RWMutex
	subs    map[topic.Topic][]*subscription
	byID    map[string]*subscription
	matcher *topic.Matcher
	seq     atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subs:    make(map[topic.Topic][]*subscription),
		byID:    make(map[string]*subscription),
		matcher: topic.NewMatcher(),
	}
}

func (r *Registry) nextSeq() uint64 {
	return r.seq.Add(1)
}

// Add registers sub under each of its patterns.
func (r *Registry) Add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range sub.topics {
		r.subs[pattern] = append(r.subs[pattern], sub)
		r.matcher.Add(pattern)
	}
	r.byID[sub.id] = sub
}

// Remove unregisters a subscription. It reports false when the id is
// unknown.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return false
	}
	for _, pattern := range sub.topics {
		subs := slices.DeleteFunc(r.subs[pattern], func(s *subscription) bool { return s.id == id })
		if len(subs) == 0 {
			delete(r.subs, pattern)
			r.matcher.Remove(pattern)
			continue
		}
		r.subs[pattern] = subs
	}
	delete(r.byID, id)
	return true
}

// Get returns a subscription by id.
func (r *Registry) Get(id string) (Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return sub, true
}

// Match returns the subscriptions whose patterns match t, each once,
// ordered by priority and then registration.
func (r *Registry) Match(t topic.Topic) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := r.matcher.Match(t)
	if len(patterns) == 0 {
		return nil
	}

	seen := make(map[*subscription]struct{})
	var out []*subscription
	for _, pattern := range patterns {
		for _, sub := range r.subs[pattern] {
			if _, dup := seen[sub]; dup {
				continue
			}
			seen[sub] = struct{}{}
			out = append(out, sub)
		}
	}

	slices.SortFunc(out, func(a, b *subscription) int {
		if a.config.Priority != b.config.Priority {
			return int(a.config.Priority) - int(b.config.Priority)
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// Count returns the number of registered subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// CountActive returns the number of subscriptions that are not paused.
func (r *Registry) CountActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, sub := range r.byID {
		if sub.IsActive() {
			n++
		}
	}
	return n
}

// Topics returns every pattern with at least one subscription.
func (r *Registry) Topics() []topic.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]topic.Topic, 0, len(r.subs))
	for t := range r.subs {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Clear cancels and removes every subscription.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.byID {
		sub.cancel()
	}
	r.subs = make(map[topic.Topic][]*subscription)
	r.byID = make(map[string]*subscription)
	r.matcher.Clear()
}

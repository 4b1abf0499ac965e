package event

import (
	"strings"

	"github.com/kazi-app/ups/internal/event/topic"
)

// FilterBySource allows events from one source.
func FilterBySource(source string) FilterFunc {
	return func(e Event) bool {
		return e.Source == source
	}
}

// FilterBySourcePrefix allows events whose source starts with prefix.
func FilterBySourcePrefix(prefix string) FilterFunc {
	return func(e Event) bool {
		return e.Source != "" && strings.HasPrefix(e.Source, prefix)
	}
}

// FilterBySources allows events from any of sources.
func FilterBySources(sources ...string) FilterFunc {
	set := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		set[s] = struct{}{}
	}
	return func(e Event) bool {
		_, ok := set[e.Source]
		return ok
	}
}

// FilterExcludeSource rejects events from source. Useful to ignore echoes
// of one's own publishes.
func FilterExcludeSource(source string) FilterFunc {
	return func(e Event) bool {
		return e.Source != source
	}
}

// FilterByTopic narrows a wildcard subscription further.
func FilterByTopic(pattern topic.Topic) FilterFunc {
	return func(e Event) bool {
		return e.Type.Matches(pattern)
	}
}

// FilterByChannel allows broadcasts on channel.
func FilterByChannel(channel string) FilterFunc {
	return func(e Event) bool {
		return e.Channel() == channel
	}
}

// FilterByMetadata allows events whose metadata key equals value.
func FilterByMetadata(key string, value any) FilterFunc {
	return func(e Event) bool {
		v, ok := e.Metadata[key]
		return ok && v == value
	}
}

// FilterByCorrelation allows events carrying correlation id.
func FilterByCorrelation(id string) FilterFunc {
	return func(e Event) bool {
		return e.CorrelationID() == id
	}
}

// FilterPayload allows events whose payload is a T accepted by pred.
func FilterPayload[T Payload](pred func(T) bool) FilterFunc {
	return func(e Event) bool {
		p, ok := e.Payload.(T)
		return ok && pred(p)
	}
}

// FilterAnd allows events accepted by every filter.
func FilterAnd(filters ...FilterFunc) FilterFunc {
	return func(e Event) bool {
		for _, f := range filters {
			if f != nil && !f(e) {
				return false
			}
		}
		return true
	}
}

// FilterOr allows events accepted by any filter.
func FilterOr(filters ...FilterFunc) FilterFunc {
	return func(e Event) bool {
		for _, f := range filters {
			if f != nil && f(e) {
				return true
			}
		}
		return false
	}
}

// FilterNot inverts f.
func FilterNot(f FilterFunc) FilterFunc {
	return func(e Event) bool {
		return !f(e)
	}
}

// FilterAll allows every event.
func FilterAll() FilterFunc {
	return func(Event) bool { return true }
}

// FilterNone rejects every event.
func FilterNone() FilterFunc {
	return func(Event) bool { return false }
}

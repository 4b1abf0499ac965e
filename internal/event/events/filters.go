package events

import (
	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/topic"
)

// FiltersUpdated carries the filters now in effect.
type FiltersUpdated struct {
	Filters domain.Filters
	Matches int
}

func (FiltersUpdated) EventType() topic.Topic { return TypeFiltersUpdated }

// FiltersCleared is published when all filters are reset.
type FiltersCleared struct{}

func (FiltersCleared) EventType() topic.Topic { return TypeFiltersCleared }

// SearchPerformed is published for every comment search.
type SearchPerformed struct {
	Query   string
	Results int
}

func (SearchPerformed) EventType() topic.Topic { return TypeSearchPerformed }

package integration

import (
	"context"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
)

// UpdateFilters replaces the active filters.
func (s *Service) UpdateFilters(ctx context.Context, f domain.Filters) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.mu.Lock()
	s.filters = f.Clone()
	matches := s.countMatching()
	s.mu.Unlock()

	s.publish(ctx, events.FiltersUpdated{Filters: f.Clone(), Matches: matches})
	return nil
}

// ClearFilters resets every filter, including the search query.
func (s *Service) ClearFilters(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.mu.Lock()
	s.filters = domain.Filters{}
	s.mu.Unlock()

	s.publish(ctx, events.FiltersCleared{})
	return nil
}

// Search sets the search query on top of the other filters and returns
// the matching comments.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Comment, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.filters.Query = query
	results := s.matching()
	s.mu.Unlock()

	s.publish(ctx, events.SearchPerformed{Query: query, Results: len(results)})
	return results, nil
}

// Filters returns the active filters.
func (s *Service) Filters() domain.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// FilteredComments returns the comments passing the active filters.
func (s *Service) FilteredComments() []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matching()
}

func (s *Service) matching() []domain.Comment {
	out := make([]domain.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		if s.filters.Match(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (s *Service) countMatching() int {
	n := 0
	for _, c := range s.comments {
		if s.filters.Match(c) {
			n++
		}
	}
	return n
}

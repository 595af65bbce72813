package calendar

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// Search returns occurrences whose title or description contains term, ignoring case.
// An empty term matches everything.
func (s *Service) Search(ctx context.Context, term string) []Occurrence {
	term = strings.ToLower(strings.TrimSpace(term))
	var found []Occurrence
	for occ := range s.expander.All(s.store.List(ctx), s.Horizon()) {
		if matches(occ, term) {
			found = append(found, occ)
		}
	}
	sortOccurrences(found)
	return found
}

func (s *Service) EventsOn(ctx context.Context, date civil.Date) []Occurrence {
	return s.Between(ctx, date, date)
}

// Between returns the occurrences dated from..to inclusive, sorted.
func (s *Service) Between(ctx context.Context, from, to civil.Date) []Occurrence {
	var found []Occurrence
	for occ := range s.expander.All(s.store.List(ctx), s.Horizon()) {
		if occ.Date.Before(from) || to.Before(occ.Date) {
			continue
		}
		found = append(found, occ)
	}
	sortOccurrences(found)
	return found
}

func matches(occ Occurrence, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(occ.Title), term) ||
		strings.Contains(strings.ToLower(occ.Description), term)
}

// sortOccurrences orders by date, then time (all-day first), then title.
func sortOccurrences(occurrences []Occurrence) {
	slices.SortStableFunc(occurrences, func(a, b Occurrence) int {
		if a.Date != b.Date {
			if a.Date.Before(b.Date) {
				return -1
			}
			return 1
		}
		return cmp.Or(
			cmp.Compare(a.Time, b.Time),
			cmp.Compare(a.Title, b.Title),
		)
	})
}

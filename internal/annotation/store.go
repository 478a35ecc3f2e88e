// Package annotation holds the per-build ordered badge and summary
// sequences. Both sequences keep dense indices: removing an entry shifts
// every later entry down by one.
package annotation

import (
	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// Store is not safe for concurrent use. One store belongs to one build and is
// mutated by a single script execution at a time.
type Store struct {
	badges    []domain.Badge
	summaries []*domain.Summary
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Load creates a store pre-populated with a build's existing annotations
func Load(badges []domain.Badge, summaries []domain.Summary) *Store {
	s := NewStore()
	for _, b := range badges {
		s.AppendBadge(b)
	}
	for _, sm := range summaries {
		entry := sm
		s.AppendSummary(&entry)
	}
	return s
}

// AppendBadge adds a badge at the end and returns its index
func (s *Store) AppendBadge(b domain.Badge) int {
	s.badges = append(s.badges, b)
	return len(s.badges) - 1
}

// RemoveBadgeAt removes the badge at index, whatever its kind
func (s *Store) RemoveBadgeAt(index int) error {
	if index < 0 || index >= len(s.badges) {
		return &OutOfRangeError{Sequence: "badge", Index: index, Len: len(s.badges)}
	}
	s.badges = append(s.badges[:index], s.badges[index+1:]...)
	return nil
}

// ClearBadges removes all badges
func (s *Store) ClearBadges() {
	s.badges = nil
}

// BadgeCount returns the number of badges
func (s *Store) BadgeCount() int {
	return len(s.badges)
}

// Badges returns a copy of the badge sequence with positions set
func (s *Store) Badges() []domain.Badge {
	out := make([]domain.Badge, len(s.badges))
	for i, b := range s.badges {
		b.Position = i
		out[i] = b
	}
	return out
}

// AppendSummary adds a summary at the end and returns its index. The store
// keeps the pointer, so later edits through it are visible until the entry
// is removed.
func (s *Store) AppendSummary(sm *domain.Summary) int {
	s.summaries = append(s.summaries, sm)
	return len(s.summaries) - 1
}

// RemoveSummaryAt removes the summary at index
func (s *Store) RemoveSummaryAt(index int) error {
	if index < 0 || index >= len(s.summaries) {
		return &OutOfRangeError{Sequence: "summary", Index: index, Len: len(s.summaries)}
	}
	s.summaries = append(s.summaries[:index], s.summaries[index+1:]...)
	return nil
}

// ClearSummaries removes all summaries
func (s *Store) ClearSummaries() {
	s.summaries = nil
}

// SummaryCount returns the number of summaries
func (s *Store) SummaryCount() int {
	return len(s.summaries)
}

// Summaries returns a copy of the summary sequence with positions set
func (s *Store) Summaries() []domain.Summary {
	out := make([]domain.Summary, len(s.summaries))
	for i, sm := range s.summaries {
		entry := *sm
		entry.Position = i
		out[i] = entry
	}
	return out
}

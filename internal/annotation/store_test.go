package annotation

import (
	"errors"
	"testing"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

func texts(badges []domain.Badge) []string {
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = b.Text
	}
	return out
}

func TestStore_AppendBadgeReturnsIndex(t *testing.T) {
	s := NewStore()

	if got := s.AppendBadge(domain.Badge{Kind: domain.BadgeShortText, Text: "A"}); got != 0 {
		t.Errorf("first index = %d, want 0", got)
	}
	if got := s.AppendBadge(domain.Badge{Kind: domain.BadgeHTML, Text: "B"}); got != 1 {
		t.Errorf("second index = %d, want 1", got)
	}
}

func TestStore_RemoveBadgeShiftsLaterEntries(t *testing.T) {
	s := NewStore()
	s.AppendBadge(domain.Badge{Kind: domain.BadgeHTML, Text: "A"})
	s.AppendBadge(domain.Badge{Kind: domain.BadgeShortText, Text: "B"})
	s.AppendBadge(domain.Badge{Kind: domain.BadgeShortText, Text: "C"})

	if err := s.RemoveBadgeAt(0); err != nil {
		t.Fatal(err)
	}

	badges := s.Badges()
	if len(badges) != 2 {
		t.Fatalf("got %d badges, want 2", len(badges))
	}
	for i, b := range badges {
		if b.Position != i {
			t.Errorf("badge %q position = %d, want %d", b.Text, b.Position, i)
		}
	}
	if badges[0].Text != "B" || badges[1].Text != "C" {
		t.Errorf("got %v, want [B C]", texts(badges))
	}
}

func TestStore_RemoveBadgeOutOfRange(t *testing.T) {
	s := NewStore()
	s.AppendBadge(domain.Badge{Text: "A"})

	for _, idx := range []int{-1, 1, 5} {
		err := s.RemoveBadgeAt(idx)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("RemoveBadgeAt(%d) error = %v, want ErrOutOfRange", idx, err)
		}
	}
	if s.BadgeCount() != 1 {
		t.Errorf("failed removals changed the store: count = %d", s.BadgeCount())
	}
}

func TestStore_ClearBadgesIsIdempotent(t *testing.T) {
	s := NewStore()
	s.AppendBadge(domain.Badge{Text: "A"})
	s.ClearBadges()
	s.ClearBadges()

	if s.BadgeCount() != 0 {
		t.Errorf("count = %d, want 0", s.BadgeCount())
	}
	if got := s.AppendBadge(domain.Badge{Text: "B"}); got != 0 {
		t.Errorf("index after clear = %d, want 0", got)
	}
}

func TestStore_SequencesAreIndependent(t *testing.T) {
	s := NewStore()
	s.AppendBadge(domain.Badge{Text: "badge"})
	s.AppendSummary(&domain.Summary{Icon: "info", Text: "summary-1"})
	s.AppendSummary(&domain.Summary{Icon: "info", Text: "summary-2"})

	s.ClearBadges()
	if s.SummaryCount() != 2 {
		t.Errorf("clearing badges touched summaries: count = %d", s.SummaryCount())
	}

	s.AppendBadge(domain.Badge{Text: "again"})
	if err := s.RemoveSummaryAt(0); err != nil {
		t.Fatal(err)
	}
	if s.BadgeCount() != 1 {
		t.Errorf("removing a summary touched badges: count = %d", s.BadgeCount())
	}

	summaries := s.Summaries()
	if len(summaries) != 1 || summaries[0].Text != "summary-2" || summaries[0].Position != 0 {
		t.Errorf("got %+v, want summary-2 at 0", summaries)
	}

	s.ClearSummaries()
	if s.SummaryCount() != 0 {
		t.Errorf("summary count = %d, want 0", s.SummaryCount())
	}
}

func TestStore_SummaryPointerStaysLive(t *testing.T) {
	s := NewStore()
	entry := &domain.Summary{Icon: "info"}
	s.AppendSummary(entry)

	entry.Text = "<b>late</b>"
	if got := s.Summaries()[0].Text; got != "<b>late</b>" {
		t.Errorf("Text = %q, want edit through pointer to be visible", got)
	}
}

func TestStore_RemoveSummaryOutOfRange(t *testing.T) {
	s := NewStore()
	err := s.RemoveSummaryAt(0)

	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("error = %v, want *OutOfRangeError", err)
	}
	if oor.Sequence != "summary" || oor.Len != 0 {
		t.Errorf("got %+v", oor)
	}
}

func TestLoad(t *testing.T) {
	s := Load(
		[]domain.Badge{{Text: "old-1"}, {Text: "old-2"}},
		[]domain.Summary{{Icon: "info", Text: "old"}},
	)

	if s.BadgeCount() != 2 || s.SummaryCount() != 1 {
		t.Fatalf("got %d badges, %d summaries", s.BadgeCount(), s.SummaryCount())
	}
	if err := s.RemoveBadgeAt(0); err != nil {
		t.Fatal(err)
	}
	if got := texts(s.Badges()); len(got) != 1 || got[0] != "old-2" {
		t.Errorf("got %v, want [old-2]", got)
	}
}

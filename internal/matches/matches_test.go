package matches

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ranked-profile/internal/domain"
)

// match builds a Match with one score change per uuid/score pair.
func match(id string, decay bool, pairs ...any) domain.Match {
	m := domain.Match{ID: id, Decay: decay}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.ScoreChanges = append(m.ScoreChanges, domain.ScoreChange{
			UUID:  pairs[i].(string),
			Score: pairs[i+1].(int),
		})
	}
	return m
}

func ids(list []domain.Match) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

func TestWithoutDecayed_DropsDecayKeepsOrder(t *testing.T) {
	list := []domain.Match{
		match("1", false),
		match("2", true),
		match("3", false),
		match("4", true),
		match("5", false),
	}

	got := slices.Collect(WithoutDecayed(slices.Values(list)))

	if diff := cmp.Diff([]string{"1", "3", "5"}, ids(got)); diff != "" {
		t.Errorf("retained ids mismatch (-want +got):\n%s", diff)
	}
	for _, m := range got {
		if m.Decay {
			t.Errorf("match %s retained with Decay=true", m.ID)
		}
	}
}

func TestWithoutDecayed_Empty(t *testing.T) {
	got := slices.Collect(WithoutDecayed(slices.Values([]domain.Match(nil))))
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestWithoutDecayed_AllDecayed(t *testing.T) {
	list := []domain.Match{match("1", true), match("2", true)}
	got := slices.Collect(WithoutDecayed(slices.Values(list)))
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", ids(got))
	}
}

func TestWithoutDecayed_StopsEarly(t *testing.T) {
	pulled := 0
	src := func(yield func(domain.Match) bool) {
		for _, m := range []domain.Match{match("1", false), match("2", false), match("3", false)} {
			pulled++
			if !yield(m) {
				return
			}
		}
	}

	for m := range WithoutDecayed(src) {
		if m.ID == "1" {
			break
		}
	}
	if pulled != 1 {
		t.Errorf("expected the source to be pulled once, got %d", pulled)
	}
}

func TestTimeline_EndToEnd(t *testing.T) {
	list := []domain.Match{
		match("1", true, "A", 1400),
		match("2", false, "A", 1500),
		match("3", false, "B", 1600),
	}

	got := RatingHistory("A", list)

	if diff := cmp.Diff([]int{1500}, got); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeline_KeepsInputOrderAndExactScores(t *testing.T) {
	list := []domain.Match{
		match("3", false, "A", 1532, "B", 1490),
		match("2", false, "B", 1510, "A", 1517),
		match("1", false, "A", 1500, "B", 1500),
	}

	got := Timeline("A", slices.Values(list))

	if diff := cmp.Diff([]int{1532, 1517, 1500}, got); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeline_SkipsMatchesWithoutPlayer(t *testing.T) {
	list := []domain.Match{
		match("1", false, "B", 1000),
		match("2", false),
		match("3", false, "A", 900),
	}

	got := Timeline("A", slices.Values(list))

	if diff := cmp.Diff([]int{900}, got); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeline_DuplicateEntryCountsOnce(t *testing.T) {
	list := []domain.Match{match("1", false, "A", 1200, "A", 1300)}

	got := Timeline("A", slices.Values(list))

	if diff := cmp.Diff([]int{1200}, got); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeline_EmptyInputIsEmptyNotNil(t *testing.T) {
	got := RatingHistory("A", nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestTimeline_Restartable(t *testing.T) {
	list := []domain.Match{match("1", false, "A", 1), match("2", false, "A", 2)}
	seq := WithoutDecayed(slices.Values(list))

	first := Timeline("A", seq)
	second := Timeline("A", seq)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestTimeline_NeverLongerThanParticipation(t *testing.T) {
	list := []domain.Match{
		match("1", false, "A", 1, "A", 2),
		match("2", true, "A", 3),
		match("3", false, "B", 4),
		match("4", false, "A", 5),
	}
	participated := 0
	for _, m := range list {
		for _, sc := range m.ScoreChanges {
			if sc.UUID == "A" {
				participated++
				break
			}
		}
	}

	got := RatingHistory("A", list)

	if len(got) > participated {
		t.Errorf("timeline has %d points, player only in %d matches", len(got), participated)
	}
}

func TestChronological_ReversesCopy(t *testing.T) {
	recentFirst := []int{1532, 1517, 1500}

	got := Chronological(recentFirst)

	if diff := cmp.Diff([]int{1500, 1517, 1532}, got); diff != "" {
		t.Errorf("chronological mismatch (-want +got):\n%s", diff)
	}
	if recentFirst[0] != 1532 {
		t.Error("input slice was modified")
	}
	if empty := Chronological(nil); empty == nil {
		t.Error("expected non-nil empty slice for nil input")
	}
}

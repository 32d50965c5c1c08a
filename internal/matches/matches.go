// Package matches turns a player's raw match list into the rating series
// drawn on the profile chart.
package matches

import (
	"iter"
	"slices"

	"ranked-profile/internal/domain"
)

// WithoutDecayed yields the matches of seq whose Decay flag is false, keeping
// their order. Nothing is buffered; seq is consumed as the result is.
func WithoutDecayed(seq iter.Seq[domain.Match]) iter.Seq[domain.Match] {
	return func(yield func(domain.Match) bool) {
		for m := range seq {
			if m.Decay {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Timeline returns the rating puuid held after each match of seq, in the
// order seq yields them. Matches puuid did not take part in are skipped.
// If a match lists puuid more than once only the first entry counts.
func Timeline(puuid string, seq iter.Seq[domain.Match]) []int {
	elo := []int{}
	for m := range seq {
		for _, sc := range m.ScoreChanges {
			if sc.UUID == puuid {
				elo = append(elo, sc.Score)
				break
			}
		}
	}
	return elo
}

// RatingHistory is Timeline over the non-decayed entries of list.
func RatingHistory(puuid string, list []domain.Match) []int {
	return Timeline(puuid, WithoutDecayed(slices.Values(list)))
}

// Chronological returns a reversed copy of a most-recent-first series.
// The upstream match list is newest first; charts want oldest first.
func Chronological(elo []int) []int {
	out := slices.Clone(elo)
	if out == nil {
		return []int{}
	}
	slices.Reverse(out)
	return out
}

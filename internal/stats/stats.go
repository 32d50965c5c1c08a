// Package stats derives win/loss/draw summaries from a player's per-season
// records.
package stats

import (
	"fmt"
	"math"
	"slices"

	"ranked-profile/internal/domain"
)

// WinRate is a percentage rounded to two decimals. Defined is false when the
// record has no games, which is not the same thing as 0%.
type WinRate struct {
	Percent float64
	Defined bool
}

type Summary struct {
	Season  int
	Win     int
	Loss    int
	Draw    int
	WinRate WinRate
}

func (s Summary) Games() int {
	return s.Win + s.Loss + s.Draw
}

// MissingDataError is returned when the requested season has no record.
type MissingDataError struct {
	Season int
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no record for season %d", e.Season)
}

// InvalidRecordError is returned for a record with a negative count.
type InvalidRecordError struct {
	Record domain.Record
}

func (e *InvalidRecordError) Error() string {
	r := e.Record
	return fmt.Sprintf("season %d record has negative count (win=%d loss=%d draw=%d)", r.Season, r.Win, r.Loss, r.Draw)
}

// Season summarises the record stored under season.
func Season(records map[int]domain.Record, season int) (Summary, error) {
	r, ok := records[season]
	if !ok {
		return Summary{}, &MissingDataError{Season: season}
	}
	if r.Win < 0 || r.Loss < 0 || r.Draw < 0 {
		return Summary{}, &InvalidRecordError{Record: r}
	}
	return summarise(season, r.Win, r.Loss, r.Draw), nil
}

// Total sums every season in records. Season is 0 on the result.
func Total(records map[int]domain.Record) (Summary, error) {
	var win, loss, draw int
	for _, season := range Seasons(records) {
		r := records[season]
		if r.Win < 0 || r.Loss < 0 || r.Draw < 0 {
			return Summary{}, &InvalidRecordError{Record: r}
		}
		win += r.Win
		loss += r.Loss
		draw += r.Draw
	}
	return summarise(0, win, loss, draw), nil
}

// Seasons lists the season numbers present in records, ascending.
func Seasons(records map[int]domain.Record) []int {
	out := make([]int, 0, len(records))
	for season := range records {
		out = append(out, season)
	}
	slices.Sort(out)
	return out
}

func summarise(season, win, loss, draw int) Summary {
	s := Summary{Season: season, Win: win, Loss: loss, Draw: draw}
	if games := win + loss + draw; games > 0 {
		s.WinRate = WinRate{
			Percent: round2(float64(win) / float64(games) * 100),
			Defined: true,
		}
	}
	return s
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

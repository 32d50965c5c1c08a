package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
	"ranked-profile/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ProfileData struct {
	UUID             string          `json:"uuid" validate:"required,mcuuid"`
	Nickname         string          `json:"nickname" validate:"required"`
	EloRate          *int            `json:"elo_rate"`
	EloRank          *int            `json:"elo_rank" validate:"omitempty,gte=0"`
	BestEloRate      *int            `json:"best_elo_rate"`
	Records          RecordSet       `json:"records" validate:"dive"`
	CreatedTime      Timestamp       `json:"created_time"`
	LatestTime       Timestamp       `json:"latest_time"`
	TotalPlayed      int             `json:"total_played" validate:"gte=0"`
	CurrentWinstreak int             `json:"current_winstreak" validate:"gte=0"`
	HighestWinstreak int             `json:"highest_winstreak" validate:"gte=0"`
	BestRecordTime   *int64          `json:"best_record_time" validate:"omitempty,gte=0"`
	Achievements     []BadgeData     `json:"achievements" validate:"dive"`
	Connections      ConnectionsData `json:"connections"`
}

type RecordData struct {
	Win  int `json:"win" validate:"gte=0"`
	Lose int `json:"lose" validate:"gte=0"`
	Draw int `json:"draw" validate:"gte=0"`
}

type BadgeData struct {
	AchieveType int    `json:"achieve_type" validate:"gte=0"`
	TagName     string `json:"tag_name"`
}

type ConnectionsData struct {
	YouTube *ConnectionData `json:"youtube"`
	Twitch  *ConnectionData `json:"twitch"`
}

type ConnectionData struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

type MatchData struct {
	ID           MatchID           `json:"id"`
	IsDecay      bool              `json:"is_decay"`
	Date         Timestamp         `json:"date"`
	ScoreChanges []ScoreChangeData `json:"score_changes" validate:"dive"`
}

type ScoreChangeData struct {
	UUID  string `json:"uuid" validate:"required,mcuuid"`
	Score int    `json:"score"`
}

// RecordSet holds per-season records keyed by season number. The upstream
// sends either an object keyed by the season ("2": {...}) or an array whose
// index is the season, with null for seasons the player sat out.
type RecordSet map[int]RecordData

func (rs *RecordSet) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	out := RecordSet{}

	switch {
	case bytes.Equal(b, []byte("null")):
	case len(b) > 0 && b[0] == '[':
		var list []*RecordData
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		for season, r := range list {
			if r != nil {
				out[season] = *r
			}
		}
	default:
		var byKey map[string]RecordData
		if err := json.Unmarshal(b, &byKey); err != nil {
			return err
		}
		for key, r := range byKey {
			season, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("record key %q is not a season number", key)
			}
			out[season] = r
		}
	}

	*rs = out
	return nil
}

// Timestamp accepts epoch seconds, epoch milliseconds or an RFC 3339 string.
// Numbers above 1e12 are taken as milliseconds. Epochs outside years 1 to
// 9999 are rejected.
type Timestamp struct {
	time.Time
}

const msThreshold = 1_000_000_000_000

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			ts.Time = time.Time{}
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			t, err := fromEpoch(n)
			if err != nil {
				return err
			}
			ts.Time = t
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", s, err)
		}
		ts.Time = t
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("timestamp %s: %w", n, err)
		}
		// 2^63 itself is not an int64, so the upper bound is exclusive
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return fmt.Errorf("timestamp %s out of range", n)
		}
		i = int64(f)
	}
	t, err := fromEpoch(i)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

func fromEpoch(n int64) (time.Time, error) {
	var t time.Time
	if n > msThreshold || n < -msThreshold {
		t = time.UnixMilli(n).UTC()
	} else {
		t = time.Unix(n, 0).UTC()
	}
	if y := t.Year(); y < 1 || y > 9999 {
		return time.Time{}, fmt.Errorf("timestamp %d out of range", n)
	}
	return t, nil
}

// MatchID accepts a numeric or string id.
type MatchID string

func (id *MatchID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = MatchID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = MatchID(n.String())
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Minecraft uuids usually arrive without dashes, which the built-in
	// uuid tag rejects.
	if err := v.RegisterValidation("mcuuid", func(fl validator.FieldLevel) bool {
		_, err := uuid.Parse(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

func (p *ProfileData) Profile() domain.Profile {
	profile := domain.Profile{
		UUID:          p.UUID,
		Nickname:      p.Nickname,
		Rating:        p.EloRate,
		BestRating:    p.BestEloRate,
		Rank:          p.EloRank,
		Records:       make(map[int]domain.Record, len(p.Records)),
		CreatedAt:     p.CreatedTime.Time,
		LastPlayedAt:  p.LatestTime.Time,
		TotalPlayed:   p.TotalPlayed,
		CurrentStreak: p.CurrentWinstreak,
		BestStreak:    p.HighestWinstreak,
		Badges:        make([]domain.Badge, 0, len(p.Achievements)),
	}

	// rank 0 is how the upstream marks an unranked player
	if profile.Rank != nil && *profile.Rank == 0 {
		profile.Rank = nil
	}

	for season, r := range p.Records {
		profile.Records[season] = domain.Record{Season: season, Win: r.Win, Loss: r.Lose, Draw: r.Draw}
	}

	if p.BestRecordTime != nil {
		d := time.Duration(*p.BestRecordTime) * time.Millisecond
		profile.BestTime = &d
	}

	for _, a := range p.Achievements {
		profile.Badges = append(profile.Badges, domain.Badge{AchieveType: a.AchieveType, TagName: a.TagName})
	}

	if c := p.Connections.YouTube; c != nil {
		profile.Connections.YouTube = &domain.Connection{ID: c.ID, Name: c.Name}
	}
	if c := p.Connections.Twitch; c != nil {
		profile.Connections.Twitch = &domain.Connection{ID: c.ID, Name: c.Name}
	}

	return profile
}

func (m *MatchData) Match() domain.Match {
	match := domain.Match{
		ID:           string(m.ID),
		Decay:        m.IsDecay,
		PlayedAt:     m.Date.Time,
		ScoreChanges: make([]domain.ScoreChange, 0, len(m.ScoreChanges)),
	}
	for _, sc := range m.ScoreChanges {
		match.ScoreChanges = append(match.ScoreChanges, domain.ScoreChange{UUID: sc.UUID, Score: sc.Score})
	}
	return match
}

package domain

import (
	"time"
)

type Profile struct {
	UUID     string
	Nickname string

	// nil when the player has no rating or rank this season
	Rating     *int
	BestRating *int
	Rank       *int

	Records map[int]Record

	CreatedAt    time.Time
	LastPlayedAt time.Time

	TotalPlayed   int
	CurrentStreak int
	BestStreak    int

	// nil when the player never finished a ranked run
	BestTime *time.Duration

	// upstream order, duplicates kept
	Badges      []Badge
	Connections Connections
}

type Record struct {
	Season int
	Win    int
	Loss   int
	Draw   int
}

type Match struct {
	ID           string
	Decay        bool
	PlayedAt     time.Time
	ScoreChanges []ScoreChange
}

// ScoreChange carries the participant's rating after the match, not a delta.
type ScoreChange struct {
	UUID  string
	Score int
}

type Badge struct {
	AchieveType int
	TagName     string
}

type Connections struct {
	YouTube *Connection
	Twitch  *Connection
}

type Connection struct {
	ID   string
	Name string
}

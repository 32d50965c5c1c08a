package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"ranked-profile/internal/api"
	"ranked-profile/internal/config"
	"ranked-profile/internal/domain"
	"ranked-profile/internal/stats"
	"ranked-profile/internal/tier"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

const playerUUID = "7665f76f431b41c6b321bea16aff913b"

// MockFetcher is a mock of Fetcher.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) GetProfile(ctx context.Context, nickname string) (*domain.Profile, error) {
	args := m.Called(nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockFetcher) GetMatches(ctx context.Context, nickname string, season int) ([]domain.Match, error) {
	args := m.Called(nickname, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

// rateLimitedFetcher also reports upstream quota like api.Client does.
type rateLimitedFetcher struct {
	*MockFetcher
	info api.RateLimitInfo
}

func (f rateLimitedFetcher) GetRateLimitInfo() api.RateLimitInfo {
	return f.info
}

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, f Fetcher) *ProfileService {
	t.Helper()
	s := NewProfileService(f, tier.Default(), &config.Config{CurrentSeason: 2}, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func ptr[T any](v T) *T { return &v }

func testProfile() *domain.Profile {
	best := 7*time.Minute + 43*time.Second + 42*time.Millisecond
	return &domain.Profile{
		UUID:       playerUUID,
		Nickname:   "Feinberg",
		Rating:     ptr(1534),
		BestRating: ptr(2011),
		Rank:       ptr(3),
		Records: map[int]domain.Record{
			1: {Season: 1, Win: 40, Loss: 12, Draw: 1},
			2: {Season: 2, Win: 7, Loss: 3},
		},
		CreatedAt:     now.Add(-400 * 24 * time.Hour),
		LastPlayedAt:  now.Add(-90 * time.Minute),
		TotalPlayed:   63,
		CurrentStreak: 2,
		BestStreak:    9,
		BestTime:      &best,
		Badges:        []domain.Badge{{AchieveType: 1, TagName: "Top 10"}, {AchieveType: 1, TagName: "Top 10"}},
		Connections:   domain.Connections{Twitch: &domain.Connection{ID: "1", Name: "feinberg"}},
	}
}

// newest first, as the upstream sends them
func testMatches() []domain.Match {
	return []domain.Match{
		{ID: "3", ScoreChanges: []domain.ScoreChange{{UUID: playerUUID, Score: 1534}}},
		{ID: "2", Decay: true, ScoreChanges: []domain.ScoreChange{{UUID: playerUUID, Score: 1490}}},
		{ID: "1", ScoreChanges: []domain.ScoreChange{{UUID: "other", Score: 900}, {UUID: playerUUID, Score: 1500}}},
	}
}

func TestProfileService_View(t *testing.T) {
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Return(testProfile(), nil)
	f.On("GetMatches", "Feinberg", 2).Return(testMatches(), nil)
	s := newTestService(t, f)

	view, err := s.View(context.Background(), " Feinberg ")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	f.AssertExpectations(t)

	if len(view.ViewID) != 12 {
		t.Errorf("expected a 12 char view id, got %q", view.ViewID)
	}

	want := &ProfileView{
		ViewID:         view.ViewID,
		UUID:           playerUUID,
		Nickname:       "Feinberg",
		Rank:           ptr(3),
		Rating:         ptr(1534),
		RatingTier:     tier.Tier{Name: "Diamond", Color: tier.ColorCyan},
		BestRating:     ptr(2011),
		BestTier:       tier.Tier{Name: "Netherite", Color: tier.ColorMagenta},
		Season:         2,
		Summary:        &stats.Summary{Season: 2, Win: 7, Loss: 3, WinRate: stats.WinRate{Percent: 70, Defined: true}},
		Total:          stats.Summary{Win: 47, Loss: 15, Draw: 1, WinRate: stats.WinRate{Percent: 74.6, Defined: true}},
		Timeline:       []int{1500, 1534},
		MatchCount:     3,
		DecayedMatches: 1,
		CreatedAgo:     "1 year ago",
		LastPlayedAgo:  "1 hour ago",
		BestTime:       "7:43.042",
		TotalPlayed:    63,
		CurrentStreak:  2,
		BestStreak:     9,
		Badges:         []domain.Badge{{AchieveType: 1, TagName: "Top 10"}, {AchieveType: 1, TagName: "Top 10"}},
		Links:          []Link{{Platform: "Twitch", Name: "feinberg", URL: "https://twitch.tv/feinberg"}},
	}
	if diff := cmp.Diff(want, view); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileService_View_MissingSeasonAndUnranked(t *testing.T) {
	p := &domain.Profile{UUID: playerUUID, Nickname: "newbie", Records: map[int]domain.Record{}}
	f := new(MockFetcher)
	f.On("GetProfile", "newbie").Return(p, nil)
	f.On("GetMatches", "newbie", 2).Return([]domain.Match{}, nil)
	s := newTestService(t, f)

	view, err := s.View(context.Background(), "newbie")
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	if view.Summary != nil {
		t.Errorf("expected no season summary, got %+v", view.Summary)
	}
	if view.RatingTier != tier.Unranked || view.BestTier != tier.Unranked {
		t.Errorf("expected unranked tiers, got %v / %v", view.RatingTier, view.BestTier)
	}
	if view.Timeline == nil || len(view.Timeline) != 0 {
		t.Errorf("expected empty timeline, got %#v", view.Timeline)
	}
	if view.Total.WinRate.Defined {
		t.Error("total win rate over zero games should be undefined")
	}
	if view.CreatedAgo != "" || view.LastPlayedAgo != "" || view.BestTime != "" {
		t.Errorf("expected blank times, got %q %q %q", view.CreatedAgo, view.LastPlayedAgo, view.BestTime)
	}
}

func TestProfileService_View_InvalidRecord(t *testing.T) {
	p := testProfile()
	p.Records[2] = domain.Record{Season: 2, Win: -1, Loss: 3}
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Return(p, nil)
	f.On("GetMatches", "Feinberg", 2).Return(testMatches(), nil)
	s := newTestService(t, f)
	var logs bytes.Buffer
	s.logger = zerolog.New(&logs)

	view, err := s.View(context.Background(), "Feinberg")
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	var invalid *stats.InvalidRecordError
	if !errors.As(view.RecordErr, &invalid) {
		t.Fatalf("expected InvalidRecordError on the view, got %v", view.RecordErr)
	}
	if invalid.Record.Season != 2 {
		t.Errorf("expected season 2 to be reported, got %d", invalid.Record.Season)
	}
	if view.Summary != nil {
		t.Errorf("expected no season summary, got %+v", view.Summary)
	}
	if !strings.Contains(logs.String(), `"level":"warn"`) || !strings.Contains(logs.String(), "invalid season record") {
		t.Errorf("expected a warning about the record, got logs:\n%s", logs.String())
	}
}

func TestProfileService_View_MissingSeasonIsNotRecordError(t *testing.T) {
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Return(testProfile(), nil)
	f.On("GetMatches", "Feinberg", 7).Return([]domain.Match{}, nil)
	s := newTestService(t, f)

	view, err := s.ViewSeason(context.Background(), "Feinberg", 7)
	if err != nil {
		t.Fatalf("ViewSeason: %v", err)
	}
	if view.Summary != nil || view.RecordErr != nil {
		t.Errorf("expected missing summary without record error, got %+v / %v", view.Summary, view.RecordErr)
	}
	if view.Total.Games() != 63 {
		t.Errorf("expected total over all seasons, got %+v", view.Total)
	}
}

func TestProfileService_View_FetchError(t *testing.T) {
	upstream := &api.StatusError{Code: 400, Message: "User is not exists."}
	f := new(MockFetcher)
	f.On("GetProfile", "ghost").Return(nil, upstream)
	f.On("GetMatches", "ghost", 2).Return([]domain.Match{}, nil).Maybe()
	s := newTestService(t, f)

	_, err := s.View(context.Background(), "ghost")

	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
}

func TestProfileService_View_EmptyNickname(t *testing.T) {
	f := new(MockFetcher)
	s := newTestService(t, f)

	if _, err := s.View(context.Background(), "   "); !errors.Is(err, ErrEmptyNickname) {
		t.Errorf("expected ErrEmptyNickname, got %v", err)
	}
	f.AssertNotCalled(t, "GetProfile", mock.Anything)
}

func TestProfileService_View_LowRateLimit(t *testing.T) {
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Return(testProfile(), nil)
	f.On("GetMatches", "Feinberg", 2).Return(testMatches(), nil)
	s := newTestService(t, rateLimitedFetcher{MockFetcher: f, info: api.RateLimitInfo{Remaining: 1}})

	if _, err := s.View(context.Background(), "Feinberg"); err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestProfileService_RatingHistory(t *testing.T) {
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Return(testProfile(), nil)
	f.On("GetMatches", "Feinberg", 1).Return(testMatches(), nil)
	s := newTestService(t, f)

	got, err := s.RatingHistory(context.Background(), "Feinberg", 1)
	if err != nil {
		t.Fatalf("RatingHistory: %v", err)
	}
	if diff := cmp.Diff([]int{1534, 1500}, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileService_SeasonStats(t *testing.T) {
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Return(testProfile(), nil)
	s := newTestService(t, f)

	got, err := s.SeasonStats(context.Background(), "Feinberg", 1)
	if err != nil {
		t.Fatalf("SeasonStats: %v", err)
	}
	if got.WinRate.Percent != 75.47 {
		t.Errorf("expected 75.47%%, got %v", got.WinRate.Percent)
	}

	_, err = s.SeasonStats(context.Background(), "Feinberg", 9)
	var missing *stats.MissingDataError
	if !errors.As(err, &missing) || missing.Season != 9 {
		t.Errorf("expected MissingDataError for season 9, got %v", err)
	}
}

func TestProfileService_RatingHistory_FetchesConcurrently(t *testing.T) {
	// each fetch waits for the other to start, so a sequential caller would hang
	profileStarted := make(chan struct{})
	matchesStarted := make(chan struct{})
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Run(func(mock.Arguments) {
		close(profileStarted)
		<-matchesStarted
	}).Return(testProfile(), nil)
	f.On("GetMatches", "Feinberg", 2).Run(func(mock.Arguments) {
		close(matchesStarted)
		<-profileStarted
	}).Return(testMatches(), nil)
	s := newTestService(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := s.RatingHistory(ctx, "Feinberg", 2)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RatingHistory: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("profile and matches were not fetched concurrently")
	}
}

func TestProfileService_RatingHistory_FetchError(t *testing.T) {
	upstream := &api.StatusError{Code: 429, Message: "Too many requests"}
	f := new(MockFetcher)
	f.On("GetProfile", "Feinberg").Return(testProfile(), nil).Maybe()
	f.On("GetMatches", "Feinberg", 2).Return(nil, upstream)
	s := newTestService(t, f)

	_, err := s.RatingHistory(context.Background(), "Feinberg", 2)

	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 429 {
		t.Errorf("expected wrapped StatusError, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	"ranked-profile/internal/api"
	"ranked-profile/internal/config"
	"ranked-profile/internal/constants"
	"ranked-profile/internal/domain"
	"ranked-profile/internal/matches"
	"ranked-profile/internal/stats"
	"ranked-profile/internal/tier"
	"ranked-profile/internal/timefmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const lowRateLimit = 10

var ErrEmptyNickname = errors.New("nickname is required")

// Fetcher retrieves already-decoded upstream payloads.
type Fetcher interface {
	GetProfile(ctx context.Context, nickname string) (*domain.Profile, error)
	GetMatches(ctx context.Context, nickname string, season int) ([]domain.Match, error)
}

type rateLimited interface {
	GetRateLimitInfo() api.RateLimitInfo
}

type Link struct {
	Platform string
	Name     string
	URL      string
}

// ProfileView is everything the profile page shows, derived from one fetch.
type ProfileView struct {
	ViewID   string
	UUID     string
	Nickname string

	Rank       *int
	Rating     *int
	RatingTier tier.Tier
	BestRating *int
	BestTier   tier.Tier

	Season int
	// nil when the player has no record for Season, or when RecordErr is set
	Summary *stats.Summary
	Total   stats.Summary
	// set when the records could not be summarised; a missing season is not
	// an error here
	RecordErr error

	// oldest first
	Timeline       []int
	MatchCount     int
	DecayedMatches int

	// empty when the upstream sent no timestamp
	CreatedAgo    string
	LastPlayedAgo string
	BestTime      string

	TotalPlayed   int
	CurrentStreak int
	BestStreak    int

	Badges []domain.Badge
	Links  []Link
}

type ProfileService struct {
	fetcher Fetcher
	tiers   *tier.Table
	season  int
	logger  zerolog.Logger
	now     func() time.Time
}

func NewProfileService(fetcher Fetcher, tiers *tier.Table, cfg *config.Config, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		fetcher: fetcher,
		tiers:   tiers,
		season:  cfg.CurrentSeason,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *ProfileService) CurrentSeason() int {
	return s.season
}

// View builds the profile of nickname for the configured current season.
func (s *ProfileService) View(ctx context.Context, nickname string) (*ProfileView, error) {
	return s.ViewSeason(ctx, nickname, s.season)
}

func (s *ProfileService) ViewSeason(ctx context.Context, nickname string, season int) (*ProfileView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrEmptyNickname
	}

	viewID, err := gonanoid.New(constants.ViewIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate view id: %w", err)
	}
	logger := s.logger.With().Str("view_id", viewID).Str("nickname", nickname).Int("season", season).Logger()
	logger.Info().Msg("building profile view")

	profile, list, err := s.fetch(ctx, nickname, season)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch profile data")
		return nil, fmt.Errorf("failed to fetch profile data: %w", err)
	}
	s.checkRateLimit(logger)

	view := s.build(profile, list, season)
	view.ViewID = viewID

	if view.RecordErr != nil {
		logger.Warn().Err(view.RecordErr).Msg("invalid season record")
	} else if view.Summary == nil {
		logger.Warn().Msg("no record for season")
	}
	logger.Debug().
		Int("matches", view.MatchCount).
		Int("decayed", view.DecayedMatches).
		Int("timeline_points", len(view.Timeline)).
		Msg("rating timeline built")
	logger.Info().Str("uuid", view.UUID).Msg("profile view built")
	return view, nil
}

// RatingHistory returns nickname's ratings across the season's non-decayed
// matches in upstream order, which is most recent first.
func (s *ProfileService) RatingHistory(ctx context.Context, nickname string, season int) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrEmptyNickname
	}

	logger := s.logger.With().Str("nickname", nickname).Int("season", season).Logger()
	logger.Debug().Msg("getting rating history")

	// the match list only carries uuids, so the profile is needed too
	profile, list, err := s.fetch(ctx, nickname, season)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch rating history")
		return nil, fmt.Errorf("failed to fetch rating history: %w", err)
	}

	return matches.RatingHistory(profile.UUID, list), nil
}

// SeasonStats returns nickname's record summary for season. A season the
// player has no record for yields *stats.MissingDataError.
func (s *ProfileService) SeasonStats(ctx context.Context, nickname string, season int) (stats.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return stats.Summary{}, ErrEmptyNickname
	}

	profile, err := s.fetcher.GetProfile(ctx, nickname)
	if err != nil {
		s.logger.Error().Err(err).Str("nickname", nickname).Msg("failed to fetch profile")
		return stats.Summary{}, fmt.Errorf("failed to fetch profile: %w", err)
	}

	summary, err := stats.Season(profile.Records, season)
	if err != nil {
		s.logger.Warn().Err(err).Str("nickname", nickname).Int("season", season).Msg("season summary unavailable")
		return stats.Summary{}, err
	}
	return summary, nil
}

// fetch gets the profile and the season's match list concurrently.
func (s *ProfileService) fetch(ctx context.Context, nickname string, season int) (*domain.Profile, []domain.Match, error) {
	var profile *domain.Profile
	var list []domain.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.fetcher.GetProfile(gCtx, nickname)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = s.fetcher.GetMatches(gCtx, nickname, season)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return profile, list, nil
}

func (s *ProfileService) build(profile *domain.Profile, list []domain.Match, season int) *ProfileView {
	now := s.now()
	history := matches.RatingHistory(profile.UUID, list)

	view := &ProfileView{
		UUID:           profile.UUID,
		Nickname:       profile.Nickname,
		Rank:           profile.Rank,
		Rating:         profile.Rating,
		RatingTier:     s.tiers.Classify(profile.Rating),
		BestRating:     profile.BestRating,
		BestTier:       s.tiers.Classify(profile.BestRating),
		Season:         season,
		Timeline:       matches.Chronological(history),
		MatchCount:     len(list),
		DecayedMatches: countDecayed(list),
		TotalPlayed:    profile.TotalPlayed,
		CurrentStreak:  profile.CurrentStreak,
		BestStreak:     profile.BestStreak,
		Badges:         slices.Clone(profile.Badges),
		Links:          links(profile.Connections),
	}

	var missing *stats.MissingDataError
	summary, err := stats.Season(profile.Records, season)
	switch {
	case err == nil:
		view.Summary = &summary
	case !errors.As(err, &missing):
		view.RecordErr = err
	}

	total, err := stats.Total(profile.Records)
	if err != nil {
		view.RecordErr = err
	} else {
		view.Total = total
	}

	if !profile.CreatedAt.IsZero() {
		view.CreatedAgo = timefmt.Since(profile.CreatedAt, now)
	}
	if !profile.LastPlayedAt.IsZero() {
		view.LastPlayedAgo = timefmt.Since(profile.LastPlayedAt, now)
	}
	if profile.BestTime != nil {
		view.BestTime = timefmt.Duration(*profile.BestTime)
	}

	return view
}

func (s *ProfileService) checkRateLimit(logger zerolog.Logger) {
	rl, ok := s.fetcher.(rateLimited)
	if !ok {
		return
	}
	info := rl.GetRateLimitInfo()
	if info.Remaining < lowRateLimit {
		logger.Warn().
			Int("remaining", info.Remaining).
			Int("reset_seconds", info.Reset).
			Msg("upstream rate limit nearly exhausted")
	}
}

func countDecayed(list []domain.Match) int {
	n := 0
	for _, m := range list {
		if m.Decay {
			n++
		}
	}
	return n
}

func links(c domain.Connections) []Link {
	var out []Link
	if c.YouTube != nil {
		out = append(out, Link{Platform: "YouTube", Name: c.YouTube.Name, URL: "https://youtube.com/" + url.PathEscape(c.YouTube.Name)})
	}
	if c.Twitch != nil {
		out = append(out, Link{Platform: "Twitch", Name: c.Twitch.Name, URL: "https://twitch.tv/" + url.PathEscape(c.Twitch.Name)})
	}
	return out
}

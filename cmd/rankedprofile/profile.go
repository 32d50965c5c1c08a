package main

import (
	"errors"
	"fmt"
	"ranked-profile/internal/constants"
	"ranked-profile/internal/matches"
	"ranked-profile/internal/render"
	"ranked-profile/internal/service"
	"ranked-profile/internal/stats"

	"github.com/spf13/cobra"
)

var (
	profileSeason  int
	timelineSeason int
	statsSeason    int
	recentFirst    bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <nickname>",
	Short: "Show a player's profile",
	Long: `Fetch a player's profile and season matches and print rank, rating tier,
season record, rating sparkline, badges and linked accounts.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <nickname>",
	Short: "Show a player's rating after each match of a season",
	Long: `Print the player's rating after each non-decayed match of the season,
oldest first unless --recent-first is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

var statsCmd = &cobra.Command{
	Use:   "stats <nickname>",
	Short: "Show a player's win/loss/draw record for a season",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	profileCmd.Flags().IntVar(&profileSeason, "season", 0, "season to show (default: CURRENT_SEASON)")
	timelineCmd.Flags().IntVar(&timelineSeason, "season", 0, "season to show (default: CURRENT_SEASON)")
	timelineCmd.Flags().BoolVar(&recentFirst, "recent-first", false, "list the most recent match first")
	statsCmd.Flags().IntVar(&statsSeason, "season", 0, "season to show (default: CURRENT_SEASON)")
}

// seasonFlag returns the --season value when it was given, otherwise the
// configured current season.
func seasonFlag(cmd *cobra.Command, value int, svc *service.ProfileService) int {
	if cmd.Flags().Changed("season") {
		return value
	}
	return svc.CurrentSeason()
}

func runProfile(cmd *cobra.Command, args []string) error {
	var svc *service.ProfileService
	if err := populate(&svc); err != nil {
		return err
	}

	view, err := svc.ViewSeason(cmd.Context(), args[0], seasonFlag(cmd, profileSeason, svc))
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}

	render.Profile(cmd.OutOrStdout(), view, constants.SparklineWidth)
	return nil
}

func runTimeline(cmd *cobra.Command, args []string) error {
	var svc *service.ProfileService
	if err := populate(&svc); err != nil {
		return err
	}

	ratings, err := svc.RatingHistory(cmd.Context(), args[0], seasonFlag(cmd, timelineSeason, svc))
	if err != nil {
		return fmt.Errorf("get rating history: %w", err)
	}
	if !recentFirst {
		ratings = matches.Chronological(ratings)
	}

	render.Timeline(cmd.OutOrStdout(), ratings, constants.SparklineWidth)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	var svc *service.ProfileService
	if err := populate(&svc); err != nil {
		return err
	}

	season := seasonFlag(cmd, statsSeason, svc)
	summary, err := svc.SeasonStats(cmd.Context(), args[0], season)

	var missing *stats.MissingDataError
	if errors.As(err, &missing) {
		fmt.Fprintf(cmd.OutOrStdout(), "Season %d: N/A (no record)\n", missing.Season)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get season stats: %w", err)
	}

	render.Summary(cmd.OutOrStdout(), summary)
	return nil
}

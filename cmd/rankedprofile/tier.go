package main

import (
	"fmt"
	"strconv"
	"strings"
	"ranked-profile/internal/render"
	"ranked-profile/internal/tier"

	"github.com/spf13/cobra"
)

var tierCmd = &cobra.Command{
	Use:   "tier [rating|N/A]",
	Short: "Look up the tier of a rating, or list all tiers",
	Long: `With a rating, print the tier it falls in. "N/A" or "-" is an unranked
player. Without an argument, print the whole tier table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTier,
}

func runTier(cmd *cobra.Command, args []string) error {
	var table *tier.Table
	if err := populate(&table); err != nil {
		return err
	}

	if len(args) == 0 {
		render.Tiers(cmd.OutOrStdout(), table)
		return nil
	}

	rating, err := parseRating(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Rating(rating, table.Classify(rating)))
	return nil
}

func parseRating(s string) (*int, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "N/A", "NA", "-", "":
		return nil, nil
	}
	r, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid rating %q: want an integer or N/A", s)
	}
	return &r, nil
}

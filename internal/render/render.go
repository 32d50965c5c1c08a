// Package render writes profile views as terminal text.
package render

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"ranked-profile/internal/service"
	"ranked-profile/internal/stats"
	"ranked-profile/internal/tier"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const na = "N/A"

var (
	cHeader = color.New(color.FgCyan, color.Bold)
	cMuted  = color.New(color.Faint)

	tierColors = map[tier.Color]*color.Color{
		tier.ColorGray:    color.New(color.FgHiBlack),
		tier.ColorWhite:   color.New(color.FgWhite),
		tier.ColorYellow:  color.New(color.FgYellow),
		tier.ColorGreen:   color.New(color.FgGreen),
		tier.ColorCyan:    color.New(color.FgCyan),
		tier.ColorBlue:    color.New(color.FgBlue),
		tier.ColorMagenta: color.New(color.FgMagenta),
		tier.ColorRed:     color.New(color.FgRed),
	}
)

// Profile prints the full profile page.
func Profile(w io.Writer, v *service.ProfileView, sparkWidth int) {
	fmt.Fprintf(w, "\n%s  %s\n", cHeader.Sprint(v.Nickname), cMuted.Sprint(v.UUID))
	fmt.Fprintf(w, "  Rank          : %s\n", Rank(v.Rank))
	fmt.Fprintf(w, "  Rating        : %s\n", Rating(v.Rating, v.RatingTier))
	fmt.Fprintf(w, "  Best rating   : %s\n", Rating(v.BestRating, v.BestTier))

	fmt.Fprintf(w, "\n--- General ---\n\n")
	fmt.Fprintf(w, "  Joined        : %s\n", orNA(v.CreatedAgo))
	fmt.Fprintf(w, "  Last played   : %s\n", orNA(v.LastPlayedAgo))
	fmt.Fprintf(w, "  Best time     : %s\n", orNA(v.BestTime))
	fmt.Fprintf(w, "  Games played  : %s\n", humanize.Comma(int64(v.TotalPlayed)))
	fmt.Fprintf(w, "  Win streak    : %d (best %d)\n", v.CurrentStreak, v.BestStreak)
	for _, l := range v.Links {
		fmt.Fprintf(w, "  %-14s: %s\n", l.Platform, l.URL)
	}

	fmt.Fprintf(w, "\n--- Season %d rating ---\n\n", v.Season)
	if len(v.Timeline) == 0 {
		fmt.Fprintln(w, "  No rated matches this season.")
	} else {
		lo, hi := slices.Min(v.Timeline), slices.Max(v.Timeline)
		fmt.Fprintf(w, "  %s  %d → %d  (low %d, high %d, %d matches)\n",
			Sparkline(v.Timeline, sparkWidth), v.Timeline[0], v.Timeline[len(v.Timeline)-1], lo, hi, len(v.Timeline))
	}

	fmt.Fprintf(w, "\n--- Record ---\n\n")
	StatsTable(w, v.Season, v.Summary, v.Total)
	if v.RecordErr != nil {
		fmt.Fprintf(w, "  %s\n", cMuted.Sprintf("records unavailable: %v", v.RecordErr))
	}

	fmt.Fprintf(w, "\n--- Badges ---\n\n")
	if len(v.Badges) == 0 {
		fmt.Fprintln(w, "  None")
	}
	for _, b := range v.Badges {
		fmt.Fprintf(w, "  • %s\n", b.TagName)
	}
	fmt.Fprintln(w)
}

// StatsTable prints the season row (N/A when season is nil) and the
// all-seasons total.
func StatsTable(w io.Writer, seasonNum int, season *stats.Summary, total stats.Summary) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("SEASON", "W", "L", "D", "GAMES", "WIN%")

	if season == nil {
		table.Append(strconv.Itoa(seasonNum), na, na, na, na, na)
	} else {
		table.Append(summaryRow(strconv.Itoa(seasonNum), *season)...)
	}
	table.Append(summaryRow("ALL", total)...)
	table.Render()
}

// Summary prints a single season's record.
func Summary(w io.Writer, s stats.Summary) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
	}))
	table.Header("SEASON", "W", "L", "D", "GAMES", "WIN%")
	table.Append(summaryRow(strconv.Itoa(s.Season), s)...)
	table.Render()
}

func summaryRow(label string, s stats.Summary) []any {
	return []any{
		label,
		strconv.Itoa(s.Win),
		strconv.Itoa(s.Loss),
		strconv.Itoa(s.Draw),
		strconv.Itoa(s.Games()),
		WinRate(s.WinRate),
	}
}

// Timeline prints one rating per line with the change from the previous
// entry, in the order given.
func Timeline(w io.Writer, ratings []int, sparkWidth int) {
	if len(ratings) == 0 {
		fmt.Fprintln(w, "No rated matches.")
		return
	}
	fmt.Fprintf(w, "%s\n\n", Sparkline(ratings, sparkWidth))

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
	}))
	table.Header("#", "RATING", "CHANGE")
	for i, r := range ratings {
		change := "—"
		if i > 0 {
			change = fmt.Sprintf("%+d", r-ratings[i-1])
		}
		table.Append(strconv.Itoa(i+1), strconv.Itoa(r), change)
	}
	table.Render()
}

// Tiers prints a tier table with each tier's inclusive lower bound.
func Tiers(w io.Writer, t *tier.Table) {
	table := tablewriter.NewTable(w)
	table.Header("TIER", "FROM", "COLOR")
	for i, tr := range t.Tiers() {
		from := "−∞"
		if floor, ok := t.Floor(i); ok {
			from = strconv.Itoa(floor)
		}
		table.Append(Tier(tr), from, string(tr.Color))
	}
	table.Render()
}

// Rank is "#N", or N/A for an unranked player.
func Rank(rank *int) string {
	if rank == nil {
		return na
	}
	return "#" + humanize.Comma(int64(*rank))
}

// Rating is the rating followed by its colored tier name.
func Rating(rating *int, t tier.Tier) string {
	if rating == nil {
		return fmt.Sprintf("%s (%s)", na, Tier(t))
	}
	return fmt.Sprintf("%d (%s)", *rating, Tier(t))
}

func Tier(t tier.Tier) string {
	if c, ok := tierColors[t.Color]; ok {
		return c.Sprint(t.Name)
	}
	return t.Name
}

func WinRate(r stats.WinRate) string {
	if !r.Defined {
		return na
	}
	return strconv.FormatFloat(r.Percent, 'f', 2, 64) + "%"
}

var ticks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as block characters scaled between their min and
// max. Only the last width values are drawn when there are more.
func Sparkline(values []int, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}

	lo, hi := slices.Min(values), slices.Max(values)
	var b strings.Builder
	for _, v := range values {
		i := len(ticks) / 2
		if hi > lo {
			i = (v - lo) * (len(ticks) - 1) / (hi - lo)
		}
		b.WriteRune(ticks[i])
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}

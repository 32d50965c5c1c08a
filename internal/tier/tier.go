// Package tier maps ratings to named display tiers.
//
// A Table is an ordered partition of the whole rating axis: the first tier
// takes everything below the second tier's lower bound and the last tier has
// no upper bound. Classify is therefore total, and a nil rating is the
// Unranked tier rather than an error.
package tier

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"ranked-profile/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var defaultTable []byte

var ErrInvalidTable = errors.New("invalid tier table")

type Color string

const (
	ColorNone    Color = ""
	ColorGray    Color = "gray"
	ColorWhite   Color = "white"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorCyan    Color = "cyan"
	ColorBlue    Color = "blue"
	ColorMagenta Color = "magenta"
	ColorRed     Color = "red"
)

var palette = map[Color]bool{
	ColorGray:    true,
	ColorWhite:   true,
	ColorYellow:  true,
	ColorGreen:   true,
	ColorCyan:    true,
	ColorBlue:    true,
	ColorMagenta: true,
	ColorRed:     true,
}

type Tier struct {
	Name  string
	Color Color
}

var Unranked = Tier{Name: "Unranked", Color: ColorNone}

// Row is one entry of a tier table file.
type Row struct {
	Name  string `yaml:"name"`
	Min   *int   `yaml:"min"`
	Color Color  `yaml:"color"`
}

type band struct {
	min  int
	tier Tier
}

type Table struct {
	bands []band
}

// NewTable validates rows and builds a Table. The first row must not set
// min; every later row must, strictly above the previous one.
func NewTable(rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}

	bands := make([]band, 0, len(rows))
	for i, s := range rows {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: tier %d has no name", ErrInvalidTable, i)
		}
		if !palette[s.Color] {
			return nil, fmt.Errorf("%w: tier %q has unknown color %q", ErrInvalidTable, s.Name, s.Color)
		}

		b := band{min: math.MinInt, tier: Tier{Name: s.Name, Color: s.Color}}
		switch {
		case i == 0 && s.Min != nil:
			return nil, fmt.Errorf("%w: lowest tier %q must not set min", ErrInvalidTable, s.Name)
		case i > 0 && s.Min == nil:
			return nil, fmt.Errorf("%w: tier %q has no min", ErrInvalidTable, s.Name)
		case i > 0:
			if *s.Min <= bands[i-1].min {
				return nil, fmt.Errorf("%w: tier %q min %d not above %q", ErrInvalidTable, s.Name, *s.Min, bands[i-1].tier.Name)
			}
			b.min = *s.Min
		}
		bands = append(bands, b)
	}

	return &Table{bands: bands}, nil
}

// Parse reads a YAML tier table.
func Parse(data []byte) (*Table, error) {
	var doc struct {
		Tiers []Row `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tier table: %w", err)
	}
	return NewTable(doc.Tiers)
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads the table at path, or the built-in one when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Parse(defaultTable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier table: %w", err)
	}
	return Parse(data)
}

func New(cfg *config.Config, logger zerolog.Logger) (*Table, error) {
	t, err := Load(cfg.TierTablePath)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.TierTablePath).Msg("failed to load tier table")
		return nil, err
	}
	logger.Debug().Str("path", cfg.TierTablePath).Int("tiers", len(t.bands)).Msg("tier table loaded")
	return t, nil
}

// Classify returns the tier for rating, or Unranked when rating is nil or
// the table is empty (a zero Table).
func (t *Table) Classify(rating *int) Tier {
	if rating == nil || len(t.bands) == 0 {
		return Unranked
	}
	r := *rating
	for i := len(t.bands) - 1; i > 0; i-- {
		if r >= t.bands[i].min {
			return t.bands[i].tier
		}
	}
	return t.bands[0].tier
}

// Tiers lists the table's tiers from lowest to highest.
func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.bands))
	for i, b := range t.bands {
		out[i] = b.tier
	}
	return out
}

// Floor is the inclusive lower bound of the i-th tier. The lowest tier
// reports false.
func (t *Table) Floor(i int) (int, bool) {
	if i <= 0 || i >= len(t.bands) {
		return 0, false
	}
	return t.bands[i].min, true
}

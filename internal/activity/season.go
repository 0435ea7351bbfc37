// internal/activity/season.go
package activity

import (
	"math"
	"strings"
	"time"

	"porest/internal/model"
)

// Season is a project's lifecycle stage, named for the look it gives the
// project's tree.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// Size selects the tree's base geometry.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Geometry holds the drawing constants for one size tier.
type Geometry struct {
	Trunk        float64 `json:"trunk"`
	Width        float64 `json:"width"`
	LeafSize     float64 `json:"leaf_size"`
	BranchOffset float64 `json:"branch_offset"`
}

var sizeGeometry = map[Size]Geometry{
	SizeSmall:  {Trunk: 60, Width: 120, LeafSize: 4, BranchOffset: 15},
	SizeMedium: {Trunk: 100, Width: 200, LeafSize: 6, BranchOffset: 25},
	SizeLarge:  {Trunk: 140, Width: 280, LeafSize: 8, BranchOffset: 35},
}

// GeometryFor returns the drawing constants for a size tier, defaulting to
// medium for anything unrecognized.
func GeometryFor(size Size) Geometry {
	if g, ok := sizeGeometry[size]; ok {
		return g
	}
	return sizeGeometry[SizeMedium]
}

// Palette names the leaf colors for one (season, health) combination.
type Palette struct {
	Name    string   `json:"name"`
	Colors  []string `json:"colors"`
	Opacity float64  `json:"opacity"`
}

var seasonColors = map[Season][]string{
	SeasonSpring: {"spring-bud", "spring-light", "spring-blossom"},
	SeasonSummer: {"summer-green", "summer-bright", "summer-deep"},
	SeasonAutumn: {"autumn-red", "autumn-orange", "autumn-yellow", "autumn-brown"},
	SeasonWinter: {"winter-bark", "winter-frost"},
}

// Healthy trees render at full strength; a stale tree fades. Winter ignores
// health and stays muted.
var seasonOpacity = map[Season][2]float64{
	SeasonSpring: {0.6, 1.0},
	SeasonSummer: {0.7, 1.0},
	SeasonAutumn: {0.5, 0.95},
	SeasonWinter: {0.4, 0.4},
}

// PaletteFor resolves the fixed (season, health) style lookup.
func PaletteFor(season Season, healthy bool) Palette {
	colors, ok := seasonColors[season]
	if !ok {
		season = SeasonSummer
		colors = seasonColors[SeasonSummer]
	}
	opacities := seasonOpacity[season]
	idx := 0
	if healthy {
		idx = 1
	}
	return Palette{
		Name:    string(season),
		Colors:  colors,
		Opacity: opacities[idx],
	}
}

// Leaf is one decorative leaf placed on or under the tree.
type Leaf struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Size       float64 `json:"size"`
	Rotation   float64 `json:"rotation"`
	ColorIndex int     `json:"color_index"`
}

// Snowflake is a winter decoration.
type Snowflake struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// GrowthPlan is everything a renderer needs to draw one project tree. Leaf
// placement is randomized; only the counts, palette, and opacity are
// deterministic.
type GrowthPlan struct {
	Season              Season      `json:"season"`
	Size                Size        `json:"size"`
	Geometry            Geometry    `json:"geometry"`
	TotalCommits        int         `json:"total_commits"`
	DaysSinceLastCommit int         `json:"days_since_last_commit"`
	Healthy             bool        `json:"healthy"`
	LeafCount           int         `json:"leaf_count"`
	Palette             Palette     `json:"palette"`
	Leaves              []Leaf      `json:"leaves"`
	FallenLeaves        []Leaf      `json:"fallen_leaves"`
	Snowflakes          []Snowflake `json:"snowflakes"`
}

// Rand is the random source leaves are scattered with. Injecting it keeps
// layout out of the deterministic contract and lets tests pin a seed.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

const (
	healthyWindowDays = 30
	minLeafBase       = 5
	maxLeafBase       = 200
	leafYShift        = 20
)

// leafBudget derives the leaf count from total commit volume and season.
func leafBudget(totalCommits int, season Season) int {
	base := min(max(totalCommits, minLeafBase), maxLeafBase)
	switch season {
	case SeasonSpring:
		return int(math.Floor(float64(base) * 0.4))
	case SeasonAutumn:
		return int(math.Floor(float64(base) * 0.7))
	case SeasonWinter:
		return int(math.Floor(float64(base) * 0.1))
	default:
		return base
	}
}

func leafSizeFactor(season Season) float64 {
	switch season {
	case SeasonSpring:
		return 0.6
	case SeasonWinter:
		return 0.4
	default:
		return 0.8
	}
}

func fallenLeafCount(season Season) int {
	switch season {
	case SeasonAutumn:
		return 8
	case SeasonWinter:
		return 3
	default:
		return 0
	}
}

// BuildGrowthPlan derives the tree rendering plan for one project. The
// lastCommit date may be empty when the project has no recorded commits;
// the tree then counts as freshly tended. The reference time and random
// source are injected.
func BuildGrowthPlan(commits []model.CommitDay, season Season, size Size, lastCommit string, now time.Time, rng Rand) GrowthPlan {
	if _, ok := seasonColors[season]; !ok {
		season = SeasonSummer
	}

	geo := GeometryFor(size)
	totalCommits := 0
	for _, c := range commits {
		totalCommits += c.Count
	}

	daysSince := 0
	if lastCommit != "" {
		if last, err := time.Parse("2006-01-02", lastCommit); err == nil {
			if elapsed := now.UTC().Sub(last); elapsed > 0 {
				daysSince = int(elapsed.Hours() / 24)
			}
		}
	}
	healthy := daysSince <= healthyWindowDays

	palette := PaletteFor(season, healthy)
	leafCount := leafBudget(totalCommits, season)
	sizeFactor := leafSizeFactor(season)

	leaves := make([]Leaf, 0, leafCount)
	for i := 0; i < leafCount; i++ {
		angle := rng.Float64() * math.Pi
		distance := rng.Float64() * (geo.Width / 3.5)
		leaves = append(leaves, Leaf{
			X:          geo.Width/2 + math.Cos(angle)*distance,
			Y:          geo.BranchOffset - math.Sin(angle)*distance + leafYShift,
			Size:       geo.LeafSize * sizeFactor * (0.7 + rng.Float64()*0.6),
			Rotation:   rng.Float64() * 360,
			ColorIndex: rng.IntN(len(palette.Colors)),
		})
	}

	fallenCount := fallenLeafCount(season)
	fallen := make([]Leaf, 0, fallenCount)
	for i := 0; i < fallenCount; i++ {
		fallen = append(fallen, Leaf{
			X:          rng.Float64() * geo.Width,
			Size:       geo.LeafSize * (0.5 + rng.Float64()*0.5),
			Rotation:   rng.Float64() * 360,
			ColorIndex: rng.IntN(len(palette.Colors)),
		})
	}

	var snow []Snowflake
	if season == SeasonWinter {
		snow = make([]Snowflake, 0, 12)
		for i := 0; i < 12; i++ {
			snow = append(snow, Snowflake{
				X:    rng.Float64() * geo.Width,
				Y:    rng.Float64() * (geo.Trunk + geo.BranchOffset),
				Size: 2 + rng.Float64()*3,
			})
		}
	}

	return GrowthPlan{
		Season:              season,
		Size:                size,
		Geometry:            geo,
		TotalCommits:        totalCommits,
		DaysSinceLastCommit: daysSince,
		Healthy:             healthy,
		LeafCount:           leafCount,
		Palette:             palette,
		Leaves:              leaves,
		FallenLeaves:        fallen,
		Snowflakes:          snow,
	}
}

// InferSeason maps a project's free-text lifecycle state onto a season.
// The state labels are Korean season names in the source data; English
// names are accepted too. Anything unrecognized counts as summer.
func InferSeason(state string) Season {
	s := strings.ToLower(strings.TrimSpace(state))
	switch {
	case strings.HasPrefix(s, "봄") || strings.HasPrefix(s, "spring"):
		return SeasonSpring
	case strings.HasPrefix(s, "여름") || strings.HasPrefix(s, "summer"):
		return SeasonSummer
	case strings.HasPrefix(s, "가을") || strings.HasPrefix(s, "autumn"):
		return SeasonAutumn
	case strings.HasPrefix(s, "겨울") || strings.HasPrefix(s, "winter"):
		return SeasonWinter
	default:
		return SeasonSummer
	}
}

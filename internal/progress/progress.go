// Package progress holds the leveling arithmetic and the per stage world
// look that follows from it.
package progress

import "math"

// Titles earned by level, clamped to the last entry.
var Titles = []string{
	"The Seeker",
	"Novice of Light",
	"Adept of Focus",
	"Pathfinder",
	"Sentinel of Habit",
	"Master of Discipline",
	"Grand Architect of Self",
	"Ascended Spirit",
}

// Worlds names the realm shown for each evolution stage.
var Worlds = []string{
	"The Primordial Void",
	"The Garden of Echoes",
	"The Crystal Sanctuary",
	"The City of Stars",
}

const (
	baseMaxXP = 100
	xpGrowth  = 1.15
)

// Stats is a player's progression.
type Stats struct {
	Level int    `json:"level"`
	XP    int    `json:"xp"`
	MaxXP int    `json:"maxXp"`
	Title string `json:"title"`
}

// Initial is the progression of a brand new player.
func Initial() Stats {
	return Stats{Level: 1, XP: 0, MaxXP: baseMaxXP, Title: Titles[0]}
}

// MaxXPFor is the XP needed to clear the given level.
func MaxXPFor(level int) int {
	return int(math.Floor(baseMaxXP * math.Pow(xpGrowth, float64(level-1))))
}

// TitleFor returns the title for a level.
func TitleFor(level int) string {
	i := level - 1
	if i < 0 {
		i = 0
	}
	if i >= len(Titles) {
		i = len(Titles) - 1
	}
	return Titles[i]
}

// AddXP accumulates amount and rolls over as many levels as it pays for.
func AddXP(s Stats, amount int) Stats {
	s.XP += amount
	if s.MaxXP <= 0 {
		s.MaxXP = MaxXPFor(s.Level)
	}
	for s.XP >= s.MaxXP {
		s.Level++
		s.XP -= s.MaxXP
		s.MaxXP = MaxXPFor(s.Level)
	}
	s.Title = TitleFor(s.Level)
	return s
}

// Fraction is how far the current level is filled, in [0, 1].
func (s Stats) Fraction() float64 {
	if s.MaxXP <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, float64(s.XP)/float64(s.MaxXP)))
}

// StageForLevel maps a level onto the four evolution stages.
func StageForLevel(level int) int {
	switch {
	case level >= 15:
		return 4
	case level >= 10:
		return 3
	case level >= 5:
		return 2
	default:
		return 1
	}
}

// WorldName is the realm name for a stage.
func WorldName(stage int) string {
	if stage < 1 || stage > len(Worlds) {
		return Worlds[0]
	}
	return Worlds[stage-1]
}

// Palette is the field base and glow color pair, as CSS color strings.
type Palette struct {
	Color string
	Glow  string
}

var palettes = []Palette{
	{Color: "rgba(255,255,255,0.05)", Glow: "rgba(255,255,255,0.1)"},
	{Color: "rgba(100,255,150,0.05)", Glow: "rgba(100,255,150,0.2)"},
	{Color: "rgba(100,200,255,0.05)", Glow: "rgba(100,200,255,0.2)"},
	{Color: "rgba(255,215,100,0.05)", Glow: "rgba(255,215,100,0.3)"},
}

// FocusPalette replaces the world palette during a work ritual.
var FocusPalette = Palette{Color: "rgba(212,175,55,0.03)", Glow: "rgba(212,175,55,0.12)"}

// PaletteFor returns the world palette of a stage.
func PaletteFor(stage int) Palette {
	if stage < 1 || stage > len(palettes) {
		return palettes[0]
	}
	return palettes[stage-1]
}

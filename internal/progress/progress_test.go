package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelCurve(t *testing.T) {
	assert.Equal(t, 100, MaxXPFor(1))
	assert.Equal(t, 114, MaxXPFor(2)) // 100*1.15 lands just under 115
	assert.Equal(t, 132, MaxXPFor(3))
	assert.Equal(t, 152, MaxXPFor(4))
}

func TestAddXP(t *testing.T) {
	s := AddXP(Initial(), 40)
	assert.Equal(t, Stats{Level: 1, XP: 40, MaxXP: 100, Title: "The Seeker"}, s)

	s = AddXP(s, 60)
	assert.Equal(t, Stats{Level: 2, XP: 0, MaxXP: 114, Title: "Novice of Light"}, s)
}

func TestAddXPRollsSeveralLevels(t *testing.T) {
	// 100 + 114 + 132 = 346 clears three levels.
	s := AddXP(Initial(), 350)
	assert.Equal(t, 4, s.Level)
	assert.Equal(t, 4, s.XP)
	assert.Equal(t, 152, s.MaxXP)
	assert.Equal(t, "Pathfinder", s.Title)
}

func TestTitleClamps(t *testing.T) {
	assert.Equal(t, "The Seeker", TitleFor(0))
	assert.Equal(t, "Ascended Spirit", TitleFor(8))
	assert.Equal(t, "Ascended Spirit", TitleFor(40))
}

func TestStageForLevel(t *testing.T) {
	cases := map[int]int{1: 1, 4: 1, 5: 2, 9: 2, 10: 3, 14: 3, 15: 4, 99: 4}
	for level, stage := range cases {
		assert.Equal(t, stage, StageForLevel(level), "level %d", level)
	}
}

func TestWorldAndPalette(t *testing.T) {
	assert.Equal(t, "The Garden of Echoes", WorldName(2))
	assert.Equal(t, "The Primordial Void", WorldName(7))
	assert.Equal(t, "rgba(255,215,100,0.3)", PaletteFor(4).Glow)
	assert.Equal(t, PaletteFor(1), PaletteFor(0))
}

func TestFraction(t *testing.T) {
	assert.InDelta(t, 0.4, Stats{XP: 40, MaxXP: 100}.Fraction(), 1e-12)
	assert.Zero(t, Stats{}.Fraction())
}

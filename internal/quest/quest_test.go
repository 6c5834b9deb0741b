package quest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesFallbacks(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	q := New("ran 5k", Verdict{}, now)

	_, err := uuid.Parse(q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_000), q.Timestamp)
	assert.Equal(t, "ran 5k", q.Input)
	assert.Equal(t, DefaultTitle, q.Title)
	assert.Equal(t, DefaultSummary, q.Summary)
	assert.Equal(t, DefaultRank, q.Rank)
	assert.Equal(t, DefaultXP, q.XPAwarded)
	assert.Equal(t, DefaultAura, q.AuraColor)
	assert.Equal(t, DefaultIcon, q.IconHTML)
}

func TestNewKeepsVerdict(t *testing.T) {
	v := Verdict{Rank: "a", XP: 80, Title: "Rain Runner", Summary: "Ran anyway.", AuraColor: "#00ffaa", IconHTML: "<b>🏃</b>"}
	q := New("ran in the rain", v, time.Now())

	assert.Equal(t, RankA, q.Rank)
	assert.Equal(t, 80, q.XPAwarded)
	assert.Equal(t, "Rain Runner", q.Title)
	assert.Equal(t, "Ran anyway.", q.Summary)
	assert.Equal(t, "#00ffaa", q.AuraColor)
	assert.Equal(t, "<b>🏃</b>", q.IconHTML)
}

func TestNewRejectsUnknownRank(t *testing.T) {
	q := New("x", Verdict{Rank: "SSS", XP: 30}, time.Now())
	assert.Equal(t, RankC, q.Rank)
	assert.Equal(t, 30, q.XPAwarded)
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict(`{"rank":"S","xp":99.0,"title":"t","summary":"s","auraColor":"#fff","iconHtml":"✨"}`)
	require.NoError(t, err)
	assert.Equal(t, Verdict{Rank: "S", XP: 99, Title: "t", Summary: "s", AuraColor: "#fff", IconHTML: "✨"}, v)

	v, err = ParseVerdict("  ")
	require.NoError(t, err)
	assert.Equal(t, Verdict{}, v)

	_, err = ParseVerdict("not json")
	assert.Error(t, err)
}

func TestIconText(t *testing.T) {
	assert.Equal(t, "🔥", IconText(`<span class="glow">🔥</span>`))
	assert.Equal(t, "✨", IconText("✨"))
	assert.Equal(t, DefaultIcon, IconText(`<svg viewBox="0 0 1 1"></svg>`))
	assert.Equal(t, DefaultIcon, IconText(""))
}

func TestPromptQuotesInput(t *testing.T) {
	p := Prompt(`read "Dune"`)
	assert.Contains(t, p, `"read \"Dune\""`)
}

func TestClassifierFunc(t *testing.T) {
	var c Classifier = ClassifierFunc(func(_ context.Context, in string) (Verdict, error) {
		return Verdict{Title: in}, nil
	})
	v, err := c.Classify(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Title)
}

func TestNewGeminiClassifierNeedsKey(t *testing.T) {
	_, err := NewGeminiClassifier(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

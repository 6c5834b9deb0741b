// Package quest turns a free text accomplishment into a scored quest.
package quest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Rank grades a quest from E (lowest) to S.
type Rank string

const (
	RankE Rank = "E"
	RankD Rank = "D"
	RankC Rank = "C"
	RankB Rank = "B"
	RankA Rank = "A"
	RankS Rank = "S"
)

// Ranks lists every rank from lowest to highest.
var Ranks = []Rank{RankE, RankD, RankC, RankB, RankA, RankS}

// Valid reports whether r is one of the six ranks.
func (r Rank) Valid() bool {
	for _, v := range Ranks {
		if r == v {
			return true
		}
	}
	return false
}

// Fallbacks used when the classifier leaves a field empty.
const (
	DefaultXP      = 25
	DefaultTitle   = "Rite of Passage"
	DefaultSummary = "Your spirit grows stronger."
	DefaultRank    = RankC
	DefaultAura    = "#d4af37"
	DefaultIcon    = "✨"
)

// Quest is one logged accomplishment.
type Quest struct {
	ID        string `json:"id" csv:"id"`
	Timestamp int64  `json:"timestamp" csv:"timestamp"`
	Input     string `json:"input" csv:"input"`
	Title     string `json:"title" csv:"title"`
	Summary   string `json:"summary" csv:"summary"`
	Rank      Rank   `json:"rank" csv:"rank"`
	XPAwarded int    `json:"xpAwarded" csv:"xp_awarded"`
	AuraColor string `json:"auraColor" csv:"aura_color"`
	IconHTML  string `json:"iconHtml" csv:"icon_html"`
}

// Time returns the quest timestamp.
func (q Quest) Time() time.Time { return time.UnixMilli(q.Timestamp) }

// Verdict is what the classification service says about an entry. Any
// field may come back empty.
type Verdict struct {
	Rank      string  `json:"rank"`
	XP        float64 `json:"xp"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	AuraColor string  `json:"auraColor"`
	IconHTML  string  `json:"iconHtml"`
}

// Classifier scores free text. Implementations talk to an unreliable
// remote service and must honor ctx.
type Classifier interface {
	Classify(ctx context.Context, input string) (Verdict, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, input string) (Verdict, error)

func (f ClassifierFunc) Classify(ctx context.Context, input string) (Verdict, error) {
	return f(ctx, input)
}

// New builds a quest from a verdict, filling every empty field with its
// fallback.
func New(input string, v Verdict, now time.Time) Quest {
	q := Quest{
		ID:        uuid.NewString(),
		Timestamp: now.UnixMilli(),
		Input:     input,
		Title:     orDefault(v.Title, DefaultTitle),
		Summary:   orDefault(v.Summary, DefaultSummary),
		Rank:      Rank(strings.ToUpper(strings.TrimSpace(v.Rank))),
		XPAwarded: int(v.XP),
		AuraColor: orDefault(v.AuraColor, DefaultAura),
		IconHTML:  orDefault(v.IconHTML, DefaultIcon),
	}
	if q.XPAwarded <= 0 {
		q.XPAwarded = DefaultXP
	}
	if !q.Rank.Valid() {
		q.Rank = DefaultRank
	}
	return q
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// IconText extracts the visible text of an icon snippet, for surfaces that
// cannot render markup. Markup without text yields DefaultIcon.
func IconText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if s := strings.TrimSpace(b.String()); s != "" {
				return s
			}
			return DefaultIcon
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

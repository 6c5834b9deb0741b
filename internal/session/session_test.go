package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/iburimskiy/lifequest/internal/haptic"
	"github.com/iburimskiy/lifequest/internal/progress"
	"github.com/iburimskiy/lifequest/internal/quest"
	"github.com/iburimskiy/lifequest/internal/ritual"
	"github.com/iburimskiy/lifequest/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	s        *Session
	profiles *store.Profiles
	pulses   *haptic.Recorder
	now      time.Time
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
	h.s.Update()
}

func testOptions() Options {
	return Options{
		Transition:      600 * time.Millisecond,
		LevelUpFlash:    2500 * time.Millisecond,
		EvolutionBurst:  3 * time.Second,
		XPPopup:         2 * time.Second,
		HintRotation:    5 * time.Second,
		RitualWork:      3 * time.Second,
		RitualBreak:     2 * time.Second,
		RitualRewardXP:  20,
		ClassifyTimeout: time.Second,
	}
}

func newHarness(t *testing.T, oracle quest.Classifier) *harness {
	t.Helper()
	h := &harness{
		profiles: store.NewProfiles(store.NewMemory()),
		pulses:   &haptic.Recorder{},
		now:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	h.s = New(h.profiles, oracle, h.pulses, zaptest.NewLogger(t), testOptions())
	h.s.Now = func() time.Time { return h.now }
	h.s.hintEpoch = h.now
	t.Cleanup(h.s.Close)
	return h
}

func fixed(v quest.Verdict) quest.Classifier {
	return quest.ClassifierFunc(func(context.Context, string) (quest.Verdict, error) { return v, nil })
}

func loggedIn(t *testing.T, oracle quest.Classifier) *harness {
	t.Helper()
	h := newHarness(t, oracle)
	require.NoError(t, h.s.Login("  Arden "))
	h.advance(time.Second)
	require.Equal(t, App, h.s.View())
	return h
}

func TestLoginRequiresSignature(t *testing.T) {
	h := newHarness(t, fixed(quest.Verdict{}))
	assert.ErrorIs(t, h.s.Login(" ab "), ErrSignatureTooShort)
	assert.Equal(t, Landing, h.s.View())

	require.NoError(t, h.s.Login("Arden"))
	assert.True(t, h.s.Transitioning())
	assert.Equal(t, Landing, h.s.View(), "view switches after the transition")
	h.advance(600 * time.Millisecond)
	assert.Equal(t, App, h.s.View())
	assert.False(t, h.s.Transitioning())

	sig, ok, err := h.profiles.ActiveUser()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Arden", sig)
	assert.Equal(t, haptic.Navigate, h.pulses.Last())
}

func TestSubmitLogsQuest(t *testing.T) {
	h := loggedIn(t, fixed(quest.Verdict{Rank: "b", XP: 60, Title: "Rainwalker"}))
	h.s.SetInput("  ran in the rain  ")
	require.NoError(t, h.s.Submit(context.Background()))
	assert.True(t, h.s.Loading())
	assert.Empty(t, h.s.Input())

	h.s.Wait()
	assert.False(t, h.s.Loading())
	qs := h.s.Quests()
	require.Len(t, qs, 1)
	assert.Equal(t, "ran in the rain", qs[0].Input)
	assert.Equal(t, quest.Rank("B"), qs[0].Rank)
	assert.Equal(t, "Rainwalker", qs[0].Title)
	assert.Equal(t, 60, h.s.Stats().XP)
	assert.Contains(t, h.pulses.Pulses, haptic.QuestLogged)
	require.Len(t, h.s.Popups(), 1)
	assert.Equal(t, 60, h.s.Popups()[0].Amount)

	prof, err := h.profiles.Load("Arden")
	require.NoError(t, err)
	assert.Len(t, prof.Quests, 1)
	assert.Equal(t, 60, prof.Stats.XP)
}

func TestSubmitGuards(t *testing.T) {
	release := make(chan struct{})
	h := loggedIn(t, quest.ClassifierFunc(func(ctx context.Context, _ string) (quest.Verdict, error) {
		<-release
		return quest.Verdict{XP: 10}, nil
	}))

	h.s.SetInput("   ")
	assert.ErrorIs(t, h.s.Submit(context.Background()), ErrEmptyInput)
	assert.False(t, h.s.Loading())

	h.s.SetInput("one")
	require.NoError(t, h.s.Submit(context.Background()))
	h.s.SetInput("two")
	assert.ErrorIs(t, h.s.Submit(context.Background()), ErrBusy)
	assert.False(t, h.s.Poll())

	close(release)
	h.s.Wait()
	assert.Len(t, h.s.Quests(), 1)
}

func TestSubmitFailureRestoresInput(t *testing.T) {
	boom := errors.New("oracle is silent")
	h := loggedIn(t, quest.ClassifierFunc(func(context.Context, string) (quest.Verdict, error) {
		return quest.Verdict{}, boom
	}))
	h.s.SetInput("meditated")
	require.NoError(t, h.s.Submit(context.Background()))
	h.s.Wait()

	assert.Equal(t, "meditated", h.s.Input())
	assert.Empty(t, h.s.Quests())
	assert.Equal(t, 0, h.s.Stats().XP)
	assert.ErrorIs(t, h.s.LastErr(), boom)
}

func TestSubmitHonorsTimeout(t *testing.T) {
	h := loggedIn(t, quest.ClassifierFunc(func(ctx context.Context, _ string) (quest.Verdict, error) {
		<-ctx.Done()
		return quest.Verdict{}, ctx.Err()
	}))
	h.s.opts.ClassifyTimeout = 10 * time.Millisecond
	h.s.SetInput("slow")
	require.NoError(t, h.s.Submit(context.Background()))
	h.s.Wait()
	assert.ErrorIs(t, h.s.LastErr(), context.DeadlineExceeded)
	assert.Equal(t, "slow", h.s.Input())
}

func TestSubmitRequiresLogin(t *testing.T) {
	h := newHarness(t, fixed(quest.Verdict{}))
	h.s.SetInput("deed")
	assert.ErrorIs(t, h.s.Submit(context.Background()), ErrNotLoggedIn)
}

func TestLevelUpAndEvolution(t *testing.T) {
	h := loggedIn(t, fixed(quest.Verdict{}))
	h.s.AddXP(100)
	assert.Equal(t, 2, h.s.Stats().Level)
	assert.True(t, h.s.LevelingUp())
	assert.False(t, h.s.Evolving())
	assert.Equal(t, haptic.LevelUp, h.pulses.Last())

	assert.Equal(t, 1.0, h.s.LevelUpFade())
	h.advance(1250 * time.Millisecond)
	assert.InDelta(t, 0.5, h.s.LevelUpFade(), 1e-9)
	h.advance(1250 * time.Millisecond)
	assert.False(t, h.s.LevelingUp())
	assert.Zero(t, h.s.LevelUpFade())

	// Push to level 5, the garden stage.
	for h.s.Stats().Level < 5 {
		h.s.AddXP(h.s.Stats().MaxXP - h.s.Stats().XP)
	}
	assert.Equal(t, 2, h.s.Stage())
	assert.True(t, h.s.Evolving())
	assert.Equal(t, progress.WorldName(2), h.s.WorldName())
	assert.Equal(t, progress.PaletteFor(2), h.s.Palette())

	assert.Equal(t, 1.0, h.s.EvolutionFade())
	h.advance(3 * time.Second)
	assert.False(t, h.s.Evolving())
	assert.Empty(t, h.s.Popups(), "popups expire")

	// Level 6 stays in the garden: no burst.
	h.s.AddXP(h.s.Stats().MaxXP - h.s.Stats().XP)
	assert.Equal(t, 6, h.s.Stats().Level)
	assert.True(t, h.s.LevelingUp())
	assert.False(t, h.s.Evolving())
}

func TestRitualRewardsWork(t *testing.T) {
	h := loggedIn(t, fixed(quest.Verdict{}))
	h.s.ToggleRitual()
	assert.Equal(t, ritual.Work, h.s.Ritual().Mode())
	assert.Equal(t, haptic.RitualStart, h.pulses.Last())
	assert.Equal(t, progress.FocusPalette, h.s.Palette())
	assert.Equal(t, "WORK", h.s.WorldName())

	h.advance(0) // first tick only records the time
	for i := 0; i < 3; i++ {
		h.advance(time.Second)
	}
	assert.Equal(t, ritual.Break, h.s.Ritual().Mode())
	assert.Equal(t, 20, h.s.Stats().XP)
	n := len(h.pulses.Pulses)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, haptic.RitualComplete, h.pulses.Pulses[n-2])
	assert.Equal(t, haptic.RitualStart, h.pulses.Pulses[n-1], "the break starts with its own pulse")
	assert.Equal(t, progress.PaletteFor(1), h.s.Palette())

	h.s.ToggleRitual()
	assert.False(t, h.s.Ritual().Active())
}

func TestHints(t *testing.T) {
	h := newHarness(t, fixed(quest.Verdict{}))
	assert.Equal(t, Hints[0], h.s.Hint())
	h.now = h.now.Add(5 * time.Second)
	assert.Equal(t, Hints[1], h.s.Hint())

	h.s.FillHint()
	assert.Equal(t, Hints[1], h.s.Input())
	h.s.SetInput("mine")
	h.s.FillHint()
	assert.Equal(t, "mine", h.s.Input())
}

func TestFragmentRoundTrip(t *testing.T) {
	h := loggedIn(t, fixed(quest.Verdict{Rank: "A", XP: 75}))
	h.s.SetInput("shipped it")
	require.NoError(t, h.s.Submit(context.Background()))
	h.s.Wait()

	code, err := h.s.ExportFragment()
	require.NoError(t, err)

	other := loggedIn(t, fixed(quest.Verdict{}))
	require.NoError(t, other.s.ImportFragment(code))
	assert.Equal(t, h.s.Stats(), other.s.Stats())
	assert.Equal(t, h.s.Quests(), other.s.Quests())

	before := other.s.Stats()
	assert.Error(t, other.s.ImportFragment("not a fragment"))
	assert.Equal(t, before, other.s.Stats())
}

func TestLogoutAndResume(t *testing.T) {
	h := loggedIn(t, fixed(quest.Verdict{}))
	h.s.AddXP(30)

	again := New(h.profiles, fixed(quest.Verdict{}), nil, nil, testOptions())
	require.NoError(t, again.Resume())
	assert.Equal(t, App, again.View())
	assert.Equal(t, "Arden", again.Signature())
	assert.Equal(t, 30, again.Stats().XP)

	require.NoError(t, h.s.Logout())
	h.advance(time.Second)
	assert.Equal(t, Landing, h.s.View())
	assert.Empty(t, h.s.Signature())
	assert.Equal(t, progress.Initial(), h.s.Stats())

	fresh := New(h.profiles, fixed(quest.Verdict{}), nil, nil, testOptions())
	require.NoError(t, fresh.Resume())
	assert.Equal(t, Landing, fresh.View())
}

func TestReset(t *testing.T) {
	h := loggedIn(t, fixed(quest.Verdict{}))
	h.s.AddXP(30)
	require.NoError(t, h.s.Reset())
	assert.Equal(t, Landing, h.s.View())

	prof, err := h.profiles.Load("Arden")
	require.NoError(t, err)
	assert.Equal(t, progress.Initial(), prof.Stats)
	_, ok, err := h.profiles.ActiveUser()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResultAfterLogoutStaysWithItsTraveler(t *testing.T) {
	release := make(chan struct{})
	h := loggedIn(t, quest.ClassifierFunc(func(ctx context.Context, input string) (quest.Verdict, error) {
		if input == "slew the dragon" {
			<-release
			return quest.Verdict{Rank: "S", XP: 90}, nil
		}
		return quest.Verdict{Rank: "C", XP: 15}, nil
	}))

	h.s.SetInput("slew the dragon")
	require.NoError(t, h.s.Submit(context.Background()))
	require.NoError(t, h.s.Logout())
	assert.False(t, h.s.Loading())
	h.advance(time.Second)

	require.NoError(t, h.s.Login("Bryn"))
	h.advance(time.Second)
	close(release)

	h.s.SetInput("planted a tree")
	require.NoError(t, h.s.Submit(context.Background()))
	h.s.Wait()

	qs := h.s.Quests()
	require.Len(t, qs, 1)
	assert.Equal(t, "planted a tree", qs[0].Input)
	assert.Equal(t, 15, h.s.Stats().XP)
	assert.Empty(t, h.s.Input())

	bryn, err := h.profiles.Load("Bryn")
	require.NoError(t, err)
	assert.Len(t, bryn.Quests, 1)
	assert.Equal(t, 15, bryn.Stats.XP)

	arden, err := h.profiles.Load("Arden")
	require.NoError(t, err)
	assert.Empty(t, arden.Quests)
	assert.Equal(t, 0, arden.Stats.XP)
}

func TestResetAbandonsPendingResult(t *testing.T) {
	h := loggedIn(t, quest.ClassifierFunc(func(ctx context.Context, _ string) (quest.Verdict, error) {
		<-ctx.Done()
		return quest.Verdict{}, ctx.Err()
	}))
	h.s.SetInput("lost deed")
	require.NoError(t, h.s.Submit(context.Background()))
	require.NoError(t, h.s.Reset())
	assert.False(t, h.s.Loading())
	assert.Empty(t, h.s.Input())

	require.NoError(t, h.s.Login("Bryn"))
	h.advance(time.Second)
	h.s.Wait()
	assert.Empty(t, h.s.Input(), "a cancelled request does not restore its text")
	assert.NoError(t, h.s.LastErr())
}

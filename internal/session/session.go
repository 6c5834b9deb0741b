// Package session is the application state behind the window: who is
// logged in, their progression and history, the pending classification,
// the focus ritual and the short lived celebration effects.
//
// A Session is owned by the UI goroutine. The only background work is the
// classification request started by Submit; its result is handed back
// through a channel and applied by Poll.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iburimskiy/lifequest/internal/config"
	"github.com/iburimskiy/lifequest/internal/fragment"
	"github.com/iburimskiy/lifequest/internal/haptic"
	"github.com/iburimskiy/lifequest/internal/progress"
	"github.com/iburimskiy/lifequest/internal/quest"
	"github.com/iburimskiy/lifequest/internal/ritual"
	"github.com/iburimskiy/lifequest/internal/store"
)

var (
	ErrSignatureTooShort = errors.New("session: signature needs at least 3 characters")
	ErrEmptyInput        = errors.New("session: nothing to submit")
	ErrBusy              = errors.New("session: a deed is already being weighed")
	ErrNotLoggedIn       = errors.New("session: no active traveler")
)

// MinSignatureLen is the shortest accepted signature, in runes.
const MinSignatureLen = 3

// Hints rotate under the input box; Tab copies the current one.
var Hints = []string{
	"I finished my morning run in the rain",
	"Completed the deep-work session for the project",
	"Meditated for 20 minutes today",
	"Helped a colleague with a difficult bug",
	"Read 50 pages of my new book",
	"Drank 2L of water today",
	"Cooked a healthy meal from scratch",
}

// View is the screen being shown.
type View int

const (
	Landing View = iota
	Auth
	App
)

// Options are the timings and rewards a session runs with.
type Options struct {
	Transition      time.Duration
	LevelUpFlash    time.Duration
	EvolutionBurst  time.Duration
	XPPopup         time.Duration
	HintRotation    time.Duration
	RitualWork      time.Duration
	RitualBreak     time.Duration
	RitualRewardXP  int
	ClassifyTimeout time.Duration
}

// OptionsFrom pulls session options out of the app config.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Transition:      cfg.Session.Transition,
		LevelUpFlash:    cfg.Session.LevelUpFlash,
		EvolutionBurst:  cfg.Session.EvolutionBurst,
		XPPopup:         cfg.Session.XPPopup,
		HintRotation:    cfg.Session.HintRotation,
		RitualWork:      cfg.Ritual.Work,
		RitualBreak:     cfg.Ritual.Break,
		RitualRewardXP:  cfg.Ritual.RewardXP,
		ClassifyTimeout: cfg.Oracle.Timeout,
	}
}

// Popup is a floating "+N XP" label.
type Popup struct {
	ID     string
	Amount int
	Until  time.Time
}

type outcome struct {
	gen     uint64
	input   string
	verdict quest.Verdict
	err     error
}

// Session holds everything the UI shows.
type Session struct {
	profiles *store.Profiles
	oracle   quest.Classifier
	haptic   haptic.Sink
	log      *zap.Logger
	opts     Options

	// Now is the clock; tests replace it.
	Now func() time.Time

	view            View
	nextView        View
	transitionUntil time.Time

	signature string
	stats     progress.Stats
	quests    []quest.Quest

	input   string
	loading bool
	results chan outcome
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stop    chan struct{}
	closing sync.Once

	// gen changes whenever the traveler does; results from another
	// generation are dropped.
	gen uint64

	timer    *ritual.Timer
	lastTick time.Time

	levelUpUntil time.Time
	evolveUntil  time.Time
	popups       []Popup
	hintEpoch    time.Time

	lastErr error
}

// New builds a session over the given collaborators. A nil sink or logger
// is replaced by a no-op.
func New(profiles *store.Profiles, oracle quest.Classifier, sink haptic.Sink, log *zap.Logger, opts Options) *Session {
	if sink == nil {
		sink = haptic.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		profiles: profiles,
		oracle:   oracle,
		haptic:   sink,
		log:      log,
		opts:     opts,
		Now:      time.Now,
		stats:    progress.Initial(),
		results:  make(chan outcome, 1),
		stop:     make(chan struct{}),
		timer:    ritual.New(opts.RitualWork, opts.RitualBreak),
	}
	s.hintEpoch = s.Now()
	return s
}

// Resume logs the last active traveler back in, if there is one.
func (s *Session) Resume() error {
	sig, ok, err := s.profiles.ActiveUser()
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if !ok || sig == "" {
		return nil
	}
	if err := s.loadUser(sig); err != nil {
		return err
	}
	s.view = App
	return nil
}

// View returns the screen currently shown.
func (s *Session) View() View { return s.view }

// Transitioning reports whether a view change is in progress.
func (s *Session) Transitioning() bool { return s.transitionUntil.After(s.Now()) }

// Navigate starts a transition to v.
func (s *Session) Navigate(v View) {
	s.haptic.Pulse(haptic.Navigate)
	s.nextView = v
	s.transitionUntil = s.Now().Add(s.opts.Transition)
	if s.opts.Transition <= 0 {
		s.view = v
	}
}

// Login loads signature's profile and enters the app.
func (s *Session) Login(signature string) error {
	signature = strings.TrimSpace(signature)
	if utf8.RuneCountInString(signature) < MinSignatureLen {
		return ErrSignatureTooShort
	}
	if err := s.loadUser(signature); err != nil {
		return err
	}
	s.Navigate(App)
	return nil
}

// abandon drops the in-flight classification, if any.
func (s *Session) abandon() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
}

func (s *Session) loadUser(signature string) error {
	prof, err := s.profiles.Load(signature)
	if err != nil {
		return fmt.Errorf("load %q: %w", signature, err)
	}
	if err := s.profiles.SetActiveUser(signature); err != nil {
		return fmt.Errorf("activate %q: %w", signature, err)
	}
	if prof.Signature != s.signature {
		s.abandon()
	}
	s.signature = prof.Signature
	s.stats = prof.Stats
	s.quests = prof.Quests
	s.log.Info("Traveler attuned", zap.String("signature", signature), zap.Int("level", s.stats.Level))
	return nil
}

// Logout forgets the active traveler and returns to the landing view.
func (s *Session) Logout() error {
	if err := s.profiles.ClearActiveUser(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.Navigate(Landing)
	s.clear()
	return nil
}

// Reset erases every stored profile.
func (s *Session) Reset() error {
	if err := s.profiles.Wipe(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.clear()
	s.view, s.nextView, s.transitionUntil = Landing, Landing, time.Time{}
	return nil
}

func (s *Session) clear() {
	s.abandon()
	s.signature = ""
	s.stats = progress.Initial()
	s.quests = nil
	s.input = ""
	s.popups = nil
	s.levelUpUntil, s.evolveUntil = time.Time{}, time.Time{}
	s.timer.Stop()
}

func (s *Session) Signature() string { return s.signature }
func (s *Session) Stats() progress.Stats { return s.stats }
func (s *Session) Loading() bool { return s.loading }
func (s *Session) Input() string { return s.input }
func (s *Session) SetInput(v string) { s.input = v }
func (s *Session) Ritual() *ritual.Timer { return s.timer }
func (s *Session) LastErr() error { return s.lastErr }
func (s *Session) Stage() int { return progress.StageForLevel(s.stats.Level) }

// Quests returns the history, oldest first.
func (s *Session) Quests() []quest.Quest {
	return append([]quest.Quest(nil), s.quests...)
}

// WorldName is the headline: the ritual mode while one runs, otherwise the
// realm of the current stage.
func (s *Session) WorldName() string {
	if s.timer.Active() {
		return strings.ToUpper(s.timer.Mode().String())
	}
	return progress.WorldName(s.Stage())
}

// Palette is the field palette for the current stage and ritual.
func (s *Session) Palette() progress.Palette {
	if s.timer.Mode() == ritual.Work {
		return progress.FocusPalette
	}
	return progress.PaletteFor(s.Stage())
}

// Hint is the placeholder shown at the current time.
func (s *Session) Hint() string {
	if s.opts.HintRotation <= 0 {
		return Hints[0]
	}
	n := int(s.Now().Sub(s.hintEpoch) / s.opts.HintRotation)
	return Hints[n%len(Hints)]
}

// FillHint copies the current hint into an empty input.
func (s *Session) FillHint() {
	if s.input == "" {
		s.input = s.Hint()
	}
}

// Submit sends the current input for classification. The input box is
// cleared right away and restored if the request fails.
func (s *Session) Submit(ctx context.Context) error {
	trimmed := strings.TrimSpace(s.input)
	if trimmed == "" {
		return ErrEmptyInput
	}
	if s.loading {
		return ErrBusy
	}
	if s.signature == "" {
		return ErrNotLoggedIn
	}
	s.loading = true
	s.input = ""
	s.lastErr = nil

	if s.opts.ClassifyTimeout > 0 {
		ctx, s.cancel = context.WithTimeout(ctx, s.opts.ClassifyTimeout)
	} else {
		ctx, s.cancel = context.WithCancel(ctx)
	}
	gen := s.gen
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		v, err := s.oracle.Classify(ctx, trimmed)
		select {
		case s.results <- outcome{gen: gen, input: trimmed, verdict: v, err: err}:
		case <-s.stop:
		}
	}()
	return nil
}

// Poll applies a finished classification, if any. It reports whether
// anything changed.
func (s *Session) Poll() bool {
	select {
	case o := <-s.results:
		return s.finish(o)
	default:
		return false
	}
}

// Wait blocks until the in-flight classification finishes and applies it.
func (s *Session) Wait() {
	for s.loading {
		s.finish(<-s.results)
	}
}

// finish applies o unless it belongs to an abandoned traveler.
func (s *Session) finish(o outcome) bool {
	if o.gen != s.gen {
		s.log.Debug("Dropping result for a departed traveler", zap.String("input", o.input))
		return false
	}
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if o.err != nil {
		s.input = o.input
		s.lastErr = o.err
		s.log.Error("Classification failed", zap.String("input", o.input), zap.Error(o.err))
		return true
	}

	q := quest.New(o.input, o.verdict, s.Now())
	s.haptic.Pulse(haptic.QuestLogged)
	s.quests = append(s.quests, q)
	s.log.Info("Quest logged",
		zap.String("rank", string(q.Rank)),
		zap.Int("xp", q.XPAwarded),
		zap.String("title", q.Title))
	s.AddXP(q.XPAwarded)
	return true
}

// AddXP grants amount, firing the level up and evolution effects when they
// are earned, and saves.
func (s *Session) AddXP(amount int) {
	now := s.Now()
	s.popups = append(s.popups, Popup{ID: uuid.NewString(), Amount: amount, Until: now.Add(s.opts.XPPopup)})

	prevLevel, prevStage := s.stats.Level, s.Stage()
	s.stats = progress.AddXP(s.stats, amount)
	if s.stats.Level > prevLevel {
		s.levelUpUntil = now.Add(s.opts.LevelUpFlash)
		s.haptic.Pulse(haptic.LevelUp)
		if s.Stage() != prevStage {
			s.evolveUntil = now.Add(s.opts.EvolutionBurst)
			s.log.Info("Evolution", zap.Int("stage", s.Stage()), zap.String("world", progress.WorldName(s.Stage())))
		}
	}
	s.save()
}

func (s *Session) save() {
	if s.signature == "" {
		return
	}
	err := s.profiles.Save(store.Profile{Signature: s.signature, Stats: s.stats, Quests: s.quests})
	if err != nil {
		s.lastErr = err
		s.log.Error("Saving profile failed", zap.Error(err))
	}
}

// LevelingUp reports whether the level up flash is showing.
func (s *Session) LevelingUp() bool { return s.levelUpUntil.After(s.Now()) }

// Evolving reports whether the evolution burst is showing.
func (s *Session) Evolving() bool { return s.evolveUntil.After(s.Now()) }

// LevelUpFade is 1 as the level up flash starts, falling to 0 when it ends.
func (s *Session) LevelUpFade() float64 { return s.fade(s.levelUpUntil, s.opts.LevelUpFlash) }

// EvolutionFade is LevelUpFade for the evolution burst.
func (s *Session) EvolutionFade() float64 { return s.fade(s.evolveUntil, s.opts.EvolutionBurst) }

// PopupFade is the share of p's display time still left.
func (s *Session) PopupFade(p Popup) float64 { return s.fade(p.Until, s.opts.XPPopup) }

func (s *Session) fade(until time.Time, d time.Duration) float64 {
	left := until.Sub(s.Now())
	if d <= 0 || left <= 0 {
		return 0
	}
	return min(1, float64(left)/float64(d))
}

// Popups returns the XP labels still on screen.
func (s *Session) Popups() []Popup {
	return append([]Popup(nil), s.popups...)
}

// ToggleRitual starts a work ritual, or abandons the running one.
func (s *Session) ToggleRitual() {
	if s.timer.Active() {
		s.timer.Stop()
		return
	}
	s.timer.Start(ritual.Work)
	s.lastTick = time.Time{}
	s.haptic.Pulse(haptic.RitualStart)
}

// Update advances clocks: view transitions, the ritual countdown and
// effect expiry. Call it once per UI tick.
func (s *Session) Update() {
	now := s.Now()
	if !s.transitionUntil.IsZero() && !now.Before(s.transitionUntil) {
		s.view = s.nextView
		s.transitionUntil = time.Time{}
	}

	if s.timer.Running() {
		if !s.lastTick.IsZero() {
			switch s.timer.Tick(now.Sub(s.lastTick)) {
			case ritual.WorkDone:
				s.haptic.Pulse(haptic.RitualComplete)
				s.AddXP(s.opts.RitualRewardXP)
				s.haptic.Pulse(haptic.RitualStart)
			case ritual.BreakDone:
				s.log.Debug("Break finished")
			}
		}
		s.lastTick = now
	}

	live := s.popups[:0]
	for _, p := range s.popups {
		if p.Until.After(now) {
			live = append(live, p)
		}
	}
	s.popups = live
}

// ExportFragment packs the current progression into a soul fragment.
func (s *Session) ExportFragment() (string, error) {
	return fragment.Encode(fragment.State{Stats: s.stats, Quests: s.quests})
}

// ImportFragment replaces progression with the state in code. A bad code
// leaves everything untouched.
func (s *Session) ImportFragment(code string) error {
	if s.signature == "" {
		return ErrNotLoggedIn
	}
	st, err := fragment.Decode(code)
	if err != nil {
		return err
	}
	s.stats = st.Stats
	s.quests = st.Quests
	s.save()
	s.log.Info("Soul fragment absorbed", zap.Int("level", s.stats.Level), zap.Int("quests", len(s.quests)))
	return nil
}

// Close cancels an in-flight classification and waits for it to return.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.closing.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// Package haptic delivers short feedback pulses. Desktops rarely vibrate,
// so the default sink renders each pulse as a low rumble on the speaker.
package haptic

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"
)

// Pattern alternates vibrate and pause durations, starting with vibrate.
type Pattern []time.Duration

func ms(v ...int) Pattern {
	p := make(Pattern, len(v))
	for i, n := range v {
		p[i] = time.Duration(n) * time.Millisecond
	}
	return p
}

// Named pulses used across the app.
var (
	Navigate       = ms(15)
	RitualStart    = ms(20)
	QuestLogged    = ms(40)
	LevelUp        = ms(50, 150, 50)
	RitualComplete = ms(100, 200, 100)
)

// Sink accepts pulses. It is best effort: a sink that cannot vibrate
// drops the pulse silently.
type Sink interface {
	Pulse(p Pattern)
}

// Nop drops every pulse.
type Nop struct{}

func (Nop) Pulse(Pattern) {}

// Recorder keeps every pulse it receives.
type Recorder struct {
	mu     sync.Mutex
	Pulses []Pattern
}

func (r *Recorder) Pulse(p Pattern) {
	r.mu.Lock()
	r.Pulses = append(r.Pulses, append(Pattern(nil), p...))
	r.mu.Unlock()
}

// Last returns the most recent pulse, or nil.
func (r *Recorder) Last() Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Pulses) == 0 {
		return nil
	}
	return r.Pulses[len(r.Pulses)-1]
}

// AudioSink plays pulses as a low frequency tone.
type AudioSink struct {
	rate beep.SampleRate
	freq float64
	log  *zap.Logger

	once     sync.Once
	disabled bool
}

// NewAudioSink returns a sink that opens the speaker on first pulse.
func NewAudioSink(rate int, freq float64, log *zap.Logger) *AudioSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &AudioSink{rate: beep.SampleRate(rate), freq: freq, log: log}
}

func (a *AudioSink) Pulse(p Pattern) {
	if len(p) == 0 {
		return
	}
	a.once.Do(func() {
		if err := speaker.Init(a.rate, a.rate.N(time.Second/20)); err != nil {
			// Non-fatal, the app runs without feedback
			a.disabled = true
			a.log.Warn("Haptic feedback not available", zap.Error(err))
		}
	})
	if a.disabled {
		return
	}
	speaker.Play(Render(p, a.rate, a.freq))
}

// Render turns a pattern into audio: tone for vibrate segments, silence for
// pauses.
func Render(p Pattern, rate beep.SampleRate, freq float64) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(p))
	for i, d := range p {
		n := rate.N(d)
		if n <= 0 {
			continue
		}
		if i%2 == 0 {
			parts = append(parts, newRumble(freq, n, rate))
		} else {
			parts = append(parts, beep.Silence(n))
		}
	}
	return beep.Seq(parts...)
}

// rumble is a sine burst with a short linear fade at both ends to avoid
// clicks.
type rumble struct {
	freq     float64
	rate     beep.SampleRate
	phase    float64
	position int
	duration int
	fade     int
}

func newRumble(freq float64, samples int, rate beep.SampleRate) *rumble {
	fade := rate.N(5 * time.Millisecond)
	if fade*2 > samples {
		fade = samples / 2
	}
	return &rumble{freq: freq, rate: rate, duration: samples, fade: fade}
}

func (r *rumble) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if r.position >= r.duration {
			return i, i > 0
		}
		gain := 0.6
		if r.fade > 0 {
			if r.position < r.fade {
				gain *= float64(r.position) / float64(r.fade)
			} else if left := r.duration - r.position; left < r.fade {
				gain *= float64(left) / float64(r.fade)
			}
		}
		v := math.Sin(2*math.Pi*r.phase) * gain
		samples[i][0] = v
		samples[i][1] = v

		r.phase += r.freq / float64(r.rate)
		r.phase -= math.Floor(r.phase)
		r.position++
	}
	return len(samples), true
}

func (r *rumble) Err() error { return nil }

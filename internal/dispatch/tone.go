package dispatch

import (
	"sync"
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
)

// ToneFunc is the platform audio-oscillator primitive.
type ToneFunc func(frequency float64, duration time.Duration, volume float64) error

// Tone is one catalog entry: a short pulse pattern at a fixed frequency.
type Tone struct {
	ID        string
	Frequency float64
	Duration  time.Duration
	Pulses    int // 1-3
}

// interPulseGap separates pulses within one tone.
const interPulseGap = 200 * time.Millisecond

// Tone catalog ids.
const (
	ToneGentle = "gentle"
	ToneChime  = "chime"
	ToneUrgent = "urgent"
	ToneAlarm  = "alarm"
)

var toneCatalog = map[string]Tone{
	ToneGentle: {ID: ToneGentle, Frequency: 440, Duration: 300 * time.Millisecond, Pulses: 1},
	ToneChime:  {ID: ToneChime, Frequency: 523, Duration: 400 * time.Millisecond, Pulses: 2},
	ToneUrgent: {ID: ToneUrgent, Frequency: 880, Duration: 200 * time.Millisecond, Pulses: 3},
	ToneAlarm:  {ID: ToneAlarm, Frequency: 660, Duration: 250 * time.Millisecond, Pulses: 3},
}

// ToneByID looks up a catalog entry, falling back to the gentle tone for
// unknown ids.
func ToneByID(id string) Tone {
	if t, ok := toneCatalog[id]; ok {
		return t
	}
	return toneCatalog[ToneGentle]
}

// TonePlayer plays catalog tones through the platform primitive. At most
// one tone sounds at a time; starting a new tone cancels the previous one.
type TonePlayer struct {
	play   ToneFunc
	volume float64

	mu     sync.Mutex
	cancel chan struct{}
}

// NewTonePlayer creates a player over the given oscillator primitive.
func NewTonePlayer(play ToneFunc, volume float64) *TonePlayer {
	if volume <= 0 {
		volume = 0.7
	}
	return &TonePlayer{play: play, volume: volume}
}

// Play sounds the identified tone. It returns once the pattern is started;
// the pulses run on their own goroutine and stop early if another Play
// call supersedes them.
func (p *TonePlayer) Play(id string) {
	tone := ToneByID(id)

	p.mu.Lock()
	if p.cancel != nil {
		close(p.cancel)
	}
	cancel := make(chan struct{})
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(tone, cancel)
}

// Stop cancels any still-sounding tone.
func (p *TonePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		close(p.cancel)
		p.cancel = nil
	}
}

func (p *TonePlayer) run(tone Tone, cancel <-chan struct{}) {
	for i := 0; i < tone.Pulses; i++ {
		select {
		case <-cancel:
			return
		default:
		}

		if err := p.play(tone.Frequency, tone.Duration, p.volume); err != nil {
			// Missing audio support is non-fatal; remaining channels
			// already ran independently.
			logging.Warn("dispatch", "tone failed, skipping: %v", err)
			return
		}

		if i < tone.Pulses-1 {
			select {
			case <-cancel:
				return
			case <-time.After(tone.Duration + interPulseGap):
			}
		}
	}
}

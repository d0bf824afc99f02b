package terminal

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound plays the game's audio cues
type Sound interface {
	Merge(value int)
	Win()
	Close()
}

// Silent is a Sound that does nothing
type Silent struct{}

func (Silent) Merge(int) {}
func (Silent) Win()      {}
func (Silent) Close()    {}

// Beeper plays sine tones through the system speaker
type Beeper struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewBeeper opens the speaker. Callers fall back to Silent when it fails.
func NewBeeper() (*Beeper, error) {
	b := &Beeper{mixer: &beep.Mixer{}}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	speaker.Play(b.mixer)
	b.initialized = true
	return b, nil
}

// Merge plays a short blip whose pitch rises with the merged value
func (b *Beeper) Merge(value int) {
	b.play(newTone(mergeFrequency(value), 90*time.Millisecond, 0.2))
}

// Win plays a major chord
func (b *Beeper) Win() {
	for _, f := range winChord {
		b.play(newTone(f, 600*time.Millisecond, 0.12))
	}
}

func (b *Beeper) play(s beep.Streamer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	speaker.Lock()
	b.mixer.Add(s)
	speaker.Unlock()
}

// Close stops all sound and releases the speaker
func (b *Beeper) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	speaker.Lock()
	b.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	b.initialized = false
}

// C5, E5, G5
var winChord = []float64{523.25, 659.25, 783.99}

// mergeFrequency climbs a whole tone per doubling, starting at A3 for a 4
func mergeFrequency(value int) float64 {
	steps := math.Log2(float64(value)) - 2
	if steps < 0 {
		steps = 0
	}
	return 220 * math.Pow(2, steps/6)
}

// tone is a sine wave with a linear fade out
type tone struct {
	freq   float64
	volume float64
	pos    int
	total  int
}

func newTone(freq float64, d time.Duration, volume float64) *tone {
	return &tone{freq: freq, volume: volume, total: sampleRate.N(d)}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}
		env := 1 - float64(t.pos)/float64(t.total)
		v := t.volume * env * math.Sin(2*math.Pi*t.freq*float64(t.pos)/float64(sampleRate))
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error {
	return nil
}

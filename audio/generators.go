package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// waveShape selects the oscillator waveform.
type waveShape int

const (
	waveSine waveShape = iota
	waveSquare
	waveTriangle
	waveNoise
)

// oscillator streams one finite burst of a basic waveform with a
// linear fade-out so bursts never click.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	shape    waveShape
	rate     beep.SampleRate
	gain     float64
}

func newOscillator(freq float64, d time.Duration, shape waveShape, gain float64, rate beep.SampleRate) *oscillator {
	return &oscillator{
		freq:     freq,
		duration: rate.N(d),
		shape:    shape,
		rate:     rate,
		gain:     gain,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, false
		}
		var val float64
		switch o.shape {
		case waveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case waveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case waveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		case waveNoise:
			val = rand.Float64()*2 - 1
		}

		fade := 1 - float64(o.position)/float64(o.duration)
		val *= o.gain * fade
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// sequence plays streamers back to back.
func sequence(parts ...beep.Streamer) beep.Streamer {
	idx := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		filled := 0
		for filled < len(samples) && idx < len(parts) {
			n, ok := parts[idx].Stream(samples[filled:])
			filled += n
			if !ok {
				idx++
			}
		}
		return filled, filled > 0
	})
}

// builtinSounds is the default bank: interaction feedback, zone
// ambience, and looping music beds, all synthesized.
func builtinSounds() map[string]Generator {
	return map[string]Generator{
		// Short feedback effects.
		"splash": func(r beep.SampleRate) beep.Streamer {
			return newOscillator(0, 180*time.Millisecond, waveNoise, 0.4, r)
		},
		"chime": func(r beep.SampleRate) beep.Streamer {
			return sequence(
				newOscillator(880, 120*time.Millisecond, waveSine, 0.5, r),
				newOscillator(1320, 200*time.Millisecond, waveSine, 0.4, r),
			)
		},
		"thud": func(r beep.SampleRate) beep.Streamer {
			return newOscillator(90, 150*time.Millisecond, waveTriangle, 0.6, r)
		},
		"deny": func(r beep.SampleRate) beep.Streamer {
			return newOscillator(140, 200*time.Millisecond, waveSquare, 0.3, r)
		},
		"pickup": func(r beep.SampleRate) beep.Streamer {
			return sequence(
				newOscillator(660, 80*time.Millisecond, waveSquare, 0.3, r),
				newOscillator(990, 120*time.Millisecond, waveSquare, 0.3, r),
			)
		},

		// Zone ambience loops.
		"pond_loop": func(r beep.SampleRate) beep.Streamer {
			return newOscillator(0, 2*time.Second, waveNoise, 0.15, r)
		},
		"wind_loop": func(r beep.SampleRate) beep.Streamer {
			return newOscillator(0, 3*time.Second, waveNoise, 0.1, r)
		},

		// Music beds: slow arpeggios looped by the engine.
		"theme_meadow": func(r beep.SampleRate) beep.Streamer {
			return arpeggio(r, 0.25, 262, 330, 392, 330)
		},
		"theme_cave": func(r beep.SampleRate) beep.Streamer {
			return arpeggio(r, 0.2, 110, 131, 165, 131)
		},
		"theme_dusk": func(r beep.SampleRate) beep.Streamer {
			return arpeggio(r, 0.22, 220, 262, 330, 294)
		},
	}
}

// arpeggio streams the given notes as half-second sine tones.
func arpeggio(r beep.SampleRate, gain float64, freqs ...float64) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		parts = append(parts, newOscillator(f, 500*time.Millisecond, waveSine, gain, r))
	}
	return sequence(parts...)
}

package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/nathoo/wandercore/world"
)

// drain streams until the streamer reports done, returning the sample
// count and the peak amplitude.
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		total += n
		for _, frame := range buf[:n] {
			if a := frame[0]; a > peak {
				peak = a
			}
			if a := -frame[0]; a > peak {
				peak = a
			}
		}
		if !ok {
			return total, peak
		}
	}
	t.Fatal("streamer never finished")
	return 0, 0
}

func TestOscillator_DurationAndBounds(t *testing.T) {
	osc := newOscillator(440, 100*time.Millisecond, waveSine, 0.5, sampleRate)
	total, peak := drain(t, osc)

	if want := sampleRate.N(100 * time.Millisecond); total != want {
		t.Errorf("expected %d samples, got %d", want, total)
	}
	if peak > 0.5 {
		t.Errorf("gain 0.5 must bound amplitude, got peak %v", peak)
	}
	if peak == 0 {
		t.Error("oscillator produced silence")
	}
}

func TestOscillator_FadesOut(t *testing.T) {
	osc := newOscillator(440, 50*time.Millisecond, waveSquare, 1, sampleRate)
	n := sampleRate.N(50 * time.Millisecond)
	buf := make([][2]float64, n)
	osc.Stream(buf)

	tail := buf[n-10:]
	for _, frame := range tail {
		if frame[0] > 0.01 || frame[0] < -0.01 {
			t.Fatalf("expected near-silence at the end, got %v", frame[0])
		}
	}
}

func TestSequence_ConcatenatesParts(t *testing.T) {
	s := sequence(
		newOscillator(440, 20*time.Millisecond, waveSine, 0.5, sampleRate),
		newOscillator(880, 30*time.Millisecond, waveSine, 0.5, sampleRate),
	)
	total, _ := drain(t, s)
	if want := sampleRate.N(50 * time.Millisecond); total != want {
		t.Errorf("expected %d samples, got %d", want, total)
	}
}

func TestBuiltinSounds_AllProduceAudio(t *testing.T) {
	for key, gen := range builtinSounds() {
		_, peak := drain(t, gen(sampleRate))
		if peak == 0 {
			t.Errorf("builtin %q produced silence", key)
		}
	}
}

func TestEngine_AddUnknownKeyFails(t *testing.T) {
	e := NewEngine()
	if !e.Exists("splash") {
		t.Error("builtin bank must be registered")
	}
	if e.Exists("no_such") {
		t.Error("unknown key must not exist")
	}
	// Without Init the speaker is closed; Add must refuse rather than
	// hand out a sound that would panic on Play.
	if _, ok := e.Add("splash", world.SoundOpts{}); ok {
		t.Error("Add on an uninitialized engine must fail")
	}
}

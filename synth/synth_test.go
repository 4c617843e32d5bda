package synth

import (
	"math"
	"testing"
)

func TestDecayingChirpEnvelope(t *testing.T) {
	cfg := DefaultChirpConfig(8000)
	x, err := DecayingChirp(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(x) != 40000 {
		t.Fatalf("len = %d, want 40000", len(x))
	}
	if x[0] != 0 {
		t.Errorf("x[0] = %g, want 0", x[0])
	}

	// |x(t)| never exceeds the envelope.
	for i, v := range x {
		tt := 5.0 * float64(i) / float64(len(x)-1)
		if math.Abs(v) > math.Exp(-10*tt)+1e-12 {
			t.Fatalf("sample %d = %g exceeds envelope %g", i, v, math.Exp(-10*tt))
		}
	}
}

func TestDecayingChirpValidation(t *testing.T) {
	if _, err := DecayingChirp(ChirpConfig{SampleRate: 0, Duration: 1}); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := DecayingChirp(ChirpConfig{SampleRate: 8000, Duration: 0}); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestRT60DecayRate(t *testing.T) {
	// exp(-k·RT60) must be -60 dB in amplitude
	for _, rt60 := range []float64{0.3, 1, 2.5} {
		k := RT60DecayRate(rt60)
		db := 20 * math.Log10(math.Exp(-k*rt60))
		if math.Abs(db+60) > 1e-9 {
			t.Errorf("rt60 %g: level at rt60 = %g dB, want -60", rt60, db)
		}
	}
}

func TestDecayingNoiseDeterministic(t *testing.T) {
	a, err := DecayingNoise(8000, 1, 0.5, 7)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := DecayingNoise(8000, 1, 0.5, 7)
	c, _ := DecayingNoise(8000, 1, 0.5, 8)

	if len(a) != 8000 {
		t.Fatalf("len = %d, want 8000", len(a))
	}
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between identical seeds", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical noise")
	}
}

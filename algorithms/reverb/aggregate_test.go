package reverb

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-rt60/algorithms/stats"
)

// decayFor returns the per-sample factor with time constant tau at fs.
func decayFor(tau, fs float64) float64 {
	return math.Exp(-1 / (tau * fs))
}

func TestAggregateMedianOfConvergedFrames(t *testing.T) {
	const fs = 8000.0
	taus := []float64{0.05, 0.1, 0.2, 0.3, 9.0}
	a := make([]float64, len(taus))
	for i, tau := range taus {
		a[i] = decayFor(tau, fs)
	}
	mask := []bool{true, true, true, true, false}

	agg, err := NewAggregator(50, stats.Linear).Aggregate(a, mask, fs)
	if err != nil {
		t.Fatal(err)
	}

	if len(agg.Population) != 4 {
		t.Fatalf("population = %d, want 4", len(agg.Population))
	}
	if want := 0.15; math.Abs(agg.Tau-want) > 1e-9 {
		t.Errorf("tau = %g, want %g", agg.Tau, want)
	}
	if math.Abs(agg.RT60-RT60FromTau(agg.Tau)) > 1e-12 {
		t.Errorf("rt60 = %g, want %g", agg.RT60, RT60FromTau(agg.Tau))
	}

	rt60, err := Aggregate(a, mask, fs, 50)
	if err != nil {
		t.Fatal(err)
	}
	if rt60 != agg.RT60 {
		t.Errorf("Aggregate = %g, want %g", rt60, agg.RT60)
	}
}

func TestAggregateIgnoresUnconvergedValues(t *testing.T) {
	const fs = 8000.0
	a := []float64{decayFor(0.1, fs), decayFor(0.1, fs), 0.5, 0}
	mask := []bool{true, true, false, false}

	for _, p := range []float64{0, 50, 100} {
		rt60, err := Aggregate(a, mask, fs, p)
		if err != nil {
			t.Fatal(err)
		}
		if want := RT60FromTau(0.1); math.Abs(rt60-want) > 1e-9 {
			t.Errorf("p=%g: rt60 = %g, want %g", p, rt60, want)
		}
	}
}

func TestAggregatePercentileMethods(t *testing.T) {
	const fs = 1000.0
	a := []float64{decayFor(1, fs), decayFor(2, fs)}
	mask := []bool{true, true}

	tests := []struct {
		method stats.PercentileMethod
		want   float64
	}{
		{stats.Linear, 1.5},
		{stats.Lower, 1},
		{stats.Higher, 2},
		{stats.Midpoint, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			agg, err := NewAggregator(50, tt.method).Aggregate(a, mask, fs)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(agg.Tau-tt.want) > 1e-9 {
				t.Errorf("tau = %g, want %g", agg.Tau, tt.want)
			}
		})
	}
}

func TestAggregateErrors(t *testing.T) {
	if _, err := Aggregate([]float64{0.9, 0.9}, []bool{false, false}, 8000, 50); !errors.Is(err, ErrNoConvergedFrames) {
		t.Errorf("empty mask error = %v, want ErrNoConvergedFrames", err)
	}
	if _, err := Aggregate([]float64{0.9}, []bool{true, true}, 8000, 50); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("length mismatch error = %v, want ErrDimensionMismatch", err)
	}
}

func TestTimeConstant(t *testing.T) {
	tests := []struct {
		a, fs, want float64
	}{
		{math.Exp(-1), 1, 1},
		{math.Exp(-1.0 / 800), 8000, 0.1},
		{math.Exp(-0.5), 10, 0.2},
	}
	for _, tt := range tests {
		if got := TimeConstant(tt.a, tt.fs); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("TimeConstant(%g, %g) = %g, want %g", tt.a, tt.fs, got, tt.want)
		}
	}
}

func TestRT60FromTau(t *testing.T) {
	// -60 dB is 3 decades of amplitude: 3·ln(10) time constants
	want := 3 * math.Ln10
	if got := RT60FromTau(1); math.Abs(got-want) > 1e-12 {
		t.Errorf("RT60FromTau(1) = %g, want %g", got, want)
	}
}

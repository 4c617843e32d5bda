// Package synth generates synthetic decaying signals with known decay rates
// for exercising and demonstrating the RT60 estimator.
package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

// ChirpConfig describes an exponentially decaying linear chirp.
type ChirpConfig struct {
	SampleRate int
	Duration   float64 // seconds
	StartFreq  float64 // Hz
	EndFreq    float64 // Hz
	DecayRate  float64 // envelope exp(-DecayRate·t), 1/s
}

// DefaultChirpConfig returns a 5 s, 250-1000 Hz chirp decaying at 10/s.
func DefaultChirpConfig(sampleRate int) ChirpConfig {
	return ChirpConfig{
		SampleRate: sampleRate,
		Duration:   5.0,
		StartFreq:  250.0,
		EndFreq:    1000.0,
		DecayRate:  10,
	}
}

// DecayingChirp returns sin(2π·f(t)·t)·exp(-DecayRate·t), where f sweeps
// linearly from StartFreq to EndFreq and t runs from 0 to Duration inclusive
// over int(Duration·SampleRate) points.
func DecayingChirp(cfg ChirpConfig) ([]float64, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("synth: sample rate must be > 0: %d", cfg.SampleRate)
	}
	n := int(cfg.Duration * float64(cfg.SampleRate))
	if n <= 0 {
		return nil, fmt.Errorf("synth: duration %g s yields no samples", cfg.Duration)
	}

	out := make([]float64, n)
	for i := range out {
		t := linspace(0, cfg.Duration, n, i)
		f := linspace(cfg.StartFreq, cfg.EndFreq, n, i)
		out[i] = math.Sin(2*math.Pi*f*t) * math.Exp(-cfg.DecayRate*t)
	}
	return out, nil
}

// linspace returns point i of n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n, i int) float64 {
	if n == 1 {
		return start
	}
	return start + (stop-start)*float64(i)/float64(n-1)
}

// RT60DecayRate converts a target RT60 into the amplitude decay rate
// k of exp(-k·t): k = ln(10³)/RT60.
func RT60DecayRate(rt60 float64) float64 {
	return 3 * math.Ln10 / rt60
}

// DecayingNoise returns uniform white noise under an exp(-k·t) envelope whose
// -60 dB time is rt60. seed makes the noise reproducible.
func DecayingNoise(sampleRate int, duration, rt60 float64, seed int64) ([]float64, error) {
	if rt60 <= 0 {
		return nil, fmt.Errorf("synth: rt60 must be > 0: %g", rt60)
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(float64(sampleRate))},
		signal.WithSeed(seed),
	)
	noise, err := gen.WhiteNoise(1, int(duration*float64(sampleRate)))
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	k := RT60DecayRate(rt60)
	for i := range noise {
		noise[i] *= math.Exp(-k * float64(i) / float64(sampleRate))
	}
	return noise, nil
}

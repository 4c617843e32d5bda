package filters

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidCutoff = errors.New("filters: invalid cutoff frequency")

// DCBlocker removes the DC component with the one-pole, one-zero high-pass
//
//	y[n] = x[n] - x[n-1] + R·y[n-1]
//
// A blocker keeps state between samples and is not safe for concurrent use.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCBlocker struct {
	pole float64 // R, 0 < R < 1

	x1 float64
	y1 float64
}

// NewDCBlocker creates a blocker with a -3 dB cutoff near cutoff Hz, using
// R = 1 - 2π·fc/fs.
func NewDCBlocker(sampleRate int, cutoff float64) (*DCBlocker, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidCutoff, sampleRate)
	}
	pole := 1 - 2*math.Pi*cutoff/float64(sampleRate)
	if !(cutoff > 0) || !(pole > 0 && pole < 1) {
		return nil, fmt.Errorf("%w: %g Hz at %d Hz", ErrInvalidCutoff, cutoff, sampleRate)
	}
	return &DCBlocker{pole: pole}, nil
}

// Pole returns R.
func (dc *DCBlocker) Pole() float64 {
	return dc.pole
}

// Cutoff returns the approximate -3 dB frequency (1-R)·fs/2π.
func (dc *DCBlocker) Cutoff(sampleRate int) float64 {
	return (1 - dc.pole) * float64(sampleRate) / (2 * math.Pi)
}

// Process filters one sample.
func (dc *DCBlocker) Process(x float64) float64 {
	y := x - dc.x1 + dc.pole*dc.y1
	dc.x1 = x
	dc.y1 = y
	return y
}

// ProcessBuffer filters a buffer into a new slice, continuing from the
// current state.
func (dc *DCBlocker) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = dc.Process(x)
	}
	return output
}

// Reset clears the filter state.
func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}

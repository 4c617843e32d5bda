// Package visualize turns an RT60 estimate into a diagnostic figure: the
// short-time energy envelope, the per-frame time constants and their
// histogram, rendered as text or JSON.
package visualize

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-rt60/algorithms/reverb"
	"github.com/RyanBlaney/sonido-rt60/algorithms/temporal"
)

var (
	ErrInvalidLayout  = errors.New("visualize: invalid frame layout")
	ErrLengthMismatch = errors.New("visualize: taus and convergence mask differ in length")
)

// Layout describes how the signal was framed.
type Layout struct {
	SampleRate  int
	FrameLength int     // samples
	Hop         int     // samples
	Bins        int     // histogram bins, 0 means DefaultBins
	FloorDB     float64 // energy floor, 0 means DefaultFloorDB
}

const (
	DefaultBins    = 20
	DefaultFloorDB = -120.0
)

// EnvelopePoint is the energy of one frame.
type EnvelopePoint struct {
	Time     float64 `json:"time"`
	EnergyDB float64 `json:"energy_db"`
}

// FramePoint is the time constant estimated for one frame.
type FramePoint struct {
	Time      float64 `json:"time"`
	Tau       float64 `json:"tau"`
	Converged bool    `json:"converged"`
}

// Histogram counts converged taus between consecutive edges.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// Figure holds everything needed to plot one estimate.
type Figure struct {
	SampleRate int             `json:"sample_rate"`
	Duration   float64         `json:"duration"`
	Envelope   []EnvelopePoint `json:"envelope"`
	Frames     []FramePoint    `json:"frames"`
	Histogram  Histogram       `json:"histogram"`
	MeanTau    float64         `json:"mean_tau"`
	Tau        float64         `json:"tau"`
	RT60       float64         `json:"rt60"`
}

// ConvergedCount returns the number of converged frames.
func (f *Figure) ConvergedCount() int {
	n := 0
	for _, p := range f.Frames {
		if p.Converged {
			n++
		}
	}
	return n
}

// Render builds a figure from a signal, its per-frame taus and the
// aggregate. converged may be nil, in which case every frame counts.
func Render(signal, taus []float64, converged []bool, tau, rt60 float64, layout Layout) (*Figure, error) {
	if layout.SampleRate <= 0 || layout.FrameLength <= 0 || layout.Hop <= 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidLayout, layout)
	}
	if converged == nil {
		converged = make([]bool, len(taus))
		for i := range converged {
			converged[i] = true
		}
	}
	if len(converged) != len(taus) {
		return nil, fmt.Errorf("%w: %d taus, %d mask entries", ErrLengthMismatch, len(taus), len(converged))
	}

	bins := layout.Bins
	if bins <= 0 {
		bins = DefaultBins
	}
	floorDB := layout.FloorDB
	if floorDB == 0 {
		floorDB = DefaultFloorDB
	}

	fs := float64(layout.SampleRate)
	energy := temporal.NewEnergy(layout.FrameLength, layout.Hop, layout.SampleRate)
	logEnergy := energy.ComputeLogEnergy(signal, math.Pow(10, floorDB/20))

	fig := &Figure{
		SampleRate: layout.SampleRate,
		Duration:   float64(len(signal)) / fs,
		Envelope:   make([]EnvelopePoint, len(logEnergy)),
		Frames:     make([]FramePoint, len(taus)),
		Tau:        tau,
		RT60:       rt60,
	}
	for i, db := range logEnergy {
		fig.Envelope[i] = EnvelopePoint{Time: energy.FrameTime(i), EnergyDB: db}
	}

	population := make([]float64, 0, len(taus))
	for i, t := range taus {
		fig.Frames[i] = FramePoint{Time: energy.FrameTime(i), Tau: t, Converged: converged[i]}
		if converged[i] && !math.IsNaN(t) && !math.IsInf(t, 0) {
			population = append(population, t)
		}
	}

	if len(population) > 0 {
		fig.MeanTau = stat.Mean(population, nil)
		fig.Histogram = histogram(population, bins)
	}
	return fig, nil
}

// FromResult renders the figure of a detailed estimate.
func FromResult(res *reverb.Result, bins int) (*Figure, error) {
	return Render(res.Signal, res.Taus, res.Converged, res.Tau, res.RT60, Layout{
		SampleRate:  res.SampleRate,
		FrameLength: res.FrameLength,
		Hop:         res.Hop,
		Bins:        bins,
	})
}

// histogram bins values into equal-width bins spanning their range.
func histogram(values []float64, bins int) Histogram {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		half := 0.5 * math.Max(math.Abs(lo)*1e-3, 1e-9)
		lo, hi = lo-half, hi+half
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	// stat.Histogram wants every value strictly below the last edge
	edges[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, edges, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}
}

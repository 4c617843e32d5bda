package reverb

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-rt60/algorithms/stats"
)

// Aggregation is the percentile summary of the converged frames.
type Aggregation struct {
	Tau        float64   // aggregated time constant in seconds
	RT60       float64   // seconds
	Population []float64 // taus of converged frames, in frame order
}

// Aggregator turns per-frame decay parameters into a single RT60.
type Aggregator struct {
	percentile  float64
	percentiles *stats.Percentiles
}

// NewAggregator creates an aggregator for percentile p (0-100).
func NewAggregator(p float64, method stats.PercentileMethod) *Aggregator {
	return &Aggregator{
		percentile:  p,
		percentiles: stats.NewPercentilesWithMethod(method),
	}
}

// Aggregate keeps the frames flagged in mask, converts their decay parameters
// to time constants and reduces them with the configured percentile.
func (ag *Aggregator) Aggregate(a []float64, mask []bool, fs float64) (Aggregation, error) {
	if len(a) != len(mask) {
		return Aggregation{}, fmt.Errorf("%w: %d decay values, %d mask entries", ErrDimensionMismatch, len(a), len(mask))
	}

	population := make([]float64, 0, len(a))
	for i, ok := range mask {
		if ok {
			population = append(population, TimeConstant(a[i], fs))
		}
	}
	if len(population) == 0 {
		return Aggregation{}, fmt.Errorf("%w: 0 of %d frames", ErrNoConvergedFrames, len(a))
	}

	tau, err := ag.percentiles.CalculatePercentile(population, ag.percentile)
	if err != nil {
		return Aggregation{}, fmt.Errorf("reverb: aggregate: %w", err)
	}

	return Aggregation{
		Tau:        tau,
		RT60:       RT60FromTau(tau),
		Population: population,
	}, nil
}

// Aggregate reduces converged frames with a linearly interpolated percentile
// and returns RT60 in seconds.
func Aggregate(a []float64, mask []bool, fs, percentile float64) (float64, error) {
	agg, err := NewAggregator(percentile, stats.Linear).Aggregate(a, mask, fs)
	if err != nil {
		return 0, err
	}
	return agg.RT60, nil
}

// TimeConstant converts a per-sample decay factor into the 1/e amplitude
// time constant τ = -1/(fs·ln a) in seconds.
func TimeConstant(a, fs float64) float64 {
	return -1 / (fs * math.Log(a))
}

// RT60FromTau converts a 1/e time constant into the -60 dB decay time.
func RT60FromTau(tau float64) float64 {
	return -3 * tau / math.Log10(math.Exp(-1))
}

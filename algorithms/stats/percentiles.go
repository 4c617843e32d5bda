package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrEmptyData is returned when a percentile is requested over no values.
	ErrEmptyData = errors.New("stats: empty data")
	// ErrInvalidPercentile is returned for percentiles outside [0, 100] or NaN.
	ErrInvalidPercentile = errors.New("stats: percentile must be between 0 and 100")
)

// PercentileMethod selects how a percentile falling between two ranks is resolved.
// The methods mirror the interpolation options of numpy.percentile.
type PercentileMethod int

const (
	// Linear interpolation between the closest ranks, h = (n-1)·q (R-7, numpy default)
	Linear PercentileMethod = iota

	// Lower value of the two closest ranks
	Lower

	// Higher value of the two closest ranks
	Higher

	// Midpoint of the two closest ranks
	Midpoint

	// Nearest rank, ties to the even index
	Nearest
)

func (m PercentileMethod) String() string {
	switch m {
	case Linear:
		return "linear"
	case Lower:
		return "lower"
	case Higher:
		return "higher"
	case Midpoint:
		return "midpoint"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("PercentileMethod(%d)", int(m))
	}
}

// ParsePercentileMethod maps a method name to a PercentileMethod.
func ParsePercentileMethod(name string) (PercentileMethod, error) {
	for _, m := range []PercentileMethod{Linear, Lower, Higher, Midpoint, Nearest} {
		if m.String() == name {
			return m, nil
		}
	}
	return Linear, fmt.Errorf("stats: unknown percentile method %q", name)
}

// Percentiles computes order statistics of float samples.
type Percentiles struct {
	method PercentileMethod
}

// NewPercentiles creates a percentile calculator using linear interpolation
func NewPercentiles() *Percentiles {
	return &Percentiles{method: Linear}
}

// NewPercentilesWithMethod creates a percentile calculator with the given method
func NewPercentilesWithMethod(method PercentileMethod) *Percentiles {
	return &Percentiles{method: method}
}

// Method returns the configured interpolation method.
func (p *Percentiles) Method() PercentileMethod {
	return p.method
}

// CalculatePercentile returns the percentile (0-100) of data. data is not modified.
func (p *Percentiles) CalculatePercentile(data []float64, percentile float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyData
	}

	if math.IsNaN(percentile) || percentile < 0 || percentile > 100 {
		return 0, fmt.Errorf("%w: got %g", ErrInvalidPercentile, percentile)
	}

	values := slices.Clone(data)
	slices.Sort(values)

	return p.calculatePercentile(values, percentile/100.0), nil
}

// Median is CalculatePercentile(data, 50).
func (p *Percentiles) Median(data []float64) (float64, error) {
	return p.CalculatePercentile(data, 50)
}

// calculatePercentile expects sortedData to be non-empty and q in [0, 1].
func (p *Percentiles) calculatePercentile(sortedData []float64, q float64) float64 {
	n := len(sortedData)
	if n == 1 {
		return sortedData[0]
	}

	// Fractional 0-based rank
	h := float64(n-1) * q
	lower := int(math.Floor(h))
	upper := int(math.Ceil(h))
	if upper >= n {
		upper = n - 1
	}
	if lower >= n {
		lower = n - 1
	}
	fraction := h - float64(lower)

	switch p.method {
	case Lower:
		return sortedData[lower]
	case Higher:
		return sortedData[upper]
	case Midpoint:
		return (sortedData[lower] + sortedData[upper]) / 2.0
	case Nearest:
		return sortedData[int(math.RoundToEven(h))]
	default:
		if lower == upper {
			return sortedData[lower]
		}
		return sortedData[lower] + fraction*(sortedData[upper]-sortedData[lower])
	}
}

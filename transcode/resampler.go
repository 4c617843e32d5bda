package transcode

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

// ErrInvalidQuality is returned for an unknown resample quality name.
var ErrInvalidQuality = errors.New("transcode: unknown resample quality")

// Resampler converts mono signals between sample rates with a polyphase FIR.
type Resampler struct {
	quality resample.Quality
}

// NewResampler creates a resampler. quality is "fast", "medium" or "high";
// an empty string selects "medium".
func NewResampler(quality string) (*Resampler, error) {
	q, err := parseQuality(quality)
	if err != nil {
		return nil, err
	}
	return &Resampler{quality: q}, nil
}

func parseQuality(name string) (resample.Quality, error) {
	switch name {
	case "fast":
		return resample.QualityFast, nil
	case "", "medium":
		return resample.QualityBalanced, nil
	case "high":
		return resample.QualityBest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, name)
	}
}

// Resample converts signal from fromRate to toRate. Equal rates return a copy.
// Each call builds its own filter state, so a Resampler is safe for concurrent use.
func (r *Resampler) Resample(signal []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("transcode: resample %d Hz -> %d Hz: %w", fromRate, toRate, resample.ErrInvalidRate)
	}
	if fromRate == toRate {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, nil
	}

	rs, err := resample.NewForRates(float64(fromRate), float64(toRate), resample.WithQuality(r.quality))
	if err != nil {
		return nil, fmt.Errorf("transcode: resample %d Hz -> %d Hz: %w", fromRate, toRate, err)
	}

	return rs.Process(signal), nil
}

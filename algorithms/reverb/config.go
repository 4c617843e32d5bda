package reverb

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/sonido-rt60/algorithms/filters"
	"github.com/RyanBlaney/sonido-rt60/algorithms/stats"
)

const (
	// DefaultFrameLength is the analysis frame length in seconds.
	DefaultFrameLength = 200e-3

	// DefaultSampleRate is the working rate used when none is configured.
	DefaultSampleRate = 8000
)

// Config holds the estimator parameters. Lengths are in seconds and are
// converted to samples at the working sample rate Fs.
type Config struct {
	// Working sample rate; input at another rate is resampled to it
	Fs int `json:"fs"`

	FrameLength float64 `json:"frame_length"` // seconds
	Hop         float64 `json:"hop"`          // seconds, 0 means a quarter frame

	// Aggregation percentile in [0, 100]
	Percentile       float64 `json:"percentile"`
	PercentileMethod string  `json:"percentile_method"` // "linear", "lower", "higher", "midpoint", "nearest"

	AInit      float64 `json:"a_init"`
	Sigma2Init float64 `json:"sigma2_init"`

	MaxIterations       int     `json:"max_iterations"`
	MaxError            float64 `json:"max_error"` // tolerance on |dl/da|
	BisectionIterations int     `json:"bisection_iterations"`

	ARange      [2]float64 `json:"a_range"`
	Sigma2Range [2]float64 `json:"sigma2_range"`

	// Initial bisection bracket. The zero value means [AInit, ARange[1]].
	BisectionRange [2]float64 `json:"bisection_range"`

	// DC blocker cutoff in Hz applied at the working rate, 0 disables it
	DCCutoff float64 `json:"dc_cutoff"`

	Verbose bool `json:"verbose"`
}

// DefaultConfig returns the reference parameter set for working rate fs.
func DefaultConfig(fs int) Config {
	return Config{
		Fs:                  fs,
		FrameLength:         DefaultFrameLength,
		Percentile:          50,
		PercentileMethod:    stats.Linear.String(),
		AInit:               0.9,
		Sigma2Init:          0.5,
		MaxIterations:       1000,
		MaxError:            1e-1,
		BisectionIterations: 8,
		ARange:              [2]float64{0, 0.99999999},
		Sigma2Range:         [2]float64{0, 1},
	}
}

// LoadConfig reads a JSON config file and validates it. Fields missing from
// the file keep their DefaultConfig(DefaultSampleRate) values.
func LoadConfig(path string) (Config, error) {
	cfg, err := ReadConfig(path, DefaultConfig(DefaultSampleRate))
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ReadConfig decodes a JSON config file over base without validating it,
// so callers can apply further overrides first.
func ReadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reverb: read config: %w", err)
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("reverb: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FrameSamples returns the frame length in samples at the working rate.
func (c Config) FrameSamples() int {
	return int(float64(c.Fs) * c.FrameLength)
}

// HopSamples returns the hop in samples at the working rate.
func (c Config) HopSamples() int {
	if c.Hop == 0 {
		return c.FrameSamples() / 4
	}
	return int(float64(c.Fs) * c.Hop)
}

// Bisection returns the initial bisection bracket.
func (c Config) Bisection() (lo, hi float64) {
	if c.BisectionRange == [2]float64{} {
		return c.AInit, c.ARange[1]
	}
	return c.BisectionRange[0], c.BisectionRange[1]
}

func (c Config) percentileMethod() (stats.PercentileMethod, error) {
	if c.PercentileMethod == "" {
		return stats.Linear, nil
	}
	return stats.ParsePercentileMethod(c.PercentileMethod)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// Validate checks every parameter constraint and reports the first violation.
func (c Config) Validate() error {
	if c.Fs <= 0 {
		return invalid("fs must be positive, got %d", c.Fs)
	}
	if math.IsNaN(c.Percentile) || c.Percentile < 0 || c.Percentile > 100 {
		return invalid("percentile must be between 0 and 100, got %g", c.Percentile)
	}
	if _, err := c.percentileMethod(); err != nil {
		return invalid("%v", err)
	}

	framelen := c.FrameSamples()
	if framelen <= 0 {
		return invalid("framelen must be larger than 0 samples, got %d", framelen)
	}
	if hop := c.HopSamples(); hop <= 0 || hop > framelen {
		return invalid("hop must be between 0 and framelen (%d), got %d", framelen, hop)
	}

	if !(c.ARange[0] <= c.AInit && c.AInit < c.ARange[1]) {
		return invalid("a_init must be in [%g, %g), got %g", c.ARange[0], c.ARange[1], c.AInit)
	}
	if !(c.Sigma2Init > 0) {
		return invalid("sigma2_init must be larger than 0, got %g", c.Sigma2Init)
	}
	if !(c.Sigma2Range[0] >= 0 && c.Sigma2Range[0] <= c.Sigma2Range[1]) {
		return invalid("sigma2_range must satisfy 0 <= lo <= hi, got %v", c.Sigma2Range)
	}

	if lo, hi := c.Bisection(); !(c.ARange[0] <= lo && lo < hi && hi <= c.ARange[1]) {
		return invalid("bisection range [%g, %g] must lie inside a_range %v", lo, hi, c.ARange)
	}

	if c.MaxIterations < 0 || c.BisectionIterations < 0 {
		return invalid("iteration counts must be non-negative, got max %d, bisection %d",
			c.MaxIterations, c.BisectionIterations)
	}
	if math.IsNaN(c.MaxError) || c.MaxError < 0 {
		return invalid("max_error must be non-negative, got %g", c.MaxError)
	}
	if c.DCCutoff != 0 {
		if _, err := filters.NewDCBlocker(c.Fs, c.DCCutoff); err != nil {
			return invalid("%v", err)
		}
	}

	return nil
}

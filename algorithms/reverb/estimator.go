package reverb

import (
	"fmt"

	"github.com/RyanBlaney/sonido-rt60/algorithms/filters"
	"github.com/RyanBlaney/sonido-rt60/logging"
	"github.com/RyanBlaney/sonido-rt60/transcode"
)

// Resampler converts a signal between sample rates.
type Resampler interface {
	Resample(signal []float64, fromRate, toRate int) ([]float64, error)
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithResampler replaces the default polyphase resampler.
func WithResampler(r Resampler) Option {
	return func(e *Estimator) {
		if r != nil {
			e.resampler = r
		}
	}
}

// WithLogger sets the logger used for verbose diagnostics. The global
// logger is used otherwise.
func WithLogger(l logging.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// Estimator estimates RT60 with a fixed configuration. It holds no
// per-call state and is safe for concurrent use.
type Estimator struct {
	config    Config
	resampler Resampler
	logger    logging.Logger
}

// Result is the full outcome of one estimation.
type Result struct {
	RT60            float64   `json:"rt60"`
	Tau             float64   `json:"tau"`
	SampleRate      int       `json:"sample_rate"`
	FrameLength     int       `json:"frame_length"`
	Hop             int       `json:"hop"`
	Frames          int       `json:"frames"`
	ConvergedFrames int       `json:"converged_frames"`
	Iterations      int       `json:"iterations"`
	A               []float64 `json:"a"`
	Taus            []float64 `json:"taus"` // every frame; see Converged
	Converged       []bool    `json:"converged"`

	// Signal is the analysed signal at SampleRate, after any resampling
	Signal []float64 `json:"-"`
}

// ConvergedTaus returns the time constants of converged frames only.
func (r *Result) ConvergedTaus() []float64 {
	out := make([]float64, 0, r.ConvergedFrames)
	for i, ok := range r.Converged {
		if ok {
			out = append(out, r.Taus[i])
		}
	}
	return out
}

// NewEstimator validates cfg and creates an estimator.
func NewEstimator(cfg Config, opts ...Option) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Estimator{
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.resampler == nil {
		r, err := transcode.NewResampler("medium")
		if err != nil {
			return nil, err
		}
		e.resampler = r
	}

	return e, nil
}

// Config returns a copy of the estimator configuration.
func (e *Estimator) Config() Config {
	return e.config
}

// Estimate returns the RT60 in seconds of signal recorded at sampleRate.
func (e *Estimator) Estimate(signal []float64, sampleRate int) (float64, error) {
	res, err := e.EstimateDetailed(signal, sampleRate)
	if err != nil {
		return 0, err
	}
	return res.RT60, nil
}

// EstimateDetailed runs the estimator and returns per-frame results along
// with the aggregate. When no frame converges the per-frame result is
// returned together with ErrNoConvergedFrames.
func (e *Estimator) EstimateDetailed(signal []float64, sampleRate int) (*Result, error) {
	cfg := e.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}

	logger := e.logger.WithFields(logging.Fields{
		"component": "blind_rt60",
		"function":  "EstimateDetailed",
	})

	x := signal
	if sampleRate != cfg.Fs {
		resampled, err := e.resampler.Resample(signal, sampleRate, cfg.Fs)
		if err != nil {
			return nil, fmt.Errorf("reverb: resample %d Hz -> %d Hz: %w", sampleRate, cfg.Fs, err)
		}
		if cfg.Verbose {
			logger.Debug("resampled input", logging.Fields{
				"from_rate": sampleRate,
				"to_rate":   cfg.Fs,
				"samples":   len(resampled),
			})
		}
		x = resampled
	}

	if cfg.DCCutoff > 0 {
		dc, err := filters.NewDCBlocker(cfg.Fs, cfg.DCCutoff)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		x = dc.ProcessBuffer(x)
	}

	frames, err := Frame(x, cfg.FrameSamples(), cfg.HopSamples())
	if err != nil {
		return nil, err
	}

	solver := NewHybridSolver(solverSettings(cfg), logger, cfg.Verbose)
	solution, err := solver.Solve(NewLikelihoodModel(frames, cfg.Sigma2Range))
	if err != nil {
		return nil, err
	}

	fs := float64(cfg.Fs)
	taus := make([]float64, len(solution.A))
	for i, a := range solution.A {
		taus[i] = TimeConstant(a, fs)
	}

	res := &Result{
		SampleRate:      cfg.Fs,
		FrameLength:     frames.FrameLength(),
		Hop:             frames.Hop(),
		Frames:          frames.Len(),
		ConvergedFrames: solution.ConvergedCount(),
		Iterations:      solution.Iterations,
		A:               solution.A,
		Taus:            taus,
		Converged:       solution.Converged,
		Signal:          x,
	}

	method, _ := cfg.percentileMethod()
	agg, err := NewAggregator(cfg.Percentile, method).Aggregate(solution.A, solution.Converged, fs)
	if err != nil {
		if cfg.Verbose {
			logger.Warn("estimation did not converge", logging.Fields{
				"frames":     res.Frames,
				"iterations": res.Iterations,
			})
		}
		return res, err
	}
	res.Tau = agg.Tau
	res.RT60 = agg.RT60

	if cfg.Verbose {
		logger.Info("estimation complete", logging.Fields{
			"rt60":             res.RT60,
			"tau":              res.Tau,
			"frames":           res.Frames,
			"converged_frames": res.ConvergedFrames,
			"iterations":       res.Iterations,
		})
	}

	return res, nil
}

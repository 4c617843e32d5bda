package reverb

import "errors"

// Errors returned by the estimator and its stages.
var (
	// ErrInvalidConfig wraps every configuration constraint violation.
	ErrInvalidConfig = errors.New("reverb: invalid configuration")
	// ErrSignalTooShort is returned when the signal holds less than one frame.
	ErrSignalTooShort = errors.New("reverb: signal shorter than one frame")
	// ErrNoConvergedFrames is returned when no frame met the convergence tolerance.
	ErrNoConvergedFrames = errors.New("reverb: no frame converged")
	// ErrNonFinite is returned by CalculateDecayTime for NaN or infinite input.
	ErrNonFinite = errors.New("reverb: value must be finite")
	// ErrDimensionMismatch is returned when per-frame vectors disagree with the frame batch.
	ErrDimensionMismatch = errors.New("reverb: dimension mismatch")
	// ErrInvalidPhase signals an unknown solver phase; it indicates a scheduling bug.
	ErrInvalidPhase = errors.New("reverb: invalid solver phase")
	// ErrInvalidSampleRate is returned for non-positive input sample rates.
	ErrInvalidSampleRate = errors.New("reverb: sample rate must be positive")
)

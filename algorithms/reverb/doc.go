// Package reverb estimates the reverberation time (RT60) of a room from a
// single recorded signal, without a measured impulse response.
//
// The late reverberant tail of every short frame is modelled as zero-mean
// Gaussian noise under an exponential envelope,
//
//	x[n] = a^n · v[n],  v[n] ~ N(0, σ²)
//
// and the per-sample decay factor a is found by maximum likelihood
// (Ratnam et al., "Blind estimation of reverberation time", JASA 114, 2003).
// Each frame is solved independently with a few bisection steps followed by
// Newton-Raphson refinement. Converged frames are turned into time constants
// τ = -1/(fs·ln a) and a percentile of those (the median by default) gives
//
//	RT60 = 3·τ / log10(e) ≈ 6.908·τ
//
// # Usage
//
//	est, err := reverb.NewEstimator(reverb.DefaultConfig(8000))
//	if err != nil {
//		return err
//	}
//	rt60, err := est.Estimate(samples, sampleRate) // resamples to 8 kHz if needed
//
// An Estimator is immutable after construction; all iteration state is local
// to a call, so one Estimator may be shared between goroutines.
package reverb

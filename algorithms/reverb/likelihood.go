package reverb

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// epsilon guards the a and σ² denominators. It is far below any σ² a real
// frame produces, so scaled-down signals keep the same estimate.
const epsilon = 1e-300

// LikelihoodModel evaluates the log-likelihood derivatives of the decaying
// noise model for every frame of a batch.
type LikelihoodModel struct {
	frames      *FrameBatch
	sigma2Range [2]float64

	n      []float64 // sample indices 0..L-1
	curv   []float64 // (1-2n)·n
	fac    float64   // Σn = L(L-1)/2
	weight []float64 // scratch for w_n
}

// Derivatives holds per-frame first and second derivatives of the
// log-likelihood with respect to a, and the σ² estimate they were taken at.
type Derivatives struct {
	DlDa   []float64
	D2lDa2 []float64
	Sigma2 []float64
}

// NewLikelihoodModel prepares the model for a frame batch. A model keeps
// scratch space and must not be shared between goroutines.
func NewLikelihoodModel(frames *FrameBatch, sigma2Range [2]float64) *LikelihoodModel {
	L := frames.FrameLength()

	n := make([]float64, L)
	if L > 1 {
		floats.Span(n, 0, float64(L-1))
	}

	curv := make([]float64, L)
	for i, v := range n {
		curv[i] = (1 - 2*v) * v
	}

	return &LikelihoodModel{
		frames:      frames,
		sigma2Range: sigma2Range,
		n:           n,
		curv:        curv,
		fac:         float64(L) * float64(L-1) / 2,
		weight:      make([]float64, L),
	}
}

// Frames returns the batch the model evaluates.
func (m *LikelihoodModel) Frames() *FrameBatch {
	return m.frames
}

// Score returns dl/da and σ² per frame at the given decay parameters.
func (m *LikelihoodModel) Score(a []float64) (dlda, sigma2 []float64, err error) {
	if len(a) != m.frames.Len() {
		return nil, nil, fmt.Errorf("%w: %d decay values for %d frames", ErrDimensionMismatch, len(a), m.frames.Len())
	}

	dlda = make([]float64, len(a))
	sigma2 = make([]float64, len(a))
	for i, ai := range a {
		dlda[i], _, sigma2[i] = m.frame(i, ai, false)
	}
	return dlda, sigma2, nil
}

// Derivatives returns dl/da, d²l/da² and σ² per frame.
func (m *LikelihoodModel) Derivatives(a []float64) (Derivatives, error) {
	if len(a) != m.frames.Len() {
		return Derivatives{}, fmt.Errorf("%w: %d decay values for %d frames", ErrDimensionMismatch, len(a), m.frames.Len())
	}

	d := Derivatives{
		DlDa:   make([]float64, len(a)),
		D2lDa2: make([]float64, len(a)),
		Sigma2: make([]float64, len(a)),
	}
	for i, ai := range a {
		d.DlDa[i], d.D2lDa2[i], d.Sigma2[i] = m.frame(i, ai, true)
	}
	return d, nil
}

// frame evaluates one frame. w_n = a^(-2n)·x_n² is built by repeated
// multiplication with a^-2.
func (m *LikelihoodModel) frame(i int, a float64, curvature bool) (dlda, d2lda2, sigma2 float64) {
	x := m.frames.Row(i)
	w := m.weight

	step := 1 / (a * a)
	scale := 1.0
	for k, v := range x {
		w[k] = scale * v * v
		scale *= step
	}

	sigma2 = floats.Sum(w) / float64(len(w))
	sigma2 = clip(sigma2, m.sigma2Range[0], m.sigma2Range[1])

	dlda = (floats.Dot(m.n, w)/(sigma2+epsilon) - m.fac) / (a + epsilon)
	if curvature {
		d2lda2 = m.fac/((a+epsilon)*(a+epsilon)) + floats.Dot(m.curv, w)/(sigma2+epsilon)
	}
	return dlda, d2lda2, sigma2
}

// clip bounds v to [lo, hi]. NaN is returned unchanged.
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

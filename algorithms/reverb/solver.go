package reverb

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-rt60/logging"
)

// phase selects the update rule of one solver iteration.
type phase int

const (
	phaseBisection phase = iota
	phaseNewton
)

func (p phase) String() string {
	switch p {
	case phaseBisection:
		return "bisection"
	case phaseNewton:
		return "newton"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// SolverSettings are the iteration controls of HybridSolver.
type SolverSettings struct {
	ARange              [2]float64
	BisectionRange      [2]float64
	AInit               float64
	Sigma2Init          float64
	MaxIterations       int
	BisectionIterations int
	MaxError            float64
}

func solverSettings(c Config) SolverSettings {
	lo, hi := c.Bisection()
	return SolverSettings{
		ARange:              c.ARange,
		BisectionRange:      [2]float64{lo, hi},
		AInit:               c.AInit,
		Sigma2Init:          c.Sigma2Init,
		MaxIterations:       c.MaxIterations,
		BisectionIterations: c.BisectionIterations,
		MaxError:            c.MaxError,
	}
}

// HybridSolver drives every frame's decay parameter to the root of dl/da:
// BisectionIterations bracket-halving steps, then Newton-Raphson until every
// frame converges or MaxIterations is reached.
type HybridSolver struct {
	settings SolverSettings
	logger   logging.Logger
	verbose  bool
}

// NewHybridSolver creates a solver. A nil logger disables diagnostics.
func NewHybridSolver(settings SolverSettings, logger logging.Logger, verbose bool) *HybridSolver {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &HybridSolver{settings: settings, logger: logger, verbose: verbose}
}

// Solution is the outcome of one Solve call.
type Solution struct {
	A          []float64
	Sigma2     []float64
	DlDa       []float64
	Converged  []bool
	Iterations int
}

// ConvergedCount returns how many frames met the tolerance.
func (s *Solution) ConvergedCount() int {
	return countTrue(s.Converged)
}

// solverContext is the iteration state of a single Solve call.
type solverContext struct {
	model     *LikelihoodModel
	a         []float64
	lower     []float64
	upper     []float64
	sigma2    []float64
	dlda      []float64
	converged []bool
}

func (s *HybridSolver) newContext(model *LikelihoodModel) *solverContext {
	batch := model.Frames().Len()
	ctx := &solverContext{
		model:     model,
		a:         make([]float64, batch),
		lower:     make([]float64, batch),
		upper:     make([]float64, batch),
		sigma2:    make([]float64, batch),
		dlda:      make([]float64, batch),
		converged: make([]bool, batch),
	}
	for i := range batch {
		ctx.a[i] = s.settings.AInit
		ctx.lower[i] = s.settings.BisectionRange[0]
		ctx.upper[i] = s.settings.BisectionRange[1]
		ctx.sigma2[i] = s.settings.Sigma2Init
	}
	return ctx
}

func (c *solverContext) allConverged() bool {
	for _, ok := range c.converged {
		if !ok {
			return false
		}
	}
	return true
}

// phaseFor returns the phase of iteration itr. Iterations
// 0..BisectionIterations-1 bisect, later ones use Newton.
func (s *HybridSolver) phaseFor(itr int) phase {
	if itr < s.settings.BisectionIterations {
		return phaseBisection
	}
	return phaseNewton
}

// Solve runs the two-phase schedule over every frame of the model's batch.
func (s *HybridSolver) Solve(model *LikelihoodModel) (*Solution, error) {
	ctx := s.newContext(model)

	itr := 0
	for itr < s.settings.BisectionIterations ||
		(itr < s.settings.MaxIterations && !ctx.allConverged()) {
		p := s.phaseFor(itr)
		if err := s.step(ctx, p); err != nil {
			return nil, err
		}
		if err := s.check(ctx); err != nil {
			return nil, err
		}
		itr++

		if s.verbose {
			s.logger.Debug("solver iteration", logging.Fields{
				"iteration": itr,
				"phase":     p.String(),
				"converged": countTrue(ctx.converged),
				"frames":    len(ctx.a),
			})
		}
	}

	return &Solution{
		A:          ctx.a,
		Sigma2:     ctx.sigma2,
		DlDa:       ctx.dlda,
		Converged:  ctx.converged,
		Iterations: itr,
	}, nil
}

func (s *HybridSolver) step(ctx *solverContext, p phase) error {
	switch p {
	case phaseBisection:
		return s.bisect(ctx)
	case phaseNewton:
		return s.newton(ctx)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidPhase, p)
	}
}

// bisect halves every frame's bracket, keeping the half where dl/da changes sign.
func (s *HybridSolver) bisect(ctx *solverContext) error {
	middle := make([]float64, len(ctx.a))
	for i := range middle {
		middle[i] = 0.5 * (ctx.lower[i] + ctx.upper[i])
	}

	dlUpper, _, err := ctx.model.Score(ctx.upper)
	if err != nil {
		return err
	}
	dlMiddle, _, err := ctx.model.Score(middle)
	if err != nil {
		return err
	}

	lo, hi := s.settings.ARange[0], s.settings.ARange[1]
	for i := range middle {
		if sign(dlMiddle[i]) != sign(dlUpper[i]) {
			// root in (middle, upper]
			ctx.lower[i] = middle[i]
		} else {
			ctx.upper[i] = middle[i]
		}
		ctx.a[i] = clip(middle[i], lo, hi)
	}
	return nil
}

// newton applies a ← a − (dl/da)/(d²l/da²). Frames whose step is not finite keep their value.
func (s *HybridSolver) newton(ctx *solverContext) error {
	d, err := ctx.model.Derivatives(ctx.a)
	if err != nil {
		return err
	}

	lo, hi := s.settings.ARange[0], s.settings.ARange[1]
	for i := range ctx.a {
		delta := d.DlDa[i] / (d.D2lDa2[i] + epsilon)
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			continue
		}
		ctx.a[i] = clip(ctx.a[i]-delta, lo, hi)
	}
	return nil
}

// check re-evaluates dl/da at the current a and refreshes the convergence mask.
func (s *HybridSolver) check(ctx *solverContext) error {
	dlda, sigma2, err := ctx.model.Score(ctx.a)
	if err != nil {
		return err
	}

	copy(ctx.dlda, dlda)
	copy(ctx.sigma2, sigma2)
	for i, g := range dlda {
		ctx.converged[i] = math.Abs(g) <= s.settings.MaxError
	}
	return nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func countTrue(mask []bool) int {
	count := 0
	for _, ok := range mask {
		if ok {
			count++
		}
	}
	return count
}

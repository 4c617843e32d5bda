package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/measure/ir"
)

// ReferenceRT60 measures RT60 from an impulse response by Schroeder backward
// integration (T30, falling back to T20). Samples before the impulse onset
// are skipped. It serves as the non-blind reference for blind estimates.
func ReferenceRT60(impulse []float64, sampleRate int) (float64, error) {
	analyzer := ir.NewAnalyzer(float64(sampleRate))

	start, err := analyzer.FindImpulseStart(impulse)
	if err != nil {
		return 0, fmt.Errorf("reverb: reference: %w", err)
	}

	rt60, err := analyzer.RT60(impulse[start:])
	if err != nil {
		return 0, fmt.Errorf("reverb: reference: %w", err)
	}
	return rt60, nil
}

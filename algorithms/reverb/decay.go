package reverb

import (
	"fmt"
	"math"
)

// CalculateDecayTime returns the time a signal with 1/e time constant tau
// needs to fall by decayDB decibels:
//
//	decay_time = -decayDB / (20·log10(e⁻¹)) · tau
//
// Negative decayDB means amplification. The result has the unit of tau.
func CalculateDecayTime(decayDB, tau float64) (float64, error) {
	if math.IsNaN(decayDB) || math.IsInf(decayDB, 0) {
		return 0, fmt.Errorf("%w: decay_db is %v", ErrNonFinite, decayDB)
	}

	return -decayDB / (20 * math.Log10(math.Exp(-1))) * tau, nil
}

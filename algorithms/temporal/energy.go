package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Energy computes short-time RMS energy over hop-spaced frames
type Energy struct {
	frameSize  int
	hopSize    int
	sampleRate int
}

// NewEnergy creates a new energy calculator
func NewEnergy(frameSize, hopSize, sampleRate int) *Energy {
	return &Energy{
		frameSize:  frameSize,
		hopSize:    hopSize,
		sampleRate: sampleRate,
	}
}

// NumFrames returns how many full frames fit in n samples.
func (e *Energy) NumFrames(n int) int {
	if n < e.frameSize || e.hopSize <= 0 || e.frameSize <= 0 {
		return 0
	}
	return (n-e.frameSize)/e.hopSize + 1
}

// FrameTime returns the start time in seconds of frame i.
func (e *Energy) FrameTime(i int) float64 {
	if e.sampleRate <= 0 {
		return 0
	}
	return float64(i*e.hopSize) / float64(e.sampleRate)
}

// ComputeShortTimeEnergy calculates the RMS of every full frame
func (e *Energy) ComputeShortTimeEnergy(signal []float64) []float64 {
	numFrames := e.NumFrames(len(signal))
	energies := make([]float64, numFrames)

	for i := range numFrames {
		frame := signal[i*e.hopSize : i*e.hopSize+e.frameSize]
		energies[i] = math.Sqrt(floats.Dot(frame, frame) / float64(e.frameSize))
	}

	return energies
}

// ComputeLogEnergy calculates frame energy in dB, clamping at floor (linear RMS)
func (e *Energy) ComputeLogEnergy(signal []float64, floor float64) []float64 {
	energies := e.ComputeShortTimeEnergy(signal)
	logEnergies := make([]float64, len(energies))

	for i, energy := range energies {
		if energy < floor {
			energy = floor
		}
		logEnergies[i] = 20.0 * math.Log10(energy)
	}

	return logEnergies
}

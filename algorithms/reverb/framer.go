package reverb

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FrameBatch is a B×L matrix of overlapping signal frames, one frame per row.
type FrameBatch struct {
	frames *mat.Dense
	hop    int
}

// Frame slices signal into frames of framelen samples starting at 0, hop,
// 2·hop, ... while a full frame remains. The trailing partial frame is
// dropped; nothing is padded.
func Frame(signal []float64, framelen, hop int) (*FrameBatch, error) {
	if framelen <= 0 {
		return nil, fmt.Errorf("%w: framelen must be larger than 0, got %d", ErrInvalidConfig, framelen)
	}
	if hop <= 0 || hop > framelen {
		return nil, fmt.Errorf("%w: hop must be between 0 and framelen (%d), got %d", ErrInvalidConfig, framelen, hop)
	}
	if len(signal) < framelen {
		return nil, fmt.Errorf("%w: %d samples, frame is %d", ErrSignalTooShort, len(signal), framelen)
	}

	batch := 1 + (len(signal)-framelen)/hop
	data := make([]float64, batch*framelen)
	for i := range batch {
		copy(data[i*framelen:(i+1)*framelen], signal[i*hop:i*hop+framelen])
	}

	return &FrameBatch{
		frames: mat.NewDense(batch, framelen, data),
		hop:    hop,
	}, nil
}

// Len returns the number of frames B.
func (b *FrameBatch) Len() int {
	r, _ := b.frames.Dims()
	return r
}

// FrameLength returns the frame length L in samples.
func (b *FrameBatch) FrameLength() int {
	_, c := b.frames.Dims()
	return c
}

// Hop returns the hop in samples between frame starts.
func (b *FrameBatch) Hop() int {
	return b.hop
}

// Row returns frame i. The slice aliases the batch and must not be modified.
func (b *FrameBatch) Row(i int) []float64 {
	return b.frames.RawRowView(i)
}

// Matrix exposes the batch as a read-only gonum matrix.
func (b *FrameBatch) Matrix() mat.Matrix {
	return b.frames
}

package visualize

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
)

const (
	barWidth    = 40
	maxEnvelope = 32
)

// WriteJSON writes the figure as indented JSON.
func (f *Figure) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// WriteText writes a terminal rendering of the figure: summary line,
// energy envelope and tau histogram as horizontal bar charts.
func (f *Figure) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "RT60 %.3f s\ttau %.4f s\tmean tau %.4f s\t%d/%d frames converged\n",
		f.RT60, f.Tau, f.MeanTau, f.ConvergedCount(), len(f.Frames))
	fmt.Fprintf(tw, "duration %.2f s\tfs %d Hz\t\t\n", f.Duration, f.SampleRate)

	if len(f.Envelope) > 0 {
		fmt.Fprintln(tw, "\nEnergy envelope (dB)")
		lo, hi := envelopeRange(f.Envelope)
		step := (len(f.Envelope) + maxEnvelope - 1) / maxEnvelope
		for i := 0; i < len(f.Envelope); i += step {
			p := f.Envelope[i]
			fmt.Fprintf(tw, "%.2f s\t%.1f\t|%s\n", p.Time, p.EnergyDB, bar(p.EnergyDB-lo, hi-lo))
		}
	}

	if n := len(f.Histogram.Counts); n > 0 {
		fmt.Fprintln(tw, "\nTau histogram (s)")
		peak := 0.0
		for _, c := range f.Histogram.Counts {
			peak = math.Max(peak, c)
		}
		for i, c := range f.Histogram.Counts {
			fmt.Fprintf(tw, "[%.4f, %.4f)\t%d\t|%s\n",
				f.Histogram.Edges[i], f.Histogram.Edges[i+1], int(c), bar(c, peak))
		}
	}

	return tw.Flush()
}

func envelopeRange(points []EnvelopePoint) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.EnergyDB)
		hi = math.Max(hi, p.EnergyDB)
	}
	return lo, hi
}

// bar draws v/full of barWidth as '#'.
func bar(v, full float64) string {
	if !(full > 0) {
		return ""
	}
	n := int(math.Round(barWidth * v / full))
	return strings.Repeat("#", max(0, min(n, barWidth)))
}

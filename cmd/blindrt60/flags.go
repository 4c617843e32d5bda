package main

import (
	"fmt"
	"strconv"
	"strings"
)

// rangeFlag parses a "lo,hi" pair into a config bound.
type rangeFlag [2]float64

func (r *rangeFlag) String() string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(r[0], 'g', -1, 64) + "," + strconv.FormatFloat(r[1], 'g', -1, 64)
}

func (r *rangeFlag) Set(value string) error {
	lo, hi, ok := strings.Cut(value, ",")
	if !ok {
		return fmt.Errorf("want lo,hi, got %q", value)
	}

	var out rangeFlag
	for i, part := range []string{lo, hi} {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("bound %q: %w", part, err)
		}
		out[i] = v
	}
	*r = out
	return nil
}

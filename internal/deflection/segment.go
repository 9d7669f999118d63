package deflection

import (
	"fmt"

	apperrors "expsim/internal/errors"
)

// AscendingIndices returns the indices forming the monotone ascending
// envelope of forces: index 0 followed by every index whose force strictly
// exceeds all forces before it.
//
// This is the chain obtained by jumping from each kept sample to the first
// later sample with a larger force, starting at index 0.
func AscendingIndices(forces []float64) []int {
	if len(forces) == 0 {
		return nil
	}

	indices := []int{0}
	running := forces[0]
	for j := 1; j < len(forces); j++ {
		if forces[j] > running {
			indices = append(indices, j)
			running = forces[j]
		}
	}
	return indices
}

// Segment splits a truncated series into its canonical form: the ascending
// envelope of the samples before the peak force, followed by the samples from
// the peak force up to the maximum displacement.
func Segment(samples []Sample, end DescendingEnd) (*Canonical, error) {
	if len(samples) == 0 {
		return nil, apperrors.NewEmptySeriesError("cannot segment an empty series")
	}

	peak := argmax(samples, func(s Sample) float64 { return s.Force })

	var last int
	switch end {
	case PostPeak:
		last = peak + argmax(samples[peak:], func(s Sample) float64 { return s.Displacement })
	default:
		last = argmax(samples, func(s Sample) float64 { return s.Displacement })
	}
	if last < peak {
		return nil, apperrors.NewInvalidSeriesError(fmt.Sprintf(
			"maximum displacement at index %d precedes peak force at index %d", last, peak)).
			WithContext("displacement_index", last).
			WithContext("peak_index", peak)
	}

	forces := make([]float64, peak)
	for i := range forces {
		forces[i] = samples[i].Force
	}
	ascending := AscendingIndices(forces)
	descending := samples[peak : last+1]

	canonical := &Canonical{
		Samples:         make([]Sample, 0, len(ascending)+len(descending)),
		AscendingLen:    len(ascending),
		DescendingLen:   len(descending),
		SourcePeakIndex: peak,
		SourceLen:       len(samples),
	}
	for _, i := range ascending {
		canonical.Samples = append(canonical.Samples, samples[i])
	}
	canonical.Samples = append(canonical.Samples, descending...)

	return canonical, nil
}

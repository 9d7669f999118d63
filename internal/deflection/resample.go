package deflection

import (
	"math"

	apperrors "expsim/internal/errors"
)

// Resample selects about targetCount samples from a canonical series, taking
// from the ascending portion [0, peakIndex) and the descending portion
// [peakIndex, end) separately so both are represented.
func Resample(c *Canonical, peakIndex, targetCount int, mode ResampleMode) (Columns, error) {
	if targetCount < 2 {
		return Columns{}, apperrors.NewInvalidSampleCountError(targetCount)
	}
	if peakIndex < 0 || peakIndex > c.Len() {
		return Columns{}, apperrors.NewValidationError("peak index outside series", nil).
			WithContext("peak_index", peakIndex).
			WithContext("len", c.Len())
	}

	ascending := c.Samples[:peakIndex]
	descending := c.Samples[peakIndex:]

	var picked []Sample
	switch mode {
	case Uniform:
		step := peakIndex / (targetCount - 1)
		if step < 1 {
			step = 1
		}
		picked = append(strided(ascending, step), strided(descending, step)...)
	default:
		nAsc, nDesc := splitCount(len(ascending), len(descending), targetCount)
		picked = append(evenlySpaced(ascending, nAsc), evenlySpaced(descending, nDesc)...)
	}

	return columnsOf(picked), nil
}

// splitCount divides total between two parts in proportion to their
// lengths. Each non-empty part gets at least one sample and no part gets more
// than it holds.
func splitCount(nAsc, nDesc, total int) (int, int) {
	n := nAsc + nDesc
	if n <= total {
		return nAsc, nDesc
	}
	if nAsc == 0 {
		return 0, total
	}
	if nDesc == 0 {
		return total, 0
	}

	a := int(math.Round(float64(total) * float64(nAsc) / float64(n)))
	a = max(1, min(a, total-1, nAsc))
	d := total - a
	if d > nDesc {
		d = nDesc
		a = total - d
	}
	return a, d
}

// evenlySpaced picks k samples with indices spread evenly from the first to
// the last sample.
func evenlySpaced(samples []Sample, k int) []Sample {
	if k <= 0 || len(samples) == 0 {
		return nil
	}
	if k >= len(samples) {
		return append([]Sample(nil), samples...)
	}
	if k == 1 {
		return []Sample{samples[0]}
	}

	out := make([]Sample, k)
	step := float64(len(samples)-1) / float64(k-1)
	for i := range out {
		out[i] = samples[int(math.Round(step*float64(i)))]
	}
	return out
}

func strided(samples []Sample, step int) []Sample {
	out := make([]Sample, 0, (len(samples)+step-1)/step)
	for i := 0; i < len(samples); i += step {
		out = append(out, samples[i])
	}
	return out
}

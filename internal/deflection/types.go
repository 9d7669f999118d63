package deflection

import (
	"fmt"
)

// Sample is one retained CSV row. Force is stored as a positive magnitude
// under load; the source files record compression as negative.
type Sample struct {
	Time         float64 `json:"time"`
	Force        float64 `json:"force"`
	Displacement float64 `json:"displacement"`
}

// Columns holds a series column-wise, the layout used for plotting and
// tabulation.
type Columns struct {
	Time         []float64 `json:"time"`
	Force        []float64 `json:"force"`
	Displacement []float64 `json:"displacement"`
}

// Len returns the number of rows
func (c Columns) Len() int {
	return len(c.Time)
}

// columnsOf splits samples into freshly allocated columns
func columnsOf(samples []Sample) Columns {
	cols := Columns{
		Time:         make([]float64, len(samples)),
		Force:        make([]float64, len(samples)),
		Displacement: make([]float64, len(samples)),
	}
	for i, s := range samples {
		cols.Time[i] = s.Time
		cols.Force[i] = s.Force
		cols.Displacement[i] = s.Displacement
	}
	return cols
}

// DescendingEnd selects where the descending portion stops
type DescendingEnd int

const (
	// FullRange ends at the maximum displacement of the whole truncated
	// series. A maximum located before the peak force is an error.
	FullRange DescendingEnd = iota
	// PostPeak ends at the maximum displacement at or after the peak force.
	PostPeak
)

// String returns the configuration name of the mode
func (d DescendingEnd) String() string {
	switch d {
	case FullRange:
		return "full"
	case PostPeak:
		return "post-peak"
	default:
		return "unknown"
	}
}

// ParseDescendingEnd parses "full" or "post-peak"
func ParseDescendingEnd(s string) (DescendingEnd, error) {
	switch s {
	case "", "full":
		return FullRange, nil
	case "post-peak":
		return PostPeak, nil
	default:
		return 0, fmt.Errorf("unknown descending end %q", s)
	}
}

// Truncation selects what happens when no sample lies after the start time
type Truncation int

const (
	// TruncateStrict fails with an empty series error.
	TruncateStrict Truncation = iota
	// TruncateLenient keeps every sample.
	TruncateLenient
)

// String returns the configuration name of the policy
func (t Truncation) String() string {
	switch t {
	case TruncateStrict:
		return "strict"
	case TruncateLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// ParseTruncation parses "strict" or "lenient"
func ParseTruncation(s string) (Truncation, error) {
	switch s {
	case "", "strict":
		return TruncateStrict, nil
	case "lenient":
		return TruncateLenient, nil
	default:
		return 0, fmt.Errorf("unknown truncation policy %q", s)
	}
}

// ResampleMode selects how the resampled subset is chosen
type ResampleMode int

const (
	// Proportional splits the target count between the ascending and
	// descending halves by their lengths and spaces indices evenly.
	Proportional ResampleMode = iota
	// Uniform applies the stride peakIndex/(targetCount-1) to both halves.
	Uniform
)

// String returns the configuration name of the mode
func (m ResampleMode) String() string {
	switch m {
	case Proportional:
		return "proportional"
	case Uniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// ParseResampleMode parses "proportional" or "uniform"
func ParseResampleMode(s string) (ResampleMode, error) {
	switch s {
	case "", "proportional":
		return Proportional, nil
	case "uniform":
		return Uniform, nil
	default:
		return 0, fmt.Errorf("unknown resample mode %q", s)
	}
}

// ParseDelimiter maps a delimiter name to its rune. The empty name selects
// detection from the header row.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "semicolon", ";":
		return ';', nil
	case "comma", ",":
		return ',', nil
	case "tab", "\t":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unknown delimiter %q", s)
	}
}

// Canonical is the cleaned trace: the ascending envelope followed by the
// descending portion that starts at the peak force.
type Canonical struct {
	Samples       []Sample `json:"samples"`
	AscendingLen  int      `json:"ascending_len"`
	DescendingLen int      `json:"descending_len"`
	// SourcePeakIndex is the index of the maximum force in the truncated
	// series the canonical trace was built from.
	SourcePeakIndex int `json:"source_peak_index"`
	// SourceLen is the length of that truncated series.
	SourceLen int `json:"source_len"`
}

// Len returns the number of samples
func (c *Canonical) Len() int {
	return len(c.Samples)
}

// Ascending returns the ascending portion
func (c *Canonical) Ascending() []Sample {
	return c.Samples[:c.AscendingLen]
}

// Descending returns the descending portion, starting at the peak force
func (c *Canonical) Descending() []Sample {
	return c.Samples[c.AscendingLen:]
}

// PeakIndex returns the first index of the maximum force
func (c *Canonical) PeakIndex() int {
	return argmax(c.Samples, func(s Sample) float64 { return s.Force })
}

// Columns returns the samples column-wise
func (c *Canonical) Columns() Columns {
	return columnsOf(c.Samples)
}

// Clone returns a deep copy
func (c *Canonical) Clone() *Canonical {
	clone := *c
	clone.Samples = append([]Sample(nil), c.Samples...)
	return &clone
}

// Grid holds the interpolators evaluated on uniform grids
type Grid struct {
	// Time is a uniform grid over the canonical time range with the force
	// and displacement interpolated at each point.
	Time         []float64 `json:"time"`
	Force        []float64 `json:"force"`
	Displacement []float64 `json:"displacement"`
	// AscendingForce is a uniform grid over the ascending force range with
	// the time at which each force level is first reached.
	AscendingForce []float64 `json:"ascending_force"`
	AscendingTime  []float64 `json:"ascending_time"`
}

// Summary collects the scalar results used for reporting
type Summary struct {
	RawCount            int     `json:"raw_count"`
	SampleCount         int     `json:"sample_count"`
	AscendingCount      int     `json:"ascending_count"`
	DescendingCount     int     `json:"descending_count"`
	DiscardedCount      int     `json:"discarded_count"`
	TimeStart           float64 `json:"time_start"`
	TimeEnd             float64 `json:"time_end"`
	PeakForce           float64 `json:"peak_force"`
	PeakForceTime       float64 `json:"peak_force_time"`
	PeakForceIndex      int     `json:"peak_force_index"`
	SourcePeakIndex     int     `json:"source_peak_index"`
	DisplacementAtPeak  float64 `json:"displacement_at_peak"`
	MaxDisplacement     float64 `json:"max_displacement"`
	MaxDisplacementTime float64 `json:"max_displacement_time"`
}

// argmax returns the first index of the largest key, or -1 for no samples
func argmax(samples []Sample, key func(Sample) float64) int {
	if len(samples) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(samples); i++ {
		if key(samples[i]) > key(samples[best]) {
			best = i
		}
	}
	return best
}

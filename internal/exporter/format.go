package exporter

import (
	"strconv"
	"strings"
)

// NumberFormat selects how numbers and fields are written
type NumberFormat int

const (
	// DecimalPoint writes 1.5 with comma separated fields.
	DecimalPoint NumberFormat = iota
	// DecimalComma writes 1,5 with semicolon separated fields, the layout
	// of the test rig exports.
	DecimalComma
)

// Delimiter returns the field separator for the format
func (f NumberFormat) Delimiter() rune {
	if f == DecimalComma {
		return ';'
	}
	return ','
}

// formatFloat writes the shortest representation that parses back to f
func formatFloat(f float64, format NumberFormat) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if format == DecimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Row is one load-deflection measurement row: time, force, displacement.
// Force is written as given, so loading rows carry negative force.
type Row [3]float64

// FormatSeriesCSV renders rows in the rig's export layout: a header row,
// semicolon separators and decimal commas.
func FormatSeriesCSV(rows []Row) string {
	var b strings.Builder
	b.WriteString("Zeit [s];Kraft [kN];Weg [mm]\n")
	for _, r := range rows {
		for i, v := range r {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteSeriesCSV writes rows to dir/name and returns the path
func WriteSeriesCSV(t *testing.T, dir, name string, rows []Row) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(FormatSeriesCSV(rows)), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// ScenarioRows is a short noisy loading curve: force drops at t=2 and t=4,
// peaks at t=5 and unloads at t=6. Displacement equals time.
func ScenarioRows() []Row {
	forces := []float64{0, 5, 3, 8, 2, 10, 1}
	rows := make([]Row, len(forces))
	for i, f := range forces {
		rows[i] = Row{float64(i), -f, float64(i)}
	}
	return rows
}

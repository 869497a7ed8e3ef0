package runs

import (
	"github.com/scorigami/scorigami/internal/matrix"
	"github.com/scorigami/scorigami/internal/palette"
)

// Run is a maximal stretch of same-swatch cells in one row.
type Run struct {
	// Start is the winning score of the first cell.
	Start  int
	Length int
	Swatch palette.Swatch

	// ScrollID and Label are set only for a single interactive cell.
	ScrollID string
	Label    string
}

// Interactive reports whether the run can be tapped into the detail view.
func (r Run) Interactive() bool { return r.ScrollID != "" }

// Compress groups row left to right into runs keyed by the swatch each cell
// resolves to under metric m and ramp r.
func Compress(row []matrix.Cell, m matrix.Metric, r palette.Ramp) []Run {
	if len(row) == 0 {
		return nil
	}
	out := make([]Run, 0, 8)
	first := 0
	cur := palette.Resolve(row[0], m, r)
	for i := 1; i <= len(row); i++ {
		var next palette.Swatch
		if i < len(row) {
			next = palette.Resolve(row[i], m, r)
			if next == cur {
				continue
			}
		}
		out = append(out, newRun(row, first, i-first, cur))
		first, cur = i, next
	}
	return out
}

func newRun(row []matrix.Cell, start, length int, sw palette.Swatch) Run {
	run := Run{Start: row[start].Winning, Length: length, Swatch: sw}
	if length == 1 && row[start].Label != "" {
		run.ScrollID = row[start].ScrollID
		run.Label = row[start].Label
	}
	return run
}

// Expand returns one swatch per cell covered by runs, in order.
func Expand(runs []Run) []palette.Swatch {
	n := 0
	for _, r := range runs {
		n += r.Length
	}
	out := make([]palette.Swatch, 0, n)
	for _, r := range runs {
		for i := 0; i < r.Length; i++ {
			out = append(out, r.Swatch)
		}
	}
	return out
}

package matrix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for board construction and lookup.
var (
	ErrEmptyLedger = errors.New("matrix: ledger has no records")
	ErrOutOfRange  = errors.New("matrix: score out of board range")
	ErrBadScrollID = errors.New("matrix: malformed scroll id")

	// ErrScoreTooLarge is returned by Build when the ledger holds a score
	// above MaxScore, which only a corrupt source row can produce.
	ErrScoreTooLarge = errors.New("matrix: score out of plausible range")
)

// MaxScore bounds both board axes.
const MaxScore = 500

// Metric selects which saturation drives color.
type Metric int

const (
	Frequency Metric = iota
	Recency
)

func (m Metric) String() string {
	switch m {
	case Frequency:
		return "frequency"
	case Recency:
		return "recency"
	default:
		return "metric(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMetric accepts "frequency" or "recency".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frequency":
		return Frequency, nil
	case "recency":
		return Recency, nil
	}
	return 0, fmt.Errorf("matrix: unknown metric %q: want frequency|recency", s)
}

// Cell is one board entry, keyed by (Winning, Losing).
type Cell struct {
	Winning int
	Losing  int

	// Label is "W-L", or empty when Winning < Losing (an unreachable pair).
	Label string

	// Occurrences is 0 for a pair that never happened.
	Occurrences int
	LastGame    string

	// DetailURL is set only when Occurrences > 0.
	DetailURL string

	FrequencySaturation float64
	RecencySaturation   float64

	// ScrollID is unique per rebuild: "<generation>:<W>-<L>".
	ScrollID string
}

// Saturation returns the cell's intensity under m.
func (c Cell) Saturation(m Metric) float64 {
	if m == Recency {
		return c.RecencySaturation
	}
	return c.FrequencySaturation
}

// Possible reports whether the pair can be a final score.
func (c Cell) Possible() bool { return c.Winning >= c.Losing }

// Observed reports whether a game ever ended with this pair.
func (c Cell) Observed() bool { return c.Occurrences > 0 }

// Board is a rectangular grid of cells: one row per losing score, one column
// per winning score. A Board is never modified after Build returns it.
type Board struct {
	generation uint64
	cells      [][]Cell

	// saturation ranges the cells were computed against
	maxOccurrences int
	currentYear    int
}

// Generation returns the rebuild counter value this board was minted with.
func (b Board) Generation() uint64 { return b.generation }

// MaxOccurrences returns the top of the frequency range used by this build.
func (b Board) MaxOccurrences() int { return b.maxOccurrences }

// CurrentYear returns the top of the recency range used by this build.
func (b Board) CurrentYear() int { return b.currentYear }

// Rows returns the number of losing-score rows.
func (b Board) Rows() int { return len(b.cells) }

// Cols returns the number of winning-score columns.
func (b Board) Cols() int {
	if len(b.cells) == 0 {
		return 0
	}
	return len(b.cells[0])
}

// Row returns a copy of the row for losing.
func (b Board) Row(losing int) ([]Cell, error) {
	if losing < 0 || losing >= len(b.cells) {
		return nil, fmt.Errorf("%w: losing score %d", ErrOutOfRange, losing)
	}
	out := make([]Cell, len(b.cells[losing]))
	copy(out, b.cells[losing])
	return out, nil
}

// At returns the cell for the pair.
func (b Board) At(winning, losing int) (Cell, error) {
	if losing < 0 || losing >= len(b.cells) || winning < 0 || winning >= b.Cols() {
		return Cell{}, fmt.Errorf("%w: %d-%d", ErrOutOfRange, winning, losing)
	}
	return b.cells[losing][winning], nil
}

// Scorigami counts the reachable pairs on the board that never happened.
func (b Board) Scorigami() int {
	n := 0
	for _, row := range b.cells {
		for _, c := range row {
			if c.Possible() && !c.Observed() {
				n++
			}
		}
	}
	return n
}

// ScrollID formats the per-rebuild identifier of a cell.
func ScrollID(generation uint64, winning, losing int) string {
	return strconv.FormatUint(generation, 10) + ":" + strconv.Itoa(winning) + "-" + strconv.Itoa(losing)
}

// ParseScrollID splits an identifier minted by ScrollID.
func ParseScrollID(id string) (generation uint64, winning, losing int, err error) {
	gen, pair, ok := strings.Cut(id, ":")
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadScrollID, id)
	}
	ws, ls, ok := strings.Cut(pair, "-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadScrollID, id)
	}
	if generation, err = strconv.ParseUint(gen, 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadScrollID, id)
	}
	if winning, err = strconv.Atoi(ws); err != nil || winning < 0 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadScrollID, id)
	}
	if losing, err = strconv.Atoi(ls); err != nil || losing < 0 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadScrollID, id)
	}
	return generation, winning, losing, nil
}

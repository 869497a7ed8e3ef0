package matrix

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/scorigami/scorigami/internal/ledger"
)

// Params tunes the two saturation mappings.
type Params struct {
	Frequency Skew
	Recency   Skew

	// Now supplies the current year for the recency range. Defaults to time.Now.
	Now func() time.Time
}

// DefaultParams returns the default skews with the wall clock.
func DefaultParams() Params {
	return Params{
		Frequency: DefaultFrequencySkew,
		Recency:   DefaultRecencySkew,
		Now:       time.Now,
	}
}

// Builder builds boards from a ledger. Each Build advances a generation
// counter so scroll identifiers never repeat across rebuilds.
//
// All exported methods are safe for concurrent use.
type Builder struct {
	mu         sync.Mutex
	params     Params
	generation uint64
}

// NewBuilder returns a Builder using p. A nil p.Now uses time.Now.
func NewBuilder(p Params) *Builder {
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Builder{params: p}
}

// Params returns the current tuning.
func (b *Builder) Params() Params {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.params
}

// SetParams replaces the tuning used by subsequent builds.
func (b *Builder) SetParams(p Params) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Now == nil {
		p.Now = b.params.Now
	}
	b.params = p
}

// Build returns a complete board for l: rows 0..HighestLosingScore, columns
// 0..HighestWinningScore. It never reuses cells from an earlier board.
func (b *Builder) Build(l *ledger.Ledger) (Board, error) {
	maxOcc, err := l.MaxOccurrences()
	if err != nil {
		return Board{}, fmt.Errorf("%w: %w", ErrEmptyLedger, err)
	}
	highestLosing, err := l.HighestLosingScore()
	if err != nil {
		return Board{}, fmt.Errorf("%w: %w", ErrEmptyLedger, err)
	}
	highestWinning, err := l.HighestWinningScore()
	if err != nil {
		return Board{}, fmt.Errorf("%w: %w", ErrEmptyLedger, err)
	}
	if highestWinning > MaxScore || highestLosing > MaxScore {
		return Board{}, fmt.Errorf("%w: highest score %d-%d exceeds %d",
			ErrScoreTooLarge, highestWinning, highestLosing, MaxScore)
	}

	b.mu.Lock()
	b.generation++
	gen := b.generation
	p := b.params
	b.mu.Unlock()

	r := cellRanges{
		maxOccurrences: maxOcc,
		earliest:       l.EarliestSeasonYear(),
		currentYear:    p.Now().Year(),
		frequency:      p.Frequency,
		recency:        p.Recency,
	}

	cells := make([][]Cell, highestLosing+1)
	for losing := range cells {
		row := make([]Cell, highestWinning+1)
		for winning := range row {
			row[winning] = r.cell(l, gen, winning, losing)
		}
		cells[losing] = row
	}
	return Board{
		generation:     gen,
		cells:          cells,
		maxOccurrences: maxOcc,
		currentYear:    r.currentYear,
	}, nil
}

// cellRanges carries the per-build constants of the saturation mappings.
type cellRanges struct {
	maxOccurrences int
	earliest       int
	currentYear    int
	frequency      Skew
	recency        Skew
}

func (r cellRanges) cell(l *ledger.Ledger, gen uint64, winning, losing int) Cell {
	c := Cell{
		Winning:  winning,
		Losing:   losing,
		ScrollID: ScrollID(gen, winning, losing),
	}
	if winning >= losing {
		c.Label = strconv.Itoa(winning) + "-" + strconv.Itoa(losing)
	}

	rec, ok := l.RecordFor(winning, losing)
	if !ok {
		return c
	}
	c.Occurrences = rec.Occurrences
	c.LastGame = rec.LastGame
	c.DetailURL = l.DetailURL(winning, losing)
	c.FrequencySaturation = observed(Saturation(1, r.maxOccurrences, rec.Occurrences,
		r.frequency.Lower, r.frequency.Upper))
	c.RecencySaturation = observed(Saturation(r.earliest, r.currentYear,
		LastGameYear(rec.LastGame, r.earliest), r.recency.Lower, r.recency.Upper))
	return c
}

// observed lifts a non-positive intensity so an occurred pair never reads as
// never-happened.
func observed(s float64) float64 {
	if s < ObservedFloor {
		return ObservedFloor
	}
	return s
}

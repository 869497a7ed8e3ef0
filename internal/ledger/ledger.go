package ledger

import (
	"errors"
	"strconv"
	"strings"
)

// Placeholder tokens substituted by DetailURL.
const (
	WinningToken = "WWWW"
	LosingToken  = "LLLL"
)

// DefaultEarliestSeasonYear is the first season the ledger covers.
const DefaultEarliestSeasonYear = 1920

// ErrEmpty is returned by the aggregate accessors when the ledger holds no records.
var ErrEmpty = errors.New("ledger: no records")

// ScoreRecord is one row of the historical ledger: every game that ended
// WinningScore-LosingScore, aggregated.
type ScoreRecord struct {
	WinningScore int
	LosingScore  int

	// Occurrences is the number of games that ended with this exact pair.
	// It is 0 only when the source row lacked the count.
	Occurrences int

	// LastGame describes the most recent such game and ends in a 4-digit year.
	LastGame string
}

// Options configures a Ledger.
type Options struct {
	// DetailURLTemplate contains WinningToken and LosingToken.
	DetailURLTemplate string

	// EarliestSeasonYear is the recency lower bound. Zero means DefaultEarliestSeasonYear.
	EarliestSeasonYear int
}

type pair struct{ winning, losing int }

// Ledger is the immutable set of parsed records plus derived aggregates.
// A Ledger is safe for concurrent reads.
type Ledger struct {
	records  []ScoreRecord
	index    map[pair]int
	template string
	earliest int

	highestLosing  int
	highestWinning int
	maxOccurrences int
}

// New builds a Ledger from records. The slice is copied.
//
// Records without an occurrence count stay in Records but are not indexed:
// RecordFor reports them absent, so the pair reads as never happened.
func New(records []ScoreRecord, opts Options) *Ledger {
	l := &Ledger{
		records:  make([]ScoreRecord, len(records)),
		index:    make(map[pair]int, len(records)),
		template: opts.DetailURLTemplate,
		earliest: opts.EarliestSeasonYear,
	}
	if l.earliest == 0 {
		l.earliest = DefaultEarliestSeasonYear
	}
	copy(l.records, records)

	for i, r := range l.records {
		if r.LosingScore > l.highestLosing {
			l.highestLosing = r.LosingScore
		}
		if r.WinningScore > l.highestWinning {
			l.highestWinning = r.WinningScore
		}
		if r.Occurrences > l.maxOccurrences {
			l.maxOccurrences = r.Occurrences
		}
		if r.Occurrences <= 0 {
			continue
		}
		// Later duplicates win; the source never repeats a pair.
		l.index[pair{r.WinningScore, r.LosingScore}] = i
	}
	return l
}

// Len returns the number of records, indexed or not.
func (l *Ledger) Len() int { return len(l.records) }

// Records returns a copy of every record in source order.
func (l *Ledger) Records() []ScoreRecord {
	out := make([]ScoreRecord, len(l.records))
	copy(out, l.records)
	return out
}

// RecordFor returns the observed record for the pair, if any.
func (l *Ledger) RecordFor(winning, losing int) (ScoreRecord, bool) {
	i, ok := l.index[pair{winning, losing}]
	if !ok {
		return ScoreRecord{}, false
	}
	return l.records[i], true
}

// MaxOccurrences returns the highest occurrence count in the ledger.
func (l *Ledger) MaxOccurrences() (int, error) {
	if len(l.records) == 0 {
		return 0, ErrEmpty
	}
	return l.maxOccurrences, nil
}

// HighestLosingScore returns the largest losing score in the ledger.
func (l *Ledger) HighestLosingScore() (int, error) {
	if len(l.records) == 0 {
		return 0, ErrEmpty
	}
	return l.highestLosing, nil
}

// HighestWinningScore returns the largest winning score in the ledger.
func (l *Ledger) HighestWinningScore() (int, error) {
	if len(l.records) == 0 {
		return 0, ErrEmpty
	}
	return l.highestWinning, nil
}

// EarliestSeasonYear returns the configured recency lower bound.
func (l *Ledger) EarliestSeasonYear() int { return l.earliest }

// DetailURL returns the per-score page for the pair.
func (l *Ledger) DetailURL(winning, losing int) string {
	s := strings.ReplaceAll(l.template, WinningToken, strconv.Itoa(winning))
	return strings.ReplaceAll(s, LosingToken, strconv.Itoa(losing))
}

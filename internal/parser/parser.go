package parser

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/scorigami/scorigami/internal/ledger"
)

// Field identifiers carried by the ledger table cells.
const (
	FieldWinningScore = "pts_win"
	FieldLosingScore  = "pts_lose"
	FieldOccurrences  = "counter"
	FieldLastGame     = "last_game"
)

// ErrMalformedDocument is returned when the document as a whole cannot be read
// as a ledger. No records are returned alongside it.
var ErrMalformedDocument = errors.New("parser: malformed ledger document")

// Field is one tagged cell of a row.
type Field struct {
	Tag  string
	Text string
}

// Row is a ledger table row. Implementations return the row's child cells
// that carry a field identifier, in document order.
type Row interface {
	Fields() []Field
}

// Parse converts rows into records. A missing or unreadable numeric field
// defaults to 0; the rest of the batch is unaffected. Rows with no recognised
// field at all (repeated header rows) are skipped.
func Parse(rows []Row) []ledger.ScoreRecord {
	out := make([]ledger.ScoreRecord, 0, len(rows))
	for i, row := range rows {
		rec, seen := parseRow(row)
		if seen == 0 {
			continue
		}
		if seen&hasAllNumeric != hasAllNumeric {
			slog.Debug("parser: row missing numeric field, defaulted to 0",
				"row", i, "winning", rec.WinningScore, "losing", rec.LosingScore)
		}
		out = append(out, rec)
	}
	return out
}

const (
	hasWinning = 1 << iota
	hasLosing
	hasOccurrences
	hasLastGame

	hasAllNumeric = hasWinning | hasLosing | hasOccurrences
)

func parseRow(row Row) (ledger.ScoreRecord, int) {
	var (
		rec  ledger.ScoreRecord
		seen int
	)
	for _, f := range row.Fields() {
		switch f.Tag {
		case FieldWinningScore:
			if v, ok := atoi(f.Text); ok {
				rec.WinningScore = v
				seen |= hasWinning
			}
		case FieldLosingScore:
			if v, ok := atoi(f.Text); ok {
				rec.LosingScore = v
				seen |= hasLosing
			}
		case FieldOccurrences:
			if v, ok := atoi(f.Text); ok {
				rec.Occurrences = v
				seen |= hasOccurrences
			}
		case FieldLastGame:
			rec.LastGame = strings.TrimSpace(f.Text)
			seen |= hasLastGame
		}
	}
	if rec.Occurrences > 0 {
		rec.LastGame = Describe(rec.LastGame, rec.WinningScore == rec.LosingScore)
	}
	return rec, seen
}

// Describe rewrites the "A vs. B" separator into a result phrase.
func Describe(lastGame string, tie bool) string {
	verb := " beat the"
	if tie {
		verb = " tied the"
	}
	return strings.ReplaceAll(lastGame, " vs.", verb)
}

// atoi parses a non-negative decimal score or count.
func atoi(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// Package ledger holds the parsed historical score ledger.
//
// A Ledger is built once from []ScoreRecord and is read-only afterwards. It
// answers per-pair lookups (RecordFor), the aggregates the matrix needs
// (MaxOccurrences, HighestLosingScore, HighestWinningScore) and formats the
// per-score detail link from a template holding the WWWW and LLLL tokens.
//
// The aggregate accessors return ErrEmpty for an empty ledger so callers
// never divide by a missing maximum.
package ledger

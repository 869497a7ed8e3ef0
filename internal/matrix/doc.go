// Package matrix builds the dense score board from a ledger.
//
// saturation.go holds the skewed linear normalisation used for both metrics:
// frequency (occurrence count against the ledger maximum) and recency (the
// year of the last such game against the current year).
//
// builder.go provides the Builder. Build produces a fresh rectangular Board on
// every call: one row per losing score up to the highest observed, one column
// per winning score up to the highest observed. Pairs below the diagonal are
// present with an empty label. Every Build advances a generation counter that
// is embedded in each cell's ScrollID, so identifiers taken from an older
// board never match a newer one.
//
// Saturation 0 is reserved for pairs that never happened; an observed pair is
// lifted to at least ObservedFloor.
package matrix

// Package parser turns the ledger table into ledger.ScoreRecord values.
//
// Parse works on the narrow Row interface: a row returns its cells tagged by a
// field identifier (pts_win, pts_lose, counter, last_game). Unknown tags are
// ignored and a missing numeric field defaults to 0 without stopping the batch.
//
// htmldoc.go adapts golang.org/x/net/html to Row. It is the only file that
// knows about the HTML object model; ParseHTML is the entry point used by
// ingestion and returns ErrMalformedDocument when the page has no table body.
package parser

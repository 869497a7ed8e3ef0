// Package ingest loads the ledger once at startup.
//
// The pipeline is strictly sequential and all-or-nothing: connectivity probe,
// fetch, parse, build. A caller that receives an error must not build a
// board; the errors are terminal states, not retry hints.
package ingest

// Package metrics exposes ingestion and board state counters at /metrics.
//
// Families are assembled directly as client_model protobufs and encoded with
// expfmt, so any Prometheus-compatible scraper can read them.
package metrics

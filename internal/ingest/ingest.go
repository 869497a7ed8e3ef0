package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/scorigami/scorigami/internal/ledger"
	"github.com/scorigami/scorigami/internal/parser"
)

// Terminal ingestion failures. None of them is retried.
var (
	ErrNoConnectivity = errors.New("ingest: network unreachable")
	ErrFetch          = errors.New("ingest: fetch failed")
	ErrEmptyLedger    = errors.New("ingest: document contained no score records")
)

// Source is the ledger host: a reachability probe plus the document fetch.
type Source interface {
	Reachable(ctx context.Context) bool
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// Load runs the startup pipeline: check connectivity, fetch the document,
// parse it and build the ledger. Any failure is final; no partial ledger is
// ever returned. Malformed documents surface as parser.ErrMalformedDocument.
func Load(ctx context.Context, src Source, opts ledger.Options) (*ledger.Ledger, error) {
	if !src.Reachable(ctx) {
		return nil, ErrNoConnectivity
	}

	start := time.Now()
	body, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer body.Close()

	// The document is read in full before parsing so a broken transfer
	// never yields a partial ledger.
	doc, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}

	records, err := parser.ParseHTML(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyLedger
	}

	l := ledger.New(records, opts)
	slog.Info("ingest: ledger loaded",
		"records", l.Len(),
		"bytes", len(doc),
		"duration", time.Since(start).Round(time.Millisecond))
	return l, nil
}

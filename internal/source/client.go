package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/scorigami/scorigami/internal/config"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultProbeTimeout = 5 * time.Second

	// maxDocumentBytes bounds the score table download.
	maxDocumentBytes = 32 << 20
)

var (
	// ErrStatus is returned by Fetch when the server answers with a non-200 status.
	ErrStatus = errors.New("source: unexpected status")

	// ErrTooLarge is returned while reading a fetched body that runs past the
	// document size limit.
	ErrTooLarge = errors.New("source: document too large")
)

// Client fetches the raw score table and probes reachability of its host.
type Client struct {
	url          string
	probeAddr    string
	probeTimeout time.Duration
	maxBytes     int64
	http         *http.Client
	dial         func(ctx context.Context, network, addr string) (net.Conn, error)
}

// New returns a Client for the ledger and connectivity settings of cfg.
func New(cfg config.ServiceConfig) *Client {
	fetchTimeout := cfg.Ledger.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	probeTimeout := cfg.Connectivity.Timeout
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	d := &net.Dialer{}
	return &Client{
		url:          cfg.Ledger.URL,
		probeAddr:    cfg.Connectivity.EffectiveProbeAddr(cfg.Ledger.URL),
		probeTimeout: probeTimeout,
		maxBytes:     maxDocumentBytes,
		http:         &http.Client{Timeout: fetchTimeout},
		dial:         d.DialContext,
	}
}

// URL returns the address of the score table.
func (c *Client) URL() string { return c.url }

// Reachable reports whether a TCP connection to the probe address can be
// opened within the probe timeout.
func (c *Client) Reachable(ctx context.Context) bool {
	if c.probeAddr == "" {
		slog.Warn("source: no probe address, treating network as unreachable", "url", c.url)
		return false
	}
	dialCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	conn, err := c.dial(dialCtx, "tcp", c.probeAddr)
	if err != nil {
		slog.Warn("source: probe failed", "addr", c.probeAddr, "err", err)
		return false
	}
	_ = conn.Close()
	return true
}

// Fetch downloads the score table. The caller must close the returned body.
// Reading past the size limit fails with ErrTooLarge rather than truncating.
func (c *Client) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: http get: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}
	if resp.ContentLength > c.maxBytes {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: content length %d over %d bytes", ErrTooLarge, resp.ContentLength, c.maxBytes)
	}
	return &limitedBody{
		r:      io.LimitReader(resp.Body, c.maxBytes+1),
		Closer: resp.Body,
		limit:  c.maxBytes,
	}, nil
}

// limitedBody reads at most limit bytes and errors on the byte after.
type limitedBody struct {
	r io.Reader
	io.Closer
	limit int64
	read  int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		return n, fmt.Errorf("%w: over %d bytes", ErrTooLarge, b.limit)
	}
	return n, err
}

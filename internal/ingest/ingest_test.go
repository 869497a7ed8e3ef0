package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/scorigami/scorigami/internal/config"
	"github.com/scorigami/scorigami/internal/ledger"
	"github.com/scorigami/scorigami/internal/parser"
	"github.com/scorigami/scorigami/internal/source"
)

const page = `<table id="games"><tbody>
<tr><td data-stat="pts_win">20</td><td data-stat="pts_lose">18</td>
    <td data-stat="counter">5</td><td data-stat="last_game">Rams vs. Saints, November 3, 2019</td></tr>
</tbody></table>`

// fakeSource is a Source with canned answers.
type fakeSource struct {
	reachable bool
	body      string
	fetchErr  error
	readErr   error
	fetched   bool
}

func (f *fakeSource) Reachable(context.Context) bool { return f.reachable }

func (f *fakeSource) Fetch(context.Context) (io.ReadCloser, error) {
	f.fetched = true
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var r io.Reader = strings.NewReader(f.body)
	if f.readErr != nil {
		r = io.MultiReader(r, iotest.ErrReader(f.readErr))
	}
	return io.NopCloser(r), nil
}

func TestLoad_SingleRecord(t *testing.T) {
	l, err := Load(context.Background(), &fakeSource{reachable: true, body: page}, ledger.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", l.Len())
	}
	if n, _ := l.MaxOccurrences(); n != 5 {
		t.Errorf("MaxOccurrences: got %d, want 5", n)
	}
	if n, _ := l.HighestLosingScore(); n != 18 {
		t.Errorf("HighestLosingScore: got %d, want 18", n)
	}
	rec, ok := l.RecordFor(20, 18)
	if !ok || rec.LastGame != "Rams beat the Saints, November 3, 2019" {
		t.Errorf("RecordFor(20, 18): got %+v, %v", rec, ok)
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name      string
		src       *fakeSource
		want      error
		wantFetch bool
	}{
		{"offline", &fakeSource{reachable: false, body: page}, ErrNoConnectivity, false},
		{"fetch error", &fakeSource{reachable: true, fetchErr: errors.New("reset")}, ErrFetch, true},
		{"body cut short", &fakeSource{reachable: true, body: page[:len(page)/2], readErr: io.ErrUnexpectedEOF}, ErrFetch, true},
		{"malformed", &fakeSource{reachable: true, body: "<p>maintenance</p>"}, parser.ErrMalformedDocument, true},
		{"empty table", &fakeSource{reachable: true, body: "<table><tbody></tbody></table>"}, ErrEmptyLedger, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := Load(context.Background(), tc.src, ledger.Options{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err: got %v, want %v", err, tc.want)
			}
			if l != nil {
				t.Error("ledger returned alongside error")
			}
			if tc.src.fetched != tc.wantFetch {
				t.Errorf("fetched: got %v, want %v", tc.src.fetched, tc.wantFetch)
			}
		})
	}
}

func TestLoad_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, page)
	}))
	defer srv.Close()

	cfg := config.Default().Scorigami
	cfg.Ledger.URL = srv.URL + "/boxscores/game-scores.htm"
	cfg.Connectivity.Timeout = time.Second

	l, err := Load(context.Background(), source.New(cfg), ledger.Options{
		DetailURLTemplate: cfg.Ledger.DetailURLTemplate,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := l.DetailURL(20, 18); !strings.Contains(got, "pts_win=20&pts_lose=18") {
		t.Errorf("DetailURL: got %q", got)
	}
}

func TestLoad_HTTPStatusIsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := config.Default().Scorigami
	cfg.Ledger.URL = srv.URL

	_, err := Load(context.Background(), source.New(cfg), ledger.Options{})
	if !errors.Is(err, ErrFetch) || !errors.Is(err, source.ErrStatus) {
		t.Fatalf("err: got %v, want ErrFetch wrapping ErrStatus", err)
	}
}

func TestLoad_OversizedDocumentIsFetchFailure(t *testing.T) {
	const row = `<tr><td data-stat="pts_win">20</td><td data-stat="pts_lose">17</td>` +
		`<td data-stat="counter">1</td><td data-stat="last_game">A vs. B, 2020</td></tr>` + "\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.(http.Flusher).Flush()
		_, _ = io.WriteString(w, "<table><tbody>\n")
		chunk := strings.Repeat(row, 1024)
		for written := 0; written <= 33<<20; written += len(chunk) {
			if _, err := io.WriteString(w, chunk); err != nil {
				return
			}
		}
		_, _ = io.WriteString(w, "</tbody></table>")
	}))
	defer srv.Close()

	cfg := config.Default().Scorigami
	cfg.Ledger.URL = srv.URL
	cfg.Ledger.FetchTimeout = 30 * time.Second
	cfg.Connectivity.Timeout = time.Second

	l, err := Load(context.Background(), source.New(cfg), ledger.Options{})
	if !errors.Is(err, ErrFetch) || !errors.Is(err, source.ErrTooLarge) {
		t.Fatalf("err: got %v, want ErrFetch wrapping source.ErrTooLarge", err)
	}
	if l != nil {
		t.Errorf("partial ledger returned: %d records", l.Len())
	}
}

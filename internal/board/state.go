package board

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/scorigami/scorigami/internal/ledger"
	"github.com/scorigami/scorigami/internal/matrix"
	"github.com/scorigami/scorigami/internal/palette"
	"github.com/scorigami/scorigami/internal/runs"
)

// ErrNilLedger is returned by New when no ledger is supplied.
var ErrNilLedger = errors.New("board: nil ledger")

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventRebuilt EventKind = "rebuilt"
	EventMetric  EventKind = "metric"
	EventRamp    EventKind = "ramp"
	EventDetail  EventKind = "detail"
	EventScroll  EventKind = "scroll"
)

// Event is delivered to subscribers after a mutation is visible to readers.
type Event struct {
	Kind       EventKind
	Generation uint64
}

// State owns the current board and the view settings applied to it.
// It is the only writer of the board; readers receive copies.
//
// All exported methods are safe for concurrent use. Subscriber callbacks run
// on the mutating goroutine after the state lock is released.
type State struct {
	mu      sync.RWMutex
	ledger  *ledger.Ledger
	builder *matrix.Builder
	board   matrix.Board
	runs    [][]runs.Run

	metric       matrix.Metric
	ramp         palette.Ramp
	detail       bool
	scrollTarget string

	session string

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New builds the first board for l. The default view is the frequency metric
// on the spectrum ramp in overview mode.
func New(l *ledger.Ledger, b *matrix.Builder) (*State, error) {
	if l == nil {
		return nil, ErrNilLedger
	}
	if b == nil {
		b = matrix.NewBuilder(matrix.DefaultParams())
	}
	s := &State{
		ledger:  l,
		builder: b,
		metric:  matrix.Frequency,
		ramp:    palette.Spectrum,
		session: uuid.NewString(),
		subs:    make(map[int]func(Event)),
	}
	if err := s.rebuildLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Session returns the identifier minted for this State.
func (s *State) Session() string { return s.session }

// Subscribe registers fn for every subsequent mutation. The returned func
// removes the registration.
func (s *State) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *State) notify(kind EventKind, gen uint64) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	ev := Event{Kind: kind, Generation: gen}
	for _, fn := range fns {
		fn(ev)
	}
}

// Rebuild re-derives the board from the ledger. Every cell gets a fresh
// scroll identifier; a pending scroll target is rebased onto the new board.
func (s *State) Rebuild() error {
	s.mu.Lock()
	err := s.rebuildLocked()
	gen := s.board.Generation()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	slog.Debug("board: rebuilt", "generation", gen)
	s.notify(EventRebuilt, gen)
	return nil
}

// SetParams re-tunes the saturation mapping and rebuilds.
func (s *State) SetParams(p matrix.Params) error {
	s.builder.SetParams(p)
	return s.Rebuild()
}

// Params returns the builder's current tuning.
func (s *State) Params() matrix.Params { return s.builder.Params() }

func (s *State) rebuildLocked() error {
	b, err := s.builder.Build(s.ledger)
	if err != nil {
		return fmt.Errorf("board: rebuild: %w", err)
	}
	s.board = b
	if s.scrollTarget != "" {
		_, w, l, perr := matrix.ParseScrollID(s.scrollTarget)
		if perr == nil {
			s.scrollTarget = matrix.ScrollID(b.Generation(), w, l)
		} else {
			s.scrollTarget = ""
		}
	}
	s.recomputeRunsLocked()
	return nil
}

func (s *State) recomputeRunsLocked() {
	out := make([][]runs.Run, s.board.Rows())
	for l := range out {
		row, _ := s.board.Row(l)
		out[l] = runs.Compress(row, s.metric, s.ramp)
	}
	s.runs = out
}

// SetMetric selects the saturation that drives color.
func (s *State) SetMetric(m matrix.Metric) {
	s.mu.Lock()
	if m != s.metric {
		s.metric = m
		s.recomputeRunsLocked()
	}
	gen := s.board.Generation()
	s.mu.Unlock()
	s.notify(EventMetric, gen)
}

// ToggleRamp switches between the spectrum and single-hue ramps and returns
// the ramp now active.
func (s *State) ToggleRamp() palette.Ramp {
	s.mu.Lock()
	s.ramp = s.ramp.Toggle()
	s.recomputeRunsLocked()
	r := s.ramp
	gen := s.board.Generation()
	s.mu.Unlock()
	s.notify(EventRamp, gen)
	return r
}

// EnterDetail switches to the zoomed detail view.
func (s *State) EnterDetail() { s.setDetail(true) }

// ExitDetail returns to the overview.
func (s *State) ExitDetail() { s.setDetail(false) }

func (s *State) setDetail(on bool) {
	s.mu.Lock()
	s.detail = on
	gen := s.board.Generation()
	s.mu.Unlock()
	s.notify(EventDetail, gen)
}

// RequestScrollTo records the cell to bring into view when the detail view
// opens and returns the normalized target. An identifier for an impossible
// pair (W < L) is redirected to the diagonal cell L-L. Identifiers minted by an
// earlier build are rebased onto the current one.
func (s *State) RequestScrollTo(id string) (string, error) {
	_, w, l, err := matrix.ParseScrollID(id)
	if err != nil {
		return "", err
	}
	if w < l {
		w = l
	}

	s.mu.Lock()
	if _, err := s.board.At(w, l); err != nil {
		s.mu.Unlock()
		return "", err
	}
	gen := s.board.Generation()
	target := matrix.ScrollID(gen, w, l)
	s.scrollTarget = target
	s.mu.Unlock()

	s.notify(EventScroll, gen)
	return target, nil
}

// ScrollTarget returns the pending scroll target, or "" when none is set.
func (s *State) ScrollTarget() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scrollTarget
}

// Metric returns the active metric.
func (s *State) Metric() matrix.Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metric
}

// Ramp returns the active ramp.
func (s *State) Ramp() palette.Ramp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ramp
}

// Detail reports whether the detail view is active.
func (s *State) Detail() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detail
}

// Board returns the current board. Boards are immutable once built.
func (s *State) Board() matrix.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

// View is a cell together with the color it resolves to under the active
// metric and ramp.
type View struct {
	matrix.Cell
	Swatch     palette.Swatch
	Foreground palette.Foreground
}

// Row returns the dense cells of losing-score row l, resolved for display.
func (s *State) Row(l int) ([]View, error) {
	s.mu.RLock()
	row, err := s.board.Row(l)
	m, r := s.metric, s.ramp
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	out := make([]View, len(row))
	for i, c := range row {
		out[i] = View{
			Cell:       c,
			Swatch:     palette.Resolve(c, m, r),
			Foreground: palette.ForegroundFor(c, m, r),
		}
	}
	return out, nil
}

// RowRuns is one compressed row together with the view it was computed under.
type RowRuns struct {
	Generation uint64
	Metric     matrix.Metric
	Ramp       palette.Ramp
	Runs       []runs.Run
}

// Runs returns the compressed runs of losing-score row l.
func (s *State) Runs(l int) (RowRuns, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l < 0 || l >= len(s.runs) {
		return RowRuns{}, fmt.Errorf("%w: losing %d", matrix.ErrOutOfRange, l)
	}
	out := make([]runs.Run, len(s.runs[l]))
	copy(out, s.runs[l])
	return RowRuns{
		Generation: s.board.Generation(),
		Metric:     s.metric,
		Ramp:       s.ramp,
		Runs:       out,
	}, nil
}

// Cell returns the cell at (w, l).
func (s *State) Cell(w, l int) (matrix.Cell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.At(w, l)
}

// Legend is the pair of labels shown at the ends of the color legend.
type Legend struct {
	Min string
	Max string
}

// Legend returns the legend bounds for the active metric: occurrence counts
// for frequency, season years for recency.
func (s *State) Legend() Legend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.legendLocked()
}

func (s *State) legendLocked() Legend {
	if s.metric == matrix.Recency {
		return Legend{
			Min: strconv.Itoa(s.ledger.EarliestSeasonYear()),
			Max: strconv.Itoa(s.board.CurrentYear()),
		}
	}
	return Legend{Min: "1", Max: strconv.Itoa(s.board.MaxOccurrences())}
}

// Summary is a point-in-time description of the board and its view settings.
type Summary struct {
	Session      string
	Generation   uint64
	Rows         int
	Cols         int
	Records      int
	Scorigami    int
	Metric       matrix.Metric
	Ramp         palette.Ramp
	Detail       bool
	ScrollTarget string
	Legend       Legend
}

// Summary returns the current Summary.
func (s *State) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{
		Session:      s.session,
		Generation:   s.board.Generation(),
		Rows:         s.board.Rows(),
		Cols:         s.board.Cols(),
		Records:      s.ledger.Len(),
		Scorigami:    s.board.Scorigami(),
		Metric:       s.metric,
		Ramp:         s.ramp,
		Detail:       s.detail,
		ScrollTarget: s.scrollTarget,
		Legend:       s.legendLocked(),
	}
}

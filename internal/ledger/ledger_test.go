package ledger

import (
	"errors"
	"testing"
)

const testTemplate = "https://example.test/find?pts_win=WWWW&pts_lose=LLLL"

func sample() []ScoreRecord {
	return []ScoreRecord{
		{WinningScore: 20, LosingScore: 17, Occurrences: 280, LastGame: "Bears beat the Packers, 2022"},
		{WinningScore: 3, LosingScore: 0, Occurrences: 12, LastGame: "Giants beat the Eagles, 1938"},
		{WinningScore: 51, LosingScore: 45, Occurrences: 1, LastGame: "Rams beat the Chiefs, 2018"},
		{WinningScore: 7, LosingScore: 7, Occurrences: 40, LastGame: "Lions tied the Bears, 1971"},
	}
}

func TestNew_Aggregates(t *testing.T) {
	l := New(sample(), Options{DetailURLTemplate: testTemplate})

	if got, err := l.MaxOccurrences(); err != nil || got != 280 {
		t.Errorf("MaxOccurrences: got %d, %v; want 280", got, err)
	}
	if got, err := l.HighestLosingScore(); err != nil || got != 45 {
		t.Errorf("HighestLosingScore: got %d, %v; want 45", got, err)
	}
	if got, err := l.HighestWinningScore(); err != nil || got != 51 {
		t.Errorf("HighestWinningScore: got %d, %v; want 51", got, err)
	}
	if got := l.EarliestSeasonYear(); got != DefaultEarliestSeasonYear {
		t.Errorf("EarliestSeasonYear: got %d, want %d", got, DefaultEarliestSeasonYear)
	}
	if l.Len() != 4 {
		t.Errorf("Len: got %d, want 4", l.Len())
	}
}

func TestNew_SingleRecordScenario(t *testing.T) {
	l := New([]ScoreRecord{{WinningScore: 20, LosingScore: 18, Occurrences: 5, LastGame: "X beat the Y, 2019"}}, Options{})

	if got, _ := l.MaxOccurrences(); got != 5 {
		t.Errorf("MaxOccurrences: got %d, want 5", got)
	}
	if got, _ := l.HighestLosingScore(); got != 18 {
		t.Errorf("HighestLosingScore: got %d, want 18", got)
	}
}

func TestEmpty_AccessorsFail(t *testing.T) {
	l := New(nil, Options{})

	if _, err := l.MaxOccurrences(); !errors.Is(err, ErrEmpty) {
		t.Errorf("MaxOccurrences: got %v, want ErrEmpty", err)
	}
	if _, err := l.HighestLosingScore(); !errors.Is(err, ErrEmpty) {
		t.Errorf("HighestLosingScore: got %v, want ErrEmpty", err)
	}
	if _, err := l.HighestWinningScore(); !errors.Is(err, ErrEmpty) {
		t.Errorf("HighestWinningScore: got %v, want ErrEmpty", err)
	}
}

func TestRecordFor(t *testing.T) {
	l := New(sample(), Options{})

	r, ok := l.RecordFor(7, 7)
	if !ok {
		t.Fatal("RecordFor(7,7): expected record")
	}
	if r.Occurrences != 40 {
		t.Errorf("Occurrences: got %d, want 40", r.Occurrences)
	}
	if _, ok := l.RecordFor(17, 20); ok {
		t.Error("RecordFor(17,20): reversed pair must be absent")
	}
	if _, ok := l.RecordFor(99, 0); ok {
		t.Error("RecordFor(99,0): expected absent")
	}
}

func TestRecordFor_ZeroOccurrencesNotIndexed(t *testing.T) {
	recs := append(sample(), ScoreRecord{WinningScore: 60, LosingScore: 50, Occurrences: 0})
	l := New(recs, Options{})

	if _, ok := l.RecordFor(60, 50); ok {
		t.Error("record without a count must not be indexed")
	}
	// It still counts toward the board extent.
	if got, _ := l.HighestLosingScore(); got != 50 {
		t.Errorf("HighestLosingScore: got %d, want 50", got)
	}
	if l.Len() != 5 {
		t.Errorf("Len: got %d, want 5", l.Len())
	}
}

func TestNew_CopiesInput(t *testing.T) {
	recs := sample()
	l := New(recs, Options{})
	recs[0].Occurrences = 1

	r, _ := l.RecordFor(20, 17)
	if r.Occurrences != 280 {
		t.Errorf("ledger aliased caller slice: got %d, want 280", r.Occurrences)
	}

	out := l.Records()
	out[0].Occurrences = 2
	r, _ = l.RecordFor(20, 17)
	if r.Occurrences != 280 {
		t.Errorf("Records aliased internal slice: got %d, want 280", r.Occurrences)
	}
}

func TestDetailURL(t *testing.T) {
	l := New(sample(), Options{DetailURLTemplate: testTemplate})
	want := "https://example.test/find?pts_win=20&pts_lose=17"
	if got := l.DetailURL(20, 17); got != want {
		t.Errorf("DetailURL: got %q, want %q", got, want)
	}
}

package palette

import (
	"math"
	"testing"

	"github.com/scorigami/scorigami/internal/matrix"
)

// almostEqual returns true if a and b differ by less than 1e-9.
func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSpectrumTable_Anchors(t *testing.T) {
	tbl := SpectrumTable()
	if len(tbl) != 100 {
		t.Fatalf("len: got %d, want 100", len(tbl))
	}

	if tbl[0] != (RGB{0, 0.04, 1}) {
		t.Errorf("first entry: got %+v, want just off blue", tbl[0])
	}
	anchors := []struct {
		name string
		got  float64
		want float64
	}{
		{"cyan G", tbl[24].G, 1},
		{"cyan B", tbl[24].B, 1},
		{"green B", tbl[49].B, 0},
		{"yellow R", tbl[74].R, 1},
		{"yellow G", tbl[74].G, 1},
		{"red G", tbl[99].G, 0},
		{"red R", tbl[99].R, 1},
	}
	for _, a := range anchors {
		if !almostEqual(a.got, a.want) {
			t.Errorf("%s: got %v, want %v", a.name, a.got, a.want)
		}
	}
}

func TestSpectrumAt_Clamps(t *testing.T) {
	tbl := SpectrumTable()
	tests := []struct {
		s    float64
		want RGB
	}{
		{1.0, tbl[99]},
		{1.7, tbl[99]},
		{-0.2, tbl[0]},
		{0.505, tbl[50]},
	}
	for _, tc := range tests {
		if got := SpectrumAt(tc.s); got != tc.want {
			t.Errorf("SpectrumAt(%v): got %+v, want %+v", tc.s, got, tc.want)
		}
	}
}

func observedCell(freq, rec float64) matrix.Cell {
	return matrix.Cell{Winning: 10, Losing: 3, Label: "10-3", Occurrences: 4,
		FrequencySaturation: freq, RecencySaturation: rec}
}

func TestResolve_NeverHappenedIsNeutral(t *testing.T) {
	cells := []matrix.Cell{
		{Winning: 5, Losing: 2, Label: "5-2"},
		{Winning: 2, Losing: 5},
	}
	for _, c := range cells {
		for _, m := range []matrix.Metric{matrix.Frequency, matrix.Recency} {
			for _, r := range []Ramp{Spectrum, SingleHue} {
				if sw := Resolve(c, m, r); sw != (Swatch{Color: Neutral, Saturation: 1.0}) {
					t.Errorf("%d-%d %v %v: got %+v, want neutral", c.Winning, c.Losing, m, r, sw)
				}
			}
		}
	}
}

func TestResolve_Ramps(t *testing.T) {
	c := observedCell(0.425, 0.905)

	if sw := Resolve(c, matrix.Frequency, SingleHue); sw != (Swatch{Color: Hue, Saturation: 0.425}) {
		t.Errorf("frequency single-hue: got %+v", sw)
	}
	if sw := Resolve(c, matrix.Frequency, Spectrum); sw != (Swatch{Color: SpectrumTable()[42], Saturation: 1.0}) {
		t.Errorf("frequency spectrum: got %+v", sw)
	}
	if sw := Resolve(c, matrix.Recency, Spectrum); sw.Color != SpectrumTable()[90] {
		t.Errorf("recency spectrum: got %+v", sw)
	}
}

func TestForegroundFor(t *testing.T) {
	tests := []struct {
		sat  float64
		ramp Ramp
		want Foreground
	}{
		{0.1, Spectrum, Light},
		{0.2, Spectrum, Dark},
		{0.5, Spectrum, Dark},
		{0.8, Spectrum, Dark},
		{0.81, Spectrum, Light},
		{0.5, SingleHue, Light},
		{0.95, SingleHue, Light},
	}
	for _, tc := range tests {
		if got := ForegroundFor(observedCell(tc.sat, 0), matrix.Frequency, tc.ramp); got != tc.want {
			t.Errorf("sat %.2f ramp %v: got %v, want %v", tc.sat, tc.ramp, got, tc.want)
		}
	}
}

func TestRamp_ToggleAndParse(t *testing.T) {
	if Spectrum.Toggle() != SingleHue || SingleHue.Toggle() != Spectrum {
		t.Error("Toggle does not alternate the two ramps")
	}

	r, err := ParseRamp("single-hue")
	if err != nil || r != SingleHue {
		t.Errorf("ParseRamp(single-hue): got %v, %v", r, err)
	}
	if _, err := ParseRamp("plaid"); err == nil {
		t.Error("ParseRamp(plaid): expected error")
	}
}

func TestSwatch_Effective(t *testing.T) {
	full := Swatch{Color: Hue, Saturation: 1}.Effective()
	if !almostEqual(full.R, 1) || !almostEqual(full.G, 0) || !almostEqual(full.B, 0) {
		t.Errorf("full saturation: got %+v, want pure hue", full)
	}

	grey := Swatch{Color: Hue, Saturation: 0}.Effective()
	if !almostEqual(grey.R, grey.G) || !almostEqual(grey.G, grey.B) {
		t.Errorf("zero saturation: got %+v, want a grey", grey)
	}
}

func TestRGB_Hex(t *testing.T) {
	tests := []struct {
		c    RGB
		want string
	}{
		{Neutral, "#000000"},
		{Hue, "#ff0000"},
		{RGB{0, 1, 1}, "#00ffff"},
	}
	for _, tc := range tests {
		if got := tc.c.Hex(); got != tc.want {
			t.Errorf("Hex(%+v): got %q, want %q", tc.c, got, tc.want)
		}
	}
}

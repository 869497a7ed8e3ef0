package palette

import (
	"fmt"
	"math"
	"strings"

	"github.com/scorigami/scorigami/internal/matrix"
)

// spectrumSize is the number of entries in the spectrum table.
const spectrumSize = 100

// Label contrast bands for the spectrum ramp.
const (
	darkBandTop   = 0.2
	lightBandBase = 0.8
)

// RGB is a color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// Fixed colors.
var (
	Neutral = RGB{0, 0, 0}
	Hue     = RGB{1, 0, 0}
)

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Ramp maps a saturation to a color.
type Ramp int

const (
	Spectrum Ramp = iota
	SingleHue
)

func (r Ramp) String() string {
	if r == SingleHue {
		return "single-hue"
	}
	return "spectrum"
}

// Toggle returns the other ramp.
func (r Ramp) Toggle() Ramp {
	if r == SingleHue {
		return Spectrum
	}
	return SingleHue
}

// ParseRamp accepts "spectrum" or "single-hue".
func ParseRamp(s string) (Ramp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spectrum":
		return Spectrum, nil
	case "single-hue":
		return SingleHue, nil
	}
	return 0, fmt.Errorf("palette: unknown ramp %q: want spectrum|single-hue", s)
}

// Swatch is a resolved cell color: a base color plus the saturation the
// renderer applies to it. Swatches are comparable and serve as run keys.
type Swatch struct {
	Color      RGB
	Saturation float64
}

// Effective returns the color after applying Saturation, blending toward the
// color's own luminance grey.
func (s Swatch) Effective() RGB {
	luma := 0.2126*s.Color.R + 0.7152*s.Color.G + 0.0722*s.Color.B
	mix := func(v float64) float64 { return luma + s.Saturation*(v-luma) }
	return RGB{mix(s.Color.R), mix(s.Color.G), mix(s.Color.B)}
}

// Foreground is the label color class drawn over a swatch.
type Foreground int

const (
	Light Foreground = iota
	Dark
)

func (f Foreground) String() string {
	if f == Dark {
		return "dark"
	}
	return "light"
}

var spectrum = buildSpectrum()

// buildSpectrum interpolates blue→cyan→green→yellow→red, 25 entries per leg.
func buildSpectrum() [spectrumSize]RGB {
	var t [spectrumSize]RGB
	const leg = spectrumSize / 4
	for i := 1; i <= leg; i++ {
		step := float64(i) * 4.0 / 100.0
		t[i-1] = RGB{0, step, 1}
		t[leg+i-1] = RGB{0, 1, 1 - step}
		t[2*leg+i-1] = RGB{step, 1, 0}
		t[3*leg+i-1] = RGB{1, 1 - step, 0}
	}
	return t
}

// SpectrumTable returns a copy of the spectrum ramp.
func SpectrumTable() [spectrumSize]RGB { return spectrum }

// SpectrumAt looks up saturation s in the spectrum table.
func SpectrumAt(s float64) RGB {
	i := int(s * spectrumSize)
	if i > spectrumSize-1 {
		i = spectrumSize - 1
	}
	if i < 0 {
		i = 0
	}
	return spectrum[i]
}

// Resolve returns the swatch for c under metric m and ramp r. Pairs that never
// happened resolve to the neutral color whatever the ramp.
func Resolve(c matrix.Cell, m matrix.Metric, r Ramp) Swatch {
	s := c.Saturation(m)
	if !c.Observed() || s == 0 {
		return Swatch{Color: Neutral, Saturation: 1.0}
	}
	if r == SingleHue {
		return Swatch{Color: Hue, Saturation: s}
	}
	return Swatch{Color: SpectrumAt(s), Saturation: 1.0}
}

// ForegroundFor returns the label color class for c.
func ForegroundFor(c matrix.Cell, m matrix.Metric, r Ramp) Foreground {
	if r == SingleHue {
		return Light
	}
	s := c.Saturation(m)
	if s < darkBandTop || s > lightBandBase {
		return Light
	}
	return Dark
}

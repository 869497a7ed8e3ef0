package matrix

import (
	"strconv"
	"strings"
)

// ObservedFloor is the smallest saturation given to a cell that has occurred.
// Exactly 0 is reserved for pairs that never happened.
const ObservedFloor = 0.001

// Skew holds the two shaping parameters of Saturation.
type Skew struct {
	// Lower is the floor intensity, in [0, 1].
	Lower float64

	// Upper is the fraction of the range after which intensity saturates
	// to 1.0, in (0, 1].
	Upper float64
}

// Default skews for the two metrics.
var (
	DefaultFrequencySkew = Skew{Lower: 0.01, Upper: 0.55}
	DefaultRecencySkew   = Skew{Lower: 0.0, Upper: 1.0}
)

// Saturation maps value within [min, max] to an intensity:
//
//	adjustedMax = (max-min)*skewUpper + min
//	ratio       = (value-min) / (adjustedMax-min)
//	intensity   = (1-skewLower)*ratio + skewLower
//
// The result is capped at 1.0. There is no lower clamp: a value below min
// yields an intensity below skewLower. A collapsed range returns 1.0.
func Saturation(min, max, value int, skewLower, skewUpper float64) float64 {
	adjustedMax := float64(max-min)*skewUpper + float64(min)
	span := adjustedMax - float64(min)
	if span <= 0 {
		return 1.0
	}
	ratio := float64(value-min) / span
	intensity := (1.0-skewLower)*ratio + skewLower
	if intensity > 1.0 {
		return 1.0
	}
	return intensity
}

// LastGameYear returns the 4-digit year that ends desc, or def when the
// suffix is not a year.
func LastGameYear(desc string, def int) int {
	desc = strings.TrimSpace(desc)
	if len(desc) < 4 {
		return def
	}
	suffix := desc[len(desc)-4:]
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return def
		}
	}
	y, err := strconv.Atoi(suffix)
	if err != nil {
		return def
	}
	return y
}

// Package palette resolves cell saturations to colors.
//
// Two ramps are offered. SingleHue keeps a fixed red and passes the cell
// saturation through; Spectrum looks the saturation up in a 100-entry table
// interpolated blue, cyan, green, yellow, red and renders at full saturation.
// A pair that never happened is always the neutral black.
package palette

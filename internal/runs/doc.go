// Package runs run-length encodes board rows for the overview grid.
//
// Compress walks a row left to right and closes a run whenever the resolved
// swatch (color and saturation under the active metric and ramp) changes.
// Only single-cell runs over a labelled cell keep their ScrollID and Label;
// longer runs are display-only. Expand undoes the grouping.
//
// The grouping key depends on both metric and ramp, so runs must be
// recomputed whenever either changes.
package runs

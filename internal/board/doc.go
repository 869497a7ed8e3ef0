// Package board holds the single Board State of a running process: the
// current matrix.Board, the active metric and ramp, the detail toggle and
// the pending scroll target.
//
// State is the only writer of the board. Every mutating call (Rebuild,
// SetParams, SetMetric, ToggleRamp, EnterDetail, ExitDetail,
// RequestScrollTo) completes synchronously and then notifies subscribers
// registered with Subscribe. Readers (Row, Runs, Cell, Inspect, Summary,
// Legend) always receive copies.
package board

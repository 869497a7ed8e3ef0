// Package api implements the HTTP REST API over the board state.
//
// New(state, guard) returns an http.Handler that serves:
//
//	GET  /api/v1/health                    status, board generation, record count
//	GET  /api/v1/board                     summary, view settings and legend
//	GET  /api/v1/rows/{losing}             dense cells with resolved colors
//	GET  /api/v1/rows/{losing}/runs        the row run-length compressed
//	GET  /api/v1/cells/{winning}/{losing}  inspection dialog for one cell
//	PUT  /api/v1/metric                    {"metric":"frequency|recency"}
//	POST /api/v1/ramp/toggle
//	POST /api/v1/detail/enter
//	POST /api/v1/detail/exit
//	POST /api/v1/scroll                    {"id":"<generation>:<W>-<L>"}
//	POST /api/v1/rebuild
//
// Mutating routes reply with the updated board summary (scroll replies with
// the normalized target) and are wrapped by guard. Errors are JSON
// {"error": "..."}; out-of-range scores are 404, malformed input is 400.
// JSON types are defined in types.go.
package api

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scorigami/scorigami/internal/board"
	"github.com/scorigami/scorigami/internal/matrix"
	"github.com/scorigami/scorigami/internal/palette"
	"github.com/scorigami/scorigami/internal/runs"
)

// maxBodyBytes bounds request bodies on the mutating routes.
const maxBodyBytes = 4 << 10

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	state  *board.State
	router chi.Router
}

// New creates a Handler wired to st. guard wraps the mutating routes; pass
// nil to leave them open.
func New(st *board.State, guard func(http.Handler) http.Handler) http.Handler {
	h := &Handler{state: st, router: chi.NewRouter()}

	h.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	h.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})

	h.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/board", h.board)
		r.Get("/rows/{losing}", h.row)
		r.Get("/rows/{losing}/runs", h.runs)
		r.Get("/cells/{winning}/{losing}", h.cell)

		r.Group(func(r chi.Router) {
			if guard != nil {
				r.Use(guard)
			}
			r.Put("/metric", h.setMetric)
			r.Post("/ramp/toggle", h.toggleRamp)
			r.Post("/detail/enter", h.enterDetail)
			r.Post("/detail/exit", h.exitDetail)
			r.Post("/scroll", h.scroll)
			r.Post("/rebuild", h.rebuild)
		})
	})

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// --- read routes ------------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	sum := h.state.Summary()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Generation: sum.Generation,
		Records:    sum.Records,
	})
}

// board returns GET /api/v1/board: the board summary and view settings.
func (h *Handler) board(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, ToBoardResponse(h.state.Summary()))
}

// row returns GET /api/v1/rows/{losing}: dense cells with resolved colors.
func (h *Handler) row(w http.ResponseWriter, r *http.Request) {
	losing, ok := intParam(w, r, "losing")
	if !ok {
		return
	}
	views, err := h.state.Row(losing)
	if err != nil {
		writeStateErr(w, err)
		return
	}
	resp := RowResponse{Losing: losing, Cells: make([]CellResponse, 0, len(views))}
	for _, v := range views {
		resp.Cells = append(resp.Cells, toCellResponse(v))
	}
	if len(views) > 0 {
		if gen, _, _, err := matrix.ParseScrollID(views[0].ScrollID); err == nil {
			resp.Generation = gen
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// runs returns GET /api/v1/rows/{losing}/runs: the compressed row.
func (h *Handler) runs(w http.ResponseWriter, r *http.Request) {
	losing, ok := intParam(w, r, "losing")
	if !ok {
		return
	}
	rs, err := h.state.Runs(losing)
	if err != nil {
		writeStateErr(w, err)
		return
	}
	resp := RunsResponse{
		Losing:     losing,
		Generation: rs.Generation,
		Metric:     rs.Metric.String(),
		Ramp:       rs.Ramp.String(),
		Runs:       make([]RunResponse, 0, len(rs.Runs)),
	}
	for _, run := range rs.Runs {
		resp.Runs = append(resp.Runs, toRunResponse(run))
	}
	jsonResp(w, http.StatusOK, resp)
}

// cell returns GET /api/v1/cells/{winning}/{losing}: the inspection dialog.
func (h *Handler) cell(w http.ResponseWriter, r *http.Request) {
	winning, ok := intParam(w, r, "winning")
	if !ok {
		return
	}
	losing, ok := intParam(w, r, "losing")
	if !ok {
		return
	}
	d, err := h.state.Inspect(winning, losing)
	if err != nil {
		writeStateErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, DetailResponse{
		Score:       d.Score,
		Possible:    d.Possible,
		Scorigami:   d.Scorigami,
		Occurrences: d.Occurrences,
		LastGame:    d.LastGame,
		Message:     d.Message,
		DetailURL:   d.DetailURL,
	})
}

// --- mutating routes --------------------------------------------------------

// setMetric handles PUT /api/v1/metric.
func (h *Handler) setMetric(w http.ResponseWriter, r *http.Request) {
	var req MetricRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m, err := matrix.ParseMetric(req.Metric)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	h.state.SetMetric(m)
	h.board(w, r)
}

// toggleRamp handles POST /api/v1/ramp/toggle.
func (h *Handler) toggleRamp(w http.ResponseWriter, r *http.Request) {
	h.state.ToggleRamp()
	h.board(w, r)
}

// enterDetail handles POST /api/v1/detail/enter.
func (h *Handler) enterDetail(w http.ResponseWriter, r *http.Request) {
	h.state.EnterDetail()
	h.board(w, r)
}

// exitDetail handles POST /api/v1/detail/exit.
func (h *Handler) exitDetail(w http.ResponseWriter, r *http.Request) {
	h.state.ExitDetail()
	h.board(w, r)
}

// scroll handles POST /api/v1/scroll.
func (h *Handler) scroll(w http.ResponseWriter, r *http.Request) {
	var req ScrollRequest
	if !decodeBody(w, r, &req) {
		return
	}
	target, err := h.state.RequestScrollTo(req.ID)
	if err != nil {
		writeStateErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, ScrollResponse{Target: target})
}

// rebuild handles POST /api/v1/rebuild.
func (h *Handler) rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Rebuild(); err != nil {
		slog.Error("api: rebuild failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "rebuild failed")
		return
	}
	h.board(w, r)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		jsonErr(w, http.StatusBadRequest, "invalid "+name+" score "+strconv.Quote(raw))
		return 0, false
	}
	return n, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeStateErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matrix.ErrOutOfRange):
		jsonErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, matrix.ErrBadScrollID):
		jsonErr(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("api: board state error", "err", err)
		jsonErr(w, http.StatusInternalServerError, "internal error")
	}
}

// ToBoardResponse maps a board summary to its JSON representation. The
// stream hub sends the same shape.
func ToBoardResponse(s board.Summary) BoardResponse {
	return BoardResponse{
		Session:      s.Session,
		Generation:   s.Generation,
		Rows:         s.Rows,
		Cols:         s.Cols,
		Records:      s.Records,
		Scorigami:    s.Scorigami,
		Metric:       s.Metric.String(),
		Ramp:         s.Ramp.String(),
		Detail:       s.Detail,
		ScrollTarget: s.ScrollTarget,
		Legend:       LegendResponse{Min: s.Legend.Min, Max: s.Legend.Max},
	}
}

func toSwatchResponse(sw palette.Swatch) SwatchResponse {
	return SwatchResponse{
		Color:      sw.Color.Hex(),
		Saturation: sw.Saturation,
		Effective:  sw.Effective().Hex(),
	}
}

func toCellResponse(v board.View) CellResponse {
	return CellResponse{
		Winning:             v.Winning,
		Losing:              v.Losing,
		Label:               v.Label,
		Occurrences:         v.Occurrences,
		LastGame:            v.LastGame,
		DetailURL:           v.DetailURL,
		FrequencySaturation: v.FrequencySaturation,
		RecencySaturation:   v.RecencySaturation,
		ScrollID:            v.ScrollID,
		Swatch:              toSwatchResponse(v.Swatch),
		Foreground:          v.Foreground.String(),
	}
}

func toRunResponse(r runs.Run) RunResponse {
	return RunResponse{
		Start:    r.Start,
		Length:   r.Length,
		Swatch:   toSwatchResponse(r.Swatch),
		ScrollID: r.ScrollID,
		Label:    r.Label,
	}
}

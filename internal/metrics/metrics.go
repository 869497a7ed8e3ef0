package metrics

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const namespace = "scorigami_"

// Metric family names.
const (
	NameIngestRecords   = namespace + "ledger_records"
	NameIngestSeconds   = namespace + "ingest_duration_seconds"
	NameBoardGeneration = namespace + "board_generation"
	NameBoardCells      = namespace + "board_cells"
	NameScorigamiCells  = namespace + "scorigami_cells"
	NameEventsTotal     = namespace + "state_events_total"
	NameStreamClients   = namespace + "stream_clients"
)

// Registry holds the service's metrics and serves them in the Prometheus
// exposition format. The zero value is not usable; call New.
type Registry struct {
	mu sync.Mutex

	records       float64
	ingestSeconds float64
	generation    float64
	cells         float64
	scorigami     float64
	events        map[string]float64

	clients func() int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{events: make(map[string]float64)}
}

// ObserveIngest records the result of the startup ingestion.
func (r *Registry) ObserveIngest(records int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = float64(records)
	r.ingestSeconds = d.Seconds()
}

// SetBoard records the dimensions of the current board.
func (r *Registry) SetBoard(generation uint64, rows, cols, scorigami int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation = float64(generation)
	r.cells = float64(rows * cols)
	r.scorigami = float64(scorigami)
}

// IncEvent counts one board state mutation of the given kind.
func (r *Registry) IncEvent(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[kind]++
}

// SetClientsFunc registers the source of the stream_clients gauge.
func (r *Registry) SetClientsFunc(fn func() int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = fn
}

// Families returns a point-in-time copy of every metric family, sorted by name.
func (r *Registry) Families() []*dto.MetricFamily {
	r.mu.Lock()
	clients := r.clients
	out := []*dto.MetricFamily{
		gauge(NameIngestRecords, "Score records in the loaded ledger.", r.records),
		gauge(NameIngestSeconds, "Wall time of the startup fetch and parse.", r.ingestSeconds),
		gauge(NameBoardGeneration, "Generation of the current board.", r.generation),
		gauge(NameBoardCells, "Cells on the current board.", r.cells),
		gauge(NameScorigamiCells, "Reachable score pairs that never happened.", r.scorigami),
		r.eventsFamilyLocked(),
	}
	r.mu.Unlock()

	if clients != nil {
		out = append(out, gauge(NameStreamClients, "Connected stream clients.", float64(clients())))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

func (r *Registry) eventsFamilyLocked() *dto.MetricFamily {
	kinds := make([]string, 0, len(r.events))
	for k := range r.events {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	mf := &dto.MetricFamily{
		Name: proto.String(NameEventsTotal),
		Help: proto.String("Board state mutations by kind."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range kinds {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: proto.String("kind"), Value: proto.String(k)}},
			Counter: &dto.Counter{Value: proto.Float64(r.events[k])},
		})
	}
	return mf
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}

// Handler serves the registry in the format negotiated from the Accept header.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		format := expfmt.Negotiate(req.Header)
		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, mf := range r.Families() {
			if len(mf.GetMetric()) == 0 {
				continue
			}
			if err := enc.Encode(mf); err != nil {
				slog.Error("metrics: encode failed", "family", mf.GetName(), "err", err)
				return
			}
		}
		if c, ok := enc.(expfmt.Closer); ok {
			_ = c.Close()
		}
	})
}

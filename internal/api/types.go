package api

// HealthResponse is the JSON body for GET /api/v1/health.
type HealthResponse struct {
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
	Records    int    `json:"records"`
}

// LegendResponse holds the labels at each end of the color legend.
type LegendResponse struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// BoardResponse is the JSON body for GET /api/v1/board and every stream event.
type BoardResponse struct {
	Session      string         `json:"session"`
	Generation   uint64         `json:"generation"`
	Rows         int            `json:"rows"`
	Cols         int            `json:"cols"`
	Records      int            `json:"records"`
	Scorigami    int            `json:"scorigami"`
	Metric       string         `json:"metric"`
	Ramp         string         `json:"ramp"`
	Detail       bool           `json:"detail"`
	ScrollTarget string         `json:"scroll_target,omitempty"`
	Legend       LegendResponse `json:"legend"`
}

// SwatchResponse is a resolved cell color.
type SwatchResponse struct {
	// Color is the base color before saturation.
	Color      string  `json:"color"`
	Saturation float64 `json:"saturation"`
	// Effective is Color with Saturation applied.
	Effective string `json:"effective"`
}

// CellResponse is one dense cell of GET /api/v1/rows/{losing}.
type CellResponse struct {
	Winning             int            `json:"winning"`
	Losing              int            `json:"losing"`
	Label               string         `json:"label"`
	Occurrences         int            `json:"occurrences"`
	LastGame            string         `json:"last_game,omitempty"`
	DetailURL           string         `json:"detail_url,omitempty"`
	FrequencySaturation float64        `json:"frequency_saturation"`
	RecencySaturation   float64        `json:"recency_saturation"`
	ScrollID            string         `json:"scroll_id"`
	Swatch              SwatchResponse `json:"swatch"`
	Foreground          string         `json:"foreground"`
}

// RowResponse is the JSON body for GET /api/v1/rows/{losing}.
type RowResponse struct {
	Losing     int            `json:"losing"`
	Generation uint64         `json:"generation"`
	Cells      []CellResponse `json:"cells"`
}

// RunResponse is one run of GET /api/v1/rows/{losing}/runs.
type RunResponse struct {
	Start    int            `json:"start"`
	Length   int            `json:"length"`
	Swatch   SwatchResponse `json:"swatch"`
	ScrollID string         `json:"scroll_id,omitempty"`
	Label    string         `json:"label,omitempty"`
}

// RunsResponse is the JSON body for GET /api/v1/rows/{losing}/runs.
type RunsResponse struct {
	Losing     int           `json:"losing"`
	Generation uint64        `json:"generation"`
	Metric     string        `json:"metric"`
	Ramp       string        `json:"ramp"`
	Runs       []RunResponse `json:"runs"`
}

// DetailResponse is the JSON body for GET /api/v1/cells/{winning}/{losing}.
type DetailResponse struct {
	Score       string `json:"score"`
	Possible    bool   `json:"possible"`
	Scorigami   bool   `json:"scorigami"`
	Occurrences int    `json:"occurrences"`
	LastGame    string `json:"last_game,omitempty"`
	Message     string `json:"message,omitempty"`
	DetailURL   string `json:"detail_url,omitempty"`
}

// MetricRequest is the body of PUT /api/v1/metric.
type MetricRequest struct {
	Metric string `json:"metric"`
}

// ScrollRequest is the body of POST /api/v1/scroll.
type ScrollRequest struct {
	ID string `json:"id"`
}

// ScrollResponse echoes the normalized scroll target.
type ScrollResponse struct {
	Target string `json:"target"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Package server exposes the fleet registry and forecast engine over HTTP
// and WebSocket.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seatrack/backend/fleet"
	"seatrack/backend/forecast"
)

var apiLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "seatrack_api_latency_seconds",
	Help:    "Time spent serving HTTP handlers.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path", "status"})

func init() {
	prometheus.MustRegister(apiLatency)
}

// Server wires the registry and simulator into HTTP handlers.
type Server struct {
	fleet *fleet.Fleet
	sim   *forecast.Simulator
	opts  forecast.Options

	wsUpgrader        websocket.Upgrader
	wsInterval        time.Duration
	defaultPage       int
	defaultLimit      int
	logger            *slog.Logger
	correlationHeader string
	adminEnabled      bool
}

// NewServer constructs a Server with sensible defaults for pagination and
// streaming. The forecast options are the per-request defaults; callers can
// override horizon, step, and trial count via query parameters.
func NewServer(reg *fleet.Fleet, sim *forecast.Simulator, opts forecast.Options) *Server {
	return &Server{
		fleet: reg,
		sim:   sim,
		opts:  opts,
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		wsInterval:        2 * time.Second,
		defaultPage:       1,
		defaultLimit:      100,
		logger:            slog.Default(),
		correlationHeader: "X-Correlation-ID",
	}
}

// WithAdminEnabled enables admin-only endpoints like pprof.
func (s *Server) WithAdminEnabled() *Server {
	s.adminEnabled = true
	return s
}

// WithLogger configures structured logging.
func (s *Server) WithLogger(logger *slog.Logger) *Server {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Routes returns an http.Handler that serves all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.wrap(s.handleHealth))
	mux.HandleFunc("/readyz", s.wrap(s.handleReadiness))
	mux.HandleFunc("/api/vessels", s.wrap(s.handleVessels))
	mux.HandleFunc("/api/forecast", s.wrap(s.handleForecast))
	mux.HandleFunc("/api/fleet/status", s.wrap(s.handleFleetStatus))
	mux.HandleFunc("/ws/fleet", s.wrap(s.handleFleetWebSocket))
	mux.Handle("/metrics", promhttp.Handler())

	if s.adminEnabled {
		mux.HandleFunc("/admin/debug/pprof/", pprof.Index)
		mux.HandleFunc("/admin/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/admin/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/admin/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/admin/debug/pprof/trace", pprof.Trace)
	}
	return mux
}

type vesselSummary struct {
	ID       string       `json:"id"`
	Status   fleet.Status `json:"status"`
	Color    string       `json:"color,omitempty"`
	LastSeen *time.Time   `json:"last_seen,omitempty"`
	Lat      *float64     `json:"latitude,omitempty"`
	Lon      *float64     `json:"longitude,omitempty"`
	Fixes    int          `json:"fixes"`
}

type paginatedVessels struct {
	Vessels []vesselSummary `json:"vessels"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
	Total   int             `json:"total"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.fleet == nil || s.sim == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleVessels(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", s.defaultPage)
	size := queryInt(r, "size", s.defaultLimit)

	snapshot := s.fleet.Snapshot()
	total := len(snapshot)

	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	summaries := make([]vesselSummary, 0, end-start)
	for _, v := range snapshot[start:end] {
		summaries = append(summaries, summarize(v))
	}

	writeJSON(w, paginatedVessels{Vessels: summaries, Page: page, Size: size, Total: total})
}

func (s *Server) handleFleetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.fleet.Report())
}

// handleForecast runs the engine against a vessel's history. Horizon, step,
// and trial count default from the server options and can be overridden per
// request.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	vesselID := r.URL.Query().Get("vessel")
	if vesselID == "" {
		http.Error(w, "missing vessel parameter", http.StatusBadRequest)
		return
	}
	history, ok := s.fleet.History(vesselID)
	if !ok {
		http.Error(w, "vessel not tracked", http.StatusNotFound)
		return
	}

	opts := s.opts
	if v := queryFloat(r, "hours"); v > 0 {
		opts.HoursAhead = v
	}
	if v := queryFloat(r, "step"); v > 0 {
		opts.StepHours = v
	}
	if v := queryInt(r, "trials", 0); v > 0 {
		opts.Trials = v
	}

	result, err := s.sim.Forecast(history, opts)
	if err != nil {
		s.logger.Error("forecast failed", "vessel", vesselID, "err", err,
			"correlation_id", correlationIDFromContext(r.Context()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleFleetWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err,
			"correlation_id", correlationIDFromContext(r.Context()))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.wsInterval)
	defer ticker.Stop()

	sendSnapshot := func() error {
		snapshot := s.fleet.Snapshot()
		summaries := make([]vesselSummary, 0, len(snapshot))
		for _, v := range snapshot {
			summaries = append(summaries, summarize(v))
		}
		return conn.WriteJSON(summaries)
	}

	if err := sendSnapshot(); err != nil {
		s.logger.Error("websocket initial send failed", "err", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := sendSnapshot(); err != nil {
				s.logger.Error("websocket send failed", "err", err)
				return
			}
		}
	}
}

func summarize(v fleet.Vessel) vesselSummary {
	sum := vesselSummary{ID: v.ID, Status: v.Status, Color: v.Color, Fixes: len(v.History)}
	if pos, ok := v.LastPosition(); ok {
		t := pos.Time
		lat, lon := pos.Lat, pos.Lon
		sum.LastSeen = &t
		sum.Lat = &lat
		sum.Lon = &lon
	}
	return sum
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return 0
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/aggregator"
	"github.com/ronospace/Flow-Ai-sub006/internal/analysis"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// HealthWriter is the best-effort write-back surface of the platform bridge.
// Every method returns false on failure; there is no retry and no queuing.
type HealthWriter interface {
	WriteMenstrualFlow(ctx context.Context, date time.Time, level int) bool
	WriteSymptoms(ctx context.Context, date time.Time, symptoms []string) bool
	WriteBasalBodyTemperature(ctx context.Context, date time.Time, tempF float64) bool
	WriteCervicalMucus(ctx context.Context, date time.Time, quality string) bool
	WriteOvulationTest(ctx context.Context, date time.Time, positive bool) bool
}

// CapabilitiesFunc resolves the current platform capabilities.
type CapabilitiesFunc func(ctx context.Context) models.Capabilities

// Server exposes the engine to downstream consumers (dashboards, clinical
// assessment). Consumers only ever see analysis snapshots, derived results
// and the write-back surface; they never touch the cache or the bridge.
type Server struct {
	agg          *aggregator.Aggregator
	patterns     *analysis.PatternAnalyzer
	detector     *analysis.AnomalyDetector
	insights     *analysis.InsightGenerator
	writer       HealthWriter // nil when no bridge is configured
	capabilities CapabilitiesFunc
	logger       *zap.Logger
	mux          *http.ServeMux
	httpServer   *http.Server
}

// NewServer creates the HTTP server.
func NewServer(
	agg *aggregator.Aggregator,
	writer HealthWriter,
	capabilities CapabilitiesFunc,
	logger *zap.Logger,
) *Server {
	s := &Server{
		agg:          agg,
		patterns:     analysis.NewPatternAnalyzer(),
		detector:     analysis.NewAnomalyDetector(),
		insights:     analysis.NewInsightGenerator(),
		writer:       writer,
		capabilities: capabilities,
		logger:       logger,
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/analysis", s.handleAnalysis)
	s.mux.HandleFunc("/api/patterns", s.handlePatterns)
	s.mux.HandleFunc("/api/anomalies", s.handleAnomalies)
	s.mux.HandleFunc("/api/insights", s.handleInsights)
	s.mux.HandleFunc("/api/readings", s.handleReadings)
	s.mux.HandleFunc("/api/capabilities", s.handleCapabilities)
	s.mux.HandleFunc("/api/write/", s.handleWrite)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.httpServer = &http.Server{Handler: s.mux}

	return s
}

// Handler returns the routing handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until the listener fails or Shutdown is called. Returns
// http.ErrServerClosed after a clean Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer.Addr = addr
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.agg.Analyze(r.Context(), start, end)
	if err != nil {
		s.logger.Error("Analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.agg.Analyze(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, s.patterns.Analyze(snapshot))
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.agg.Analyze(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	anomalies := s.detector.Detect(snapshot)
	writeJSON(w, http.StatusOK, map[string]any{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.agg.Analyze(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"insights": s.insights.Generate(snapshot),
	})
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	t, ok := models.ParseReadingType(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown reading type")
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := s.agg.QueryRange(r.Context(), t, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"readings": readings,
		"count":    len(readings),
	})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.capabilities(r.Context()))
}

// writeRequest is the shared shape of write-back requests. Unused fields are
// ignored per event.
type writeRequest struct {
	Date        int64    `json:"date"` // epoch millis
	Level       int      `json:"level"`
	Symptoms    []string `json:"symptoms"`
	Temperature float64  `json:"temperature"`
	Quality     string   `json:"quality"`
	Positive    bool     `json:"positive"`
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.writer == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": false})
		return
	}

	date := time.UnixMilli(req.Date)
	event := strings.TrimPrefix(r.URL.Path, "/api/write/")

	var ok bool
	switch event {
	case "menstrual-flow":
		ok = s.writer.WriteMenstrualFlow(r.Context(), date, req.Level)
	case "symptoms":
		ok = s.writer.WriteSymptoms(r.Context(), date, req.Symptoms)
	case "basal-body-temperature":
		ok = s.writer.WriteBasalBodyTemperature(r.Context(), date, req.Temperature)
	case "cervical-mucus":
		ok = s.writer.WriteCervicalMucus(r.Context(), date, req.Quality)
	case "ovulation-test":
		ok = s.writer.WriteOvulationTest(r.Context(), date, req.Positive)
	default:
		writeError(w, http.StatusNotFound, "unknown write event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

// parseWindow reads start/end query params as unix seconds or RFC3339,
// defaulting to the last 24 hours.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.Add(-24 * time.Hour)

	if v := r.URL.Query().Get("start"); v != "" {
		ts, err := parseTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = ts
	}
	if v := r.URL.Query().Get("end"); v != "" {
		ts, err := parseTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = ts
	}
	return start, end, nil
}

func parseTime(v string) (time.Time, error) {
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	return time.Parse(time.RFC3339, v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

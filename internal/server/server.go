// Package server implements the HTTP API for csmasimd.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hcoa-iot/csmasim/internal/engine"
	"github.com/hcoa-iot/csmasim/internal/simrunner"
)

// Sentinel errors for the server package.
var (
	// ErrInvalidBody indicates the request body could not be decoded.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrInvalidConfig indicates the decoded simulation config failed validation.
	ErrInvalidConfig = errors.New("invalid simulation config")
)

// Server exposes the simulation runner over HTTP. Each request delegates
// to the Runner for actual execution; the server is a thin adapter
// between the wire format and the domain.
type Server struct {
	runner *simrunner.Runner
	logger *slog.Logger
}

// New creates a Server and returns the configured router.
func New(runner *simrunner.Runner, logger *slog.Logger) http.Handler {
	s := &Server{
		runner: runner,
		logger: logger.With(slog.String("component", "server")),
	}

	r := mux.NewRouter()
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(LoggingMiddleware(s.logger))

	r.HandleFunc("/v1/simulate", s.handleSimulate).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	return r
}

// simulateRequest is the wire format for POST /v1/simulate.
type simulateRequest struct {
	Config simulateConfig `json:"config"`
	Seed   uint64         `json:"seed"`
}

// simulateConfig mirrors engine.Config with a string packet generation
// mode, since "Random"/"Interval" is friendlier over the wire than the
// underlying enum's numeric value.
type simulateConfig struct {
	SimDuration      int     `json:"sim_duration"`
	NodeCount        int     `json:"node_count"`
	DataSlots        int     `json:"data_slots"`
	CollisionPenalty int     `json:"collision_penalty"`
	Pe               int     `json:"pe"`
	MinBe            int     `json:"min_be"`
	MaxBe            int     `json:"max_be"`
	MaxNb            int     `json:"max_nb"`
	PacketGenMode    string  `json:"packet_gen_mode"`
	PacketProb       float64 `json:"packet_prob"`
	PacketInterval   int     `json:"packet_interval"`
	SlotDurationUs   int     `json:"slot_duration_us"`
}

// simulateResponse is the wire format for a successful simulation.
type simulateResponse struct {
	Result engine.Result `json:"result"`
	Cached bool          `json:"cached"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var body simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return
	}

	mode, err := simrunner.ParsePacketGenMode(body.Config.PacketGenMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
		return
	}

	cfg := engine.Config{
		SimDuration:      body.Config.SimDuration,
		NodeCount:        body.Config.NodeCount,
		DataSlots:        body.Config.DataSlots,
		CollisionPenalty: body.Config.CollisionPenalty,
		Pe:               body.Config.Pe,
		MinBe:            body.Config.MinBe,
		MaxBe:            body.Config.MaxBe,
		MaxNb:            body.Config.MaxNb,
		PacketGenMode:    mode,
		PacketProb:       body.Config.PacketProb,
		PacketInterval:   body.Config.PacketInterval,
		SlotDurationUs:   body.Config.SlotDurationUs,
	}

	result, cached, err := s.runner.Run(r.Context(), simrunner.Request{Config: cfg, Seed: body.Seed})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, simulateResponse{Result: result, Cached: cached})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Shutdown gracefully stops an *http.Server, bounded by ctx.
func Shutdown(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

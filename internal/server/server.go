package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"codeberg.org/mutker/perfgov/internal/logger"
	"codeberg.org/mutker/perfgov/internal/profile"
	"codeberg.org/mutker/perfgov/internal/thermal"
	"codeberg.org/mutker/perfgov/internal/topology"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// GovernorStatus is the read-only view of governor state the status
// endpoint exposes.
type GovernorStatus interface {
	CurrentProfile() profile.Profile
	EffectiveProfile() profile.Profile
	AutoThermalManagement() bool
	LastLevel() thermal.Level
	Monitoring() bool
}

// Server serves a read-only JSON view of the governor and topology state.
type Server struct {
	gov     GovernorStatus
	topo    topology.Topology
	threads int
	http    *http.Server
}

func New(addr string, gov GovernorStatus, topo topology.Topology, recommendedThreads int) *Server {
	s := &Server{
		gov:     gov,
		topo:    topo,
		threads: recommendedThreads,
	}

	s.http = &http.Server{
		Addr:         addr,
		Handler:      handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(os.Stdout, s.Handler())),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Handler returns the route tree without the outer middleware. Used by
// tests.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/topology", s.handleTopology).Methods(http.MethodGet)

	return r
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		logger.Info().Str("addr", s.http.Addr).Msg("Status server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Status server failed")
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Status server shutdown failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type statusResponse struct {
	Profile          string `json:"profile"`
	EffectiveProfile string `json:"effective_profile"`
	AutoManagement   bool   `json:"auto_thermal_management"`
	ThermalLevel     string `json:"thermal_level"`
	Monitoring       bool   `json:"monitoring"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, statusResponse{
		Profile:          s.gov.CurrentProfile().String(),
		EffectiveProfile: s.gov.EffectiveProfile().String(),
		AutoManagement:   s.gov.AutoThermalManagement(),
		ThermalLevel:     s.gov.LastLevel().String(),
		Monitoring:       s.gov.Monitoring(),
	})
}

type topologyResponse struct {
	TotalCores         int    `json:"total_cores"`
	Recognized         bool   `json:"recognized"`
	SoC                string `json:"soc,omitempty"`
	Prime              []int  `json:"prime"`
	Gold               []int  `json:"gold"`
	Silver             []int  `json:"silver"`
	RecommendedThreads int    `json:"recommended_threads"`
}

func (s *Server) handleTopology(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, topologyResponse{
		TotalCores:         s.topo.TotalCores,
		Recognized:         s.topo.Recognized,
		SoC:                s.topo.SoC,
		Prime:              s.topo.Prime.Cores(),
		Gold:               s.topo.Gold.Cores(),
		Silver:             s.topo.Silver.Cores(),
		RecommendedThreads: s.threads,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

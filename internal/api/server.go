package api

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/rpattn/scenariogen/internal/catalog"
	"github.com/rpattn/scenariogen/internal/domain"
	"github.com/rpattn/scenariogen/internal/export"
	"github.com/rpattn/scenariogen/internal/interpret"
	"github.com/rpattn/scenariogen/internal/middleware"
	"github.com/rpattn/scenariogen/internal/repository"
	"github.com/rpattn/scenariogen/internal/scenario"
)

// dataset is the loaded working set: the base table plus everything
// derived from the product master.
type dataset struct {
	rows         []domain.Row
	columns      []string
	columnValues map[string][]string
	drivers      map[string][]string
	index        *catalog.Index
	session      *scenario.Session
}

// Server exposes the scenario engine over HTTP. One dataset is active at
// a time; uploading a new one replaces the session and its counter.
type Server struct {
	logger      *zap.Logger
	exporter    *export.Service
	scenarios   repository.ScenarioRepository
	interpreter interpret.Interpreter

	mu      sync.RWMutex
	dataset *dataset
}

func NewServer(
	logger *zap.Logger,
	exporter *export.Service,
	scenarios repository.ScenarioRepository,
	interpreter interpret.Interpreter,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:      logger,
		exporter:    exporter,
		scenarios:   scenarios,
		interpreter: interpreter,
	}
}

// Handler builds the routed HTTP handler with request logging attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /datasets", s.handleUploadDataset)
	mux.HandleFunc("GET /datasets/current", s.handleDatasetSummary)
	mux.HandleFunc("GET /drivers", s.handleDrivers)
	mux.HandleFunc("POST /scenarios", s.handleCreateScenarios)
	mux.HandleFunc("GET /scenarios", s.handleListScenarios)
	mux.HandleFunc("GET /scenarios/bundle", s.handleDownloadBundle)
	mux.HandleFunc("GET /scenarios/{id}", s.handleGetScenario)
	mux.HandleFunc("GET /scenarios/{id}/download", s.handleDownloadScenario)
	mux.HandleFunc("DELETE /scenarios/{id}", s.handleDeleteScenario)
	mux.HandleFunc("GET /scenarios/stored", s.handleListStored)
	mux.HandleFunc("POST /interpret", s.handleInterpret)

	return middleware.Logging(s.logger)(mux)
}

// currentDataset returns the active dataset, or false if none is loaded.
func (s *Server) currentDataset() (*dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.dataset != nil
}

func (s *Server) replaceDataset(ds *dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
}

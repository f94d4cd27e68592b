package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/scenariogen/internal/catalog"
	"github.com/rpattn/scenariogen/internal/domain"
	"github.com/rpattn/scenariogen/internal/interpret"
	"github.com/rpattn/scenariogen/internal/loader"
	"github.com/rpattn/scenariogen/internal/repository"
	"github.com/rpattn/scenariogen/internal/scenario"
)

const maxUploadBytes = 64 << 20

// persistTimeout bounds the background save of a finished scenario.
const persistTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUploadDataset accepts either a single "archive" zip holding the
// table and product master, or separate "table" and "catalog" files.
// Loading a dataset replaces the active session and its ordinal counter.
func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	var ds loader.Dataset
	if archive, _, err := r.FormFile("archive"); err == nil {
		defer archive.Close()
		payload, err := io.ReadAll(archive)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read archive: %v", err), http.StatusBadRequest)
			return
		}
		ds, err = loader.ParseArchive(payload)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		table, tableHeader, err := r.FormFile("table")
		if err != nil {
			http.Error(w, "archive or table file required", http.StatusBadRequest)
			return
		}
		defer table.Close()

		cat, catHeader, err := r.FormFile("catalog")
		if err != nil {
			http.Error(w, "catalog file required", http.StatusBadRequest)
			return
		}
		defer cat.Close()

		ds, err = parseSeparateFiles(table, tableHeader.Filename, cat, catHeader.Filename)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	index := catalog.BuildIndex(ds.Products)
	active := &dataset{
		rows:         ds.Rows,
		columns:      ds.Columns,
		columnValues: loader.DistinctColumnValues(ds.Rows, ds.Columns, 50),
		drivers:      catalog.ExtractValueDrivers(ds.Products),
		index:        index,
		session:      scenario.NewSession(scenario.NewTransformer(index)),
	}
	s.replaceDataset(active)

	s.logger.Info("dataset loaded",
		zap.String("table", ds.TableName),
		zap.String("catalog", ds.CatalogName),
		zap.Int("rows", len(ds.Rows)),
		zap.Int("products", len(ds.Products)),
	)
	writeJSON(w, http.StatusOK, datasetSummary(active))
}

func parseSeparateFiles(table multipart.File, tableName string, cat multipart.File, catName string) (loader.Dataset, error) {
	tablePayload, err := io.ReadAll(table)
	if err != nil {
		return loader.Dataset{}, fmt.Errorf("failed to read table file: %w", err)
	}
	rows, columns, err := loader.ParseTable(tableName, tablePayload)
	if err != nil {
		return loader.Dataset{}, err
	}

	catPayload, err := io.ReadAll(cat)
	if err != nil {
		return loader.Dataset{}, fmt.Errorf("failed to read catalog file: %w", err)
	}
	products, err := loader.ParseCatalog(catPayload)
	if err != nil {
		return loader.Dataset{}, err
	}

	return loader.Dataset{
		Rows:        rows,
		Columns:     columns,
		Products:    products,
		TableName:   tableName,
		CatalogName: catName,
	}, nil
}

func (s *Server) handleDatasetSummary(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.currentDataset()
	if !ok {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, datasetSummary(ds))
}

func (s *Server) handleDrivers(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.currentDataset()
	if !ok {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ds.drivers)
}

type createScenariosPayload struct {
	Changes []interpret.ChangeRequest `json:"changes"`
}

// handleCreateScenarios expands the submitted changes into scenarios.
// Finished scenarios are handed to the repository in the background; a
// failed save is logged and never fails the request.
func (s *Server) handleCreateScenarios(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.currentDataset()
	if !ok {
		http.Error(w, "no dataset loaded", http.StatusConflict)
		return
	}

	defer r.Body.Close()
	var payload createScenariosPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	if len(payload.Changes) == 0 {
		http.Error(w, "at least one change is required", http.StatusBadRequest)
		return
	}

	created, err := ds.session.CreateScenarios(ds.rows, interpret.Specs(payload.Changes))
	if err != nil {
		if errors.Is(err, scenario.ErrKindConflict) || errors.Is(err, scenario.ErrTargetNotPrice) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, sc := range created {
		go s.persistScenario(sc)
	}

	summaries := make([]scenarioSummary, len(created))
	for i, sc := range created {
		summaries[i] = summarize(sc)
	}
	writeJSON(w, http.StatusCreated, summaries)
}

func (s *Server) persistScenario(sc domain.Scenario) {
	if s.scenarios == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.scenarios.Save(ctx, sc); err != nil {
		s.logger.Warn("failed to persist scenario",
			zap.String("scenario", sc.Name),
			zap.Error(err),
		)
	}
}

func (s *Server) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.currentDataset()
	if !ok {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	scenarios := ds.session.Scenarios()
	summaries := make([]scenarioSummary, len(scenarios))
	for i, sc := range scenarios {
		summaries[i] = summarize(sc)
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.findScenario(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleDownloadScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.findScenario(w, r)
	if !ok {
		return
	}
	data, err := s.exporter.CSV(sc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.exporter.FileName(sc)))
	_, _ = w.Write(data)
}

func (s *Server) handleDownloadBundle(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.currentDataset()
	if !ok {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	data, name, err := s.exporter.Bundle(ds.session.Scenarios())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		http.Error(w, "scenario storage not configured", http.StatusConflict)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid scenario id: %v", err), http.StatusBadRequest)
		return
	}
	if err := s.scenarios.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrScenarioNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListStored(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		http.Error(w, "scenario storage not configured", http.StatusConflict)
		return
	}
	stored, err := s.scenarios.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summaries := make([]scenarioSummary, len(stored))
	for i, sc := range stored {
		summaries[i] = summarize(sc)
	}
	writeJSON(w, http.StatusOK, summaries)
}

type interpretPayload struct {
	Prompt string `json:"prompt"`
}

// handleInterpret turns a natural language prompt into change
// specifications the client can review and submit to POST /scenarios.
func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	if s.interpreter == nil {
		http.Error(w, "interpreter not configured", http.StatusConflict)
		return
	}
	ds, ok := s.currentDataset()
	if !ok {
		http.Error(w, "no dataset loaded", http.StatusConflict)
		return
	}

	defer r.Body.Close()
	var payload interpretPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	if payload.Prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	specs, err := s.interpreter.Interpret(r.Context(), payload.Prompt, interpret.DatasetContext{
		Drivers:      ds.drivers,
		Columns:      ds.columns,
		ColumnValues: ds.columnValues,
	})
	if err != nil {
		if errors.Is(err, interpret.ErrNotInterpretable) {
			http.Error(w, "could not interpret the prompt, please rephrase", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": specs})
}

func (s *Server) findScenario(w http.ResponseWriter, r *http.Request) (domain.Scenario, bool) {
	ds, ok := s.currentDataset()
	if !ok {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return domain.Scenario{}, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid scenario id: %v", err), http.StatusBadRequest)
		return domain.Scenario{}, false
	}
	sc, ok := ds.session.Scenario(id)
	if ok {
		return sc, true
	}
	// Fall back to archived scenarios so downloads survive a reload.
	if s.scenarios != nil {
		stored, err := s.scenarios.Get(r.Context(), id)
		if err == nil {
			return stored, true
		}
	}
	http.Error(w, "scenario not found", http.StatusNotFound)
	return domain.Scenario{}, false
}

type scenarioSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ChangeParts  []string  `json:"changeParts"`
	ModifiedRows int       `json:"modifiedRows"`
	TotalRows    int       `json:"totalRows"`
	CreatedAt    time.Time `json:"createdAt"`
}

func summarize(sc domain.Scenario) scenarioSummary {
	return scenarioSummary{
		ID:           sc.ID,
		Name:         sc.Name,
		ChangeParts:  sc.Metadata.ChangeParts,
		ModifiedRows: sc.Metadata.ModifiedRows,
		TotalRows:    sc.Metadata.TotalRows,
		CreatedAt:    sc.CreatedAt,
	}
}

type datasetSummaryResponse struct {
	Rows         int                 `json:"rows"`
	Columns      []string            `json:"columns"`
	Drivers      map[string][]string `json:"drivers"`
	ColumnValues map[string][]string `json:"columnValues"`
}

func datasetSummary(ds *dataset) datasetSummaryResponse {
	return datasetSummaryResponse{
		Rows:         len(ds.rows),
		Columns:      ds.columns,
		Drivers:      ds.drivers,
		ColumnValues: ds.columnValues,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

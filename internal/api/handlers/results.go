package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

// SnapshotReader lists and reads result snapshots
type SnapshotReader interface {
	Snapshots() ([]string, error)
	Latest() (string, []contracts.TickerSymbol, error)
}

// ResultsHandler serves persisted screening results
type ResultsHandler struct {
	store  SnapshotReader
	logger *logger.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(store SnapshotReader, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{
		store:  store,
		logger: log,
	}
}

// LatestResponse is the newest snapshot
type LatestResponse struct {
	File       string                   `json:"file"`
	Qualifying []contracts.TickerSymbol `json:"qualifying"`
}

// List returns snapshot file names, oldest first
// GET /api/results
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.Snapshots()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshots")
		respondError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	respondJSON(w, http.StatusOK, names)
}

// Latest returns the newest snapshot's qualifying list
// GET /api/results/latest
func (h *ResultsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	path, symbols, err := h.store.Latest()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read latest snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to read latest snapshot")
		return
	}
	if path == "" {
		respondError(w, http.StatusNotFound, "no snapshots yet")
		return
	}

	respondJSON(w, http.StatusOK, LatestResponse{
		File:       filepath.Base(path),
		Qualifying: symbols,
	})
}

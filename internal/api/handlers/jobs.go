package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/schloss/internal/scheduler"
	"github.com/wonny/schloss/pkg/logger"
)

// JobScheduler is the part of the scheduler the API exposes
type JobScheduler interface {
	GetJobStats() map[string]scheduler.JobStats
	GetJobHistory(jobName string, limit int) ([]scheduler.JobResult, error)
	RunJob(jobName string) error
}

// JobsHandler handles scheduler endpoints
// ⭐ SSOT: 작업 API 핸들러는 여기서만
type JobsHandler struct {
	scheduler JobScheduler
	logger    *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(s JobScheduler, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		scheduler: s,
		logger:    log,
	}
}

// List returns stats for every job
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}

// History returns the latest results of one job
// GET /api/jobs/{name}/history?limit=20
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := h.scheduler.GetJobHistory(name, limit)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Run triggers a job outside its schedule and returns immediately
// POST /api/jobs/{name}/run
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if _, ok := h.scheduler.GetJobStats()[name]; !ok {
		respondError(w, http.StatusNotFound, "job "+name+" not found")
		return
	}

	go func() {
		if err := h.scheduler.RunJob(name); err != nil {
			h.logger.WithError(err).WithField("job", name).Warn("Manual job trigger rejected")
		}
	}()

	h.logger.WithField("job", name).Info("Manual job run triggered")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/internal/pipeline"
	"insurance-data-pipeline/internal/store"
)

const (
	jobsPrefix = "/api/v1/jobs/"

	// bookkeepingTimeout bounds the status writes made after a job ends.
	bookkeepingTimeout = 10 * time.Second
)

// Handler serves the pipeline API.
type Handler struct {
	processor  *pipeline.Processor
	runner     *pipeline.Runner
	store      *store.Store
	jobTimeout time.Duration
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// New wires the handlers. runner may be nil, in which case job submission is
// reported as unavailable.
func New(processor *pipeline.Processor, runner *pipeline.Runner, st *store.Store, jobTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	return &Handler{
		processor:  processor,
		runner:     runner,
		store:      st,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Wait blocks until every background job has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// BatchRequest is the body of POST /batches.
type BatchRequest struct {
	Records []model.RawRecord `json:"records"`
}

// BatchResponse is a BatchResult tagged with the job that recorded it.
type BatchResponse struct {
	JobID string `json:"jobID"`
	model.BatchResult
}

// JobRequest is the body of POST /jobs.
type JobRequest struct {
	Objects []model.ObjectRef `json:"objects"`
}

// ValidateRecord validates and transforms one record
// @Summary Validate a record
// @Description Validate one insurance record and return its transformed form or the rejection reason
// @Tags records
// @Accept json
// @Produce json
// @Param record body map[string]interface{} true "Raw record"
// @Success 200 {object} model.Outcome "Validation outcome"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Router /records/validate [post]
func (h *Handler) ValidateRecord(w http.ResponseWriter, r *http.Request) {
	var rec model.RawRecord
	if err := decodeJSON(r, &rec); err != nil || rec == nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.processor.ProcessRecord(rec))
}

// ProcessBatch validates a batch of records
// @Summary Process a batch
// @Description Split a batch of records into transformed and rejected rows; the run is recorded as a job
// @Tags records
// @Accept json
// @Produce json
// @Param batch body BatchRequest true "Records to process"
// @Success 200 {object} BatchResponse "Batch result"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /batches [post]
func (h *Handler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	result := h.processor.ProcessBatch(req.Records)
	jobID := uuid.New().String()

	ctx := r.Context()
	if err := h.store.SaveJob(ctx, model.Job{ID: jobID, Kind: model.JobKindBatch, Source: "api", Status: model.JobCompleted}); err != nil {
		h.logger.Error("Failed to save job", "job", jobID, "error", err)
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}
	stats := model.Summary{
		TotalRecords:     len(req.Records),
		ProcessedRecords: result.ValidCount,
		ErrorRecords:     result.ErrorCount,
		OutputFiles:      []string{},
	}
	if err := h.store.SaveJobStats(ctx, jobID, stats); err != nil {
		h.logger.Error("Failed to save job stats", "job", jobID, "error", err)
	}

	h.logger.Info("📦 Batch processed", "job", jobID, "valid", result.ValidCount, "errors", result.ErrorCount)
	writeJSON(w, http.StatusOK, BatchResponse{JobID: jobID, BatchResult: result})
}

// CreateJob starts processing stored objects in the background
// @Summary Create a job
// @Description Process one or more stored input files asynchronously
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body JobRequest true "Objects to process"
// @Success 202 {object} map[string]interface{} "Job accepted"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 503 {object} map[string]interface{} "No storage configured"
// @Router /jobs [post]
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		http.Error(w, "Object processing is not configured", http.StatusServiceUnavailable)
		return
	}

	var req JobRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if len(req.Objects) == 0 {
		http.Error(w, "At least one object is required", http.StatusBadRequest)
		return
	}
	sources := make([]string, len(req.Objects))
	for i, obj := range req.Objects {
		if obj.Key == "" {
			http.Error(w, "Every object needs a key", http.StatusBadRequest)
			return
		}
		sources[i] = strings.TrimPrefix(obj.Bucket+"/"+obj.Key, "/")
	}

	jobID := uuid.New().String()
	if err := h.store.SaveJob(r.Context(), model.Job{
		ID:     jobID,
		Kind:   model.JobKindObjects,
		Source: strings.Join(sources, ","),
	}); err != nil {
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.jobTimeout)
		defer cancel()
		h.runJob(ctx, jobID, req.Objects)
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":   "Job created successfully!",
		"jobID":     jobID,
		"status":    model.JobPending,
		"createdAt": time.Now().UTC(),
	})
}

func (h *Handler) runJob(ctx context.Context, jobID string, refs []model.ObjectRef) {
	logger := h.logger.With("job", jobID)
	logger.Info("🚀 Starting job", "objects", len(refs))
	if err := h.store.UpdateJobStatus(ctx, jobID, model.JobRunning); err != nil {
		logger.Error("Failed to update job status", "error", err)
	}

	summary, results := h.runner.ProcessObjects(ctx, refs)

	// The job context may have expired; the outcome is still recorded.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	for _, res := range results {
		if res.Error == "" {
			continue
		}
		err := fmt.Errorf("%s/%s: %s", res.Source.Bucket, res.Source.Key, res.Error)
		if saveErr := h.store.SaveJobError(saveCtx, jobID, err); saveErr != nil {
			logger.Error("Failed to save job error", "error", saveErr)
		}
	}

	status := model.JobCompleted
	if summary.FailedFiles > 0 && summary.FailedFiles == summary.InputFiles {
		status = model.JobFailed
	}
	if err := ctx.Err(); err != nil {
		status = model.JobFailed
		if saveErr := h.store.SaveJobError(saveCtx, jobID, fmt.Errorf("job stopped after %s: %w", h.jobTimeout, err)); saveErr != nil {
			logger.Error("Failed to save job error", "error", saveErr)
		}
	}

	if err := h.store.SaveJobStats(saveCtx, jobID, summary); err != nil {
		logger.Error("Failed to save job stats", "error", err)
	}
	if err := h.store.UpdateJobStatus(saveCtx, jobID, status); err != nil {
		logger.Error("Failed to update job status", "error", err)
	}
	logger.Info("🏁 Job finished", "status", status,
		"processed", summary.ProcessedRecords, "errors", summary.ErrorRecords, "failed_files", summary.FailedFiles)
}

// ListJobs retrieves all jobs
// @Summary List all jobs
// @Description Get a list of all jobs with their current status
// @Tags jobs
// @Produce json
// @Success 200 {array} model.Job "List of jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListJobs(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob retrieves a specific job
// @Summary Get job
// @Description Retrieve the status and statistics of a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} model.Job "Job details"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, store.ErrJobNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetJobErrors retrieves errors for a job
// @Summary Get job errors
// @Description Retrieve the file-level errors recorded for a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job errors"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/errors [get]
func (h *Handler) GetJobErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/errors")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	errs, err := h.store.GetJobErrors(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"errors": errs,
		"count":  len(errs),
	})
}

// jobIDFromPath extracts the ID between the jobs prefix and suffix.
func jobIDFromPath(path, suffix string) (string, bool) {
	if !strings.HasPrefix(path, jobsPrefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	jobID := path[len(jobsPrefix) : len(path)-len(suffix)]
	if jobID == "" || strings.Contains(jobID, "/") {
		return "", false
	}
	return jobID, true
}

func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

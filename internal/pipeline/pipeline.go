package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/sync/errgroup"

	"insurance-data-pipeline/internal/metrics"
	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/internal/storage"
	"insurance-data-pipeline/pkg/utils"
)

// RunnerConfig holds the destinations and knobs of a Runner.
type RunnerConfig struct {
	ProcessedBucket string
	ErrorBucket     string
	Format          string
	Workers         int
	Retry           model.RetryConfig
	Settings        model.Settings
}

// Runner drives the Processor over stored objects: read, classify, write.
type Runner struct {
	store     storage.ObjectStore
	processor *Processor
	cfg       RunnerConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner wires a runner. A nil logger discards output.
func NewRunner(store storage.ObjectStore, processor *Processor, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Format == "" {
		cfg.Format = FormatParquet
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{
		store:     store,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessObject runs one input object end to end. The returned error is also
// recorded in the result so callers can keep going with other objects.
func (r *Runner) ProcessObject(ctx context.Context, ref model.ObjectRef) (result model.FileResult, err error) {
	start := time.Now()
	result = model.FileResult{Source: ref, OutputFiles: []string{}}
	logger := r.logger.With("bucket", ref.Bucket, "key", ref.Key)

	defer func() {
		result.Duration = time.Since(start)
		metrics.FileDuration.Observe(result.Duration.Seconds())
		if err != nil {
			result.Error = err.Error()
			metrics.FilesTotal.WithLabelValues("failed").Inc()
			logger.Error("❌ Failed to process file", "error", err)
			return
		}
		metrics.FilesTotal.WithLabelValues("succeeded").Inc()
		logger.Info("✅ Completed processing file",
			"valid", result.ValidRecords, "errors", result.ErrorRecords, "duration", result.Duration)
	}()

	logger.Info("➡️ Processing file", "location", r.store.Location(ref.Bucket, ref.Key))

	var body []byte
	err = withRetry(ctx, r.cfg.Retry, logger, "read input", func() error {
		var getErr error
		body, getErr = r.store.Get(ctx, ref.Bucket, ref.Key)
		return getErr
	})
	if err != nil {
		return result, err
	}

	rows, err := DecodeRecords(ref.Key, body)
	if err != nil {
		return result, fmt.Errorf("failed to decode %s: %w", ref.Key, err)
	}
	result.TotalRecords = len(rows)
	logger.Debug("Read records", "count", len(rows))

	batch := r.processor.ProcessBatch(rows)
	recordBatchMetrics(batch)

	paths := utils.GenerateOutputPaths(ref.Key, r.now(), r.cfg.Format)

	if batch.ValidCount > 0 {
		body, err := EncodeValid(r.cfg.Format, batch.Valid)
		if err != nil {
			return result, err
		}
		if err := r.put(ctx, logger, r.cfg.ProcessedBucket, paths.Processed, body); err != nil {
			return result, err
		}
		result.OutputFiles = append(result.OutputFiles, r.store.Location(r.cfg.ProcessedBucket, paths.Processed))
	}
	result.ValidRecords = batch.ValidCount

	if batch.ErrorCount > 0 && r.cfg.ErrorBucket != "" {
		body, err := EncodeErrors(r.cfg.Format, batch.Errors)
		if err != nil {
			return result, err
		}
		if err := r.put(ctx, logger, r.cfg.ErrorBucket, paths.Errors, body); err != nil {
			return result, err
		}
		result.OutputFiles = append(result.OutputFiles, r.store.Location(r.cfg.ErrorBucket, paths.Errors))
	}
	result.ErrorRecords = batch.ErrorCount

	if r.cfg.Settings.ArchiveOriginal {
		body, err := EncodeRaw(r.cfg.Format, rows)
		if err != nil {
			return result, err
		}
		if err := r.put(ctx, logger, r.cfg.ProcessedBucket, paths.Archive, body); err != nil {
			return result, err
		}
	}

	return result, nil
}

// Location renders where an input object lives.
func (r *Runner) Location(ref model.ObjectRef) string {
	return r.store.Location(ref.Bucket, ref.Key)
}

func (r *Runner) put(ctx context.Context, logger *slog.Logger, bucket, key string, body []byte) error {
	contentType, err := ContentType(r.cfg.Format)
	if err != nil {
		return err
	}
	err = withRetry(ctx, r.cfg.Retry, logger, "write "+key, func() error {
		return r.store.Put(ctx, bucket, key, body, contentType)
	})
	if err != nil {
		return err
	}
	logger.Debug("Wrote output", "location", r.store.Location(bucket, key), "bytes", len(body))
	return nil
}

func recordBatchMetrics(batch model.BatchResult) {
	metrics.RecordsTotal.WithLabelValues("valid").Add(float64(batch.ValidCount))
	metrics.RecordsTotal.WithLabelValues("invalid").Add(float64(batch.ErrorCount))
	for _, e := range batch.Errors {
		metrics.RejectionsTotal.WithLabelValues(ReasonClass(e.Reason)).Inc()
	}
}

// ProcessObjects fans out over refs with at most cfg.Workers in flight. A
// failing object is counted and logged; it never stops the others.
func (r *Runner) ProcessObjects(ctx context.Context, refs []model.ObjectRef) (model.Summary, []model.FileResult) {
	results := make([]model.FileResult, len(refs))

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, ref := range refs {
		g.Go(func() error {
			results[i], _ = r.ProcessObject(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()

	summary := model.Summary{OutputFiles: []string{}}
	for _, res := range results {
		summary.Add(res)
	}
	return summary, results
}

// RefsFromS3Event extracts object references from an S3 notification,
// preferring the URL-decoded key.
func RefsFromS3Event(evt events.S3Event) []model.ObjectRef {
	refs := make([]model.ObjectRef, 0, len(evt.Records))
	for _, rec := range evt.Records {
		key := rec.S3.Object.URLDecodedKey
		if key == "" {
			key = rec.S3.Object.Key
		}
		refs = append(refs, model.ObjectRef{Bucket: rec.S3.Bucket.Name, Key: key})
	}
	return refs
}

// HandleS3Event processes every object in the event and renders the
// Lambda-style response with the run statistics.
func (r *Runner) HandleS3Event(ctx context.Context, evt events.S3Event) model.HandlerResponse {
	r.logger.Info("Received event", "records", len(evt.Records))

	summary, _ := r.ProcessObjects(ctx, RefsFromS3Event(evt))

	resp := SuccessResponse(summary, r.now())
	r.logger.Info("🏁 Processing completed", "body", resp.Body)
	return resp
}

// SuccessResponse renders a 200 response carrying the summary.
func SuccessResponse(summary model.Summary, now time.Time) model.HandlerResponse {
	return renderResponse(200, map[string]interface{}{
		"message":    "Processing completed",
		"statistics": summary,
		"timestamp":  now.UTC().Format(ProcessedAtLayout),
	})
}

// ErrorResponse renders a 500 response for failures outside any single file.
func ErrorResponse(err error, now time.Time) model.HandlerResponse {
	return renderResponse(500, map[string]interface{}{
		"error":     err.Error(),
		"timestamp": now.UTC().Format(ProcessedAtLayout),
	})
}

func renderResponse(status int, body map[string]interface{}) model.HandlerResponse {
	b, err := json.Marshal(body)
	if err != nil {
		return model.HandlerResponse{StatusCode: 500, Body: fmt.Sprintf(`{"error":%q}`, err.Error())}
	}
	return model.HandlerResponse{StatusCode: status, Body: string(b)}
}

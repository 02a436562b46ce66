package model

import "time"

// BatchResult holds both output collections of one batch pass and their sizes.
type BatchResult struct {
	Valid      []InsuranceRecord `json:"valid"`
	Errors     []ErrorRecord     `json:"errors"`
	ValidCount int               `json:"valid_count"`
	ErrorCount int               `json:"error_count"`
}

// ObjectRef points at one input object.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// FileResult is the outcome of processing a single input object. On failure
// the counts and OutputFiles cover only the outputs written before the error.
type FileResult struct {
	Source       ObjectRef     `json:"source"`
	TotalRecords int           `json:"total_records"`
	ValidRecords int           `json:"valid_records"`
	ErrorRecords int           `json:"error_records"`
	OutputFiles  []string      `json:"output_files"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
}

// Summary aggregates FileResults for one invocation.
type Summary struct {
	TotalRecords     int      `json:"total_records"`
	ProcessedRecords int      `json:"processed_records"`
	ErrorRecords     int      `json:"error_records"`
	InputFiles       int      `json:"input_files"`
	FailedFiles      int      `json:"failed_files"`
	OutputFiles      []string `json:"output_files"`
}

// Add folds one file result into the summary. A failed file still
// contributes whatever it wrote before failing.
func (s *Summary) Add(r FileResult) {
	s.InputFiles++
	s.TotalRecords += r.TotalRecords
	if r.Error != "" {
		s.FailedFiles++
	}
	s.ProcessedRecords += r.ValidRecords
	s.ErrorRecords += r.ErrorRecords
	s.OutputFiles = append(s.OutputFiles, r.OutputFiles...)
}

// HandlerResponse is the Lambda-style response envelope.
type HandlerResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Settings are runtime switches fetched from the secret store.
type Settings struct {
	ArchiveOriginal bool `json:"archive_original"`
}

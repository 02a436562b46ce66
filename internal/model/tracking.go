package model

import "time"

// Job kinds
const (
	JobKindBatch   = "batch"
	JobKindObjects = "objects"
)

// Job statuses
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job is one tracked run of the pipeline, from the API or the CLI.
type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Stats     *Summary  `json:"stats,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobError is an error recorded against a job.
type JobError struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"job_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

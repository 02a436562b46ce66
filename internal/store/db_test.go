package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-data-pipeline/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_JobLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveJob(ctx, model.Job{ID: "job-1", Kind: model.JobKindObjects, Source: "raw/insurance.csv"}))

	job, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobPending, job.Status)
	assert.Equal(t, "raw/insurance.csv", job.Source)
	assert.Nil(t, job.Stats)

	require.NoError(t, s.UpdateJobStatus(ctx, "job-1", model.JobCompleted))
	require.NoError(t, s.SaveJobStats(ctx, "job-1", model.Summary{
		TotalRecords: 3, ProcessedRecords: 2, ErrorRecords: 1, InputFiles: 1,
		OutputFiles: []string{"s3://processed/a.parquet"},
	}))

	job, err = s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, job.Status)
	require.NotNil(t, job.Stats)
	assert.Equal(t, 2, job.Stats.ProcessedRecords)
	assert.Equal(t, []string{"s3://processed/a.parquet"}, job.Stats.OutputFiles)
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	jobs, err := s.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	require.NoError(t, s.SaveJob(ctx, model.Job{ID: "a", Kind: model.JobKindBatch}))
	require.NoError(t, s.SaveJob(ctx, model.Job{ID: "b", Kind: model.JobKindBatch, Status: model.JobRunning}))

	jobs, err = s.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	ids := []string{jobs[0].ID, jobs[1].ID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.SaveJob(ctx, model.Job{ID: "job-1", Kind: model.JobKindObjects}))

	require.NoError(t, s.SaveJobError(ctx, "job-1", errors.New("first")))
	require.NoError(t, s.SaveJobError(ctx, "job-1", nil))
	require.NoError(t, s.SaveJobError(ctx, "job-1", errors.New("second")))

	errs, err := s.GetJobErrors(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "first", errs[0].Message)
	assert.Equal(t, "second", errs[1].Message)
}

func TestStore_UnknownJob(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.GetJob(ctx, "nope")
	require.ErrorIs(t, err, ErrJobNotFound)

	require.ErrorIs(t, s.UpdateJobStatus(ctx, "nope", model.JobFailed), ErrJobNotFound)
	require.ErrorIs(t, s.SaveJobStats(ctx, "nope", model.Summary{}), ErrJobNotFound)
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-data-pipeline/internal/model"
)

func TestProcessBatch_SplitsAndPreservesOrder(t *testing.T) {
	p := newTestProcessor()

	rows := make([]model.RawRecord, 5)
	for i := range rows {
		rows[i] = validRecord()
		rows[i]["children"] = i
	}
	rows[1]["age"] = 150
	delete(rows[3], "sex")

	result := p.ProcessBatch(rows)

	require.Len(t, result.Valid, 3)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.ValidCount)
	assert.Equal(t, 2, result.ErrorCount)

	assert.Equal(t, []int{0, 2, 4}, []int{
		result.Valid[0].Children, result.Valid[1].Children, result.Valid[2].Children,
	})

	assert.Equal(t, 1, result.Errors[0].Row)
	assert.Equal(t, "validation_errors:age_above_max", result.Errors[0].Reason)
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Equal(t, "missing_fields:sex", result.Errors[1].Reason)

	fields := result.Errors[0].Fields()
	assert.Equal(t, 150, fields["age"])
	assert.Equal(t, "Male", fields["sex"])
	assert.Equal(t, 1, fields[model.RowField])
	assert.Equal(t, "validation_errors:age_above_max", fields[model.ErrorField])
	// the input row is not mutated
	assert.NotContains(t, rows[1], model.ErrorField)
}

func TestProcessBatch_Empty(t *testing.T) {
	result := newTestProcessor().ProcessBatch(nil)

	assert.NotNil(t, result.Valid)
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Zero(t, result.ValidCount)
	assert.Zero(t, result.ErrorCount)
}

func TestProcessBatch_ReuseDoesNotLeakCounts(t *testing.T) {
	p := newTestProcessor()
	bad := validRecord()
	bad["smoker"] = "sometimes"

	first := p.ProcessBatch([]model.RawRecord{validRecord(), bad})
	second := p.ProcessBatch([]model.RawRecord{validRecord()})

	assert.Equal(t, 1, first.ValidCount)
	assert.Equal(t, 1, first.ErrorCount)
	assert.Equal(t, 1, second.ValidCount)
	assert.Equal(t, 0, second.ErrorCount)
}

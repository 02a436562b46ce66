package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-data-pipeline/internal/model"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC)

func newTestProcessor(opts ...Option) *Processor {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewProcessor(opts...)
}

func validRecord() model.RawRecord {
	return model.RawRecord{
		"age":      35,
		"sex":      "Male",
		"bmi":      31.5,
		"children": 2,
		"smoker":   "No",
		"region":   "Northeast",
		"charges":  5000.1234,
	}
}

func TestProcessRecord_Valid(t *testing.T) {
	p := newTestProcessor()

	outcome := p.ProcessRecord(validRecord())

	require.True(t, outcome.Valid())
	assert.Empty(t, outcome.Reason)
	rec := outcome.Record
	assert.Equal(t, 35, rec.Age)
	assert.Equal(t, "male", rec.Sex)
	assert.Equal(t, 31.5, rec.BMI)
	assert.Equal(t, 2, rec.Children)
	assert.Equal(t, "no", rec.Smoker)
	assert.Equal(t, "northeast", rec.Region)
	assert.Equal(t, 5000.12, rec.Charges)
	assert.Equal(t, model.BMICategoryObese, rec.BMICategory)
	assert.Equal(t, "2024-01-02T03:04:05.123456Z", rec.ProcessedAt)
	assert.Equal(t, "proc_1704164645", rec.ProcessingID)
	assert.Nil(t, rec.Extra)
}

func TestProcessRecord_StringInputs(t *testing.T) {
	p := newTestProcessor()
	rec := model.RawRecord{
		"age":      "35.9",
		"sex":      "  FEMALE ",
		"bmi":      "24.987",
		"children": "0",
		"smoker":   "Yes",
		"region":   "southwest ",
		"charges":  "1234.567",
		"policy":   "P-1",
	}

	outcome := p.ProcessRecord(rec)

	require.True(t, outcome.Valid(), outcome.Reason)
	assert.Equal(t, 35, outcome.Record.Age)
	assert.Equal(t, "female", outcome.Record.Sex)
	assert.Equal(t, 24.99, outcome.Record.BMI)
	assert.Equal(t, 0, outcome.Record.Children)
	assert.Equal(t, "southwest", outcome.Record.Region)
	assert.Equal(t, 1234.57, outcome.Record.Charges)
	// category comes from the unrounded value
	assert.Equal(t, model.BMICategoryNormal, outcome.Record.BMICategory)
	assert.Equal(t, map[string]any{"policy": "P-1"}, outcome.Record.Extra)
}

func TestProcessRecord_MissingFields(t *testing.T) {
	p := newTestProcessor()

	rec := validRecord()
	delete(rec, "region")
	outcome := p.ProcessRecord(rec)
	require.False(t, outcome.Valid())
	assert.Equal(t, "missing_fields:region", outcome.Reason)

	// missing fields win over any value errors
	rec = model.RawRecord{"age": 500, "sex": "robot", "smoker": "maybe"}
	outcome = p.ProcessRecord(rec)
	require.False(t, outcome.Valid())
	assert.Equal(t, "missing_fields:bmi,children,region,charges", outcome.Reason)
}

func TestProcessRecord_AccumulatesValidationErrors(t *testing.T) {
	p := newTestProcessor()
	rec := validRecord()
	rec["age"] = 150
	rec["sex"] = "unknown"
	rec["bmi"] = "heavy"
	rec["children"] = -1
	rec["region"] = nil

	outcome := p.ProcessRecord(rec)

	require.False(t, outcome.Valid())
	assert.Equal(t,
		"validation_errors:age_above_max,sex_invalid_value,bmi_invalid_type,children_below_min,region_invalid_value",
		outcome.Reason)
	assert.Nil(t, outcome.Record)
}

func TestProcessRecord_AgeAboveMax(t *testing.T) {
	rec := validRecord()
	rec["age"] = 150

	outcome := newTestProcessor().ProcessRecord(rec)

	require.False(t, outcome.Valid())
	assert.True(t, strings.HasPrefix(outcome.Reason, ReasonValidationErrors+":"))
	assert.Contains(t, outcome.Reason, "age_above_max")
}

func TestProcessRecord_NonNumericCharges(t *testing.T) {
	rec := validRecord()
	rec["charges"] = "n/a"

	outcome := newTestProcessor().ProcessRecord(rec)

	require.False(t, outcome.Valid())
	assert.Equal(t, "validation_errors:charges_invalid_type", outcome.Reason)
}

func TestProcessRecord_BMIBoundaries(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{25.00, model.BMICategoryOverweight},
		{24.99, model.BMICategoryNormal},
		{30.00, model.BMICategoryObese},
		{29.999999, model.BMICategoryOverweight},
		{10.0, model.BMICategoryNormal},
	}
	p := newTestProcessor()
	for _, tt := range tests {
		rec := validRecord()
		rec["bmi"] = tt.bmi
		outcome := p.ProcessRecord(rec)
		require.True(t, outcome.Valid(), outcome.Reason)
		assert.Equal(t, tt.want, outcome.Record.BMICategory, "bmi %v", tt.bmi)
	}
}

func TestProcessRecord_Idempotent(t *testing.T) {
	p := newTestProcessor()

	first := p.ProcessRecord(validRecord())
	second := p.ProcessRecord(validRecord())

	require.True(t, first.Valid())
	assert.Equal(t, *first.Record, *second.Record)
}

func TestProcessRecord_UUIDProcessingID(t *testing.T) {
	p := newTestProcessor(WithProcessingID(UUIDProcessingID))

	first := p.ProcessRecord(validRecord())
	second := p.ProcessRecord(validRecord())

	require.True(t, first.Valid())
	assert.True(t, strings.HasPrefix(first.Record.ProcessingID, "proc_"))
	assert.NotEqual(t, first.Record.ProcessingID, second.Record.ProcessingID)
}

func TestProcessRecord_RuleOverrides(t *testing.T) {
	p := newTestProcessor(WithRules(map[string]model.FieldRule{
		"age":    {Kind: model.RuleInt, Min: model.Bound(40)},
		"region": {Kind: model.RuleEnum, Allowed: []string{"NorthEast"}},
	}))

	outcome := p.ProcessRecord(validRecord())
	require.False(t, outcome.Valid())
	assert.Equal(t, "validation_errors:age_below_min", outcome.Reason)
}

func TestProcessingIDByMode(t *testing.T) {
	assert.Equal(t, "proc_1704164645", ProcessingIDByMode("timestamp")(fixedNow))
	assert.Equal(t, "proc_1704164645", ProcessingIDByMode("")(fixedNow))
	assert.NotEqual(t, "proc_1704164645", ProcessingIDByMode("uuid")(fixedNow))
}

func TestReasonClass(t *testing.T) {
	assert.Equal(t, ReasonMissingFields, ReasonClass("missing_fields:age"))
	assert.Equal(t, ReasonValidationErrors, ReasonClass("validation_errors:age_above_max"))
}

func TestRound2_TiesToEven(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{5000.125, 5000.12},
		{5000.375, 5000.38},
		{16884.924, 16884.92},
		{1725.5523, 1725.55},
		{0.125, 0.12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, round2(tt.in), "round2(%v)", tt.in)
	}

	rec := validRecord()
	rec[model.FieldCharges] = 5000.125
	outcome := newTestProcessor().ProcessRecord(rec)
	require.True(t, outcome.Valid())
	assert.Equal(t, 5000.12, outcome.Record.Charges)
}

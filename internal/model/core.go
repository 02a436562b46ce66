package model

import (
	"encoding/json"
	"maps"
)

// RawRecord is a schema-agnostic row as it arrives from a CSV, JSON or parquet source.
type RawRecord map[string]any

// Clone returns a shallow copy of the record.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	maps.Copy(out, r)
	return out
}

// BMI brackets
const (
	BMICategoryNormal     = "normal"
	BMICategoryOverweight = "overweight"
	BMICategoryObese      = "obese"
)

// InsuranceRecord is a validated row with coerced types and derived fields.
type InsuranceRecord struct {
	Age          int     `json:"age"`
	Sex          string  `json:"sex"`
	BMI          float64 `json:"bmi"`
	Children     int     `json:"children"`
	Smoker       string  `json:"smoker"`
	Region       string  `json:"region"`
	Charges      float64 `json:"charges"`
	BMICategory  string  `json:"bmi_category"`
	ProcessedAt  string  `json:"processed_at"`
	ProcessingID string  `json:"processing_id"`

	// Extra holds fields outside the insurance schema, passed through untouched.
	Extra map[string]any `json:"-"`
}

// Fields flattens the record into a single map, extra fields first so that
// schema fields always win on a name clash.
func (r InsuranceRecord) Fields() map[string]any {
	out := make(map[string]any, len(r.Extra)+10)
	maps.Copy(out, r.Extra)
	out["age"] = r.Age
	out["sex"] = r.Sex
	out["bmi"] = r.BMI
	out["children"] = r.Children
	out["smoker"] = r.Smoker
	out["region"] = r.Region
	out["charges"] = r.Charges
	out["bmi_category"] = r.BMICategory
	out["processed_at"] = r.ProcessedAt
	out["processing_id"] = r.ProcessingID
	return out
}

func (r InsuranceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

// ErrorRecord is a rejected row: the original fields plus the reason and its
// 0-based position in the input batch.
type ErrorRecord struct {
	Row      int       `json:"_row"`
	Reason   string    `json:"_error"`
	Original RawRecord `json:"-"`
}

// Error record column names
const (
	ErrorField = "_error"
	RowField   = "_row"
)

// Fields flattens the error record into the original row with _error and _row added.
func (e ErrorRecord) Fields() map[string]any {
	out := make(map[string]any, len(e.Original)+2)
	maps.Copy(out, e.Original)
	out[ErrorField] = e.Reason
	out[RowField] = e.Row
	return out
}

func (e ErrorRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields())
}

// Outcome is the verdict for one record: a transformed record when valid,
// a reason code otherwise.
type Outcome struct {
	Record *InsuranceRecord `json:"record,omitempty"`
	Reason string           `json:"error,omitempty"`
}

// Valid reports whether the outcome carries a transformed record.
func (o Outcome) Valid() bool {
	return o.Record != nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	return json.Marshal(struct {
		Valid bool `json:"valid"`
		alias
	}{Valid: o.Valid(), alias: alias(o)})
}

package pipeline

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/pkg/utils"
)

// ProcessedAtLayout is ISO-8601 in UTC with a literal Z suffix.
const ProcessedAtLayout = "2006-01-02T15:04:05.999999Z"

// ProcessingIDFunc derives a processing identifier from the transformation instant.
type ProcessingIDFunc func(now time.Time) string

// TimestampProcessingID is second-resolution: records transformed within the
// same second share an ID.
func TimestampProcessingID(now time.Time) string {
	return "proc_" + strconv.FormatInt(now.Unix(), 10)
}

// UUIDProcessingID is unique per call.
func UUIDProcessingID(time.Time) string {
	return "proc_" + uuid.NewString()
}

// ProcessingIDByMode maps a configured mode to a generator.
func ProcessingIDByMode(mode string) ProcessingIDFunc {
	if mode == "uuid" {
		return UUIDProcessingID
	}
	return TimestampProcessingID
}

// BMICategory buckets a BMI value; each bracket includes its lower bound.
func BMICategory(bmi float64) string {
	switch {
	case bmi >= 30:
		return model.BMICategoryObese
	case bmi >= 25:
		return model.BMICategoryOverweight
	default:
		return model.BMICategoryNormal
	}
}

// round2 rounds to cents, ties to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// transformRecord builds the typed record. It must only be called on records
// that passed validateRecord, which guarantees the numeric coercions succeed.
func (p *Processor) transformRecord(rec model.RawRecord) model.InsuranceRecord {
	age, _ := utils.ToFloat(rec[model.FieldAge])
	bmi, _ := utils.ToFloat(rec[model.FieldBMI])
	children, _ := utils.ToFloat(rec[model.FieldChildren])
	charges, _ := utils.ToFloat(rec[model.FieldCharges])

	now := p.now().UTC()
	out := model.InsuranceRecord{
		Age:          int(age),
		Sex:          utils.Normalize(rec[model.FieldSex]),
		BMI:          round2(bmi),
		Children:     int(children),
		Smoker:       utils.Normalize(rec[model.FieldSmoker]),
		Region:       utils.Normalize(rec[model.FieldRegion]),
		Charges:      round2(charges),
		BMICategory:  BMICategory(bmi),
		ProcessedAt:  now.Format(ProcessedAtLayout),
		ProcessingID: p.newID(now),
	}

	for k, v := range rec {
		if p.isRequired(k) {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = v
	}
	return out
}

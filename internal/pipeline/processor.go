package pipeline

import (
	"slices"
	"time"

	"insurance-data-pipeline/internal/model"
)

// Processor validates and transforms insurance records. It holds only
// configuration, so one instance may be shared across goroutines and batches.
type Processor struct {
	rules    map[string]model.FieldRule
	required []string
	now      func() time.Time
	newID    ProcessingIDFunc
}

// Option configures a Processor.
type Option func(*Processor)

// WithRules merges overrides over the default rule set.
func WithRules(overrides map[string]model.FieldRule) Option {
	return func(p *Processor) {
		for field, rule := range overrides {
			p.rules[field] = rule
		}
	}
}

// WithClock replaces the wall clock used for processed_at and processing_id.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithProcessingID replaces the processing_id generator.
func WithProcessingID(fn ProcessingIDFunc) Option {
	return func(p *Processor) { p.newID = fn }
}

// NewProcessor returns a processor with the default insurance rules.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		rules:    model.DefaultRules(),
		required: slices.Clone(model.RequiredFields),
		now:      time.Now,
		newID:    TimestampProcessingID,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.rules = normalizeRules(p.rules)
	return p
}

func (p *Processor) isRequired(field string) bool {
	return slices.Contains(p.required, field)
}

// ProcessRecord validates rec and, when valid, returns its transformed form.
func (p *Processor) ProcessRecord(rec model.RawRecord) model.Outcome {
	if reason := p.validateRecord(rec); reason != "" {
		return model.Outcome{Reason: reason}
	}
	transformed := p.transformRecord(rec)
	return model.Outcome{Record: &transformed}
}

// ProcessBatch classifies rows in input order. A failing row never affects
// the rows after it; both result slices are non-nil even when empty.
func (p *Processor) ProcessBatch(rows []model.RawRecord) model.BatchResult {
	result := model.BatchResult{
		Valid:  make([]model.InsuranceRecord, 0, len(rows)),
		Errors: make([]model.ErrorRecord, 0),
	}

	for idx, row := range rows {
		outcome := p.ProcessRecord(row)
		if outcome.Valid() {
			result.Valid = append(result.Valid, *outcome.Record)
			continue
		}
		result.Errors = append(result.Errors, model.ErrorRecord{
			Row:      idx,
			Reason:   outcome.Reason,
			Original: row.Clone(),
		})
	}

	result.ValidCount = len(result.Valid)
	result.ErrorCount = len(result.Errors)
	return result
}

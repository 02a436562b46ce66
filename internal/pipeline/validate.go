package pipeline

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/pkg/utils"
)

// Reason prefixes for rejected records.
const (
	ReasonMissingFields    = "missing_fields"
	ReasonValidationErrors = "validation_errors"
)

// ValidateField checks one value against the rule configured for field.
// Fields without a rule always pass.
func (p *Processor) ValidateField(field string, raw any) (bool, string) {
	rule, ok := p.rules[field]
	if !ok {
		return true, ""
	}

	if rule.Numeric() {
		val, err := utils.ToFloat(raw)
		if err != nil {
			return false, field + "_invalid_type"
		}
		if rule.Kind == model.RuleInt {
			val = math.Trunc(val)
		}
		if rule.Min != nil && val < *rule.Min {
			return false, field + "_below_min"
		}
		if rule.Max != nil && val > *rule.Max {
			return false, field + "_above_max"
		}
		return true, ""
	}

	if rule.Kind == model.RuleEnum {
		if !slices.Contains(rule.Allowed, utils.Normalize(raw)) {
			return false, field + "_invalid_value"
		}
	}
	return true, ""
}

// validateRecord runs the schema check and then every field rule. Missing
// fields stop evaluation immediately; value errors are all collected.
func (p *Processor) validateRecord(rec model.RawRecord) string {
	var missing []string
	for _, field := range p.required {
		if _, ok := rec[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Sprintf("%s:%s", ReasonMissingFields, strings.Join(missing, ","))
	}

	var errs []string
	for _, field := range p.required {
		if ok, reason := p.ValidateField(field, rec[field]); !ok {
			errs = append(errs, reason)
		}
	}
	if len(errs) > 0 {
		return fmt.Sprintf("%s:%s", ReasonValidationErrors, strings.Join(errs, ","))
	}
	return ""
}

// ReasonClass returns the class prefix of a reason code.
func ReasonClass(reason string) string {
	class, _, _ := strings.Cut(reason, ":")
	return class
}

// normalizeRules lowercases enum members so membership is case-insensitive
// regardless of how the rule was configured.
func normalizeRules(rules map[string]model.FieldRule) map[string]model.FieldRule {
	out := make(map[string]model.FieldRule, len(rules))
	for field, rule := range rules {
		if rule.Kind == model.RuleEnum {
			allowed := make([]string, len(rule.Allowed))
			for i, a := range rule.Allowed {
				allowed[i] = strings.ToLower(strings.TrimSpace(a))
			}
			rule.Allowed = allowed
		}
		out[field] = rule
	}
	return out
}

package model

// RuleKind selects how a field value is checked.
type RuleKind string

const (
	RuleInt   RuleKind = "int"
	RuleFloat RuleKind = "float"
	RuleEnum  RuleKind = "enum"
)

// FieldRule is a per-field constraint. Numeric kinds use Min/Max (either may
// be nil for an open bound); enum uses Allowed.
type FieldRule struct {
	Kind    RuleKind `yaml:"kind" json:"kind"`
	Min     *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Allowed []string `yaml:"allowed,omitempty" json:"allowed,omitempty"`
}

// Numeric reports whether the rule coerces values to a number.
func (r FieldRule) Numeric() bool {
	return r.Kind == RuleInt || r.Kind == RuleFloat
}

// Bound is a helper for building rules with literal limits.
func Bound(v float64) *float64 {
	return &v
}

// Insurance schema field names
const (
	FieldAge      = "age"
	FieldSex      = "sex"
	FieldBMI      = "bmi"
	FieldChildren = "children"
	FieldSmoker   = "smoker"
	FieldRegion   = "region"
	FieldCharges  = "charges"
)

// RequiredFields lists the schema in the order used for reporting.
var RequiredFields = []string{
	FieldAge, FieldSex, FieldBMI, FieldChildren, FieldSmoker, FieldRegion, FieldCharges,
}

// DefaultRules returns a fresh copy of the built-in rule set.
func DefaultRules() map[string]FieldRule {
	return map[string]FieldRule{
		FieldAge:      {Kind: RuleInt, Min: Bound(18), Max: Bound(100)},
		FieldBMI:      {Kind: RuleFloat, Min: Bound(10.0), Max: Bound(80.0)},
		FieldChildren: {Kind: RuleInt, Min: Bound(0), Max: Bound(10)},
		FieldCharges:  {Kind: RuleFloat},
		FieldSex:      {Kind: RuleEnum, Allowed: []string{"male", "female"}},
		FieldSmoker:   {Kind: RuleEnum, Allowed: []string{"yes", "no"}},
		FieldRegion:   {Kind: RuleEnum, Allowed: []string{"northeast", "northwest", "southeast", "southwest"}},
	}
}

package scoring

import (
	"errors"
	"fmt"
	"sort"
)

// PolicyKind names one of the penalty shapes.
type PolicyKind string

const (
	KindFlatEscalating PolicyKind = "flat_escalating"
	KindPerMistake     PolicyKind = "per_mistake"
	KindProportional   PolicyKind = "proportional"
	KindAttemptBucket  PolicyKind = "attempt_bucket"
	KindEditDistance   PolicyKind = "edit_distance"
	KindItemCredit     PolicyKind = "item_credit"
)

var ErrInvalidPolicy = errors.New("invalid penalty policy")

// PolicySpec carries the constants of a penalty policy. Only the fields used
// by Kind are read.
type PolicySpec struct {
	Kind PolicyKind `yaml:"kind" json:"kind"`

	// Tiers are escalating penalties by mistake count (flat_escalating) or by
	// extra attempt (item_credit).
	Tiers []float64 `yaml:"tiers,omitempty" json:"tiers,omitempty"`

	// Amount is the per_mistake cost of each attempt beyond the first.
	Amount float64 `yaml:"amount,omitempty" json:"amount,omitempty"`

	// Rates are proportional reductions of the running total, as fractions,
	// indexed by mistake count.
	Rates []float64 `yaml:"rates,omitempty" json:"rates,omitempty"`

	// Buckets maps an exact attempt count to a penalty (attempt_bucket).
	Buckets map[int]float64 `yaml:"buckets,omitempty" json:"buckets,omitempty"`

	// Unresolved is what a revealed item costs: points for attempt_bucket,
	// a fraction for proportional.
	Unresolved float64 `yaml:"unresolved,omitempty" json:"unresolved,omitempty"`

	// Typo, Wrong and TypoMax configure edit_distance grading.
	Typo    float64 `yaml:"typo,omitempty" json:"typo,omitempty"`
	Wrong   float64 `yaml:"wrong,omitempty" json:"wrong,omitempty"`
	TypoMax int     `yaml:"typo_max,omitempty" json:"typo_max,omitempty"`
}

// Policy maps final item states to penalty points. Penalties returns one
// value per item, in item order; the exercise score is 100 minus their sum.
type Policy interface {
	Kind() PolicyKind
	Penalties(items []Item) []float64
}

// Accruer is implemented by policies that charge at check time rather than
// from the item's final state.
type Accruer interface {
	Accrue(submission, answer string) float64
}

type policyFactory func(PolicySpec) (Policy, error)

var policies = map[PolicyKind]policyFactory{
	KindFlatEscalating: newFlatEscalating,
	KindPerMistake:     newPerMistake,
	KindProportional:   newProportional,
	KindAttemptBucket:  newAttemptBucket,
	KindEditDistance:   newEditDistance,
	KindItemCredit:     newItemCredit,
}

// NewPolicy validates spec and builds the matching policy.
func NewPolicy(spec PolicySpec) (Policy, error) {
	factory, ok := policies[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q, want one of %v", ErrInvalidPolicy, spec.Kind, Kinds())
	}
	return factory(spec)
}

// Kinds lists the registered policy kinds in name order.
func Kinds() []PolicyKind {
	kinds := make([]PolicyKind, 0, len(policies))
	for k := range policies {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func invalid(kind PolicyKind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidPolicy, kind, fmt.Sprintf(format, args...))
}

func checkEscalating(kind PolicyKind, field string, values []float64) error {
	if len(values) == 0 {
		return invalid(kind, "%s must not be empty", field)
	}
	for i, v := range values {
		if v < 0 {
			return invalid(kind, "%s[%d] is negative", field, i)
		}
		if i > 0 && v < values[i-1] {
			return invalid(kind, "%s must not decrease", field)
		}
	}
	return nil
}

// tier picks values[n-1], holding at the last value once n runs past it.
func tier(values []float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if n > len(values) {
		n = len(values)
	}
	return values[n-1]
}

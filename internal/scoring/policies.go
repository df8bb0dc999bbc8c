package scoring

import (
	"math"
	"sort"
)

// flatEscalating charges each item once, by how many mistakes it took.
// A revealed item always pays the top tier.
type flatEscalating struct {
	tiers []float64
}

func newFlatEscalating(spec PolicySpec) (Policy, error) {
	if err := checkEscalating(spec.Kind, "tiers", spec.Tiers); err != nil {
		return nil, err
	}
	return flatEscalating{tiers: append([]float64(nil), spec.Tiers...)}, nil
}

func (flatEscalating) Kind() PolicyKind { return KindFlatEscalating }

func (p flatEscalating) Penalties(items []Item) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		if it.Outcome() == OutcomeRevealed {
			out[i] = p.tiers[len(p.tiers)-1]
			continue
		}
		out[i] = tier(p.tiers, it.Mistakes())
	}
	return out
}

// perMistake charges a fixed amount for every attempt beyond the first.
type perMistake struct {
	amount float64
}

func newPerMistake(spec PolicySpec) (Policy, error) {
	if spec.Amount < 0 {
		return nil, invalid(spec.Kind, "amount is negative")
	}
	return perMistake{amount: spec.Amount}, nil
}

func (perMistake) Kind() PolicyKind { return KindPerMistake }

func (p perMistake) Penalties(items []Item) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		if it.AttemptCount > 1 {
			out[i] = p.amount * float64(it.AttemptCount-1)
		}
	}
	return out
}

// proportional takes a share of the running total for each item with
// mistakes, walking items in order so reductions compound.
type proportional struct {
	rates      []float64
	unresolved float64
}

func newProportional(spec PolicySpec) (Policy, error) {
	if err := checkEscalating(spec.Kind, "rates", spec.Rates); err != nil {
		return nil, err
	}
	top := spec.Rates[len(spec.Rates)-1]
	if top > 1 {
		return nil, invalid(spec.Kind, "rates must be fractions")
	}
	if spec.Unresolved < top || spec.Unresolved > 1 {
		return nil, invalid(spec.Kind, "unresolved rate must lie between the top rate and 1")
	}
	return proportional{rates: append([]float64(nil), spec.Rates...), unresolved: spec.Unresolved}, nil
}

func (proportional) Kind() PolicyKind { return KindProportional }

func (p proportional) Penalties(items []Item) []float64 {
	out := make([]float64, len(items))
	total := maxScore
	for i, it := range items {
		var rate float64
		switch it.Outcome() {
		case OutcomeCorrect:
			rate = tier(p.rates, it.Mistakes())
		default:
			rate = p.unresolved
		}
		out[i] = total * rate
		total -= out[i]
	}
	return out
}

// attemptBucket charges correct items by their exact attempt count and
// items that were never answered correctly a fixed loss.
type attemptBucket struct {
	buckets    map[int]float64
	top        int
	unresolved float64
}

func newAttemptBucket(spec PolicySpec) (Policy, error) {
	if len(spec.Buckets) == 0 {
		return nil, invalid(spec.Kind, "buckets must not be empty")
	}
	attempts := make([]int, 0, len(spec.Buckets))
	for n := range spec.Buckets {
		if n < 2 {
			return nil, invalid(spec.Kind, "bucket %d: attempt counts start at 2", n)
		}
		attempts = append(attempts, n)
	}
	sort.Ints(attempts)

	values := make([]float64, len(attempts))
	for i, n := range attempts {
		values[i] = spec.Buckets[n]
	}
	if err := checkEscalating(spec.Kind, "buckets", values); err != nil {
		return nil, err
	}
	if spec.Unresolved < values[len(values)-1] {
		return nil, invalid(spec.Kind, "unresolved penalty is below the largest bucket")
	}

	buckets := make(map[int]float64, len(spec.Buckets))
	for n, v := range spec.Buckets {
		buckets[n] = v
	}
	return attemptBucket{buckets: buckets, top: attempts[len(attempts)-1], unresolved: spec.Unresolved}, nil
}

func (attemptBucket) Kind() PolicyKind { return KindAttemptBucket }

func (p attemptBucket) Penalties(items []Item) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		if it.Outcome() != OutcomeCorrect {
			out[i] = p.unresolved
			continue
		}
		out[i] = p.bucket(it.AttemptCount)
	}
	return out
}

// bucket returns the penalty for n attempts. Gaps between configured counts
// take the nearest lower bucket.
func (p attemptBucket) bucket(n int) float64 {
	if n > p.top {
		n = p.top
	}
	for ; n >= 2; n-- {
		if v, ok := p.buckets[n]; ok {
			return v
		}
	}
	return 0
}

// editDistance charges at every check: near misses as typos, anything
// further as a wrong word. Charges are kept on the item.
type editDistance struct {
	typo    float64
	wrong   float64
	typoMax int
}

func newEditDistance(spec PolicySpec) (Policy, error) {
	p := editDistance{typo: spec.Typo, wrong: spec.Wrong, typoMax: spec.TypoMax}
	if p.typoMax == 0 {
		p.typoMax = 2
	}
	if p.typo < 0 || p.wrong < p.typo {
		return nil, invalid(spec.Kind, "need 0 <= typo <= wrong")
	}
	if p.typoMax < 0 {
		return nil, invalid(spec.Kind, "typo_max is negative")
	}
	return p, nil
}

func (editDistance) Kind() PolicyKind { return KindEditDistance }

// Accrue returns the charge for one failed check of submission.
func (p editDistance) Accrue(submission, answer string) float64 {
	d := Levenshtein(submission, answer)
	switch {
	case d == 0:
		return 0
	case d <= p.typoMax:
		return p.typo
	default:
		return p.wrong
	}
}

func (editDistance) Penalties(items []Item) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it.PenaltyAccrued
	}
	return out
}

// itemCredit splits the 100 points evenly across items. Correct items keep
// their share minus a tier by extra attempts, never below zero; revealed
// items earn nothing.
type itemCredit struct {
	tiers []float64
}

func newItemCredit(spec PolicySpec) (Policy, error) {
	if err := checkEscalating(spec.Kind, "tiers", spec.Tiers); err != nil {
		return nil, err
	}
	return itemCredit{tiers: append([]float64(nil), spec.Tiers...)}, nil
}

func (itemCredit) Kind() PolicyKind { return KindItemCredit }

func (p itemCredit) Penalties(items []Item) []float64 {
	out := make([]float64, len(items))
	if len(items) == 0 {
		return out
	}
	share := maxScore / float64(len(items))
	for i, it := range items {
		if it.Outcome() != OutcomeCorrect {
			out[i] = share
			continue
		}
		out[i] = math.Min(tier(p.tiers, it.Mistakes()), share)
	}
	return out
}

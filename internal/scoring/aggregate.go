package scoring

import (
	"errors"
	"math"
)

const maxScore = 100.0

// ExercisesPerPart is the number of exercises averaged for one lesson part.
const ExercisesPerPart = 3

var ErrIncompleteScores = errors.New("part average needs exactly 3 exercise scores")

// ExerciseScore is 100 minus the policy's penalties for items, clamped to
// [0, 100]. It reads nothing but items.
func ExerciseScore(items []Item, policy Policy) float64 {
	var total float64
	for _, p := range policy.Penalties(items) {
		total += p
	}
	return clamp(maxScore - total)
}

// Average returns the mean of exactly three exercise scores at full
// precision.
func Average(scores []float64) (float64, error) {
	if len(scores) != ExercisesPerPart {
		return 0, ErrIncompleteScores
	}
	return (scores[0] + scores[1] + scores[2]) / ExercisesPerPart, nil
}

// RoundForDisplay rounds v to one decimal place.
func RoundForDisplay(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > maxScore:
		return maxScore
	}
	return v
}

// PartProgress collects the exercise scores of one lesson part. Scores may
// arrive from a live run or be carried over from earlier screens.
type PartProgress struct {
	scores [ExercisesPerPart]float64
	have   [ExercisesPerPart]bool
}

// NewPartProgress seeds progress with scores already known, in exercise order.
func NewPartProgress(known ...float64) (*PartProgress, error) {
	if len(known) > ExercisesPerPart {
		return nil, ErrIncompleteScores
	}
	p := &PartProgress{}
	for i, s := range known {
		if err := p.Record(i, s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var ErrExerciseIndex = errors.New("exercise index out of range")

// Record stores the score of exercise index, replacing any earlier value.
func (p *PartProgress) Record(index int, score float64) error {
	if index < 0 || index >= ExercisesPerPart {
		return ErrExerciseIndex
	}
	p.scores[index] = clamp(score)
	p.have[index] = true
	return nil
}

// Next returns the first exercise without a score, or -1 when all are in.
func (p *PartProgress) Next() int {
	for i, ok := range p.have {
		if !ok {
			return i
		}
	}
	return -1
}

// Has reports whether exercise index has a score.
func (p *PartProgress) Has(index int) bool {
	return index >= 0 && index < ExercisesPerPart && p.have[index]
}

// Complete reports whether all three scores are present.
func (p *PartProgress) Complete() bool {
	return p.Next() < 0
}

// Scores returns the known scores in exercise order.
func (p *PartProgress) Scores() []float64 {
	out := make([]float64, 0, ExercisesPerPart)
	for i, ok := range p.have {
		if ok {
			out = append(out, p.scores[i])
		}
	}
	return out
}

// Average is the part average; it fails until every score is present.
func (p *PartProgress) Average() (float64, error) {
	if !p.Complete() {
		return 0, ErrIncompleteScores
	}
	return Average(p.scores[:])
}

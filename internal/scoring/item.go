package scoring

import "strings"

// ExerciseType identifies how an exercise presents its items and compares answers.
type ExerciseType string

const (
	TypeFillGap        ExerciseType = "fill_gap"
	TypeWordBank       ExerciseType = "word_bank"
	TypeMatch          ExerciseType = "match"
	TypeMultipleChoice ExerciseType = "multiple_choice"
	TypeTrueFalse      ExerciseType = "true_false"
	TypeCrossword      ExerciseType = "crossword"
)

// Valid reports whether t is a known exercise type.
func (t ExerciseType) Valid() bool {
	switch t {
	case TypeFillGap, TypeWordBank, TypeMatch, TypeMultipleChoice, TypeTrueFalse, TypeCrossword:
		return true
	}
	return false
}

// MatchMode returns the answer comparison used by this exercise type.
func (t ExerciseType) MatchMode() MatchMode {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse:
		return MatchExact
	}
	return MatchFold
}

// UsesPool reports whether items draw their answers from a shared word pool.
func (t ExerciseType) UsesPool() bool {
	return t == TypeWordBank || t == TypeMatch
}

// Deferred reports whether answers are graded together by a single check
// instead of immediately on submission.
func (t ExerciseType) Deferred() bool {
	return t == TypeCrossword
}

// MatchMode controls how a candidate answer is compared to the correct one.
type MatchMode int

const (
	// MatchFold compares trimmed answers case-insensitively.
	MatchFold MatchMode = iota
	// MatchExact compares trimmed answers byte for byte.
	MatchExact
)

// Equal reports whether candidate matches answer under m.
func (m MatchMode) Equal(candidate, answer string) bool {
	candidate = strings.TrimSpace(candidate)
	answer = strings.TrimSpace(answer)
	if m == MatchExact {
		return candidate == answer
	}
	return strings.EqualFold(candidate, answer)
}

// Outcome is the final status of an item.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeCorrect  Outcome = "correct"
	OutcomeRevealed Outcome = "revealed"
)

// Item is one answerable unit of an exercise: a gap, question, crossword
// entry or picture pairing.
type Item struct {
	ID             string   `json:"id"`
	Prompt         string   `json:"prompt,omitempty"`
	CorrectAnswer  string   `json:"-"`
	Options        []string `json:"options,omitempty"`
	Resolved       bool     `json:"resolved"`
	Revealed       bool     `json:"revealed"`
	AttemptCount   int      `json:"attempt_count"`
	LastSubmission *string  `json:"last_submission"`
	PenaltyAccrued float64  `json:"penalty_accrued"`
}

// Outcome reports the item's current status.
func (it Item) Outcome() Outcome {
	switch {
	case !it.Resolved:
		return OutcomePending
	case it.Revealed:
		return OutcomeRevealed
	default:
		return OutcomeCorrect
	}
}

// Mistakes returns the number of wrong submissions recorded for the item.
func (it Item) Mistakes() int {
	if it.Outcome() == OutcomeCorrect {
		return it.AttemptCount - 1
	}
	return it.AttemptCount
}

func (it *Item) record(submission string) {
	it.LastSubmission = &submission
}

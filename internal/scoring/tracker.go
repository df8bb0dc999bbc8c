package scoring

// SubmitResult is what the tracker reports back for one submission.
type SubmitResult struct {
	Accepted     bool    `json:"accepted"`
	AttemptCount int     `json:"attempt_count"`
	Outcome      Outcome `json:"outcome"`
}

// Tracker records attempts against items. GiveUpThreshold is the attempt
// count at which a still-wrong item is revealed; zero disables revealing.
type Tracker struct {
	GiveUpThreshold int
	Mode            MatchMode
	Pool            *Pool
}

// Submit grades candidate against item and updates its record. Callers must
// not submit to a resolved item.
func (t Tracker) Submit(item *Item, candidate string) SubmitResult {
	item.AttemptCount++
	item.record(candidate)

	if t.Mode.Equal(candidate, item.CorrectAnswer) {
		item.Resolved = true
		t.Pool.Remove(item.CorrectAnswer)
		return SubmitResult{Accepted: true, AttemptCount: item.AttemptCount, Outcome: OutcomeCorrect}
	}

	if t.GiveUpThreshold > 0 && item.AttemptCount >= t.GiveUpThreshold {
		t.reveal(item)
	}
	return SubmitResult{AttemptCount: item.AttemptCount, Outcome: item.Outcome()}
}

func (t Tracker) reveal(item *Item) {
	item.Resolved = true
	item.Revealed = true
	item.record(item.CorrectAnswer)
	t.Pool.Remove(item.CorrectAnswer)
}

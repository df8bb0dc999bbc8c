package scoring

import (
	"errors"
	"fmt"
	"math/rand"
)

// State is the lifecycle stage of a Session.
type State string

const (
	StateActive        State = "active"
	StateAllResolved   State = "all_resolved"
	StateScoreComputed State = "score_computed"
)

var (
	ErrNoItems          = errors.New("exercise has no items")
	ErrDuplicateItem    = errors.New("duplicate item id")
	ErrUnknownItem      = errors.New("unknown item")
	ErrItemResolved     = errors.New("item already resolved")
	ErrSessionComplete  = errors.New("exercise session already scored")
	ErrDeferredGrading  = errors.New("exercise is graded with check all")
	ErrInstantGrading   = errors.New("exercise is graded on submit")
	ErrMissingDraft     = errors.New("every open item needs an answer before checking")
	ErrInvalidType      = errors.New("invalid exercise type")
	ErrTokenUnavailable = errors.New("token is no longer in the word pool")
)

// Definition describes an exercise independently of any learner.
type Definition struct {
	Type            ExerciseType
	GiveUpThreshold int
	Policy          PolicySpec
	// WordBank overrides the pool tokens; when empty, pool exercises use the
	// items' answers.
	WordBank []string
	Items    []Item
}

// CheckResult reports one check-all pass.
type CheckResult struct {
	Correct    []string `json:"correct"`
	Incorrect  []string `json:"incorrect"`
	AllCorrect bool     `json:"all_correct"`
}

// Session is one learner's pass through an exercise, from first answer to
// score. It is not safe for concurrent use.
type Session struct {
	kind    ExerciseType
	items   []Item
	index   map[string]int
	tracker Tracker
	policy  Policy
	pool    *Pool
	drafts  map[string]string
	target  string
	state   State
	score   float64
}

// NewSession starts a fresh session for def. rng shuffles the word pool;
// nil keeps the definition order.
func NewSession(def Definition, rng *rand.Rand) (*Session, error) {
	if !def.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, def.Type)
	}
	if len(def.Items) == 0 {
		return nil, ErrNoItems
	}
	policy, err := NewPolicy(def.Policy)
	if err != nil {
		return nil, err
	}
	if _, ok := policy.(Accruer); ok && !def.Type.Deferred() {
		return nil, fmt.Errorf("%w: %s needs check-all grading", ErrInvalidPolicy, policy.Kind())
	}

	s := &Session{
		kind:   def.Type,
		items:  make([]Item, len(def.Items)),
		index:  make(map[string]int, len(def.Items)),
		policy: policy,
		drafts: make(map[string]string),
		state:  StateActive,
	}
	for i, it := range def.Items {
		if _, dup := s.index[it.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		s.index[it.ID] = i
		s.items[i] = Item{
			ID:            it.ID,
			Prompt:        it.Prompt,
			CorrectAnswer: it.CorrectAnswer,
			Options:       append([]string(nil), it.Options...),
		}
	}

	if def.Type.UsesPool() {
		tokens := def.WordBank
		if len(tokens) == 0 {
			tokens = make([]string, len(s.items))
			for i, it := range s.items {
				tokens[i] = it.CorrectAnswer
			}
		}
		s.pool = NewPool(tokens, rng)
	}
	s.tracker = Tracker{GiveUpThreshold: def.GiveUpThreshold, Mode: def.Type.MatchMode(), Pool: s.pool}
	return s, nil
}

// Type returns the exercise type.
func (s *Session) Type() ExerciseType { return s.kind }

// State returns the current lifecycle stage.
func (s *Session) State() State { return s.state }

// Policy returns the active penalty policy.
func (s *Session) Policy() Policy { return s.policy }

// Score returns the exercise score once it has been computed.
func (s *Session) Score() (float64, bool) {
	return s.score, s.state == StateScoreComputed
}

// Items returns a copy of the item records.
func (s *Session) Items() []Item {
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		it.Options = append([]string(nil), it.Options...)
		out[i] = it
	}
	return out
}

// Pool returns the remaining word-pool tokens in display order.
func (s *Session) Pool() []string { return s.pool.Tokens() }

// Target returns the currently selected item id, if any.
func (s *Session) Target() string { return s.target }

// Drafts returns a copy of the pending check-all answers.
func (s *Session) Drafts() map[string]string {
	out := make(map[string]string, len(s.drafts))
	for k, v := range s.drafts {
		out[k] = v
	}
	return out
}

// Unresolved returns how many items are still open.
func (s *Session) Unresolved() int {
	n := 0
	for _, it := range s.items {
		if !it.Resolved {
			n++
		}
	}
	return n
}

// Submit grades value for itemID immediately.
func (s *Session) Submit(itemID, value string) (SubmitResult, error) {
	if s.kind.Deferred() {
		return SubmitResult{}, ErrDeferredGrading
	}
	it, err := s.open(itemID)
	if err != nil {
		return SubmitResult{}, err
	}
	// Only tokens still on offer can be placed.
	if s.pool != nil && !s.pool.Contains(value) {
		return SubmitResult{}, fmt.Errorf("%w: %q", ErrTokenUnavailable, value)
	}
	res := s.tracker.Submit(it, value)
	if it.Resolved && s.target == itemID {
		s.target = ""
	}
	s.settle()
	return res, nil
}

// Select marks itemID as the target for the next Choose.
func (s *Session) Select(itemID string) error {
	if _, err := s.open(itemID); err != nil {
		return err
	}
	s.target = itemID
	return nil
}

// Choose submits value to the targeted item. With nothing targeted it does
// nothing and reports false.
func (s *Session) Choose(value string) (SubmitResult, bool, error) {
	if s.state != StateActive {
		return SubmitResult{}, false, ErrSessionComplete
	}
	if s.target == "" {
		return SubmitResult{}, false, nil
	}
	res, err := s.Submit(s.target, value)
	if err != nil {
		return SubmitResult{}, false, err
	}
	return res, true, nil
}

// Draft records an answer for itemID to be graded by the next CheckAll.
func (s *Session) Draft(itemID, value string) error {
	if !s.kind.Deferred() {
		return ErrInstantGrading
	}
	if _, err := s.open(itemID); err != nil {
		return err
	}
	s.drafts[itemID] = value
	return nil
}

// CheckAll grades every open item against its draft. Each graded item uses
// one attempt; failed items are charged by the policy when it accrues.
func (s *Session) CheckAll() (CheckResult, error) {
	if !s.kind.Deferred() {
		return CheckResult{}, ErrInstantGrading
	}
	if s.state != StateActive {
		return CheckResult{}, ErrSessionComplete
	}
	for _, it := range s.items {
		if _, ok := s.drafts[it.ID]; !it.Resolved && !ok {
			return CheckResult{}, fmt.Errorf("%w: %s", ErrMissingDraft, it.ID)
		}
	}

	accruer, _ := s.policy.(Accruer)
	res := CheckResult{Correct: []string{}, Incorrect: []string{}}
	for i := range s.items {
		it := &s.items[i]
		if it.Resolved {
			continue
		}
		draft := s.drafts[it.ID]
		if s.tracker.Submit(it, draft).Accepted {
			res.Correct = append(res.Correct, it.ID)
			continue
		}
		if accruer != nil {
			it.PenaltyAccrued += accruer.Accrue(draft, it.CorrectAnswer)
		}
		res.Incorrect = append(res.Incorrect, it.ID)
	}
	res.AllCorrect = len(res.Incorrect) == 0
	s.settle()
	return res, nil
}

func (s *Session) open(itemID string) (*Item, error) {
	if s.state != StateActive {
		return nil, ErrSessionComplete
	}
	i, ok := s.index[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if s.items[i].Resolved {
		return nil, fmt.Errorf("%w: %s", ErrItemResolved, itemID)
	}
	return &s.items[i], nil
}

// settle moves the session forward once nothing is left open. AllResolved
// passes straight into ScoreComputed.
func (s *Session) settle() {
	if s.state != StateActive || s.Unresolved() > 0 {
		return
	}
	s.state = StateAllResolved

	penalties := s.policy.Penalties(s.items)
	for i := range s.items {
		s.items[i].PenaltyAccrued = penalties[i]
	}
	s.score = ExerciseScore(s.items, s.policy)
	s.target = ""
	s.state = StateScoreComputed
}

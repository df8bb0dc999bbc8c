package scoring

// DefaultThreshold is the part average needed to move on.
const DefaultThreshold = 70.0

// Destination is where the learner goes after a part.
type Destination string

const (
	DestinationAdvance Destination = "advance"
	DestinationRetry   Destination = "retry"
)

// Decision is the gate's routing result. RetryTarget names the part to
// repeat and is empty when advancing.
type Decision struct {
	Destination Destination `json:"destination"`
	RetryTarget string      `json:"retry_target,omitempty"`
}

// Gate routes a learner by part average. A zero Threshold means
// DefaultThreshold.
type Gate struct {
	Threshold float64
}

// Decide advances when average reaches the threshold, inclusive, and
// otherwise sends the learner back to the start of partID.
func (g Gate) Decide(average float64, partID string) Decision {
	threshold := g.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if average >= threshold {
		return Decision{Destination: DestinationAdvance}
	}
	return Decision{Destination: DestinationRetry, RetryTarget: partID}
}

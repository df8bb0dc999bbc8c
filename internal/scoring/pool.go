package scoring

import (
	"math/rand"
	"strings"
)

// Pool is the ordered set of answer tokens still available to drag into
// gaps. Tokens leave the pool when the item they answer is resolved.
type Pool struct {
	tokens []string
}

// NewPool builds a pool from tokens, shuffled with rng when it is non-nil.
func NewPool(tokens []string, rng *rand.Rand) *Pool {
	p := &Pool{tokens: append([]string(nil), tokens...)}
	if rng != nil {
		rng.Shuffle(len(p.tokens), func(i, j int) {
			p.tokens[i], p.tokens[j] = p.tokens[j], p.tokens[i]
		})
	}
	return p
}

// Tokens returns a copy of the remaining tokens in display order.
func (p *Pool) Tokens() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.tokens...)
}

// Len returns the number of remaining tokens.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.tokens)
}

// Contains reports whether token is still in the pool.
func (p *Pool) Contains(token string) bool {
	return p.index(token) >= 0
}

// Remove takes the first matching token out of the pool. It reports false
// when the token was not present.
func (p *Pool) Remove(token string) bool {
	i := p.index(token)
	if i < 0 {
		return false
	}
	p.tokens = append(p.tokens[:i], p.tokens[i+1:]...)
	return true
}

func (p *Pool) index(token string) int {
	if p == nil {
		return -1
	}
	token = strings.TrimSpace(token)
	for i, t := range p.tokens {
		if strings.EqualFold(strings.TrimSpace(t), token) {
			return i
		}
	}
	return -1
}

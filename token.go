package gochunk

import (
	"github.com/dshills/gochunk/internal/token"
)

// TokenCounter counts tokens exactly against a real tokenizer vocabulary.
// The chunking pipeline runs on fast heuristic estimates; a TokenCounter is
// for callers who need to verify chunk budgets against the tokenizer their
// downstream model actually uses.
type TokenCounter struct {
	counter *token.TikTokenCounter
}

// NewTokenCounter creates a counter for the given tiktoken encoding or
// model name. An empty name selects cl100k_base, and unknown names fall
// back to it. Encoding data is fetched on first use, so construction can
// fail offline.
func NewTokenCounter(encodingOrModel string) (*TokenCounter, error) {
	c, err := token.NewTikTokenCounter(encodingOrModel)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{counter: c}, nil
}

// Count returns the exact token count of text under the counter's encoding.
func (c *TokenCounter) Count(text string) int { return c.counter.Count(text) }

// Encoding returns the encoding name actually in use.
func (c *TokenCounter) Encoding() string { return c.counter.Encoding() }

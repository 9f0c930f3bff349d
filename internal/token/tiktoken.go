package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/dshills/gochunk/pkg/types"
)

// DefaultEncoding is used when no encoding is specified. cl100k_base covers
// GPT-4-era models.
const DefaultEncoding = "cl100k_base"

// TikTokenCounter counts tokens exactly using the tiktoken encodings. The
// chunking engine itself only needs the approximate Estimator; this counter
// exists for callers who want to verify budgets against a real tokenizer.
type TikTokenCounter struct {
	encoding string
	tke      *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a counter for the given encoding or model name,
// falling back to DefaultEncoding when the name is unknown.
func NewTikTokenCounter(encodingOrModel string) (*TikTokenCounter, error) {
	if encodingOrModel == "" {
		encodingOrModel = DefaultEncoding
	}
	name := encodingOrModel
	tke, err := tiktoken.GetEncoding(name)
	if err != nil {
		tke, err = tiktoken.EncodingForModel(encodingOrModel)
		if err != nil {
			name = DefaultEncoding
			tke, err = tiktoken.GetEncoding(name)
			if err != nil {
				return nil, &types.TokenEstimationError{
					Strategy: types.TokensPrecision,
					Err:      fmt.Errorf("failed to load default encoding %q: %w", DefaultEncoding, err),
				}
			}
		}
	}
	return &TikTokenCounter{encoding: name, tke: tke}, nil
}

// Count returns the exact token count of text under the counter's encoding.
func (c *TikTokenCounter) Count(text string) int {
	return len(c.tke.Encode(text, nil, nil))
}

// Encoding returns the encoding name actually in use.
func (c *TikTokenCounter) Encoding() string { return c.encoding }

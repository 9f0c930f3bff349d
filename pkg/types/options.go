package types

import (
	"errors"
	"time"
)

// ChunkingStrategy selects the boundary-detection strategy for an operation.
type ChunkingStrategy string

const (
	StrategyAuto       ChunkingStrategy = "auto"
	StrategySemantic   ChunkingStrategy = "semantic"
	StrategyStructural ChunkingStrategy = "structural"
	StrategySentence   ChunkingStrategy = "sentence"
	StrategyFixed      ChunkingStrategy = "fixed"
)

// TokenEstimationStrategy selects the accuracy/speed trade-off for token
// estimation.
type TokenEstimationStrategy string

const (
	TokensPerformance TokenEstimationStrategy = "performance"
	TokensBalanced    TokenEstimationStrategy = "balanced"
	TokensPrecision   TokenEstimationStrategy = "precision"
)

// ContentFormat identifies the detected format of a document.
type ContentFormat string

const (
	FormatJSON     ContentFormat = "json"
	FormatXML      ContentFormat = "xml"
	FormatMarkdown ContentFormat = "markdown"
	FormatCode     ContentFormat = "code"
	FormatLogs     ContentFormat = "logs"
	FormatCSV      ContentFormat = "csv"
	FormatText     ContentFormat = "text"
)

// ChunkingOptions is the immutable per-operation configuration. It is built
// once per public call by merging defaults, environment overrides, and
// explicit caller options; no component mutates it afterwards.
type ChunkingOptions struct {
	// MaxTokensPerChunk is the hard token budget for a single chunk.
	MaxTokensPerChunk int

	// OverlapTokens is the target overlap carried from the tail of one
	// chunk into the head of the next.
	OverlapTokens int

	// ReservedTokens is headroom subtracted from the budget for content
	// the caller will prepend (prompts, metadata).
	ReservedTokens int

	// SafetyMargin is a fractional discount on the nominal budget to
	// absorb estimation error. Must be in (0, 1].
	SafetyMargin float64

	// Strategy selects boundary detection; StrategyAuto resolves through
	// the format detector.
	Strategy ChunkingStrategy

	// TokenStrategy selects the token estimator variant.
	TokenStrategy TokenEstimationStrategy

	// StreamBufferSize is the window size in bytes for streamed sources.
	StreamBufferSize int

	// AddMetadataComments injects a format-appropriate comment header into
	// each chunk. Cosmetic; reconstruction must not depend on it.
	AddMetadataComments bool

	// RespectSentences allows the boundary fallback ladder to inject
	// sentence breaks when a strategy finds too few boundaries.
	RespectSentences bool

	// MaxWorkers bounds the parallel scheduler's pool. Zero means
	// runtime.NumCPU().
	MaxWorkers int

	// Timeout bounds each unit of work in the parallel scheduler. Zero
	// disables the deadline.
	Timeout time.Duration
}

const (
	// CharsPerToken is the baseline chars-per-token heuristic for Latin
	// text, shared by the estimator and the assembler's char budgets.
	CharsPerToken = 4.0

	// MaxBoundaries caps how many boundaries a strategy may hand to the
	// assembler. Collection is O(boundaries) memory and assembly is
	// O(boundaries log boundaries), so dense inputs must be sampled.
	MaxBoundaries = 20000
)

// DefaultOptions returns the compiled-in defaults. Environment overrides are
// layered on by the config package, explicit options by the caller.
func DefaultOptions() *ChunkingOptions {
	return &ChunkingOptions{
		MaxTokensPerChunk: 2000,
		OverlapTokens:     100,
		ReservedTokens:    0,
		SafetyMargin:      0.9,
		Strategy:          StrategyAuto,
		TokenStrategy:     TokensBalanced,
		StreamBufferSize:  64 * 1024,
		RespectSentences:  true,
	}
}

// EffectiveMaxTokens returns the usable token budget after applying the
// safety margin and reserved headroom: min(max*margin, max-reserved),
// floored at zero.
func (o *ChunkingOptions) EffectiveMaxTokens() int {
	margin := o.SafetyMargin
	if margin <= 0 || margin > 1 {
		margin = 1
	}
	withMargin := int(float64(o.MaxTokensPerChunk) * margin)
	withReserve := o.MaxTokensPerChunk - o.ReservedTokens
	effective := withMargin
	if withReserve < effective {
		effective = withReserve
	}
	if effective < 0 {
		effective = 0
	}
	return effective
}

// MaxChunkChars converts the effective token budget into a character budget
// using the baseline chars-per-token heuristic.
func (o *ChunkingOptions) MaxChunkChars() int {
	return int(float64(o.EffectiveMaxTokens()) * CharsPerToken)
}

// OverlapChars converts the overlap token target into characters.
func (o *ChunkingOptions) OverlapChars() int {
	if o.OverlapTokens <= 0 {
		return 0
	}
	return int(float64(o.OverlapTokens) * CharsPerToken)
}

// Validate checks option values for internal consistency.
func (o *ChunkingOptions) Validate() error {
	if o.MaxTokensPerChunk <= 0 {
		return &ValidationError{Field: "MaxTokensPerChunk", Reason: "must be positive"}
	}
	if o.OverlapTokens < 0 {
		return &ValidationError{Field: "OverlapTokens", Reason: "must not be negative"}
	}
	if o.ReservedTokens < 0 {
		return &ValidationError{Field: "ReservedTokens", Reason: "must not be negative"}
	}
	if o.ReservedTokens >= o.MaxTokensPerChunk {
		return &ValidationError{Field: "ReservedTokens", Reason: "must be smaller than MaxTokensPerChunk"}
	}
	if o.SafetyMargin <= 0 || o.SafetyMargin > 1 {
		return &ValidationError{Field: "SafetyMargin", Reason: "must be in (0, 1]"}
	}
	if o.OverlapTokens >= o.EffectiveMaxTokens() {
		return &ValidationError{Field: "OverlapTokens", Reason: "must be smaller than the effective token budget"}
	}
	if o.StreamBufferSize < 1024 {
		return &ValidationError{Field: "StreamBufferSize", Reason: "must be at least 1KB"}
	}
	switch o.Strategy {
	case StrategyAuto, StrategySemantic, StrategyStructural, StrategySentence, StrategyFixed:
	default:
		return &ValidationError{Field: "Strategy", Reason: "unknown strategy " + string(o.Strategy)}
	}
	switch o.TokenStrategy {
	case TokensPerformance, TokensBalanced, TokensPrecision:
	default:
		return &ValidationError{Field: "TokenStrategy", Reason: "unknown token strategy " + string(o.TokenStrategy)}
	}
	return nil
}

// Clone returns a copy the caller may adjust without affecting the original.
func (o *ChunkingOptions) Clone() *ChunkingOptions {
	cp := *o
	return &cp
}

// ErrInvalidOptions is returned when option merging produces no usable
// configuration at all.
var ErrInvalidOptions = errors.New("invalid chunking options")

package gochunk

import (
	"context"
	"log/slog"
	"time"

	"github.com/dshills/gochunk/internal/assembler"
	"github.com/dshills/gochunk/internal/config"
	"github.com/dshills/gochunk/internal/parallel"
	"github.com/dshills/gochunk/internal/token"
	"github.com/dshills/gochunk/pkg/types"
)

// Strategy and token-strategy values accepted by WithStrategy and
// WithTokenStrategy, re-exported so callers need not import pkg/types.
const (
	StrategyAuto       = types.StrategyAuto
	StrategySemantic   = types.StrategySemantic
	StrategyStructural = types.StrategyStructural
	StrategySentence   = types.StrategySentence
	StrategyFixed      = types.StrategyFixed

	TokensPerformance = types.TokensPerformance
	TokensBalanced    = types.TokensBalanced
	TokensPrecision   = types.TokensPrecision
)

type settings struct {
	opts   *types.ChunkingOptions
	logger *slog.Logger
}

// Option configures a Chunker.
type Option func(*settings)

// WithMaxTokens sets the nominal token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(s *settings) { s.opts.MaxTokensPerChunk = n }
}

// WithOverlapTokens sets the overlap carried between adjacent chunks.
func WithOverlapTokens(n int) Option {
	return func(s *settings) { s.opts.OverlapTokens = n }
}

// WithReservedTokens reserves budget headroom for caller-prepended content.
func WithReservedTokens(n int) Option {
	return func(s *settings) { s.opts.ReservedTokens = n }
}

// WithSafetyMargin sets the fractional discount applied to the budget.
func WithSafetyMargin(m float64) Option {
	return func(s *settings) { s.opts.SafetyMargin = m }
}

// WithStrategy pins the boundary strategy instead of auto-selecting by
// format.
func WithStrategy(st types.ChunkingStrategy) Option {
	return func(s *settings) { s.opts.Strategy = st }
}

// WithTokenStrategy selects the token estimator variant.
func WithTokenStrategy(ts types.TokenEstimationStrategy) Option {
	return func(s *settings) { s.opts.TokenStrategy = ts }
}

// WithStreamBufferSize sets the window size for streamed sources.
func WithStreamBufferSize(n int) Option {
	return func(s *settings) { s.opts.StreamBufferSize = n }
}

// WithMetadataComments prepends a format-appropriate header comment to each
// chunk.
func WithMetadataComments(on bool) Option {
	return func(s *settings) { s.opts.AddMetadataComments = on }
}

// WithRespectSentences toggles sentence-level boundaries in prose.
func WithRespectSentences(on bool) Option {
	return func(s *settings) { s.opts.RespectSentences = on }
}

// WithMaxWorkers caps the parallel worker count; 0 lets the scheduler
// decide.
func WithMaxWorkers(n int) Option {
	return func(s *settings) { s.opts.MaxWorkers = n }
}

// WithTimeout bounds a whole chunking operation; 0 disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.opts.Timeout = d }
}

// WithLogger routes diagnostics to the given structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// Chunker is a reusable chunking pipeline. Safe for concurrent use.
type Chunker struct {
	opts   *types.ChunkingOptions
	logger *slog.Logger
	sched  *parallel.Scheduler
}

// New builds a Chunker. Defaults come from the environment (CHUNKER_
// prefix), then options apply in order. The combined options are validated
// once here so Chunk calls cannot fail on configuration.
func New(options ...Option) (*Chunker, error) {
	s := &settings{logger: slog.Default()}
	s.opts = config.Load(s.logger)
	for _, opt := range options {
		opt(s)
	}
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	asm := assembler.New(token.NewEstimator(), s.logger)
	return &Chunker{
		opts:   s.opts,
		logger: s.logger,
		sched:  parallel.NewScheduler(asm, s.logger),
	}, nil
}

// Options returns a copy of the resolved options.
func (c *Chunker) Options() *types.ChunkingOptions {
	return c.opts.Clone()
}

// Chunk splits text into token-bounded chunks.
func (c *Chunker) Chunk(ctx context.Context, text string) (*types.ChunkingResult, error) {
	return c.sched.Process(ctx, text, c.opts)
}

// Chunk is the package-level convenience: one-shot chunking with default
// context.
func Chunk(text string, options ...Option) (*types.ChunkingResult, error) {
	c, err := New(options...)
	if err != nil {
		return nil, err
	}
	return c.Chunk(context.Background(), text)
}

// Package config loads process-wide chunking defaults from CHUNKER_-prefixed
// environment variables. Values that fail to parse are logged and the
// compiled-in default is retained; loading never fails the operation.
package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dshills/gochunk/pkg/types"
)

// EnvPrefix is the prefix shared by every environment override.
const EnvPrefix = "CHUNKER_"

// Config mirrors types.ChunkingOptions field by field. Defaults here must
// stay in sync with types.DefaultOptions.
type Config struct {
	MaxTokensPerChunk   int           `env:"MAX_TOKENS_PER_CHUNK" envDefault:"2000"`
	OverlapTokens       int           `env:"OVERLAP_TOKENS" envDefault:"100"`
	ReservedTokens      int           `env:"RESERVED_TOKENS" envDefault:"0"`
	SafetyMargin        float64       `env:"SAFETY_MARGIN" envDefault:"0.9"`
	Strategy            string        `env:"STRATEGY" envDefault:"auto"`
	TokenStrategy       string        `env:"TOKEN_STRATEGY" envDefault:"balanced"`
	StreamBufferSize    int           `env:"STREAM_BUFFER_SIZE" envDefault:"65536"`
	AddMetadataComments bool          `env:"ADD_METADATA_COMMENTS" envDefault:"false"`
	RespectSentences    bool          `env:"RESPECT_SENTENCES" envDefault:"true"`
	MaxWorkers          int           `env:"MAX_WORKERS" envDefault:"0"`
	Timeout             time.Duration `env:"TIMEOUT" envDefault:"0"`
}

// Load reads environment overrides and returns the resulting base options.
// Unparseable variables are logged and left at their defaults.
func Load(logger *slog.Logger) *types.ChunkingOptions {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		cfgErr := &types.ConfigurationError{Variable: EnvPrefix + "*", Err: err}
		logger.Warn("failed to parse chunker environment; using defaults for bad values", "err", cfgErr)
	}
	return cfg.Options(logger)
}

// Options converts the raw config into validated ChunkingOptions, replacing
// any out-of-range value with the compiled-in default.
func (c Config) Options(logger *slog.Logger) *types.ChunkingOptions {
	opts := types.DefaultOptions()

	if c.MaxTokensPerChunk > 0 {
		opts.MaxTokensPerChunk = c.MaxTokensPerChunk
	} else if c.MaxTokensPerChunk != 0 {
		logger.Warn("ignoring non-positive max tokens override", "value", c.MaxTokensPerChunk)
	}
	if c.OverlapTokens >= 0 {
		opts.OverlapTokens = c.OverlapTokens
	}
	if c.ReservedTokens >= 0 {
		opts.ReservedTokens = c.ReservedTokens
	}
	if c.SafetyMargin > 0 && c.SafetyMargin <= 1 {
		opts.SafetyMargin = c.SafetyMargin
	} else {
		logger.Warn("ignoring out-of-range safety margin override", "value", c.SafetyMargin)
	}
	if s := types.ChunkingStrategy(c.Strategy); validStrategy(s) {
		opts.Strategy = s
	} else {
		logger.Warn("ignoring unknown strategy override", "value", c.Strategy)
	}
	if ts := types.TokenEstimationStrategy(c.TokenStrategy); validTokenStrategy(ts) {
		opts.TokenStrategy = ts
	} else {
		logger.Warn("ignoring unknown token strategy override", "value", c.TokenStrategy)
	}
	if c.StreamBufferSize >= 1024 {
		opts.StreamBufferSize = c.StreamBufferSize
	} else if c.StreamBufferSize != 0 {
		logger.Warn("ignoring undersized stream buffer override", "value", c.StreamBufferSize)
	}
	opts.AddMetadataComments = c.AddMetadataComments
	opts.RespectSentences = c.RespectSentences
	if c.MaxWorkers >= 0 {
		opts.MaxWorkers = c.MaxWorkers
	}
	if c.Timeout >= 0 {
		opts.Timeout = c.Timeout
	}
	return opts
}

func validStrategy(s types.ChunkingStrategy) bool {
	switch s {
	case types.StrategyAuto, types.StrategySemantic, types.StrategyStructural,
		types.StrategySentence, types.StrategyFixed:
		return true
	}
	return false
}

func validTokenStrategy(s types.TokenEstimationStrategy) bool {
	switch s {
	case types.TokensPerformance, types.TokensBalanced, types.TokensPrecision:
		return true
	}
	return false
}

// Package types provides shared type definitions for the gochunk engine.
//
// This package defines the domain types used across every component of the
// chunking pipeline: options, boundaries, chunk metadata, content features,
// parallel segments, and the error taxonomy.
//
// # Core Types
//
// ChunkingOptions carries the per-operation configuration. It is built once
// per public call by merging defaults, environment overrides, and explicit
// options, and is treated as read-only afterwards:
//
//	opts := types.DefaultOptions()
//	opts.MaxTokensPerChunk = 1000
//	budget := opts.EffectiveMaxTokens()
//
// Boundary represents a candidate split point discovered by a strategy:
//
//	b := types.Boundary{
//	    Index:    1024,
//	    Type:     types.BoundaryParagraph,
//	    Priority: types.PriorityParagraph,
//	}
//
// ChunkMetadata describes one produced chunk, and ChunkingResult bundles the
// ordered chunk strings with their metadata for one operation.
//
// # Validation
//
// Domain types implement validation methods to ensure integrity:
//
//	if err := opts.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := result.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
// The error types in this package form the engine's whole failure surface.
// Each carries structured diagnostic fields (strategy name, text length,
// elapsed time) and supports errors.As matching at fallback points:
//
//	var bde *types.BoundaryDetectionError
//	if errors.As(err, &bde) {
//	    // fall back to a simpler strategy
//	}
package types

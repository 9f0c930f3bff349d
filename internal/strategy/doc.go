// Package strategy implements pluggable boundary detection for the chunking
// engine.
//
// A Strategy produces an ordered list of candidate split points for a
// document. Four strategies ship with the engine:
//
//   - semantic: paragraph and sentence scanning, format-agnostic
//   - structural: format-aware (markdown headings and fences, code
//     declarations, JSON/XML elements, log and CSV lines)
//   - sentence: sentence boundaries only
//   - fixed: evenly strided positions snapped to whitespace
//
// Strategies are resolved once per operation through New, keyed by the
// explicit (ChunkingStrategy, ContentFormat) pair; there is no reflection
// and no dynamic lookup. A fresh instance is created per operation and must
// not be shared across concurrent operations: instances carry per-operation
// stats.
//
// Mutable hierarchical state (active headings, enclosing declarations) lives
// in a Tracker created by the strategy and owned by the caller, so the
// walk state stays confined to one operation even if a strategy
// implementation is reused.
//
// Boundary volume is bounded: SelectBoundaries caps dense results at
// types.MaxBoundaries with full-span stride sampling, and EnsureCoverage
// injects paragraph or sentence breaks when a strategy finds too few
// boundaries to chunk against.
package strategy

// Package token approximates token counts for text under a selectable
// accuracy/speed trade-off.
//
// Three estimation strategies are available:
//
//   - performance: character count divided by a script-dependent
//     chars-per-token ratio. Fastest, coarsest.
//   - balanced: whitespace-normalized character accounting with separate
//     emoji handling and a ratio chosen from script mix. The default.
//   - precision: word-based baseline with additive adjustments for symbol
//     density, non-Latin scripts, and code-like content.
//
// All strategies are pure functions of the text: same input, same output.
// The Estimator caches results for large inputs in a bounded LRU keyed by a
// constant-size sample of the text, so cache-key cost does not grow with
// input size. Estimator instances are safe for concurrent use.
//
// Exact tokenizer fidelity is explicitly not a goal of the estimator; for
// callers that need it, TikTokenCounter wraps the tiktoken encodings used by
// OpenAI models.
package token

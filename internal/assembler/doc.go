// Package assembler turns a document and a set of candidate boundaries into
// size-bounded chunks with overlap and preserved context.
//
// The assembler owns the whole per-document pipeline: format detection,
// strategy resolution, boundary detection with fallback, the section walk
// that packs boundaries into chunks, and the validation pass that re-splits
// anything over budget. It is also where failure recovery lives; the
// contract with callers is that Process degrades rather than fails:
//
//	a := assembler.New(token.NewEstimator(), logger)
//	result, err := a.Process(text, opts)
//
// err is non-nil only when the primary path and the emergency fallback both
// fail, in which case it is a *types.RecoveryFailureError carrying both
// causes. Everything milder — a strategy fault, malformed structured input,
// an oversize remainder — produces a degraded but valid result.
//
// The walk is strictly sequential and deterministic: identical input text
// and options yield identical chunks, which the parallel scheduler relies
// on when it fans segments out across workers.
package assembler

// Package gochunk splits large text into token-bounded chunks for LLM
// consumption. It detects the content format (JSON, XML, markdown, code,
// logs, CSV, plain text), finds natural boundaries with a format-aware
// strategy, and packs sections into chunks that respect a configurable
// token budget, with optional overlap and preserved structural context
// between chunks.
//
// The package-level Chunk function covers the common case:
//
//	result, err := gochunk.Chunk(text, gochunk.WithMaxTokens(1000))
//
// Sources too large to hold in memory go through StreamChunker, which
// windows the input and emits chunks lazily:
//
//	sc, err := gochunk.ChunkFile("big.log")
//	for sc.Scan() {
//	    use(sc.Chunk())
//	}
//	err = sc.Err()
//
// Defaults come from CHUNKER_-prefixed environment variables, overridden
// per call by functional options. Chunking degrades rather than fails:
// malformed input falls back through simpler strategies, and an error is
// returned only when every recovery path is exhausted.
package gochunk

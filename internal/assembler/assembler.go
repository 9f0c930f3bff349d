package assembler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gochunk/internal/format"
	"github.com/dshills/gochunk/internal/strategy"
	"github.com/dshills/gochunk/internal/token"
	"github.com/dshills/gochunk/pkg/types"
)

// Assembler packs boundary-delimited sections into token-bounded chunks.
// Safe for concurrent use; per-operation state lives on the stack and in
// strategy instances created per call.
type Assembler struct {
	estimator *token.Estimator
	logger    *slog.Logger
}

// New creates an Assembler. A nil estimator or logger falls back to
// defaults.
func New(estimator *token.Estimator, logger *slog.Logger) *Assembler {
	if estimator == nil {
		estimator = token.NewEstimator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{estimator: estimator, logger: logger}
}

// piece is a chunk under construction, before indices are final.
type piece struct {
	text        string
	preserved   string
	hasOverlap  bool
	overlapFrom int
}

// Process chunks one document. It returns a valid (possibly degraded)
// result, or a *types.RecoveryFailureError when even the emergency path
// failed. It never panics.
func (a *Assembler) Process(text string, opts *types.ChunkingOptions) (*types.ChunkingResult, error) {
	if opts == nil {
		opts = types.DefaultOptions()
	}
	start := time.Now()
	opID := uuid.NewString()

	result := &types.ChunkingResult{
		Chunks:         []string{},
		Metadata:       []types.ChunkMetadata{},
		OriginalLength: len(text),
		OperationID:    opID,
	}
	if strings.TrimSpace(text) == "" {
		result.DetectedFormat = types.FormatText
		result.ProcessingTime = time.Since(start)
		return result, nil
	}

	detected, confidence := format.Detect(text)
	result.DetectedFormat = detected

	// Below-threshold shortcut: the whole document fits in one chunk.
	// Still validated, since an enabled header comment counts toward the
	// budget and can push a borderline document over it.
	total := a.estimator.Estimate(text, opts.TokenStrategy)
	if total <= opts.EffectiveMaxTokens() {
		a.finish(result, a.validate([]piece{{text: text}}, detected, opts), text, detected, opts)
		result.Strategies = []string{"single"}
		result.ProcessingTime = time.Since(start)
		return result, nil
	}

	strat := strategy.New(opts.Strategy, detected)
	result.Strategies = []string{strat.Name()}

	boundaries, err := strat.DetectBoundaries(text, opts)
	if err != nil {
		// Strategy faults are converted to a semantic fallback, never
		// surfaced raw.
		a.logger.Warn("boundary detection failed; falling back to semantic",
			"op", opID, "strategy", strat.Name(), "err", err)
		strat = strategy.NewSemantic()
		result.Strategies = append(result.Strategies, strat.Name())
		boundaries, err = strat.DetectBoundaries(text, opts)
	}

	var pieces []piece
	var walkErr error
	if err == nil {
		if sr, ok := strat.(strategy.StatReporter); ok {
			a.logger.Debug("boundary scan stats",
				"op", opID, "strategy", strat.Name(), "stats", sr.Stats())
		}
		boundaries = strategy.EnsureCoverage(text, boundaries, opts)
		boundaries = strategy.SelectBoundaries(boundaries, types.MaxBoundaries)
		if len(boundaries) == 0 {
			walkErr = types.ErrNoBoundaries
		} else {
			pieces, walkErr = a.walk(text, strat, boundaries, opts)
		}
	} else {
		walkErr = err
	}

	switch {
	case walkErr == nil && len(pieces) > 0:
		// Primary path succeeded.
	case walkErr != nil && len(pieces) > 0:
		// Mid-walk fault: keep what was produced with corrected totals.
		a.logger.Warn("assembly fault after partial progress; returning partial chunks",
			"op", opID, "chunks", len(pieces), "err", walkErr)
	default:
		a.logger.Warn("assembly produced nothing; engaging emergency splitter",
			"op", opID, "err", walkErr)
		var emErr error
		pieces, emErr = a.emergencyPieces(text, opts)
		if emErr != nil {
			pieces = lastResortPieces(text, opts)
			if len(pieces) == 0 {
				result.ProcessingTime = time.Since(start)
				return nil, &types.RecoveryFailureError{Primary: walkErr, Fallback: emErr}
			}
		}
		result.Strategies = append(result.Strategies, "emergency")
	}

	pieces = a.validate(pieces, detected, opts)
	a.finish(result, pieces, text, detected, opts)
	result.ProcessingTime = time.Since(start)

	a.logger.Debug("chunking complete",
		"op", opID, "format", detected, "confidence", confidence,
		"chunks", len(result.Chunks), "tokens", result.TotalTokens,
		"elapsed", result.ProcessingTime)
	return result, nil
}

// walk packs sections between boundaries into chunks. A panic inside a
// strategy callback is converted to an error alongside whatever pieces were
// already flushed.
func (a *Assembler) walk(text string, strat strategy.Strategy, boundaries []types.Boundary, opts *types.ChunkingOptions) (pieces []piece, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.BoundaryDetectionError{
				Strategy: strat.Name(),
				TextLen:  len(text),
				Err:      fmt.Errorf("assembly panic: %v", r),
			}
		}
	}()

	maxChars := opts.MaxChunkChars()
	if maxChars <= 0 {
		return nil, &types.ValidationError{Field: "MaxTokensPerChunk", Reason: "effective budget is zero"}
	}
	overlapChars := opts.OverlapChars()

	tracker := strat.NewTracker()
	var cur strings.Builder
	curPreserved := ""
	curHasOverlap := false
	overlapFrom := 0

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		pieces = append(pieces, piece{
			text:        cur.String(),
			preserved:   curPreserved,
			hasOverlap:  curHasOverlap,
			overlapFrom: overlapFrom,
		})
		cur.Reset()
	}

	for i, b := range boundaries {
		end := len(text)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].Index
		}
		if b.Index >= end || b.Index < 0 || end > len(text) {
			tracker.Observe("", b)
			continue
		}
		section := text[b.Index:end]

		if cur.Len() > 0 && cur.Len()+len(section) > maxChars {
			prev := cur.String()
			flush()

			// Seed the next chunk: preserved context describes the
			// hierarchy the new chunk is resuming inside; the overlap
			// tail restores local continuity.
			curPreserved = tracker.PreservedContext()
			overlap := strat.OverlapTail(prev, overlapChars)
			curHasOverlap = overlap != ""
			overlapFrom = len(pieces) - 1
			if curHasOverlap {
				cur.WriteString(overlap)
				if !strings.HasSuffix(overlap, "\n") && !strings.HasPrefix(section, "\n") {
					cur.WriteString(" ")
				}
			}
		}
		if cur.Len() == 0 && !curHasOverlap {
			curPreserved = tracker.PreservedContext()
		}
		cur.WriteString(section)
		tracker.Observe(section, b)
	}
	// Terminal remainder becomes its own chunk even if oversize; the
	// validation pass re-splits it rather than letting it overflow.
	flush()
	return pieces, nil
}

// finish converts pieces into the final chunk and metadata slices.
func (a *Assembler) finish(result *types.ChunkingResult, pieces []piece, original string, detected types.ContentFormat, opts *types.ChunkingOptions) {
	total := len(pieces)
	searchFrom := 0
	for i, p := range pieces {
		content := p.text
		if opts.AddMetadataComments {
			if comment := ChunkComment(detected, i, total, p.preserved); comment != "" {
				content = comment + content
			}
		}

		tokens := a.estimator.Estimate(content, opts.TokenStrategy)
		start, end := findChunkPosition(original, p.text, searchFrom)
		if end > searchFrom {
			searchFrom = end
		}

		result.Chunks = append(result.Chunks, content)
		result.Metadata = append(result.Metadata, types.ChunkMetadata{
			Index:            i,
			TotalChunks:      total,
			Format:           detected,
			TokenCount:       tokens,
			CharCount:        len(content),
			HasOverlap:       p.hasOverlap,
			OverlapFrom:      p.overlapFrom,
			ContentStart:     start,
			ContentEnd:       end,
			PreservedContext: p.preserved,
		})
		result.TotalTokens += tokens
	}
}

// Decorate prepends header comments to an already-merged result, re-running
// the token validation first so a header never pushes a chunk over the
// budget. Chunk indices, token counts, and positions are rewritten against
// original.
func (a *Assembler) Decorate(original string, res *types.ChunkingResult, opts *types.ChunkingOptions) {
	pieces := make([]piece, len(res.Chunks))
	for i, c := range res.Chunks {
		m := res.Metadata[i]
		pieces[i] = piece{
			text:        c,
			preserved:   m.PreservedContext,
			hasOverlap:  m.HasOverlap,
			overlapFrom: m.OverlapFrom,
		}
	}
	pieces = a.validate(pieces, res.DetectedFormat, opts)
	res.Chunks = res.Chunks[:0]
	res.Metadata = res.Metadata[:0]
	res.TotalTokens = 0
	a.finish(res, pieces, original, res.DetectedFormat, opts)
}

// ChunkComment renders the cosmetic per-chunk header for formats that have
// a comment syntax. JSON has none that survives parsing, so it gets no
// header.
func ChunkComment(f types.ContentFormat, index, total int, preserved string) string {
	tag := fmt.Sprintf("CHUNK %d/%d", index+1, total)
	if preserved != "" {
		tag += " " + preserved
	}
	switch f {
	case types.FormatMarkdown, types.FormatXML:
		return "<!-- " + tag + " -->\n"
	case types.FormatCode:
		return "// " + tag + "\n"
	case types.FormatJSON:
		return ""
	default:
		return "# " + tag + "\n"
	}
}

// findChunkPosition back-maps a chunk into the original text by sampling a
// slice from the chunk's middle. Best-effort: overlap, preserved context,
// and emergency re-splits can all defeat it, so callers must treat the
// offsets as approximate. Returns (-1, searchFrom) when no match is found.
func findChunkPosition(original, chunk string, searchFrom int) (int, int) {
	if chunk == "" || searchFrom >= len(original) {
		return -1, searchFrom
	}
	sample := chunk
	const sampleLen = 48
	if len(chunk) > sampleLen*3 {
		mid := len(chunk) / 2
		sample = chunk[mid : mid+sampleLen]
		for len(sample) > 0 && sample[0]&0xC0 == 0x80 {
			sample = sample[1:]
		}
	}
	rel := strings.Index(original[searchFrom:], sample)
	if rel < 0 {
		// Retry from the top: parallel merges can reorder search starts.
		if abs := strings.Index(original, sample); abs >= 0 {
			return approxSpan(abs, sample, chunk, len(original))
		}
		return -1, searchFrom
	}
	return approxSpan(searchFrom+rel, sample, chunk, len(original))
}

func approxSpan(sampleStart int, sample, chunk string, originalLen int) (int, int) {
	// Project the sample hit back to the chunk's presumed start.
	offsetInChunk := strings.Index(chunk, sample)
	start := sampleStart - offsetInChunk
	if start < 0 {
		start = 0
	}
	end := start + len(chunk)
	if end > originalLen {
		end = originalLen
	}
	return start, end
}

package strategy

import (
	"strings"

	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// Tracker carries the mutable hierarchical state of one assembly walk. The
// assembler feeds it every section in document order and reads the preserved
// context whenever it opens a new chunk.
type Tracker interface {
	// Observe updates the tracker with the section that begins at b.
	Observe(section string, b types.Boundary)

	// PreservedContext returns a short header describing the active
	// hierarchy (headings, enclosing declarations), or "" when there is
	// nothing worth preserving.
	PreservedContext() string
}

// Strategy locates candidate split points in a document. Implementations
// are cheap per-operation objects; create one per call and discard it.
type Strategy interface {
	// Name identifies the strategy, including its format specialization
	// (e.g. "structural:markdown"), for result metadata and logging.
	Name() string

	// DetectBoundaries returns candidate split points in position order.
	// Internal faults surface as *types.BoundaryDetectionError or
	// *types.FormatParsingError; raw parser errors never escape.
	DetectBoundaries(text string, opts *types.ChunkingOptions) ([]types.Boundary, error)

	// NewTracker returns a fresh context tracker for one assembly walk.
	NewTracker() Tracker

	// OverlapTail extracts the overlap content carried from the end of
	// prev into the next chunk, snapped to a natural start.
	OverlapTail(prev string, overlapChars int) string
}

// StatReporter is implemented by strategies that tally what their scan saw
// (paragraphs, headings, declarations, records). The counts feed the
// assembler's debug logging.
type StatReporter interface {
	// Stats returns the counts tallied by the last DetectBoundaries call.
	Stats() map[string]int
}

// New resolves the (strategy, format) pair to a per-operation instance.
// StrategyAuto picks structural chunking for formats with exploitable
// structure and semantic chunking for prose.
func New(s types.ChunkingStrategy, f types.ContentFormat) Strategy {
	switch s {
	case types.StrategySemantic:
		return NewSemantic()
	case types.StrategyStructural:
		return NewStructural(f)
	case types.StrategySentence:
		return NewSentence()
	case types.StrategyFixed:
		return NewFixed()
	case types.StrategyAuto:
		switch f {
		case types.FormatMarkdown, types.FormatCode, types.FormatJSON,
			types.FormatXML, types.FormatLogs, types.FormatCSV:
			return NewStructural(f)
		default:
			return NewSemantic()
		}
	default:
		return NewSemantic()
	}
}

// baseOverlap is the shared overlap extraction: take the trailing window and
// snap its start forward to the strongest natural break so overlaps never
// begin mid-token.
func baseOverlap(prev string, overlapChars int) string {
	if overlapChars <= 0 || prev == "" {
		return ""
	}
	if overlapChars >= len(prev) {
		return prev
	}
	window := prev[len(prev)-overlapChars:]
	// Avoid starting on a partial rune before snapping.
	for len(window) > 0 && window[0]&0xC0 == 0x80 {
		window = window[1:]
	}
	snapped := window[textscan.SnapForward(window):]
	return strings.TrimLeft(snapped, " \t")
}

// noopTracker is used by strategies with no hierarchical state.
type noopTracker struct{}

func (noopTracker) Observe(string, types.Boundary) {}
func (noopTracker) PreservedContext() string       { return "" }

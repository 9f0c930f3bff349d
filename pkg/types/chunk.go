package types

import (
	"errors"
	"time"
)

// ChunkMetadata describes one produced chunk.
type ChunkMetadata struct {
	// Index is the 0-based position of the chunk in the result.
	Index int

	// TotalChunks is the final chunk count after the validation pass.
	TotalChunks int

	// Format is the detected content format of the source document.
	Format ContentFormat

	// TokenCount is the estimated token count of the chunk text.
	TokenCount int

	// CharCount is len(chunk) in bytes.
	CharCount int

	// HasOverlap reports whether the chunk begins with overlap content
	// carried from the previous chunk; OverlapFrom is that chunk's index.
	HasOverlap  bool
	OverlapFrom int

	// ContentStart and ContentEnd approximate the chunk's position in the
	// original text. Best-effort diagnostic only: metadata comments and
	// preserved-context headers make an exact back-mapping impossible.
	ContentStart int
	ContentEnd   int

	// PreservedContext is the strategy-supplied context header (active
	// headings, enclosing declarations) injected into the chunk.
	PreservedContext string
}

// Validate checks metadata invariants.
func (m *ChunkMetadata) Validate() error {
	if m.Index < 0 {
		return errors.New("chunk index must not be negative")
	}
	if m.TotalChunks <= m.Index {
		return errors.New("total chunks must exceed chunk index")
	}
	if m.TokenCount < 0 || m.CharCount < 0 {
		return errors.New("chunk counts must not be negative")
	}
	if m.HasOverlap && m.OverlapFrom < 0 {
		return errors.New("overlap source index must not be negative")
	}
	return nil
}

// ChunkingResult is the output of one chunking operation. Chunks and
// Metadata are parallel slices in original document order.
type ChunkingResult struct {
	Chunks   []string
	Metadata []ChunkMetadata

	OriginalLength int
	DetectedFormat ContentFormat

	// Strategies lists the strategy names used, in order. More than one
	// entry means a fallback fired mid-operation.
	Strategies []string

	TotalTokens    int
	OperationID    string
	ProcessingTime time.Duration

	// SegmentsFailed counts parallel segments that were substituted with
	// empty output. Zero for serial operations.
	SegmentsFailed int
}

// Validate checks the cross-field invariants of a result.
func (r *ChunkingResult) Validate() error {
	if len(r.Chunks) != len(r.Metadata) {
		return errors.New("chunk and metadata counts differ")
	}
	sum := 0
	for i := range r.Metadata {
		if r.Metadata[i].Index != i {
			return errors.New("chunk metadata indices must be contiguous from zero")
		}
		if r.Metadata[i].TotalChunks != len(r.Chunks) {
			return errors.New("chunk metadata total must match chunk count")
		}
		sum += r.Metadata[i].TokenCount
	}
	if sum != r.TotalTokens {
		return errors.New("total token count must equal the sum of chunk token counts")
	}
	return nil
}

// Segment is a near-boundary slice of a large document used as the unit of
// parallel work. Segments are disjoint, cover the whole document, and
// concatenate in index order to reconstruct it.
type Segment struct {
	Start  int
	End    int
	Worker int
}

// ValidateSegments checks that segments are disjoint, ordered, and cover
// [0, length).
func ValidateSegments(segments []Segment, length int) error {
	if length == 0 {
		if len(segments) != 0 {
			return errors.New("empty document must have no segments")
		}
		return nil
	}
	if len(segments) == 0 {
		return errors.New("non-empty document must have segments")
	}
	if segments[0].Start != 0 {
		return errors.New("first segment must start at zero")
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].Start != segments[i-1].End {
			return errors.New("segments must be contiguous")
		}
	}
	if segments[len(segments)-1].End != length {
		return errors.New("last segment must end at document length")
	}
	return nil
}

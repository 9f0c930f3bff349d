package strategy

import (
	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// fixedBackscan caps how far a stride position may move backward looking
// for whitespace.
const fixedBackscan = 256

// Fixed places boundaries at even character strides derived from the chunk
// budget, snapped backward to whitespace. The predictable fallback when
// content has no usable structure.
type Fixed struct {
	stats map[string]int
}

// NewFixed returns a fresh fixed-size strategy for one operation.
func NewFixed() *Fixed {
	return &Fixed{stats: make(map[string]int)}
}

func (f *Fixed) Name() string { return "fixed" }

func (f *Fixed) DetectBoundaries(text string, opts *types.ChunkingOptions) ([]types.Boundary, error) {
	if text == "" {
		return nil, types.ErrEmptyInput
	}
	stride := len(text) / 10
	if opts != nil {
		if mc := opts.MaxChunkChars(); mc > 0 {
			// Half the budget per section keeps the assembler free to
			// pack two sections per chunk.
			stride = mc / 2
		}
	}
	if stride < 64 {
		stride = 64
	}

	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}
	for pos := stride; pos < len(text); pos += stride {
		snapped := textscan.SafeSplitPoint(text, pos, fixedBackscan)
		boundaries = append(boundaries, types.Boundary{
			Index:    snapped,
			Text:     snippet(text, snapped),
			Type:     types.BoundaryWord,
			Priority: types.PriorityWord,
		})
		f.stats["strides"]++
	}
	return types.SortBoundaries(boundaries), nil
}

func (f *Fixed) Stats() map[string]int { return f.stats }

func (f *Fixed) NewTracker() Tracker { return noopTracker{} }

func (f *Fixed) OverlapTail(prev string, overlapChars int) string {
	return baseOverlap(prev, overlapChars)
}

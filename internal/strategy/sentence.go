package strategy

import (
	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// Sentence chunks purely at sentence boundaries, with paragraph breaks as
// stronger anchors. Best for clean prose where sentence integrity matters
// more than structure.
type Sentence struct {
	stats map[string]int
}

// NewSentence returns a fresh sentence strategy for one operation.
func NewSentence() *Sentence {
	return &Sentence{stats: make(map[string]int)}
}

func (s *Sentence) Name() string { return "sentence" }

func (s *Sentence) DetectBoundaries(text string, _ *types.ChunkingOptions) ([]types.Boundary, error) {
	if text == "" {
		return nil, types.ErrEmptyInput
	}
	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}

	for _, p := range textscan.ParagraphBreaks(text) {
		boundaries = append(boundaries, types.Boundary{
			Index:    p,
			Text:     snippet(text, p),
			Type:     types.BoundaryParagraph,
			Priority: types.PriorityParagraph,
		})
		s.stats["paragraphs"]++
	}
	for _, p := range textscan.SentenceBreaks(text) {
		boundaries = append(boundaries, types.Boundary{
			Index:    p,
			Text:     snippet(text, p),
			Type:     types.BoundarySentence,
			Priority: types.PrioritySentence,
		})
		s.stats["sentences"]++
	}

	return types.SortBoundaries(boundaries), nil
}

func (s *Sentence) Stats() map[string]int { return s.stats }

func (s *Sentence) NewTracker() Tracker { return noopTracker{} }

func (s *Sentence) OverlapTail(prev string, overlapChars int) string {
	return baseOverlap(prev, overlapChars)
}

package strategy

import (
	"sort"

	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// prioritySlotShare is the fraction of the remaining selection budget given
// to the highest-priority leftover boundaries; the rest is stride-sampled
// across the document so coverage never clusters near the start.
const prioritySlotShare = 0.7

// SelectBoundaries bounds a boundary list to limit entries. Boundaries at or
// above the paragraph tier are always retained; the leftover budget is
// filled first by priority, then by even stride sampling over document
// positions. Input and output are position-ordered.
func SelectBoundaries(boundaries []types.Boundary, limit int) []types.Boundary {
	if limit <= 0 {
		limit = types.MaxBoundaries
	}
	if len(boundaries) <= limit {
		return boundaries
	}

	mandatory := make([]types.Boundary, 0, limit)
	var optional []types.Boundary
	for _, b := range boundaries {
		if b.Priority >= types.PriorityParagraph {
			mandatory = append(mandatory, b)
		} else {
			optional = append(optional, b)
		}
	}
	if len(mandatory) >= limit {
		return strideSample(mandatory, limit)
	}

	budget := limit - len(mandatory)
	prioritySlots := int(float64(budget) * prioritySlotShare)
	if prioritySlots > len(optional) {
		prioritySlots = len(optional)
	}

	// Highest-priority leftovers first; document order breaks ties so the
	// choice is deterministic.
	byPriority := make([]types.Boundary, len(optional))
	copy(byPriority, optional)
	sort.SliceStable(byPriority, func(i, j int) bool {
		return byPriority[i].Priority > byPriority[j].Priority
	})
	selected := make(map[int]struct{}, prioritySlots)
	picked := append(mandatory, byPriority[:prioritySlots]...)
	for _, b := range byPriority[:prioritySlots] {
		selected[b.Index] = struct{}{}
	}

	// Stride-sample the remainder across the whole document span.
	strideSlots := budget - prioritySlots
	if strideSlots > 0 {
		var rest []types.Boundary
		for _, b := range optional {
			if _, ok := selected[b.Index]; !ok {
				rest = append(rest, b)
			}
		}
		picked = append(picked, strideSample(rest, strideSlots)...)
	}

	sort.SliceStable(picked, func(i, j int) bool { return picked[i].Index < picked[j].Index })
	return picked
}

// strideSample keeps n entries evenly spread over the slice.
func strideSample(boundaries []types.Boundary, n int) []types.Boundary {
	if n <= 0 || len(boundaries) == 0 {
		return nil
	}
	if len(boundaries) <= n {
		return boundaries
	}
	out := make([]types.Boundary, 0, n)
	step := float64(len(boundaries)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, boundaries[int(float64(i)*step)])
	}
	return out
}

// Coverage thresholds for the fallback ladder.
const (
	minBoundariesLargeText = 3
	largeTextLen           = 1000
	minBoundariesSentences = 5
	sentenceTextLen        = 500

	// sentenceSampleAbove switches sentence injection to sampling so huge
	// low-structure documents do not pay a full sentence scan.
	sentenceSampleAbove = 256 * 1024
	sentenceSampleEvery = 8
)

// EnsureCoverage applies the fallback ladder when a strategy found too few
// boundaries: paragraph breaks first, then (when the options allow it)
// sentence breaks. Returns a position-ordered list.
func EnsureCoverage(text string, boundaries []types.Boundary, opts *types.ChunkingOptions) []types.Boundary {
	if len(boundaries) < minBoundariesLargeText && len(text) > largeTextLen {
		for _, p := range textscan.ParagraphBreaks(text) {
			boundaries = append(boundaries, types.Boundary{
				Index:    p,
				Type:     types.BoundaryFallback,
				Priority: types.PriorityParagraph,
			})
		}
		boundaries = types.SortBoundaries(boundaries)
	}

	respectSentences := opts == nil || opts.RespectSentences
	if len(boundaries) < minBoundariesSentences && respectSentences && len(text) > sentenceTextLen {
		breaks := textscan.SentenceBreaks(text)
		if len(text) > sentenceSampleAbove {
			sampled := breaks[:0]
			for i := 0; i < len(breaks); i += sentenceSampleEvery {
				sampled = append(sampled, breaks[i])
			}
			breaks = sampled
		}
		for _, p := range breaks {
			boundaries = append(boundaries, types.Boundary{
				Index:    p,
				Type:     types.BoundaryFallback,
				Priority: types.PrioritySentence,
			})
		}
		boundaries = types.SortBoundaries(boundaries)
	}
	return boundaries
}

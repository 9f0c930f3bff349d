package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gochunk/pkg/types"
)

func TestSelectBoundaries_UnderLimitUntouched(t *testing.T) {
	bs := []types.Boundary{{Index: 0}, {Index: 10}, {Index: 20}}
	out := SelectBoundaries(bs, 100)
	assert.Equal(t, bs, out)
}

func TestSelectBoundaries_RetainsParagraphTier(t *testing.T) {
	var bs []types.Boundary
	for i := 0; i < 1000; i++ {
		bs = append(bs, types.Boundary{Index: i * 100, Type: types.BoundarySentence, Priority: types.PrioritySentence})
	}
	var paragraphIdx []int
	for i := 0; i < 20; i++ {
		idx := i*5000 + 7
		paragraphIdx = append(paragraphIdx, idx)
		bs = append(bs, types.Boundary{Index: idx, Type: types.BoundaryParagraph, Priority: types.PriorityParagraph})
	}

	out := SelectBoundaries(bs, 100)
	require.LessOrEqual(t, len(out), 100)

	kept := make(map[int]bool)
	for _, b := range out {
		kept[b.Index] = true
	}
	for _, idx := range paragraphIdx {
		assert.True(t, kept[idx], "paragraph-tier boundary %d must survive selection", idx)
	}
}

func TestSelectBoundaries_FullSpanCoverage(t *testing.T) {
	var bs []types.Boundary
	for i := 0; i < 50000; i++ {
		bs = append(bs, types.Boundary{Index: i * 10, Type: types.BoundaryLine, Priority: types.PriorityLine})
	}
	out := SelectBoundaries(bs, 1000)
	require.LessOrEqual(t, len(out), 1000)

	// The tail of the document keeps representation instead of clustering
	// at the start.
	last := out[len(out)-1].Index
	assert.Greater(t, last, 40000*10*8/10, "selection must cover the document tail")

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i].Index, out[i-1].Index, "output must stay position ordered")
	}
}

func TestSelectBoundaries_DefaultLimit(t *testing.T) {
	var bs []types.Boundary
	for i := 0; i < types.MaxBoundaries+5000; i++ {
		bs = append(bs, types.Boundary{Index: i, Priority: types.PrioritySentence})
	}
	out := SelectBoundaries(bs, 0)
	assert.LessOrEqual(t, len(out), types.MaxBoundaries)
}

func TestEnsureCoverage_InjectsParagraphs(t *testing.T) {
	text := strings.Repeat("Some sentence content here without much structure. ", 40) // >1000 chars
	text = strings.ReplaceAll(text, "structure. Some", "structure.\n\nSome")

	out := EnsureCoverage(text, []types.Boundary{{Index: 0}}, types.DefaultOptions())
	assert.Greater(t, len(out), 3, "paragraph fallback must fire")
}

func TestEnsureCoverage_SentenceLadder(t *testing.T) {
	// No paragraph breaks at all; sentences are the only fallback left.
	text := strings.Repeat("One short sentence here. ", 40)
	opts := types.DefaultOptions()

	out := EnsureCoverage(text, nil, opts)
	assert.GreaterOrEqual(t, len(out), minBoundariesSentences)

	opts.RespectSentences = false
	out = EnsureCoverage(text, nil, opts)
	assert.Less(t, len(out), minBoundariesSentences, "sentence injection disabled")
}

func TestEnsureCoverage_SmallTextUntouched(t *testing.T) {
	bs := []types.Boundary{{Index: 0}}
	out := EnsureCoverage("tiny text", bs, types.DefaultOptions())
	assert.Equal(t, bs, out)
}

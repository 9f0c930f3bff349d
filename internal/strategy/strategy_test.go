package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gochunk/pkg/types"
)

func TestNew_Resolution(t *testing.T) {
	tests := []struct {
		strategy types.ChunkingStrategy
		format   types.ContentFormat
		want     string
	}{
		{types.StrategySemantic, types.FormatText, "semantic"},
		{types.StrategySentence, types.FormatMarkdown, "sentence"},
		{types.StrategyFixed, types.FormatText, "fixed"},
		{types.StrategyStructural, types.FormatMarkdown, "structural:markdown"},
		{types.StrategyAuto, types.FormatMarkdown, "structural:markdown"},
		{types.StrategyAuto, types.FormatJSON, "structural:json"},
		{types.StrategyAuto, types.FormatText, "semantic"},
	}
	for _, tt := range tests {
		got := New(tt.strategy, tt.format)
		assert.Equal(t, tt.want, got.Name())
	}
}

func TestNew_FreshInstancePerOperation(t *testing.T) {
	a := New(types.StrategySemantic, types.FormatText)
	b := New(types.StrategySemantic, types.FormatText)
	assert.NotSame(t, a, b)
}

func TestSemantic_DetectBoundaries(t *testing.T) {
	s := NewSemantic()
	text := "First paragraph one. Second sentence here.\n\nSecond paragraph follows. Another line.\n\nThird."
	bs, err := s.DetectBoundaries(text, types.DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, bs)

	assert.Equal(t, 0, bs[0].Index, "document-start boundary always present")
	var paragraphs, sentences int
	for _, b := range bs {
		switch b.Type {
		case types.BoundaryParagraph:
			paragraphs++
		case types.BoundarySentence:
			sentences++
		}
	}
	assert.Equal(t, 2, paragraphs)
	assert.GreaterOrEqual(t, sentences, 2)

	for i := 1; i < len(bs); i++ {
		assert.Greater(t, bs[i].Index, bs[i-1].Index, "indices must be strictly increasing")
	}
}

func TestSemantic_EmptyInput(t *testing.T) {
	s := NewSemantic()
	_, err := s.DetectBoundaries("", nil)
	assert.ErrorIs(t, err, types.ErrEmptyInput)
}

func TestSemantic_HeadingLike(t *testing.T) {
	assert.True(t, headingLike("# Title"))
	assert.True(t, headingLike("Configuration:"))
	assert.True(t, headingLike("OVERVIEW"))
	assert.False(t, headingLike("Plain sentence without markers"))
	assert.False(t, headingLike("#nospace"))
}

func TestSentence_DetectBoundaries(t *testing.T) {
	s := NewSentence()
	bs, err := s.DetectBoundaries("One sentence. Two sentence. Three sentence.", nil)
	require.NoError(t, err)
	sentences := 0
	for _, b := range bs {
		if b.Type == types.BoundarySentence {
			sentences++
		}
	}
	assert.Equal(t, 2, sentences)
}

func TestFixed_DetectBoundaries(t *testing.T) {
	f := NewFixed()
	opts := types.DefaultOptions()
	opts.MaxTokensPerChunk = 100
	opts.SafetyMargin = 1.0
	text := strings.Repeat("word and more words to fill the line here ", 200)

	bs, err := f.DetectBoundaries(text, opts)
	require.NoError(t, err)
	assert.Greater(t, len(bs), 10)
	for _, b := range bs[1:] {
		// Strides snap to whitespace: every boundary starts a word.
		assert.NotEqual(t, byte(' '), text[b.Index])
	}
}

func TestStructural_Markdown(t *testing.T) {
	s := NewStructural(types.FormatMarkdown)
	text := "# Top\n\nintro paragraph text\n\n## Middle\n\nmore text here\n\n```go\ncode()\n```\n\n### Deep\n\n- item one\n- item two\n"
	bs, err := s.DetectBoundaries(text, nil)
	require.NoError(t, err)

	var headings []types.Boundary
	var codeBlocks int
	for _, b := range bs {
		switch b.Type {
		case types.BoundaryHeading:
			headings = append(headings, b)
		case types.BoundaryCodeBlock:
			codeBlocks++
		}
	}
	require.Len(t, headings, 3)
	assert.Equal(t, "Top", headings[0].Text)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, "Middle", headings[1].Text)
	assert.Equal(t, 2, headings[1].Level)
	assert.Equal(t, "Deep", headings[2].Text)
	assert.Equal(t, 3, headings[2].Level)
	assert.Equal(t, 1, codeBlocks)

	// Boundaries point at line starts so the chunk keeps the markers.
	assert.Equal(t, byte('#'), text[headings[1].Index])
}

func TestHeadingTracker_Hierarchy(t *testing.T) {
	tr := &headingTracker{}
	tr.Observe("", types.Boundary{Type: types.BoundaryHeading, Level: 1, Text: "Top"})
	tr.Observe("", types.Boundary{Type: types.BoundaryHeading, Level: 2, Text: "Middle"})
	tr.Observe("", types.Boundary{Type: types.BoundaryHeading, Level: 3, Text: "Deep"})
	assert.Equal(t, "Context: Top > Middle > Deep", tr.PreservedContext())

	// A new level-2 heading pops level 3 and replaces level 2.
	tr.Observe("", types.Boundary{Type: types.BoundaryHeading, Level: 2, Text: "Sibling"})
	assert.Equal(t, "Context: Top > Sibling", tr.PreservedContext())

	// Non-heading boundaries leave the stack alone.
	tr.Observe("body", types.Boundary{Type: types.BoundaryParagraph})
	assert.Equal(t, "Context: Top > Sibling", tr.PreservedContext())
}

func TestStructural_JSON(t *testing.T) {
	s := NewStructural(types.FormatJSON)
	text := `[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}, {"id": 3, "name": "c"}]`
	bs, err := s.DetectBoundaries(text, nil)
	require.NoError(t, err)

	sections := 0
	for _, b := range bs {
		if b.Type == types.BoundarySection {
			sections++
		}
	}
	assert.Equal(t, 2, sections, "boundary between each pair of top-level elements")
}

func TestStructural_JSONMalformed(t *testing.T) {
	s := NewStructural(types.FormatJSON)
	_, err := s.DetectBoundaries(`{"broken": [1, 2`, nil)
	require.Error(t, err)

	var fpe *types.FormatParsingError
	require.ErrorAs(t, err, &fpe)
	assert.Equal(t, types.FormatJSON, fpe.Format)
}

func TestStructural_JSONIgnoresStringDelimiters(t *testing.T) {
	s := NewStructural(types.FormatJSON)
	text := `[{"a": "comma, inside"}, {"b": "brace } inside"}]`
	bs, err := s.DetectBoundaries(text, nil)
	require.NoError(t, err)
	sections := 0
	for _, b := range bs {
		if b.Type == types.BoundarySection {
			sections++
		}
	}
	assert.Equal(t, 1, sections)
}

func TestStructural_XML(t *testing.T) {
	s := NewStructural(types.FormatXML)
	text := `<?xml version="1.0"?><catalog><book id="1"/><book id="2"><title>Go</title></book><book id="3"/></catalog>`
	bs, err := s.DetectBoundaries(text, nil)
	require.NoError(t, err)
	sections := 0
	for _, b := range bs {
		if b.Type == types.BoundarySection {
			sections++
		}
	}
	assert.Equal(t, 3, sections)
}

func TestStructural_XMLMalformed(t *testing.T) {
	s := NewStructural(types.FormatXML)
	_, err := s.DetectBoundaries(`</closing><without><opening>`, nil)
	var fpe *types.FormatParsingError
	require.ErrorAs(t, err, &fpe)
	assert.Equal(t, types.FormatXML, fpe.Format)
}

func TestStructural_Code(t *testing.T) {
	s := NewStructural(types.FormatCode)
	text := "package main\n\nfunc First() {\n\tcall()\n}\n\nfunc Second() {\n\tcall()\n}\n"
	bs, err := s.DetectBoundaries(text, nil)
	require.NoError(t, err)

	var decls []types.Boundary
	for _, b := range bs {
		if b.Type == types.BoundaryCodeBlock {
			decls = append(decls, b)
		}
	}
	require.GreaterOrEqual(t, len(decls), 3)
	assert.Equal(t, "package main", decls[0].Text)
}

func TestDeclTracker(t *testing.T) {
	tr := &declTracker{}
	tr.Observe("", types.Boundary{Type: types.BoundaryCodeBlock, Level: 0, Text: "class Widget:"})
	tr.Observe("", types.Boundary{Type: types.BoundaryCodeBlock, Level: 4, Text: "def render(self):"})
	assert.Equal(t, "Context: class Widget: > def render(self):", tr.PreservedContext())

	tr.Observe("", types.Boundary{Type: types.BoundaryCodeBlock, Level: 0, Text: "class Other:"})
	assert.Equal(t, "Context: class Other:", tr.PreservedContext())
}

func TestStructural_Logs(t *testing.T) {
	s := NewStructural(types.FormatLogs)
	text := "2024-03-01T10:00:00 INFO start\n  continuation line\n2024-03-01T10:00:01 ERROR boom\n2024-03-01T10:00:02 INFO done\n"
	bs, err := s.DetectBoundaries(text, nil)
	require.NoError(t, err)

	lines := 0
	for _, b := range bs {
		if b.Type == types.BoundaryLine {
			lines++
		}
	}
	assert.Equal(t, 2, lines, "continuation lines do not start records")
}

func TestOverlapTail_SnapsToNaturalStart(t *testing.T) {
	s := NewSemantic()
	prev := "Some early content that will be dropped. The tail sentence survives intact."
	tail := s.OverlapTail(prev, 40)
	assert.Equal(t, "The tail sentence survives intact.", tail)
}

func TestOverlapTail_Limits(t *testing.T) {
	s := NewSemantic()
	assert.Equal(t, "", s.OverlapTail("anything", 0))
	assert.Equal(t, "short", s.OverlapTail("short", 100))
	assert.Equal(t, "", s.OverlapTail("", 50))
}

func TestOverlapTail_MultiByteSafe(t *testing.T) {
	s := NewSemantic()
	prev := strings.Repeat("界", 100)
	tail := s.OverlapTail(prev, 50)
	assert.True(t, strings.HasPrefix(tail, "界"), "overlap must start on a rune boundary")
}

func TestStrategies_ReportScanStats(t *testing.T) {
	text := "First paragraph. It has two sentences.\n\nSecond paragraph here.\n\nThird one.\n"

	sem := NewSemantic()
	_, err := sem.DetectBoundaries(text, types.DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, sem.Stats()["paragraphs"], 0)

	sen := NewSentence()
	_, err = sen.DetectBoundaries(text, types.DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, sen.Stats()["sentences"], 0)

	fx := NewFixed()
	_, err = fx.DetectBoundaries(strings.Repeat("word soup without breaks ", 400), types.DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, fx.Stats()["strides"], 0)

	md := NewStructural(types.FormatMarkdown)
	_, err = md.DetectBoundaries("# Title\n\nBody text.\n\n## Sub\n\nMore body.\n", types.DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, md.Stats()["headings"], 0)
}

package strategy

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/dshills/gochunk/pkg/types"
)

// markdownBoundaries walks the goldmark AST and emits boundaries at
// headings, fenced code blocks, lists, and paragraphs. Offsets always point
// at the start of the source line so chunks keep markdown markers intact.
func (s *Structural) markdownBoundaries(text string) ([]types.Boundary, error) {
	src := []byte(text)
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}
	walkErr := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			start, ok := nodeLineStart(src, n)
			if !ok {
				return ast.WalkContinue, nil
			}
			boundaries = append(boundaries, types.Boundary{
				Index:    start,
				Text:     headingTitle(src, start),
				Type:     types.BoundaryHeading,
				Priority: types.PriorityHeading,
				Level:    node.Level,
			})
			s.stats["headings"]++
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			start, ok := nodeLineStart(src, n)
			if !ok {
				return ast.WalkContinue, nil
			}
			if _, fenced := n.(*ast.FencedCodeBlock); fenced {
				// Lines() covers the content; the opening fence is the
				// line above it.
				start = prevLineStart(src, start)
			}
			boundaries = append(boundaries, types.Boundary{
				Index:    start,
				Text:     snippet(text, start),
				Type:     types.BoundaryCodeBlock,
				Priority: types.PriorityCodeBlock,
			})
			s.stats["code_blocks"]++
			return ast.WalkSkipChildren, nil
		case *ast.List:
			start, ok := nodeLineStart(src, n)
			if !ok {
				return ast.WalkContinue, nil
			}
			boundaries = append(boundaries, types.Boundary{
				Index:    start,
				Text:     snippet(text, start),
				Type:     types.BoundaryParagraph,
				Priority: types.PriorityParagraph,
			})
			s.stats["lists"]++
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			start, ok := nodeLineStart(src, n)
			if !ok {
				return ast.WalkContinue, nil
			}
			if start > 0 {
				boundaries = append(boundaries, types.Boundary{
					Index:    start,
					Text:     snippet(text, start),
					Type:     types.BoundaryParagraph,
					Priority: types.PriorityParagraph,
				})
				s.stats["paragraphs"]++
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		return nil, &types.BoundaryDetectionError{
			Strategy: s.Name(),
			TextLen:  len(text),
			Err:      fmt.Errorf("markdown walk: %w", walkErr),
		}
	}
	return boundaries, nil
}

// nodeLineStart returns the start offset of the line holding the node's
// first source segment. Nodes without source lines (thematic breaks, empty
// blocks) report ok=false; descending into them may still find content.
func nodeLineStart(src []byte, n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		if lines != nil && lines.Len() > 0 {
			return lineStart(src, lines.At(0).Start), true
		}
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if start, ok := nodeLineStart(src, child); ok {
			return start, true
		}
	}
	return 0, false
}

func lineStart(src []byte, i int) int {
	if i > len(src) {
		i = len(src)
	}
	for i > 0 && src[i-1] != '\n' {
		i--
	}
	return i
}

func prevLineStart(src []byte, i int) int {
	if i == 0 {
		return 0
	}
	return lineStart(src, i-1)
}

// headingTitle strips the ATX markers from the heading line at start.
func headingTitle(src []byte, start int) string {
	line := string(src[start:])
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
}

// headingTracker maintains the active heading hierarchy: observing a level-N
// heading pops every level >= N before pushing.
type headingTracker struct {
	stack []headingLevel
}

type headingLevel struct {
	level int
	title string
}

func (t *headingTracker) Observe(_ string, b types.Boundary) {
	if b.Type != types.BoundaryHeading {
		return
	}
	level := b.Level
	if level <= 0 {
		level = 1
	}
	for len(t.stack) > 0 && t.stack[len(t.stack)-1].level >= level {
		t.stack = t.stack[:len(t.stack)-1]
	}
	t.stack = append(t.stack, headingLevel{level: level, title: b.Text})
}

func (t *headingTracker) PreservedContext() string {
	if len(t.stack) == 0 {
		return ""
	}
	titles := make([]string, len(t.stack))
	for i, h := range t.stack {
		titles[i] = h.title
	}
	return "Context: " + strings.Join(titles, " > ")
}

package strategy

import (
	"strings"
	"unicode"

	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// Semantic chunks prose at paragraph and sentence boundaries, with a light
// heading heuristic so documents that merely look like outlines keep their
// topic lines intact.
type Semantic struct {
	stats map[string]int
}

// NewSemantic returns a fresh semantic strategy for one operation.
func NewSemantic() *Semantic {
	return &Semantic{stats: make(map[string]int)}
}

func (s *Semantic) Name() string { return "semantic" }

func (s *Semantic) DetectBoundaries(text string, opts *types.ChunkingOptions) ([]types.Boundary, error) {
	if text == "" {
		return nil, types.ErrEmptyInput
	}
	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}

	for _, p := range textscan.ParagraphBreaks(text) {
		b := types.Boundary{
			Index:    p,
			Text:     snippet(text, p),
			Type:     types.BoundaryParagraph,
			Priority: types.PriorityParagraph,
		}
		if headingLike(lineAt(text, p)) {
			b.Type = types.BoundaryHeading
			b.Priority = types.PriorityHeading
		}
		boundaries = append(boundaries, b)
		s.stats["paragraphs"]++
	}

	if opts == nil || opts.RespectSentences {
		for _, p := range textscan.SentenceBreaks(text) {
			boundaries = append(boundaries, types.Boundary{
				Index:    p,
				Text:     snippet(text, p),
				Type:     types.BoundarySentence,
				Priority: types.PrioritySentence,
			})
			s.stats["sentences"]++
		}
	}

	return types.SortBoundaries(boundaries), nil
}

func (s *Semantic) Stats() map[string]int { return s.stats }

func (s *Semantic) NewTracker() Tracker { return &semanticTracker{} }

func (s *Semantic) OverlapTail(prev string, overlapChars int) string {
	return baseOverlap(prev, overlapChars)
}

// semanticTracker remembers the most recent heading-like line so prose
// chunks after a topic break still carry the topic.
type semanticTracker struct {
	topic string
}

func (t *semanticTracker) Observe(section string, b types.Boundary) {
	if b.Type == types.BoundaryHeading {
		t.topic = strings.TrimSpace(firstLine(section))
		return
	}
	if line := strings.TrimSpace(firstLine(section)); headingLike(line) {
		t.topic = line
	}
}

func (t *semanticTracker) PreservedContext() string {
	if t.topic == "" {
		return ""
	}
	return "Context: " + t.topic
}

// headingLike reports short topic lines: markdown headings, all-caps lines,
// and lines ending with a colon.
func headingLike(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 80 {
		return false
	}
	if strings.HasPrefix(line, "#") {
		rest := strings.TrimLeft(line, "#")
		return strings.HasPrefix(rest, " ")
	}
	if strings.HasSuffix(line, ":") && !strings.Contains(line, ". ") {
		return true
	}
	letters, uppers := 0, 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters >= 3 && letters == uppers
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func lineAt(text string, offset int) string {
	if offset >= len(text) {
		return ""
	}
	return firstLine(text[offset:])
}

// snippet trims a short diagnostic sample at a boundary.
const snippetLen = 40

func snippet(text string, offset int) string {
	end := offset + snippetLen
	if end > len(text) {
		end = len(text)
	}
	for end > offset && text[end-1]&0xC0 == 0x80 {
		end--
	}
	return strings.TrimSpace(text[offset:end])
}

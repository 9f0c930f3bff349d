package strategy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

var (
	declRe      = regexp.MustCompile(`^\s*(func|def|class|type|struct|interface|impl|fn|public|private|protected|static|package|module|const|var|let)\b`)
	logRecordRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{2}:\d{2}:\d{2}|\[?(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL))`)
)

// Structural chunks format-aware: markdown headings and fences, code
// declarations, top-level JSON/XML elements, log records, CSV rows. Falls
// back to semantic scanning for plain text.
type Structural struct {
	format types.ContentFormat
	stats  map[string]int
}

// NewStructural returns a fresh structural strategy bound to a format.
func NewStructural(format types.ContentFormat) *Structural {
	return &Structural{format: format, stats: make(map[string]int)}
}

func (s *Structural) Name() string {
	return "structural:" + string(s.format)
}

func (s *Structural) DetectBoundaries(text string, opts *types.ChunkingOptions) (boundaries []types.Boundary, err error) {
	if text == "" {
		return nil, types.ErrEmptyInput
	}
	// Structured parsers must never leak a panic as anything but a
	// detection error the assembler can fall back from.
	defer func() {
		if r := recover(); r != nil {
			boundaries = nil
			err = &types.BoundaryDetectionError{
				Strategy: s.Name(),
				TextLen:  len(text),
				Err:      fmt.Errorf("parser panic: %v", r),
			}
		}
	}()

	switch s.format {
	case types.FormatMarkdown:
		boundaries, err = s.markdownBoundaries(text)
	case types.FormatCode:
		boundaries, err = s.codeBoundaries(text)
	case types.FormatJSON:
		boundaries, err = s.jsonBoundaries(text)
	case types.FormatXML:
		boundaries, err = s.xmlBoundaries(text)
	case types.FormatLogs:
		boundaries, err = s.logBoundaries(text)
	case types.FormatCSV:
		boundaries, err = s.csvBoundaries(text)
	default:
		sem := NewSemantic()
		boundaries, err = sem.DetectBoundaries(text, opts)
	}
	if err != nil {
		return nil, err
	}
	return types.SortBoundaries(boundaries), nil
}

func (s *Structural) Stats() map[string]int { return s.stats }

func (s *Structural) NewTracker() Tracker {
	switch s.format {
	case types.FormatMarkdown:
		return &headingTracker{}
	case types.FormatCode:
		return &declTracker{}
	default:
		return noopTracker{}
	}
}

func (s *Structural) OverlapTail(prev string, overlapChars int) string {
	return baseOverlap(prev, overlapChars)
}

// codeBoundaries marks declaration lines and blank-line gaps. Level records
// the indent depth so selection favors top-level declarations.
func (s *Structural) codeBoundaries(text string) ([]types.Boundary, error) {
	// No synthetic document boundary here: a declaration on the first line
	// keeps its own type so trackers see it. SortBoundaries adds the
	// document start only when line zero has no boundary.
	var boundaries []types.Boundary
	offset := 0
	prevBlank := false
	for line := range strings.Lines(text) {
		trimmed := strings.TrimRight(line, "\n")
		switch {
		case declRe.MatchString(trimmed) && strings.TrimSpace(trimmed) != "":
			indent := len(trimmed) - len(strings.TrimLeft(trimmed, " \t"))
			priority := types.PriorityCodeBlock
			if indent > 0 {
				priority = types.PriorityLine
			}
			boundaries = append(boundaries, types.Boundary{
				Index:    offset,
				Text:     strings.TrimSpace(trimmed),
				Type:     types.BoundaryCodeBlock,
				Priority: priority,
				Level:    indent,
			})
			s.stats["decls"]++
		case strings.TrimSpace(trimmed) == "":
			prevBlank = true
			offset += len(line)
			continue
		case prevBlank:
			boundaries = append(boundaries, types.Boundary{
				Index:    offset,
				Text:     snippet(text, offset),
				Type:     types.BoundaryParagraph,
				Priority: types.PriorityParagraph,
			})
		}
		prevBlank = false
		offset += len(line)
	}
	return boundaries, nil
}

// jsonBoundaries splits between top-level elements. Malformed input is a
// parsing error; the assembler converts it into a semantic fallback.
func (s *Structural) jsonBoundaries(text string) ([]types.Boundary, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return nil, &types.FormatParsingError{
			Format: types.FormatJSON,
			Err:    fmt.Errorf("content is not valid JSON"),
		}
	}

	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ',':
			if depth == 1 {
				start := i + 1
				for start < len(text) && (text[start] == ' ' || text[start] == '\n' || text[start] == '\t' || text[start] == '\r') {
					start++
				}
				if start < len(text) {
					boundaries = append(boundaries, types.Boundary{
						Index:    start,
						Text:     snippet(text, start),
						Type:     types.BoundarySection,
						Priority: types.PrioritySection,
					})
					s.stats["elements"]++
				}
			}
		}
	}
	return boundaries, nil
}

// xmlBoundaries splits before each depth-1 element start tag.
func (s *Structural) xmlBoundaries(text string) ([]types.Boundary, error) {
	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}
	depth := 0
	i := 0
	for i < len(text) {
		open := strings.IndexByte(text[i:], '<')
		if open < 0 {
			break
		}
		pos := i + open
		rest := text[pos:]
		switch {
		case strings.HasPrefix(rest, "<?"), strings.HasPrefix(rest, "<!--"), strings.HasPrefix(rest, "<!"):
			// Declarations and comments do not affect depth.
		case strings.HasPrefix(rest, "</"):
			depth--
			if depth < 0 {
				return nil, &types.FormatParsingError{
					Format: types.FormatXML,
					Offset: pos,
					Err:    fmt.Errorf("closing tag without matching open"),
				}
			}
		default:
			if depth == 1 {
				boundaries = append(boundaries, types.Boundary{
					Index:    pos,
					Text:     snippet(text, pos),
					Type:     types.BoundarySection,
					Priority: types.PrioritySection,
				})
				s.stats["elements"]++
			}
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return nil, &types.FormatParsingError{
					Format: types.FormatXML,
					Offset: pos,
					Err:    fmt.Errorf("unterminated tag"),
				}
			}
			if !strings.HasSuffix(rest[:end], "/") {
				depth++
			}
		}
		next := strings.IndexByte(text[pos+1:], '<')
		if next < 0 {
			i = len(text)
		} else {
			i = pos + 1 + next
		}
	}
	return boundaries, nil
}

// logBoundaries starts a record at each line that opens with a timestamp or
// level tag; other lines are continuations.
func (s *Structural) logBoundaries(text string) ([]types.Boundary, error) {
	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}
	offset := 0
	matched := 0
	for line := range strings.Lines(text) {
		if offset > 0 && logRecordRe.MatchString(line) {
			boundaries = append(boundaries, types.Boundary{
				Index:    offset,
				Text:     snippet(text, offset),
				Type:     types.BoundaryLine,
				Priority: types.PriorityLine,
			})
			matched++
		}
		offset += len(line)
	}
	if matched == 0 {
		// Not recognizably a log; plain line boundaries still work.
		for _, p := range textscan.LineBreaks(text) {
			boundaries = append(boundaries, types.Boundary{
				Index:    p,
				Type:     types.BoundaryLine,
				Priority: types.PriorityLine,
			})
		}
	}
	s.stats["records"] = matched
	return boundaries, nil
}

// csvBoundaries splits at row starts, keeping the header with the first
// chunk.
func (s *Structural) csvBoundaries(text string) ([]types.Boundary, error) {
	boundaries := []types.Boundary{{Index: 0, Type: types.BoundaryDocument, Priority: types.PriorityDocument}}
	for _, p := range textscan.LineBreaks(text) {
		if p >= len(text) {
			break
		}
		boundaries = append(boundaries, types.Boundary{
			Index:    p,
			Type:     types.BoundaryLine,
			Priority: types.PriorityLine,
		})
		s.stats["rows"]++
	}
	return boundaries, nil
}

// declTracker remembers the enclosing top-level declaration and the most
// recent nested one, e.g. the current class and method.
type declTracker struct {
	topLevel string
	nested   string
}

func (t *declTracker) Observe(section string, b types.Boundary) {
	if b.Type != types.BoundaryCodeBlock {
		return
	}
	if b.Level == 0 {
		t.topLevel = b.Text
		t.nested = ""
		return
	}
	t.nested = b.Text
}

func (t *declTracker) PreservedContext() string {
	switch {
	case t.topLevel == "" && t.nested == "":
		return ""
	case t.nested == "":
		return "Context: " + t.topLevel
	case t.topLevel == "":
		return "Context: " + t.nested
	default:
		return "Context: " + t.topLevel + " > " + t.nested
	}
}

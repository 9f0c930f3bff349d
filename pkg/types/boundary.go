package types

import "sort"

// BoundaryType classifies the kind of split point a strategy found.
type BoundaryType string

const (
	BoundaryDocument  BoundaryType = "document"
	BoundarySection   BoundaryType = "section"
	BoundaryHeading   BoundaryType = "heading"
	BoundaryCodeBlock BoundaryType = "code_block"
	BoundaryParagraph BoundaryType = "paragraph"
	BoundaryLine      BoundaryType = "line"
	BoundarySentence  BoundaryType = "sentence"
	BoundaryClause    BoundaryType = "clause"
	BoundaryWord      BoundaryType = "word"
	BoundaryFallback  BoundaryType = "fallback"
)

// Priority tiers for boundary types. Higher is stronger. The paragraph tier
// is the floor for "always retain" during boundary selection.
const (
	PriorityDocument  = 100
	PrioritySection   = 90
	PriorityHeading   = 80
	PriorityCodeBlock = 70
	PriorityParagraph = 60
	PriorityLine      = 50
	PrioritySentence  = 40
	PriorityClause    = 30
	PriorityWord      = 20
	PriorityFallback  = 10
)

// PriorityFor returns the default priority tier for a boundary type.
func PriorityFor(t BoundaryType) int {
	switch t {
	case BoundaryDocument:
		return PriorityDocument
	case BoundarySection:
		return PrioritySection
	case BoundaryHeading:
		return PriorityHeading
	case BoundaryCodeBlock:
		return PriorityCodeBlock
	case BoundaryParagraph:
		return PriorityParagraph
	case BoundaryLine:
		return PriorityLine
	case BoundarySentence:
		return PrioritySentence
	case BoundaryClause:
		return PriorityClause
	case BoundaryWord:
		return PriorityWord
	default:
		return PriorityFallback
	}
}

// Boundary is a candidate split point found by a strategy. Index is the byte
// offset where a new section begins; End, when set, marks the end of the
// construct the boundary opens (a heading line, a fenced code block).
type Boundary struct {
	Index    int
	End      int
	Text     string // raw snippet at the boundary, trimmed for diagnostics
	Type     BoundaryType
	Priority int

	// Level carries strategy-specific nesting, e.g. markdown heading depth
	// or brace depth for code. Zero when not applicable.
	Level int
}

// SortBoundaries orders boundaries by position and removes duplicate
// positions, keeping the highest-priority boundary at each index. A
// document-start boundary is synthesized when absent so the assembler always
// has a section origin.
func SortBoundaries(boundaries []Boundary) []Boundary {
	if len(boundaries) == 0 {
		return []Boundary{{Index: 0, Type: BoundaryDocument, Priority: PriorityDocument}}
	}
	sort.SliceStable(boundaries, func(i, j int) bool {
		if boundaries[i].Index != boundaries[j].Index {
			return boundaries[i].Index < boundaries[j].Index
		}
		return boundaries[i].Priority > boundaries[j].Priority
	})

	out := boundaries[:0]
	lastIndex := -1
	for _, b := range boundaries {
		if b.Index == lastIndex {
			continue
		}
		out = append(out, b)
		lastIndex = b.Index
	}
	if out[0].Index != 0 {
		out = append([]Boundary{{Index: 0, Type: BoundaryDocument, Priority: PriorityDocument}}, out...)
	}
	return out
}

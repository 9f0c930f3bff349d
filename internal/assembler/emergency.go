package assembler

import (
	"fmt"
	"strings"

	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// emergencyPieces splits text on raw lines without any strategy machinery.
// It is the degrade path when boundary detection and assembly both failed,
// so it depends on nothing but the scanner primitives.
func (a *Assembler) emergencyPieces(text string, opts *types.ChunkingOptions) ([]piece, error) {
	maxChars := opts.MaxChunkChars()
	if maxChars <= 0 {
		return nil, &types.ValidationError{Field: "MaxTokensPerChunk", Reason: "effective budget is zero"}
	}

	var pieces []piece
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		pieces = append(pieces, piece{text: cur.String()})
		cur.Reset()
	}

	rest := text
	for len(rest) > 0 {
		line := rest
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			line = rest[:nl+1]
		}
		rest = rest[len(line):]

		if len(line) > maxChars {
			// A single overlong line still has to be cut somewhere.
			flush()
			for len(line) > maxChars {
				cut := textscan.SafeSplitPoint(line, maxChars, 256)
				pieces = append(pieces, piece{text: line[:cut]})
				line = line[cut:]
			}
		}
		if cur.Len()+len(line) > maxChars {
			flush()
		}
		cur.WriteString(line)
	}
	flush()

	if len(pieces) == 0 {
		return nil, fmt.Errorf("emergency splitter produced no chunks for %d chars", len(text))
	}
	for i := range pieces {
		pieces[i].preserved = fmt.Sprintf("EMERGENCY CHUNK %d/%d", i+1, len(pieces))
	}
	return pieces, nil
}

// lastResortPieces is the final rung: equal slices cut at safe points, or
// the whole text as one oversize chunk when even that fails.
func lastResortPieces(text string, opts *types.ChunkingOptions) []piece {
	if text == "" {
		return nil
	}
	maxChars := opts.MaxChunkChars()
	if maxChars <= 0 {
		return []piece{{text: text}}
	}
	var pieces []piece
	rest := text
	for len(rest) > maxChars {
		cut := textscan.SafeSplitPoint(rest, maxChars, 256)
		if cut <= 0 || cut > len(rest) {
			cut = maxChars
		}
		pieces = append(pieces, piece{text: rest[:cut]})
		rest = rest[cut:]
	}
	if rest != "" {
		pieces = append(pieces, piece{text: rest})
	}
	return pieces
}

package assembler

import (
	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// maxValidatePasses bounds the fixed-point iteration in validate. Splits
// only ever add pieces, so the count stabilizes within a couple of passes.
const maxValidatePasses = 6

// validate re-estimates every piece and re-splits any that exceed the
// effective token budget. Assembly works in characters; this pass is the
// token-level backstop for content whose chars-per-token ratio runs hot
// (CJK, emoji, dense symbols). When header comments are enabled the check
// runs against the decorated form, because the header's tokens count
// toward the budget too. Header width depends on the final piece count,
// so the pass iterates until no piece needs another split.
func (a *Assembler) validate(pieces []piece, detected types.ContentFormat, opts *types.ChunkingOptions) []piece {
	limit := opts.EffectiveMaxTokens()
	if limit <= 0 {
		return pieces
	}
	for pass := 0; pass < maxValidatePasses; pass++ {
		total := len(pieces)
		out := make([]piece, 0, total)
		split := false
		for i, p := range pieces {
			header := ""
			if opts.AddMetadataComments {
				header = ChunkComment(detected, i, total, p.preserved)
			}
			if a.estimator.Estimate(header+p.text, opts.TokenStrategy) <= limit {
				out = append(out, p)
				continue
			}
			budget := limit - a.estimator.Estimate(header, opts.TokenStrategy)
			if budget < 1 {
				budget = 1
			}
			out = append(out, a.resplit(p, budget, opts, 0)...)
			split = true
		}
		pieces = out
		if !split {
			break
		}
	}
	// Re-splitting shifts indices; overlap always comes from the piece
	// immediately before, so rewrite the source indices positionally.
	for i := range pieces {
		if pieces[i].hasOverlap {
			pieces[i].overlapFrom = i - 1
		}
	}
	return pieces
}

// maxResplitDepth bounds recursion; estimates shrink superlinearly with
// halving, so a handful of levels always suffices.
const maxResplitDepth = 12

func (a *Assembler) resplit(p piece, limit int, opts *types.ChunkingOptions, depth int) []piece {
	if depth >= maxResplitDepth || len(p.text) < 2 {
		return []piece{p}
	}
	cut := textscan.SafeSplitPoint(p.text, len(p.text)/2, 256)
	if cut <= 0 || cut >= len(p.text) {
		cut = len(p.text) / 2
		for cut > 0 && p.text[cut]&0xC0 == 0x80 {
			cut--
		}
		if cut == 0 {
			return []piece{p}
		}
	}
	halves := []piece{
		{text: p.text[:cut], preserved: p.preserved, hasOverlap: p.hasOverlap, overlapFrom: p.overlapFrom},
		{text: p.text[cut:], preserved: p.preserved},
	}
	var out []piece
	for _, h := range halves {
		if a.estimator.Estimate(h.text, opts.TokenStrategy) <= limit {
			out = append(out, h)
			continue
		}
		out = append(out, a.resplit(h, limit, opts, depth+1)...)
	}
	return out
}

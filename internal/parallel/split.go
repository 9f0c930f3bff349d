package parallel

import (
	"github.com/dshills/gochunk/internal/textscan"
	"github.com/dshills/gochunk/pkg/types"
)

// splitBackscan caps how far each segment cut searches backward for a
// natural break.
const splitBackscan = 4 * 1024

// minSegmentSize keeps segments large enough that per-segment overhead
// stays negligible.
const minSegmentSize = 1024

// Split divides text into disjoint, covering segments cut at natural
// breaks, targeting about twice as many segments as workers so the pool
// stays busy when segment costs are uneven. Workers are assigned
// round-robin.
func Split(text string, workers int) []types.Segment {
	if text == "" {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	target := workers * 2
	size := len(text) / target
	if size < minSegmentSize {
		size = minSegmentSize
	}

	var segments []types.Segment
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = textscan.SafeSplitPoint(text, end, splitBackscan)
			if end <= start {
				// No break behind the target; cut forward at a rune
				// start so the segment still makes progress.
				end = alignRune(text, start+size)
			}
			if end <= start {
				end = len(text)
			}
		}
		segments = append(segments, types.Segment{
			Start:  start,
			End:    end,
			Worker: len(segments) % workers,
		})
		start = end
	}
	return segments
}

func alignRune(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && s[i]&0xC0 == 0x80 {
		i++
	}
	return i
}

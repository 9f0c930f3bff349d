// Package textscan locates natural break points in text: paragraph breaks,
// line breaks, sentence ends, clause ends, and word gaps. The chunking
// pipeline shares these scanners so every component snaps to the same
// boundary ladder.
package textscan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind orders break kinds from strongest to weakest.
type Kind int

const (
	KindNone Kind = iota
	KindWord
	KindClause
	KindSentence
	KindLine
	KindParagraph
)

// ParagraphBreaks returns the offsets just after each blank-line run, i.e.
// the positions where a new paragraph starts.
func ParagraphBreaks(s string) []int {
	var out []int
	i := 0
	for i < len(s) {
		j := strings.Index(s[i:], "\n\n")
		if j < 0 {
			// CRLF documents separate paragraphs with \r\n\r\n.
			j = strings.Index(s[i:], "\r\n\r\n")
			if j < 0 {
				break
			}
			start := i + j
			end := skipNewlines(s, start)
			out = append(out, end)
			i = end
			continue
		}
		start := i + j
		end := skipNewlines(s, start)
		out = append(out, end)
		i = end
	}
	return out
}

func skipNewlines(s string, i int) int {
	for i < len(s) && (s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

// LineBreaks returns the offsets just after each newline.
func LineBreaks(s string) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, i+1)
		}
	}
	return out
}

// SentenceBreaks returns the offsets where a new sentence starts: after
// terminal punctuation followed by whitespace and an uppercase letter,
// digit, or opening quote.
func SentenceBreaks(s string) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Absorb closing quotes and repeated punctuation.
		j := i + 1
		for j < len(s) && (s[j] == '"' || s[j] == '\'' || s[j] == ')' || s[j] == '.' || s[j] == '!' || s[j] == '?') {
			j++
		}
		if j >= len(s) {
			break
		}
		if s[j] != ' ' && s[j] != '\n' && s[j] != '\t' && s[j] != '\r' {
			continue
		}
		k := j
		for k < len(s) && (s[k] == ' ' || s[k] == '\n' || s[k] == '\t' || s[k] == '\r') {
			k++
		}
		if k >= len(s) {
			break
		}
		r, _ := utf8.DecodeRuneInString(s[k:])
		if unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '\'' || r == '(' || r == '[' {
			out = append(out, k)
			i = k - 1
		}
	}
	return out
}

// ClauseBreaks returns the offsets after clause punctuation (comma,
// semicolon, colon, dash) followed by a space.
func ClauseBreaks(s string) []int {
	var out []int
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case ',', ';', ':':
			if s[i+1] == ' ' {
				out = append(out, i+2)
			}
		}
	}
	return out
}

// SnapForward finds the best natural start inside window, preferring
// paragraph > sentence > clause > word breaks, searched from the start of
// the window so the retained overlap stays as long as possible. Returns 0
// when the window has no break at all.
func SnapForward(window string) int {
	if p := ParagraphBreaks(window); len(p) > 0 {
		return p[0]
	}
	if p := SentenceBreaks(window); len(p) > 0 {
		return p[0]
	}
	if p := ClauseBreaks(window); len(p) > 0 {
		return p[0]
	}
	if i := strings.IndexByte(window, ' '); i >= 0 && i+1 < len(window) {
		return i + 1
	}
	return 0
}

// SafeSplitPoint picks a split offset at or before target, scanning backward
// at most maxBackscan bytes. Preference order: blank line, newline
// (including CRLF), sentence end, space. With no natural break inside the
// capped window the raw target is returned; the cap is what keeps
// pathological whitespace-free buffers from degrading to O(n) scans.
func SafeSplitPoint(s string, target, maxBackscan int) int {
	if target >= len(s) {
		return len(s)
	}
	if target <= 0 {
		return 0
	}
	lo := target - maxBackscan
	if lo < 0 {
		lo = 0
	}
	window := s[lo:target]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return skipNewlines(s[:target], lo+i)
	}
	if i := strings.LastIndexByte(window, '\n'); i >= 0 {
		return lo + i + 1
	}
	if i := lastSentenceEnd(window); i >= 0 {
		return lo + i
	}
	if i := strings.LastIndexByte(window, ' '); i >= 0 {
		return lo + i + 1
	}
	return alignRuneStart(s, target)
}

// lastSentenceEnd finds the offset after the final sentence terminator
// followed by a space and an uppercase letter inside window, -1 if none.
func lastSentenceEnd(window string) int {
	breaks := SentenceBreaks(window)
	if len(breaks) == 0 {
		return -1
	}
	return breaks[len(breaks)-1]
}

// alignRuneStart moves i backward to the nearest UTF-8 rune start so a raw
// split never cuts a multi-byte sequence.
func alignRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && s[i]&0xC0 == 0x80 {
		i--
	}
	return i
}

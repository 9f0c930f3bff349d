package token

import (
	"strings"
	"unicode"

	"github.com/dshills/gochunk/internal/format"
	"github.com/dshills/gochunk/pkg/types"
)

// Chars-per-token ratios by script family.
const (
	ratioLatin  = 4.0
	ratioCJK    = 1.5
	ratioRTL    = 3.0 // Arabic, Hebrew
	ratioDense  = 3.0 // unbroken/symbolic text: URLs, code, no whitespace
	emojiTokens = 2   // flat surcharge per emoji rune
)

// codeMarkers trigger the precision strategy's code multiplier.
var codeMarkers = []string{
	"func ", "def ", "class ", "import ", "return ", "#include",
	"public ", "private ", "=> ", "};",
}

// Estimator estimates token counts. Stateless after construction apart from
// its internal cache; safe to share across goroutines.
type Estimator struct {
	cache *estimateCache
}

// NewEstimator returns an estimator with the default cache size.
func NewEstimator() *Estimator {
	return &Estimator{cache: newEstimateCache(defaultCacheSize)}
}

// Estimate returns a non-negative approximate token count for text under the
// given strategy. Results for inputs above the cache threshold are memoized.
func (e *Estimator) Estimate(text string, strategy types.TokenEstimationStrategy) int {
	if text == "" {
		return 0
	}
	if len(text) > cacheThreshold {
		if n, ok := e.cache.get(text, strategy); ok {
			return n
		}
	}

	var n int
	switch strategy {
	case types.TokensPerformance:
		n = estimatePerformance(text)
	case types.TokensPrecision:
		n = estimatePrecision(text)
	default:
		n = estimateBalanced(text)
	}
	if n < 0 {
		n = 0
	}
	if n == 0 && len(strings.TrimSpace(text)) > 0 {
		n = 1
	}

	if len(text) > cacheThreshold {
		e.cache.put(text, strategy, n)
	}
	return n
}

// textStats is a single full scan of the text. Unlike format.ExtractFeatures
// this is not sampled: chunk-level token bounds need counts proportional to
// the whole span.
type textStats struct {
	runes       int
	whitespace  int
	punct       int
	symbols     int
	cjk         int
	emoji       int
	arabicHeb   int
	words       int
	normalized  int // rune count with whitespace runs collapsed to one space
	longestWord int
}

func scan(text string) textStats {
	var st textStats
	inSpace := false
	wordLen := 0
	for _, r := range text {
		st.runes++
		if unicode.IsSpace(r) {
			st.whitespace++
			if !inSpace {
				st.normalized++
			}
			inSpace = true
			if wordLen > st.longestWord {
				st.longestWord = wordLen
			}
			wordLen = 0
			continue
		}
		st.normalized++
		if inSpace || st.runes == 1 {
			st.words++
		}
		inSpace = false
		wordLen++
		switch {
		case format.IsCJK(r):
			st.cjk++
		case format.IsEmoji(r):
			st.emoji++
		case format.IsArabic(r), format.IsHebrew(r):
			st.arabicHeb++
		}
		if unicode.IsPunct(r) {
			st.punct++
		} else if unicode.IsSymbol(r) {
			st.symbols++
		}
	}
	if wordLen > st.longestWord {
		st.longestWord = wordLen
	}
	if st.words == 0 && st.runes > st.whitespace {
		st.words = 1
	}
	return st
}

// estimatePerformance divides the character count by the ratio of the
// dominant script, with a flat per-emoji surcharge.
func estimatePerformance(text string) int {
	st := scan(text)
	textRunes := st.runes - st.emoji

	ratio := ratioLatin
	switch {
	case st.cjk*2 > textRunes:
		ratio = ratioCJK
	case st.arabicHeb*2 > textRunes:
		ratio = ratioRTL
	}
	return int(float64(textRunes)/ratio) + st.emoji*emojiTokens
}

// estimateBalanced normalizes whitespace runs before character accounting,
// chooses the ratio from the non-Latin proportion, and books emoji
// separately from text.
func estimateBalanced(text string) int {
	st := scan(text)
	textRunes := st.normalized - st.emoji
	if textRunes < 0 {
		textRunes = 0
	}

	nonLatin := st.cjk + st.arabicHeb
	ratio := ratioLatin
	switch {
	case st.runes > 0 && float64(st.cjk)/float64(st.runes) > 0.3:
		ratio = ratioCJK
	case st.runes > 0 && float64(nonLatin)/float64(st.runes) > 0.3:
		ratioMix := (ratioCJK + ratioRTL) / 2
		ratio = ratioMix
	case unbrokenOrSymbolic(text, st):
		ratio = ratioDense
	}
	return int(float64(textRunes)/ratio) + st.emoji*emojiTokens
}

// unbrokenOrSymbolic reports URL-ish or code-ish text that tokenizes denser
// than prose: very long unbroken words or a high symbol share.
func unbrokenOrSymbolic(text string, st textStats) bool {
	if st.longestWord > 40 {
		return true
	}
	if st.runes > 0 && float64(st.punct+st.symbols)/float64(st.runes) > 0.15 {
		return true
	}
	return strings.Contains(text, "://")
}

// estimatePrecision starts from a words baseline and applies additive
// adjustments per script and symbol class, plus a code multiplier.
func estimatePrecision(text string) int {
	st := scan(text)

	est := float64(st.words) * 1.25
	est += float64(st.punct+st.symbols) * 0.25
	est += float64(st.cjk) * 1.0
	est += float64(st.emoji) * float64(emojiTokens)
	est += float64(st.arabicHeb) * 0.35
	est += float64(st.whitespace) * 0.05

	for _, marker := range codeMarkers {
		if strings.Contains(text, marker) {
			est *= 1.15
			break
		}
	}
	return int(est)
}

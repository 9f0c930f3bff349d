package format

import (
	"strings"
	"unicode"

	"github.com/dshills/gochunk/pkg/types"
)

// maxFeatureSample bounds the feature scan. Length reflects the full input;
// counts, ratios, and flags come from the sampled region.
const maxFeatureSample = 4096

// codeKeywords are language-agnostic markers used for the code-likelihood
// flag. Matched as whole words against the sample.
var codeKeywords = []string{
	"func ", "def ", "class ", "import ", "return ", "const ", "var ",
	"public ", "private ", "static ", "void ", "#include", "package ",
	"=> ", "nil", "null", "self.", "this.",
}

// ExtractFeatures performs a single bounded scan of text and returns its
// statistical fingerprint.
func ExtractFeatures(text string) types.ContentFeatures {
	f := types.ContentFeatures{Length: len(text)}
	if len(text) == 0 {
		return f
	}

	sample := text
	if len(sample) > maxFeatureSample {
		sample = sample[:maxFeatureSample]
		// Avoid ending mid-rune.
		for len(sample) > 0 && !isRuneStart(sample[len(sample)-1]) {
			sample = sample[:len(sample)-1]
		}
	}

	var (
		runes      int
		whitespace int
		symbols    int
		nonLatin   int
		inWord     bool
	)
	for _, r := range sample {
		runes++
		switch {
		case unicode.IsSpace(r):
			whitespace++
			inWord = false
		default:
			if !inWord {
				f.WordCount++
				inWord = true
			}
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				symbols++
			}
			switch {
			case IsCJK(r):
				f.CJKCount++
				nonLatin++
			case IsEmoji(r):
				f.EmojiCount++
				nonLatin++
			case IsArabic(r):
				f.ArabicCount++
				nonLatin++
			case IsHebrew(r):
				f.HebrewCount++
				nonLatin++
			case r > 0x024F:
				nonLatin++
			}
		}
	}
	if runes > 0 {
		f.WhitespaceRatio = float64(whitespace) / float64(runes)
		f.SymbolDensity = float64(symbols) / float64(runes)
		f.NonLatinRatio = float64(nonLatin) / float64(runes)
	}
	f.HasCJK = f.CJKCount > 0
	f.HasEmoji = f.EmojiCount > 0
	f.HasArabic = f.ArabicCount > 0
	f.HasHebrew = f.HebrewCount > 0

	scanStructure(sample, &f)
	return f
}

// scanStructure sets the line-oriented structural flags from the sample.
func scanStructure(sample string, f *types.ContentFeatures) {
	f.HasURLs = strings.Contains(sample, "http://") || strings.Contains(sample, "https://")

	for line := range strings.Lines(sample) {
		trimmed := strings.TrimRight(line, "\n")
		if len(trimmed) > 120 {
			f.HasLongLines = true
		}
		stripped := strings.TrimLeft(trimmed, " \t")
		if strings.HasPrefix(stripped, "#") {
			rest := strings.TrimLeft(stripped, "#")
			if strings.HasPrefix(rest, " ") {
				f.HasHeadings = true
			}
		}
		if strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~") {
			f.HasCodeBlocks = true
		}
		if strings.HasPrefix(stripped, "- ") || strings.HasPrefix(stripped, "* ") || strings.HasPrefix(stripped, "+ ") {
			f.HasBulletLists = true
		}
	}

	hits := 0
	for _, kw := range codeKeywords {
		if strings.Contains(sample, kw) {
			hits++
		}
	}
	f.LooksLikeCode = hits >= 3 || (hits >= 2 && strings.Contains(sample, "{") && strings.Contains(sample, "}"))
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// IsCJK reports whether r is a CJK ideograph, kana, or hangul rune.
func IsCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK unified
		(r >= 0x3400 && r <= 0x4DBF) || // CJK extension A
		(r >= 0x3040 && r <= 0x30FF) || // hiragana + katakana
		(r >= 0xAC00 && r <= 0xD7AF) // hangul
}

// IsEmoji reports whether r falls in the common emoji blocks.
func IsEmoji(r rune) bool {
	return (r >= 0x1F000 && r <= 0x1FAFF) ||
		(r >= 0x2600 && r <= 0x27BF) ||
		(r >= 0xFE00 && r <= 0xFE0F) // variation selectors
}

// IsArabic reports whether r is in the Arabic blocks.
func IsArabic(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) || (r >= 0x0750 && r <= 0x077F)
}

// IsHebrew reports whether r is in the Hebrew block.
func IsHebrew(r rune) bool { return r >= 0x0590 && r <= 0x05FF }

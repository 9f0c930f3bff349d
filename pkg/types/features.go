package types

// ContentFeatures is a statistical fingerprint of a text sample, produced by
// a single cheap scan. Derived once, never mutated.
type ContentFeatures struct {
	Length    int
	WordCount int

	WhitespaceRatio float64
	SymbolDensity   float64
	NonLatinRatio   float64

	// Script counts, over the sampled region.
	CJKCount    int
	EmojiCount  int
	ArabicCount int
	HebrewCount int

	HasCJK    bool
	HasEmoji  bool
	HasArabic bool
	HasHebrew bool

	// Structural flags.
	HasHeadings    bool
	HasCodeBlocks  bool
	HasBulletLists bool
	HasLongLines   bool
	HasURLs        bool
	LooksLikeCode  bool
}

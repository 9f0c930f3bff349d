// Package format provides cheap statistical content analysis: a one-pass
// feature extractor and a format detector built on top of it.
//
// Both operate on a bounded sample of the input so cost is O(sample size),
// never O(document size). The detector scores each known format
// independently and returns the winner with a confidence in [0, 1]; plain
// text is the floor, so detection always produces a usable answer:
//
//	f, confidence := format.Detect(text)
//	if f == types.FormatMarkdown && confidence > 0.5 {
//	    // structural chunking will respect headings
//	}
//
// Valid JSON is recognized through a fast path (tidwall/gjson validity
// check) rather than pattern density, because JSON is the one format that
// can be verified cheaply and exactly on small inputs.
package format

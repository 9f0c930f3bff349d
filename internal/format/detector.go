package format

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/gochunk/pkg/types"
)

const (
	// detectSample bounds the detection scan.
	detectSample = 2500

	// jsonFastPathScore is the confidence assigned when content verifies
	// as valid JSON.
	jsonFastPathScore = 0.95

	// textFloor is the minimum confidence; plain text always wins when
	// nothing else scores above it.
	textFloor = 0.1
)

var (
	timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}|\d{2}:\d{2}:\d{2}[.,]\d+`)
	logLevelRe  = regexp.MustCompile(`\b(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL|PANIC)\b`)
	mdLinkRe    = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
	xmlTagRe    = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9:_-]*[^>]*>`)
)

// Detect classifies text into a content format with a confidence in [0, 1].
// Scoring is bounded by detectSample so cost never depends on document size.
func Detect(text string) (types.ContentFormat, float64) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.FormatText, textFloor
	}

	sample := trimmed
	if len(sample) > detectSample {
		sample = sample[:detectSample]
		for len(sample) > 0 && !isRuneStart(sample[len(sample)-1]) {
			sample = sample[:len(sample)-1]
		}
	}

	// Fast path: small inputs that verify as JSON need no heuristics. For
	// inputs larger than the sample only the heuristic score applies,
	// keeping detection O(sample).
	if len(trimmed) <= detectSample && (trimmed[0] == '{' || trimmed[0] == '[') && gjson.Valid(trimmed) {
		return types.FormatJSON, jsonFastPathScore
	}

	features := ExtractFeatures(sample)
	scores := map[types.ContentFormat]float64{
		types.FormatJSON:     scoreJSON(sample),
		types.FormatXML:      scoreXML(sample),
		types.FormatMarkdown: scoreMarkdown(sample, features),
		types.FormatCode:     scoreCode(sample, features),
		types.FormatLogs:     scoreLogs(sample),
		types.FormatCSV:      scoreCSV(sample),
		types.FormatText:     textFloor,
	}

	best := types.FormatText
	bestScore := textFloor
	// Deterministic tie-breaking: iterate in fixed order.
	order := []types.ContentFormat{
		types.FormatJSON, types.FormatXML, types.FormatMarkdown,
		types.FormatCode, types.FormatLogs, types.FormatCSV,
	}
	for _, f := range order {
		if scores[f] > bestScore {
			best, bestScore = f, scores[f]
		}
	}
	if bestScore > 1 {
		bestScore = 1
	}
	return best, bestScore
}

func scoreJSON(sample string) float64 {
	score := 0.0
	first := sample[0]
	if first == '{' || first == '[' {
		score += 0.3
	}
	colons := strings.Count(sample, "\":")
	quotes := strings.Count(sample, "\"")
	braces := strings.Count(sample, "{") + strings.Count(sample, "}") +
		strings.Count(sample, "[") + strings.Count(sample, "]")
	n := float64(len(sample))
	score += min(float64(colons)/n*30, 0.3)
	score += min(float64(quotes)/n*10, 0.2)
	score += min(float64(braces)/n*10, 0.15)
	return score
}

func scoreXML(sample string) float64 {
	score := 0.0
	if strings.HasPrefix(sample, "<?xml") {
		score += 0.5
	} else if strings.HasPrefix(sample, "<") {
		score += 0.2
	}
	open := len(xmlTagRe.FindAllStringIndex(sample, 40))
	closing := strings.Count(sample, "</")
	n := float64(len(sample))
	score += min(float64(open)/n*60, 0.3)
	if closing > 0 && open > 0 {
		score += 0.15
	}
	return score
}

func scoreMarkdown(sample string, f types.ContentFeatures) float64 {
	score := 0.0
	if f.HasHeadings {
		score += 0.35
	}
	if f.HasCodeBlocks {
		score += 0.2
	}
	if f.HasBulletLists {
		score += 0.15
	}
	links := len(mdLinkRe.FindAllStringIndex(sample, 10))
	if links > 0 {
		score += 0.1
	}
	if strings.Contains(sample, "**") || strings.Contains(sample, "__") {
		score += 0.05
	}
	return score
}

func scoreCode(sample string, f types.ContentFeatures) float64 {
	score := 0.0
	if f.LooksLikeCode {
		score += 0.4
	}
	semis := strings.Count(sample, ";\n") + strings.Count(sample, "{\n")
	n := float64(len(sample))
	score += min(float64(semis)/n*100, 0.2)
	indented := 0
	lines := 0
	for line := range strings.Lines(sample) {
		lines++
		if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			indented++
		}
	}
	if lines > 3 && float64(indented)/float64(lines) > 0.3 {
		score += 0.2
	}
	// Markdown fences imply embedded code, not a code document.
	if f.HasCodeBlocks {
		score -= 0.2
	}
	return score
}

func scoreLogs(sample string) float64 {
	lines := 0
	stamped := 0
	leveled := 0
	for line := range strings.Lines(sample) {
		lines++
		if timestampRe.MatchString(line) {
			stamped++
		}
		if logLevelRe.MatchString(line) {
			leveled++
		}
	}
	if lines < 2 {
		return 0
	}
	score := 0.0
	score += float64(stamped) / float64(lines) * 0.6
	score += float64(leveled) / float64(lines) * 0.4
	return score
}

func scoreCSV(sample string) float64 {
	lines := strings.Split(sample, "\n")
	if len(lines) < 3 {
		return 0
	}
	// Delimiter consistency: comma counts should be uniform and non-zero
	// across the first rows.
	counts := make([]int, 0, 10)
	for _, line := range lines {
		if line == "" {
			continue
		}
		counts = append(counts, strings.Count(line, ","))
		if len(counts) == 10 {
			break
		}
	}
	if len(counts) < 3 || counts[0] == 0 {
		return 0
	}
	uniform := 0
	for _, c := range counts[1:] {
		if c == counts[0] {
			uniform++
		}
	}
	ratio := float64(uniform) / float64(len(counts)-1)
	if ratio < 0.7 {
		return 0
	}
	return 0.3 + ratio*0.4
}

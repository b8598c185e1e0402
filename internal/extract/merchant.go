package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// maxHeaderLines bounds the heuristic header scan: receipts conventionally
// put the merchant name in the first few printed lines.
const maxHeaderLines = 6

var (
	merchantLabel = regexp.MustCompile(`(?i)\b(?:merchant|vendor|store|business|retailer|seller|company|invoice\s+from|receipt\s+from|sold\s+by)\b\s*:?\s*([A-Za-z0-9&,.'\- ]+)`)

	// Header lines that are clearly something other than a name.
	headerAmount  = regexp.MustCompile(`\$?\s*\d+[.,]\d{2}\b`)
	headerAddress = regexp.MustCompile(`(?i)^\d+\s+\w+.*\b(?:st(?:reet)?|ave(?:nue)?|r(?:oa)?d|blvd|boulevard|lane|ln|dr(?:ive)?|way|ct|court|plaza|suite|ste)\b`)
	headerContact = regexp.MustCompile(`(?i)^(?:tel|phone|fax|www|http)`)

	digitRun       = regexp.MustCompile(`\d{3,}`)
	titleCaseStart = regexp.MustCompile(`^[A-Z][a-z]`)
)

func extractMerchant(text string) string {
	lines := nonEmptyLines(text)

	// Labeled phase: an explicit label wins regardless of position.
	for _, line := range lines {
		if len(line) <= 2 {
			continue
		}
		m := merchantLabel.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) > 2 {
			return name
		}
	}

	// Header phase: score the top of the receipt.
	header := lines
	if len(header) > maxHeaderLines {
		header = header[:maxHeaderLines]
	}

	var (
		best      string
		bestScore int
		found     bool
	)
	for _, line := range header {
		if isDateLine(line) || headerAmount.MatchString(line) ||
			headerAddress.MatchString(line) || headerContact.MatchString(line) {
			continue
		}
		score := scoreHeaderLine(line)
		if !found || score > bestScore {
			best = line
			bestScore = score
			found = true
		}
	}
	return best
}

// isDateLine reports whether the line contains any of the date literals the
// date extractor recognizes.
func isDateLine(line string) bool {
	for _, re := range datePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// scoreHeaderLine rates how much a header line looks like a printed
// merchant name. The weights are tuning constants: all-caps headers are the
// strongest signal, title case next, then a plausible name length; long
// digit runs point at phone numbers and register codes.
func scoreHeaderLine(line string) int {
	score := 0
	if strings.ContainsFunc(line, unicode.IsLetter) && line == strings.ToUpper(line) {
		score += 4
	}
	if titleCaseStart.MatchString(line) {
		score += 3
	}
	if len(line) > 7 {
		score += 2
	}
	if len(line) < 30 {
		score++
	}
	if digitRun.MatchString(line) {
		score -= 3
	}
	return score
}

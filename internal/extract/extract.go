package extract

import (
	"regexp"
	"strings"
)

// Result is the structured record produced from one recognized text. Date,
// Total and Merchant are independently optional: an empty string means the
// field was not found, never that extraction failed. FullText always carries
// the recognized text verbatim. A Result is immutable once constructed.
type Result struct {
	FullText string
	Date     string
	Total    string
	Merchant string
}

// Extract parses recognized bill text into a Result. It is a pure function
// and never fails; any input, including the empty string, yields a Result.
// The three field extractors run independently, so a miss on one never
// blocks the others.
func Extract(text string) *Result {
	return &Result{
		FullText: text,
		Date:     extractDate(text),
		Total:    extractTotal(text),
		Merchant: extractMerchant(text),
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// collapseWhitespace folds every run of whitespace, newlines included, into
// a single space. Recognized text is ragged; the self-delimiting patterns
// match against this flattened view.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// nonEmptyLines returns the trimmed, non-empty lines of s in original order.
func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

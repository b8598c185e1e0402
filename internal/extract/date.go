package extract

import (
	"regexp"
	"strings"
)

// Date pattern families, tried in order; the first family with a match
// anywhere in the text wins, and the matched literal is returned exactly as
// written. No calendar validation happens here: "13/45/2099" is a date as
// far as extraction is concerned.
var datePatterns = []*regexp.Regexp{
	// Numeric dates: 03/14/2024, 14-3-24, 7.12.2023. Month-first and
	// day-first regional orders look identical, so no disambiguation is
	// attempted.
	regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\b`),
	// Written dates: January 5th, 2023, with abbreviated month names and
	// the ordinal suffix both optional.
	regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
	// ISO order: 2024-03-14.
	regexp.MustCompile(`\b\d{4}[/.\-]\d{1,2}[/.\-]\d{1,2}\b`),
}

// dateLabel anchors the last-resort family: whatever follows a date label on
// the same line, up to the end of the line or a run of two or more spaces.
var dateLabel = regexp.MustCompile(`(?i)\b(?:(?:invoice|transaction|purchase)\s+)?date\b\s*:?\s*(.+?)(?:\s{2,}|$)`)

func extractDate(text string) string {
	collapsed := collapseWhitespace(text)
	for _, re := range datePatterns {
		if m := re.FindString(collapsed); m != "" {
			return m
		}
	}

	// Keyword-anchored fallback. This family runs on the raw lines so its
	// end-of-line and double-space terminators still mean something. A
	// fragment only counts when it contains at least one digit and one of
	// the separators the shaped families use.
	for _, line := range strings.Split(text, "\n") {
		m := dateLabel.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fragment := strings.TrimSpace(m[1])
		if !strings.ContainsAny(fragment, "0123456789") {
			continue
		}
		if !strings.ContainsAny(fragment, "/-.") {
			continue
		}
		return fragment
	}
	return ""
}

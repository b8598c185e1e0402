package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Labeled-total families, most specific first. Within a family, candidates
// are taken left to right and the first one parsing to a strictly positive
// amount wins; only then is the next family consulted.
var labeledTotalPatterns = []*regexp.Regexp{
	// High-specificity phrases.
	regexp.MustCompile(`(?i)\b(?:total\s+amount|grand\s+total|amount\s+due|balance\s+due|total\s+due|total\s+to\s+pay)\b\s*:?\s*\$?\s*(\d+[.,]\d{1,2})\b`),
	// Single keywords.
	regexp.MustCompile(`(?i)\b(?:total|amount|due|balance|sum|charge)\b\s*:?\s*\$?\s*(\d+[.,]\d{1,2})\b`),
	// Amount written before its keyword: "$12.00 total".
	regexp.MustCompile(`(?i)\$?\s*(\d+[.,]\d{1,2})\s*(?:total|amount|due)\b`),
}

// currencyAmount feeds the fallback phase: any dollar-prefixed figure,
// fractional part optional.
var currencyAmount = regexp.MustCompile(`\$\s*(\d+(?:[.,]\d{1,2})?)\b`)

// amountCeiling excludes figures that are almost certainly account or
// reference numbers rather than money.
var amountCeiling = decimal.New(100000, 0)

func extractTotal(text string) string {
	collapsed := collapseWhitespace(text)

	for _, re := range labeledTotalPatterns {
		for _, m := range re.FindAllStringSubmatch(collapsed, -1) {
			if amount, ok := parseAmount(m[1]); ok && amount.IsPositive() {
				return normalizeSeparator(m[1])
			}
		}
	}

	// No label anywhere: the largest plausible dollar figure is the best
	// remaining guess for the total.
	var (
		best     decimal.Decimal
		bestText string
	)
	for _, m := range currencyAmount.FindAllStringSubmatch(collapsed, -1) {
		amount, ok := parseAmount(m[1])
		if !ok || !amount.IsPositive() || amount.GreaterThanOrEqual(amountCeiling) {
			continue
		}
		if bestText == "" || amount.GreaterThan(best) {
			best = amount
			bestText = normalizeSeparator(m[1])
		}
	}
	return bestText
}

// normalizeSeparator turns a comma decimal separator into a period, so
// "11,00" and "11.00" come back in one canonical form.
func normalizeSeparator(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(normalizeSeparator(s))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

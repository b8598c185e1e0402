package bill

import "github.com/prajwal9924/bill-reader-vision-buddy/internal/extract"

// ScanResult is the API shape of one scanned bill. Fields the extractors
// could not fill are null rather than empty strings.
type ScanResult struct {
	FullText string  `json:"full_text"`
	Date     *string `json:"date"`
	Total    *string `json:"total"`
	Merchant *string `json:"merchant"`
}

// NewScanResult maps an extraction onto the API shape.
func NewScanResult(res *extract.Result) *ScanResult {
	return &ScanResult{
		FullText: res.FullText,
		Date:     optional(res.Date),
		Total:    optional(res.Total),
		Merchant: optional(res.Merchant),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

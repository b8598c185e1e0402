package bill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prajwal9924/bill-reader-vision-buddy/internal/scanning"
)

// Service handles bill scanning operations.
type Service struct {
	scanner scanning.Scanner
}

// NewService creates a new Service around a Scanner.
func NewService(scanner scanning.Scanner) *Service {
	return &Service{scanner: scanner}
}

// ScanBill runs one upload through the scanner and maps the extraction to
// its API shape.
func (s *Service) ScanBill(ctx context.Context, filename string, data []byte, contentType string) (*ScanResult, error) {
	start := time.Now()

	result, err := s.scanner.ScanBill(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan bill",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("scanning bill: %w", err)
	}

	slog.Info("Scanned bill",
		"filename", filename,
		"duration", time.Since(start),
		"text_size", len(result.FullText),
		"date_found", result.Date != "",
		"total_found", result.Total != "",
		"merchant_found", result.Merchant != "",
	)
	return NewScanResult(result), nil
}

// Close releases the underlying scanner.
func (s *Service) Close() error {
	return s.scanner.Close()
}

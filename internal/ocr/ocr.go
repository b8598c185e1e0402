package ocr

import "context"

// Recognition profile shared by every backend.
const (
	// Language selects the traineddata set recognition runs with.
	Language = "eng"

	// Whitelist is the complete set of characters a backend may emit:
	// digits, letters, and the punctuation that appears in dates,
	// amounts, and merchant names.
	Whitelist = `0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ$,.:/\-& `
)

// Engine defines the interface for OCR backends.
type Engine interface {
	// Recognize extracts the text from a PNG-encoded image.
	Recognize(ctx context.Context, pngData []byte) (string, error)
	// Close closes the engine and releases resources.
	Close() error
}

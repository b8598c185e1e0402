package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Engine interface using the gosseract bindings.
// Each recognition gets its own client, so concurrent callers never share
// libtesseract state.
type Tesseract struct {
	clientFactory func() *gosseract.Client
}

// NewTesseract creates a new library-backed Tesseract engine.
func NewTesseract() *Tesseract {
	return &Tesseract{clientFactory: gosseract.NewClient}
}

// Recognize runs the recognition profile over a PNG-encoded image.
func (t *Tesseract) Recognize(ctx context.Context, pngData []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := t.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(Language); err != nil {
		return "", fmt.Errorf("setting language: %w", err)
	}
	// The bindings expose no engine-mode switch; tesseract 4+ resolves its
	// default mode to the LSTM engine, matching the CLI backend's --oem 1.
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := c.SetWhitelist(Whitelist); err != nil {
		return "", fmt.Errorf("setting whitelist: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("preserve_interword_spaces"), "1"); err != nil {
		return "", fmt.Errorf("setting interword spaces: %w", err)
	}

	if err := c.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close closes the engine (clients are per-call, so nothing is held).
func (t *Tesseract) Close() error {
	return nil
}

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CLI implements the Engine interface by running the tesseract binary.
// It works without a cgo toolchain wherever tesseract is installed.
type CLI struct {
	binary string
}

// NewCLI creates a new process-backed Tesseract engine. An empty binary
// falls back to the tesseract found on PATH.
func NewCLI(binary string) *CLI {
	if binary == "" {
		binary = "tesseract"
	}
	return &CLI{binary: binary}
}

// Recognize writes the PNG to a scratch file and runs the binary over it.
func (c *CLI) Recognize(ctx context.Context, pngData []byte) (string, error) {
	dir, err := os.MkdirTemp("", "billscan-ocr-")
	if err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "page.png")
	if err := os.WriteFile(inPath, pngData, 0o600); err != nil {
		return "", fmt.Errorf("writing scratch image: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.binary, cliArgs(inPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("running %s: %s: %w", c.binary, msg, err)
		}
		return "", fmt.Errorf("running %s: %w", c.binary, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Close closes the engine (no-op for an external binary).
func (c *CLI) Close() error {
	return nil
}

// cliArgs builds the argument list enforcing the recognition profile.
func cliArgs(inPath string) []string {
	return []string{
		inPath,
		"stdout",
		"--psm", "6",
		"--oem", "1",
		"-l", Language,
		"-c", "tessedit_char_whitelist=" + Whitelist,
		"-c", "preserve_interword_spaces=1",
	}
}

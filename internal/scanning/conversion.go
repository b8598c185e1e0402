package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrDecode reports upload bytes that cannot be turned into an image.
var ErrDecode = errors.New("unreadable bill data")

// minOCRHeight is the pixel height below which recognition quality falls
// off; smaller inputs are upscaled before preprocessing.
const minOCRHeight = 800

// DecodeImage turns uploaded bill bytes into an image. PDFs are rendered
// through their first page (most bills are single page), HEIC/HEIF goes
// through the pure Go decoder, and everything else through the registered
// image formats. Content sniffing beats the declared type, so a mislabeled
// upload still decodes.
func DecodeImage(data []byte, contentType string) (image.Image, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))

	var (
		img image.Image
		err error
	)
	switch {
	case isPDFData(data) || mimeType == "application/pdf":
		img, err = pdfFirstPage(data)
	case isHEICData(data) || isHEICMimeType(mimeType):
		img, err = heic.Decode(bytes.NewReader(data))
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	return img, nil
}

// pdfFirstPage renders page 0 of a PDF document.
func pdfFirstPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// upscaleIfSmall doubles the resolution of low-pixel-count inputs; phone
// thumbnails and small PDF renders sit below what the recognizer needs.
func upscaleIfSmall(img image.Image) image.Image {
	h := img.Bounds().Dy()
	if h >= minOCRHeight {
		return img
	}
	return imaging.Resize(img, 0, h*2, imaging.Lanczos)
}

// isPDFData checks for the PDF file header.
func isPDFData(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "%PDF"
}

// isHEICData checks the ftyp box at offset 4 for a HEIC/HEIF brand.
func isHEICData(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format.
func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

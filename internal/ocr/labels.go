package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/symbols"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// TagCharacters is the Tesseract whitelist for equipment tags.
const TagCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-/."

// bands shorter than this are upscaled before recognition
const minRecognitionHeight = 48

// ErrNoImage is returned when the raster does not expose its decoded image.
var ErrNoImage = errors.New("raster does not expose a decoded image")

// imageSource is satisfied by *imaging.Blueprint.
type imageSource interface {
	Image() image.Image
}

// LabelReader recovers symbol names with Tesseract.
type LabelReader struct {
	Language string
}

// NewLabelReader creates a LabelReader for language, or DefaultLanguage
// when language is empty.
func NewLabelReader(language string) *LabelReader {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	return &LabelReader{Language: language}
}

// ReadLabel runs OCR on band (image pixels) and returns the cleaned tag.
// An empty string with a nil error means Tesseract found no tag-like text.
func (r *LabelReader) ReadLabel(raster symbols.Raster, band image.Rectangle) (string, error) {
	src, ok := raster.(imageSource)
	if !ok {
		return "", ErrNoImage
	}

	crop, err := PrepareBand(src.Image(), band)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return "", fmt.Errorf("failed to encode label band: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(TagCharacters); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return CleanLabel(text), nil
}

// PrepareBand crops band out of img, converts it to grayscale, and upscales
// it so the text is at least minRecognitionHeight pixels tall.
//
// band is in image coordinates relative to img.Bounds().Min. It is clipped
// to the image; an empty result is an error.
func PrepareBand(img image.Image, band image.Rectangle) (image.Image, error) {
	b := img.Bounds()
	r := band.Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("label band %v is outside image %dx%d", band, b.Dx(), b.Dy())
	}

	crop := imaging.Grayscale(imaging.Crop(img, r))
	if h := crop.Bounds().Dy(); h < minRecognitionHeight {
		factor := (minRecognitionHeight + h - 1) / h
		crop = imaging.Resize(crop, crop.Bounds().Dx()*factor, 0, imaging.Lanczos)
	}
	return crop, nil
}

// CleanLabel reduces raw OCR output to a single tag: the first non-empty
// line with outer punctuation removed and inner whitespace collapsed.
func CleanLabel(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		line = strings.TrimFunc(line, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if line != "" {
			return line
		}
	}
	return ""
}

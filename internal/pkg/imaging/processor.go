package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// Normalized is the stored form of an evidence screenshot:
// bounded dimensions, always JPEG.
type Normalized struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Config for evidence image processing
type Config struct {
	MaxWidth  int // default 1600
	MaxHeight int // default 1600
	Quality   int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:  1600,
		MaxHeight: 1600,
		Quality:   85,
	}
}

// Processor normalizes uploaded evidence screenshots
type Processor struct {
	config Config
}

// NewProcessor creates an image processor
func NewProcessor(config Config) *Processor {
	if config.MaxWidth <= 0 {
		config.MaxWidth = 1600
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = 1600
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = 85
	}
	return &Processor{config: config}
}

// Normalize decodes an uploaded image, downsizes it to the configured
// bounds and re-encodes as JPEG. Non-image payloads are rejected.
func (p *Processor) Normalize(reader io.Reader) (*Normalized, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.config.MaxWidth || bounds.Dy() > p.config.MaxHeight {
		img = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Normalized{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}, nil
}

package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/chai2010/webp"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEWEBP = "image/webp"
)

// Encoder re-encodes an image at a quality in (0, 1].
type Encoder interface {
	Encode(img image.Image, quality float64) ([]byte, error)
	MIMEType() string
}

type JPEGEncoder struct{}

func (JPEGEncoder) Encode(img image.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: percent(quality)}); err != nil {
		return nil, fmt.Errorf("encode jpeg failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (JPEGEncoder) MIMEType() string { return MIMEJPEG }

type WebPEncoder struct{}

func (WebPEncoder) Encode(img image.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(percent(quality))}); err != nil {
		return nil, fmt.Errorf("encode webp failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (WebPEncoder) MIMEType() string { return MIMEWEBP }

// percent maps a unit quality onto the 1..100 scale both codecs use.
func percent(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

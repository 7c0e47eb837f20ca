// Package compress re-encodes images so they fit under a byte budget.
//
// The search runs a fixed number of quality bisection probes at the current
// resolution, falls back to the minimum quality, and otherwise shrinks both
// dimensions geometrically until a floor is reached.
package compress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode        = errors.New("image decode failed")
	ErrInvalidTarget = errors.New("target size must be positive")
	ErrTooLarge      = errors.New("image dimensions exceed limit")
)

type Options struct {
	MaxWidth      int
	MaxIterations int
	ProbeSteps    int
	ShrinkRatio   float64
	MinDimension  int
	MinQuality    float64
	MaxQuality    float64
	// MaxPixels rejects inputs whose header declares more pixels than this.
	MaxPixels int
	// Scaler resamples between iterations; nil means CatmullRom.
	Scaler draw.Scaler
}

func DefaultOptions() Options {
	return Options{
		MaxWidth:      2500,
		MaxIterations: 15,
		ProbeSteps:    6,
		ShrinkRatio:   0.85,
		MinDimension:  50,
		MinQuality:    0.01,
		MaxQuality:    1.0,
		MaxPixels:     100_000_000,
		Scaler:        draw.CatmullRom,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxWidth <= 0 {
		o.MaxWidth = d.MaxWidth
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.ProbeSteps <= 0 {
		o.ProbeSteps = d.ProbeSteps
	}
	if o.ShrinkRatio <= 0 || o.ShrinkRatio >= 1 {
		o.ShrinkRatio = d.ShrinkRatio
	}
	if o.MinDimension <= 0 {
		o.MinDimension = d.MinDimension
	}
	if o.MinQuality <= 0 {
		o.MinQuality = d.MinQuality
	}
	if o.MaxQuality <= 0 || o.MaxQuality > 1 {
		o.MaxQuality = d.MaxQuality
	}
	if o.MinQuality > o.MaxQuality {
		o.MinQuality = o.MaxQuality
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = d.MaxPixels
	}
	if o.Scaler == nil {
		o.Scaler = d.Scaler
	}
	return o
}

type Result struct {
	Data           []byte  `json:"-"`
	MIMEType       string  `json:"mime_type"`
	InputFormat    string  `json:"input_format"`
	OriginalWidth  int     `json:"original_width"`
	OriginalHeight int     `json:"original_height"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Quality        float64 `json:"quality"`
	Iterations     int     `json:"iterations"`
	Probes         int     `json:"probes"`
	// Fit is false when even the minimum quality at the dimension floor
	// exceeded the target; Data then holds that best-effort attempt.
	Fit bool `json:"fit"`
}

func (r *Result) Size() int64 { return int64(len(r.Data)) }

type Compressor struct {
	opts Options
	jpeg Encoder
	webp Encoder
}

type Option func(*Compressor)

// WithJPEGEncoder replaces the encoder used for JPEG output.
func WithJPEGEncoder(e Encoder) Option {
	return func(c *Compressor) { c.jpeg = e }
}

// WithWebPEncoder replaces the encoder used for WEBP output.
func WithWebPEncoder(e Encoder) Option {
	return func(c *Compressor) { c.webp = e }
}

func New(opts Options, extra ...Option) *Compressor {
	c := &Compressor{
		opts: opts.withDefaults(),
		jpeg: JPEGEncoder{},
		webp: WebPEncoder{},
	}
	for _, opt := range extra {
		opt(c)
	}
	return c
}

func (c *Compressor) Options() Options { return c.opts }

// Compress is a convenience wrapper around New(opts).Compress.
func Compress(ctx context.Context, src []byte, target int64, opts Options) (*Result, error) {
	return New(opts).Compress(ctx, src, target)
}

// OutputMIME reports the MIME type an input format is re-encoded to.
// PNG is flattened to JPEG because its encoder has no quality knob.
func OutputMIME(format string) string {
	if format == "webp" {
		return MIMEWEBP
	}
	return MIMEJPEG
}

func (c *Compressor) Compress(ctx context.Context, src []byte, target int64) (*Result, error) {
	if target <= 0 {
		return nil, ErrInvalidTarget
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width*cfg.Height > c.opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	enc := c.jpeg
	flatten := true
	if format == "webp" {
		enc = c.webp
		flatten = false
	}

	bounds := img.Bounds()
	w, h := capWidth(bounds.Dx(), bounds.Dy(), c.opts.MaxWidth)

	res := &Result{
		MIMEType:       enc.MIMEType(),
		InputFormat:    format,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
	}

	for iter := 1; iter <= c.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Iterations = iter

		frame := c.render(img, w, h, flatten)

		data, quality, probes, err := c.search(ctx, enc, frame, target)
		res.Probes += probes
		if err != nil {
			return nil, err
		}
		if data != nil {
			return res.finish(data, w, h, quality, true), nil
		}

		minData, err := enc.Encode(frame, c.opts.MinQuality)
		res.Probes++
		if err != nil {
			return nil, err
		}
		res.finish(minData, w, h, c.opts.MinQuality, int64(len(minData)) <= target)
		if res.Fit {
			return res, nil
		}

		nw := int(float64(w) * c.opts.ShrinkRatio)
		nh := int(float64(h) * c.opts.ShrinkRatio)
		if nw < c.opts.MinDimension || nh < c.opts.MinDimension {
			break
		}
		w, h = nw, nh
	}
	return res, nil
}

// search bisects quality and keeps the highest quality whose output fits.
func (c *Compressor) search(ctx context.Context, enc Encoder, frame image.Image, target int64) ([]byte, float64, int, error) {
	lo, hi := c.opts.MinQuality, c.opts.MaxQuality
	var best []byte
	bestQ := 0.0
	probes := 0
	for i := 0; i < c.opts.ProbeSteps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, probes, err
		}
		mid := (lo + hi) / 2
		data, err := enc.Encode(frame, mid)
		probes++
		if err != nil {
			return nil, 0, probes, err
		}
		if int64(len(data)) <= target {
			best, bestQ = data, mid
			lo = mid
		} else {
			hi = mid
		}
	}
	return best, bestQ, probes, nil
}

func (c *Compressor) render(src image.Image, w, h int, flatten bool) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	op := draw.Src
	if flatten {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		op = draw.Over
	}
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		draw.Draw(dst, dst.Bounds(), src, b.Min, op)
		return dst
	}
	c.opts.Scaler.Scale(dst, dst.Bounds(), src, b, op, nil)
	return dst
}

func (r *Result) finish(data []byte, w, h int, quality float64, fit bool) *Result {
	r.Data = data
	r.Width = w
	r.Height = h
	r.Quality = quality
	r.Fit = fit
	return r
}

func capWidth(w, h, maxWidth int) (int, int) {
	if w <= maxWidth {
		return w, h
	}
	nh := int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	if nh < 1 {
		nh = 1
	}
	return maxWidth, nh
}

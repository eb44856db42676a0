// Package imaging resizes and re-encodes uploaded profile photos.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	// DefaultMaxDimension bounds the longest side of a stored photo.
	DefaultMaxDimension = 1200
	// DefaultQuality is the JPEG quality used for stored photos.
	DefaultQuality = 82
	// DefaultMaxBytes is the largest accepted upload.
	DefaultMaxBytes = 16 << 20
	// DefaultMaxPixels bounds the decoded size of an upload.
	DefaultMaxPixels = 40_000_000
)

var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Result is an optimized photo.
type Result struct {
	Bytes    []byte
	MimeType string
	Width    int
	Height   int
}

// Compressor is an optional external step applied after resizing.
type Compressor interface {
	Compress(ctx context.Context, data []byte) ([]byte, error)
}

// Pipeline turns uploaded image bytes into a bounded JPEG.
type Pipeline struct {
	MaxDimension int
	Quality      int
	MaxBytes     int
	MaxPixels    int
	// Compressor may be nil. Its failures never fail Process.
	Compressor Compressor
	Log        *zap.Logger
}

// NewPipeline returns a pipeline with the default bounds.
func NewPipeline(compressor Compressor, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultQuality,
		MaxBytes:     DefaultMaxBytes,
		MaxPixels:    DefaultMaxPixels,
		Compressor:   compressor,
		Log:          log,
	}
}

// Process validates, resizes and encodes raw. Validation failures return
// UnsupportedFormat or TooLarge (bytes or pixel count); decode/encode failures return
// ProcessingFailed. Compression is attempted last and is best-effort.
func (p *Pipeline) Process(ctx context.Context, raw []byte) (Result, error) {
	if len(raw) == 0 {
		return Result{}, apperror.Validation(apperror.CodeEmptyField, "empty file")
	}
	if p.MaxBytes > 0 && len(raw) > p.MaxBytes {
		return Result{}, apperror.Validationf(apperror.CodeTooLarge, "image exceeds %d bytes", p.MaxBytes)
	}
	detected := mimetype.Detect(raw).String()
	if !acceptedTypes[detected] {
		return Result{}, apperror.Validationf(apperror.CodeUnsupportedFormat, "unsupported image type %s", detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Result{}, apperror.Processing("image processing failed", fmt.Errorf("decode image header: %w", err))
	}
	if p.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(p.MaxPixels) {
		return Result{}, apperror.Validationf(apperror.CodeTooLarge,
			"image is %dx%d pixels, at most %d pixels are allowed", cfg.Width, cfg.Height, p.MaxPixels)
	}

	out, w, h, err := resize(raw, p.MaxDimension, p.Quality)
	if err != nil {
		return Result{}, apperror.Processing("image processing failed", err)
	}
	res := Result{Bytes: out, MimeType: "image/jpeg", Width: w, Height: h}

	if p.Compressor == nil {
		return res, nil
	}
	compressed, err := p.Compressor.Compress(ctx, out)
	if err != nil {
		p.Log.Warn("image compression failed, keeping resized image",
			zap.Error(apperror.External("compression failed", err)),
			zap.Int("bytes", len(out)))
		return res, nil
	}
	if len(compressed) == 0 {
		p.Log.Warn("image compression returned no data, keeping resized image")
		return res, nil
	}
	p.Log.Debug("image compressed", zap.Int("before", len(out)), zap.Int("after", len(compressed)))
	res.Bytes = compressed
	return res, nil
}

// resize decodes data, scales it down to fit maxDimension and encodes it as
// JPEG. Images already within bounds are re-encoded at their own size.
func resize(data []byte, maxDimension, quality int) ([]byte, int, int, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension)

	// Drawing onto an opaque white canvas flattens any alpha channel.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// fitWithin scales (w, h) down so the longest side is at most max, keeping
// the aspect ratio. Sizes are never scaled up.
func fitWithin(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}
	if w >= h {
		nh := int(float64(h) * float64(max) / float64(w))
		return max, maxInt(nh, 1)
	}
	nw := int(float64(w) * float64(max) / float64(h))
	return maxInt(nw, 1), max
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

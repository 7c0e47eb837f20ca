package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarforge/internal/compress"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8((x + y) * 3), A: 255})
		}
	}
	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestRun_WritesDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, 320, 240)

	var out bytes.Buffer
	opts := options{target: "50KB", timeout: time.Minute, search: compress.DefaultOptions()}
	require.NoError(t, run(context.Background(), input, opts, &out))

	dst := filepath.Join(dir, "photo.min.jpg")
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(50_000))
	assert.Contains(t, out.String(), "fit")
}

func TestRun_InvalidTarget(t *testing.T) {
	opts := options{target: "lots", timeout: time.Minute, search: compress.DefaultOptions()}
	err := run(context.Background(), "unused.png", opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --target")
}

func TestRun_MissingInput(t *testing.T) {
	opts := options{target: "10KB", timeout: time.Minute, search: compress.DefaultOptions()}
	err := run(context.Background(), filepath.Join(t.TempDir(), "nope.png"), opts, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "a/b.min.jpg", defaultOutput("a/b.png", compress.MIMEJPEG))
	assert.Equal(t, "b.min.webp", defaultOutput("b.webp", compress.MIMEWEBP))
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--target", "1MiB", "--shrink", "0.5"}))
	target, err := cmd.Flags().GetString("target")
	require.NoError(t, err)
	assert.Equal(t, "1MiB", target)
	shrink, err := cmd.Flags().GetFloat64("shrink")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, shrink, 1e-9)
}

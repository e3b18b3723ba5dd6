package infra

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPreviewRenderer_Render(t *testing.T) {
	r, err := NewPreviewRenderer(t.TempDir(), 32)
	if err != nil {
		t.Fatalf("NewPreviewRenderer failed: %v", err)
	}

	content := samplePNG(t, 128, 64)
	hash := sha256.Sum256(content)

	path, err := r.Render(hash, content)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if path != r.Path(hash) {
		t.Errorf("unexpected path %s", path)
	}

	thumb, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("expected 32x16 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}

	// Cache hit leaves the file untouched.
	before, _ := os.Stat(path)
	again, err := r.Render(hash, content)
	if err != nil || again != path {
		t.Fatalf("second render: %s, %v", again, err)
	}
	after, _ := os.Stat(path)
	if !before.ModTime().Equal(after.ModTime()) {
		t.Error("cached preview was rewritten")
	}
}

func TestPreviewRenderer_NotImage(t *testing.T) {
	r, err := NewPreviewRenderer(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewPreviewRenderer failed: %v", err)
	}

	content := []byte("just some text")
	if _, err := r.Render(sha256.Sum256(content), content); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if IsImage(content) {
		t.Error("text sniffed as image")
	}
}

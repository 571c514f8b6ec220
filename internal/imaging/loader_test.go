package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createInMemoryImage returns a solid-color RGBA image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// createTestImage writes a solid-color PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drawing.png")
	if err := os.WriteFile(path, encodePNG(t, createInMemoryImage(width, height, c)), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func TestDecodeBlueprint(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(40, 30, color.White))

	bp, err := DecodeBlueprint(data)
	if err != nil {
		t.Fatalf("DecodeBlueprint failed: %v", err)
	}

	w, h := bp.Dimensions()
	if w != 40 || h != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", w, h)
	}
	if bp.Format() != "png" || bp.MimeType() != "image/png" {
		t.Errorf("format: got %s (%s)", bp.Format(), bp.MimeType())
	}
	if !bytes.Equal(bp.Bytes(), data) {
		t.Error("Bytes() should return the original encoding")
	}
}

func TestDecodeBlueprint_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createInMemoryImage(16, 16, color.Black), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	bp, err := DecodeBlueprint(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBlueprint failed: %v", err)
	}
	if bp.MimeType() != "image/jpeg" {
		t.Errorf("MimeType: got %s, want image/jpeg", bp.MimeType())
	}
}

func TestDecodeBlueprint_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"garbage", []byte("not an image at all")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBlueprint(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestImageCache_Load(t *testing.T) {
	path := createTestImage(t, 20, 10, color.White)
	cache := NewImageCache()

	first, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first != second {
		t.Error("second Load should return the cached blueprint")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}

	cache.Evict(path)
	if cache.Len() != 0 {
		t.Errorf("Len after Evict: got %d, want 0", cache.Len())
	}

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	cache := NewImageCache()

	if _, err := cache.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("expected error for undecodable file")
	}
	if cache.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestImageCache_Concurrent(t *testing.T) {
	path := createTestImage(t, 50, 50, color.Black)
	cache := NewImageCache()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	path := createTestImage(t, 64, 48, color.White)

	info, err := LoadImageInfo(NewImageCache(), path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	stat, _ := os.Stat(path)
	if info.FileSizeBytes != stat.Size() {
		t.Errorf("FileSizeBytes: got %d, want %d", info.FileSizeBytes, stat.Size())
	}
}

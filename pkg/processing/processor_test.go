package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

// createTestImage creates a gradient test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func TestSaveAndLoad(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	img := createTestImage(64, 48)

	tests := []struct {
		format   string
		file     string
		lossless bool
	}{
		{"png", "out.png", false},
		{"jpg", "out.jpg", false},
		{"webp", "out.webp", true},
		{"webp", "lossy.webp", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := p.SaveImage(img, path, tt.format, 90, tt.lossless); err != nil {
				t.Fatalf("SaveImage failed: %v", err)
			}
			loaded, err := p.LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if loaded.Bounds().Dx() != 64 || loaded.Bounds().Dy() != 48 {
				t.Errorf("Unexpected bounds %v", loaded.Bounds())
			}
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeImage(&buf, createTestImage(4, 4), "tiff", 90, false); err == nil {
		t.Error("Expected an error for tiff")
	}
}

func TestLoadImageMissing(t *testing.T) {
	if _, err := NewProcessor().LoadImage(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestPrepareImageForModel(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxDim        int
		wantW, wantH  int
	}{
		{"landscape downsized", 200, 100, 50, 50, 25},
		{"portrait downsized", 100, 200, 50, 25, 50},
		{"small kept", 40, 30, 50, 40, 30},
		{"no limit", 120, 60, 0, 120, 60},
	}

	p := NewProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b64, err := p.PrepareImageForModel(createTestImage(tt.width, tt.height), "png", tt.maxDim, 85)
			if err != nil {
				t.Fatalf("PrepareImageForModel failed: %v", err)
			}
			data, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				t.Fatalf("Invalid base64: %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Invalid png: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestLoadImageFromURL(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, createTestImage(30, 20))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wall.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(buf.Bytes())
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProcessor()
	ctx := context.Background()

	img, err := p.LoadImageSmart(ctx, srv.URL+"/wall.png")
	if err != nil {
		t.Fatalf("LoadImageSmart failed: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}

	for _, path := range []string{"/page", "/missing"} {
		if _, err := p.LoadImageFromURL(ctx, srv.URL+path); err == nil {
			t.Errorf("Expected an error for %s", path)
		}
	}
	if _, err := p.LoadImageFromURL(ctx, "ftp://example.com/a.png"); err == nil {
		t.Error("Expected an error for an ftp URL")
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := DecodeImage([]byte("not an image")); err == nil {
		t.Error("Expected an error")
	}
}

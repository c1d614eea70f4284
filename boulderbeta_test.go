package boulderbeta

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/boulder-beta/pkg/client"
	"github.com/menta2k/boulder-beta/pkg/coach"
	"github.com/menta2k/boulder-beta/pkg/heuristic"
	"github.com/menta2k/boulder-beta/pkg/processing"
	"github.com/menta2k/boulder-beta/pkg/remote"
	"github.com/menta2k/boulder-beta/pkg/session"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// createTestImage creates a wall-like test image with a few bright holds
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/40+y/40)%5 == 0 {
				img.Set(x, y, color.RGBA{230, 200, 40, 255})
			} else {
				img.Set(x, y, color.RGBA{70, 70, 80, 255})
			}
		}
	}
	return img
}

func testHolds() []types.Hold {
	return []types.Hold{
		{X: 100, Y: 260, HoldType: types.HoldStart},
		{X: 160, Y: 270, HoldType: types.HoldStart},
		{X: 200, Y: 180, HoldType: types.HoldMiddle},
		{X: 260, Y: 100, HoldType: types.HoldMiddle},
		{X: 120, Y: 280, HoldType: types.HoldFoot},
		{X: 300, Y: 30, HoldType: types.HoldTop},
	}
}

func TestNew(t *testing.T) {
	b := New(heuristic.New())
	if b == nil || b.Session() == nil || b.processor == nil {
		t.Fatal("New() returned an incomplete Beta")
	}
	if b.Image() != nil {
		t.Error("No image should be loaded yet")
	}
}

func TestRun(t *testing.T) {
	b := New(heuristic.New())
	b.SetImage(createTestImage(400, 300))
	if err := b.MarkHolds(testHolds()); err != nil {
		t.Fatalf("MarkHolds failed: %v", err)
	}

	result, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Beta == nil || len(result.Beta.Moves) != 5 {
		t.Fatalf("Expected 5 moves without the foot hold, got %+v", result.Beta)
	}
	for name, img := range map[string]*image.RGBA{"preview": result.Preview, "overlay": result.Overlay} {
		if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
			t.Errorf("%s: unexpected bounds %v", name, img.Bounds())
		}
	}
	// start, two moves, top
	if len(result.Frames) != 4 || len(result.Thumbnails) != 4 {
		t.Errorf("Expected 4 frames and thumbnails, got %d and %d", len(result.Frames), len(result.Thumbnails))
	}
	if !b.Session().Surface().Registry().Locked() {
		t.Error("Registry should be locked after Run")
	}
}

func TestRunWithoutHolds(t *testing.T) {
	b := New(heuristic.New())
	b.SetImage(createTestImage(100, 100))
	if _, err := b.Run(context.Background()); !errors.Is(err, session.ErrNoHolds) {
		t.Errorf("Expected ErrNoHolds, got %v", err)
	}
}

func TestRunTransportFailure(t *testing.T) {
	b := New(client.AnalyzerFunc(func(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error) {
		return nil, errors.New("offline")
	}))
	b.SetImage(createTestImage(100, 100))
	b.MarkHolds(testHolds()[:2])

	_, err := b.Run(context.Background())
	var te *session.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if b.Session().Surface().Registry().Len() != 2 {
		t.Error("Holds should survive a failed analysis")
	}
}

func TestMarkHoldsAfterLock(t *testing.T) {
	b := New(heuristic.New())
	b.SetImage(createTestImage(400, 300))
	b.MarkHolds(testHolds())
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := b.MarkHolds(testHolds()[:1]); err == nil {
		t.Error("Marking should fail while a result is shown")
	}
}

func TestSaveResult(t *testing.T) {
	b := New(heuristic.New())
	b.SetImage(createTestImage(400, 300))
	b.MarkHolds(testHolds())
	result, err := b.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	written, err := b.SaveResult(result, "photos/Moon Board.JPG", dir, "PNG", 90, false)
	if err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if len(written) != 6 {
		t.Errorf("Expected 6 files, got %v", written)
	}
	for _, name := range []string{"Moon_Board_marking.png", "Moon_Board_beta.png", "Moon_Board_pose_00_start.png", "Moon_Board_pose_01_move_1.png", "Moon_Board_pose_03_top.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Missing %s: %v", name, err)
		}
	}
}

func TestSaveResultFromURL(t *testing.T) {
	b := New(heuristic.New())
	b.SetImage(createTestImage(400, 300))
	b.MarkHolds(testHolds())
	result, err := b.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	written, err := b.SaveResult(result, "https://example.com/walls/cave.jpg", dir, "webp", 80, false)
	if err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if want := filepath.Join(dir, "cave_marking.webp"); written[0] != want {
		t.Errorf("got %s, want %s", written[0], want)
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	if err := processing.NewProcessor().SaveImage(createTestImage(120, 90), path, "png", 90, false); err != nil {
		t.Fatal(err)
	}

	b := New(heuristic.New())
	if err := b.LoadImage(context.Background(), path); err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if s := b.Session().Surface().ImageSize(); s.Width != 120 || s.Height != 90 {
		t.Errorf("Unexpected image size %+v", s)
	}
	if err := b.LoadImage(context.Background(), filepath.Join(t.TempDir(), "none.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestNewAnalyzer(t *testing.T) {
	tests := []struct {
		name    string
		opts    BackendOptions
		check   func(a client.BetaAnalyzer) bool
		wantErr bool
	}{
		{"default", BackendOptions{}, func(a client.BetaAnalyzer) bool { _, ok := a.(*heuristic.Analyzer); return ok }, false},
		{"remote", BackendOptions{Backend: "remote"}, func(a client.BetaAnalyzer) bool { _, ok := a.(*remote.Client); return ok }, false},
		{"ollama", BackendOptions{Backend: "ollama", Model: "llava"}, func(a client.BetaAnalyzer) bool { _, ok := a.(*coach.Coach); return ok }, false},
		{"llamacpp with image", BackendOptions{Backend: "llamacpp", Model: "qwen", ImageB64: "aW1n"}, func(a client.BetaAnalyzer) bool { _, ok := a.(client.AnalyzerFunc); return ok }, false},
		{"missing model", BackendOptions{Backend: "ollama"}, nil, true},
		{"bad url", BackendOptions{Backend: "llamacpp", URL: "localhost", Model: "m"}, nil, true},
		{"unknown", BackendOptions{Backend: "gpt"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnalyzer(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAnalyzer failed: %v", err)
			}
			if !tt.check(a) {
				t.Errorf("Unexpected analyzer %T", a)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %q, want %q", GetVersion(), Version)
	}
}

func BenchmarkRun(b *testing.B) {
	img := createTestImage(800, 600)
	holds := testHolds()
	for i := 0; i < b.N; i++ {
		beta := New(heuristic.New())
		beta.SetImage(img)
		beta.MarkHolds(holds)
		if _, err := beta.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

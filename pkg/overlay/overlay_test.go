package overlay

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// createTestImage creates a solid test image
func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := NewRenderer()
	if err := r.Layout(geometry.Size{Width: 800, Height: 1000}, 400); err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	return r
}

func TestRenderWithoutGeometry(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(nil, nil); !errors.Is(err, geometry.ErrGeometryUnavailable) {
		t.Errorf("Expected unavailable, got %v", err)
	}
	if err := r.Layout(geometry.Size{}, 400); err == nil {
		t.Error("Layout with no image size should fail")
	}
	if _, err := r.Geometry(); err == nil {
		t.Error("Failed layout should leave no geometry")
	}
}

func TestLayoutRecomputes(t *testing.T) {
	r := newTestRenderer(t)
	g, _ := r.Geometry()
	if g.DisplayWidth != 400 || g.DisplayHeight != 500 {
		t.Errorf("Expected 400x500, got %vx%v", g.DisplayWidth, g.DisplayHeight)
	}

	if err := r.Layout(geometry.Size{Width: 800, Height: 1000}, 200); err != nil {
		t.Fatal(err)
	}
	img, err := r.RenderLayer(nil)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 200, 250) {
		t.Errorf("Expected 200x250 after resize, got %v", img.Bounds())
	}
}

func TestMarkerColor(t *testing.T) {
	r := NewRenderer()
	st := DefaultStyle()
	tests := []struct {
		name string
		move types.Move
		want color.NRGBA
	}{
		{"start label", types.Move{Label: "Start", Icon: "🚀"}, st.StartColor},
		{"numbered start", types.Move{Label: "S1", Icon: "🚀"}, st.MoveColor},
		{"finish icon", types.Move{Label: "Top", Icon: "🏁"}, st.FinishColor},
		{"middle", types.Move{Label: "3"}, st.MoveColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.MarkerColor(tt.move); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGlyph(t *testing.T) {
	tests := map[string]string{
		"":   "",
		"🚀": "S",
		"🏁": "T",
		"🦶": "",
		"A":  "A",
		"✋": "",
	}
	for icon, want := range tests {
		if got := Glyph(icon); got != want {
			t.Errorf("Glyph(%q) = %q, want %q", icon, got, want)
		}
	}
}

func TestArrowHead(t *testing.T) {
	head := ArrowHead(types.Point{X: 0, Y: 0}, types.Point{X: 100, Y: 0}, 8)
	if len(head) != 3 || head[0] != (types.Point{X: 100, Y: 0}) {
		t.Fatalf("Unexpected head %v", head)
	}
	wantX := 100 - 8*math.Cos(math.Pi/6)
	for _, p := range head[1:] {
		if math.Abs(p.X-wantX) > 1e-9 || math.Abs(math.Abs(p.Y)-4) > 1e-9 {
			t.Errorf("Unexpected wing %v", p)
		}
	}
}

func TestRenderScalesMoves(t *testing.T) {
	r := newTestRenderer(t)
	moves := []types.Move{
		{HoldIndex: 1, X: 200, Y: 800, Label: "Start", Icon: "🚀"},
		{HoldIndex: 2, X: 600, Y: 400, Label: "1", IsCrux: true,
			Arrow: &types.Arrow{FromX: 200, FromY: 800, ToX: 600, ToY: 400}},
	}

	img, err := r.Render(createTestImage(800, 1000, color.White), moves)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 400, 500) {
		t.Fatalf("Unexpected bounds %v", img.Bounds())
	}

	// start marker at (100,400), green disc
	if c := img.RGBAAt(100, 394); c.G != 0xb9 || c.R != 0x10 {
		t.Errorf("Expected green start marker, got %v", c)
	}
	// move marker at (300,200), blue disc
	if c := img.RGBAAt(294, 200); c.B != 0xf6 || c.R != 0x3b {
		t.Errorf("Expected blue move marker, got %v", c)
	}
	// on the arrow between the markers
	if c := img.RGBAAt(199, 300); c.R < 200 || c.G > 120 {
		t.Errorf("Expected red arrow, got %v", c)
	}
	// crux badge 18 above the move marker
	if c := img.RGBAAt(303, 178); c.R != 0xfb || c.G != 0xbf {
		t.Errorf("Expected crux badge, got %v", c)
	}
	// untouched background
	if c := img.RGBAAt(380, 480); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("Expected white background, got %v", c)
	}
}

func TestCruxBadgeBehindMarker(t *testing.T) {
	st := DefaultStyle()
	st.CruxLift = 10
	r := NewRendererWithStyle(st)
	if err := r.Layout(geometry.Size{Width: 800, Height: 1000}, 400); err != nil {
		t.Fatal(err)
	}

	img, err := r.Render(createTestImage(800, 1000, color.White), []types.Move{
		{X: 600, Y: 400, Label: "1", IsCrux: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	// badge at (300,190) overlaps the marker at (300,200)
	if c := img.RGBAAt(296, 193); c.R != 0x3b || c.G != 0x82 || c.B != 0xf6 {
		t.Errorf("Expected the marker over the badge, got %v", c)
	}
	if c := img.RGBAAt(299, 185); c.R != 0xfb || c.G != 0xbf {
		t.Errorf("Expected the badge above the marker, got %v", c)
	}
}

func TestArrowsDrawnBehindMarkers(t *testing.T) {
	r := newTestRenderer(t)
	// the second move's arrow ends on the first marker
	moves := []types.Move{
		{X: 200, Y: 200, Label: "1"},
		{X: 600, Y: 200, Label: "2", Arrow: &types.Arrow{FromX: 600, FromY: 200, ToX: 200, ToY: 200}},
	}
	img, err := r.RenderLayer(moves)
	if err != nil {
		t.Fatal(err)
	}
	// (106,100) lies on the arrow and inside marker 1
	if c := img.RGBAAt(106, 100); c.B != 0xf6 {
		t.Errorf("Marker should cover the arrow, got %v", c)
	}
}

func TestTipBubble(t *testing.T) {
	r := newTestRenderer(t)
	moves := []types.Move{{X: 200, Y: 400, Label: "1", ShortTip: "Static reach"}}
	img, err := r.RenderLayer(moves)
	if err != nil {
		t.Fatal(err)
	}

	// bubble origin is (100+14, 200-22), 16 high
	if c := img.RGBAAt(120, 186); c.A < 200 {
		t.Errorf("Expected opaque bubble, got %v", c)
	}
	if c := img.RGBAAt(120, 170); c.A != 0 {
		t.Errorf("Nothing should be drawn above the bubble, got %v", c)
	}

	// no tip, no bubble
	plain, _ := r.RenderLayer([]types.Move{{X: 200, Y: 400, Label: "1"}})
	if c := plain.RGBAAt(120, 186); c.A != 0 {
		t.Errorf("Expected no bubble without a tip, got %v", c)
	}
}

func BenchmarkRenderLayer(b *testing.B) {
	r := NewRenderer()
	if err := r.Layout(geometry.Size{Width: 1200, Height: 1600}, 600); err != nil {
		b.Fatal(err)
	}
	var moves []types.Move
	for i := 0; i < 12; i++ {
		m := types.Move{X: float64(100 + i*80), Y: float64(1500 - i*120), Label: "1", ShortTip: "Reach"}
		if i > 0 {
			m.Arrow = &types.Arrow{FromX: float64(100 + (i-1)*80), FromY: float64(1500 - (i-1)*120), ToX: m.X, ToY: m.Y}
		}
		moves = append(moves, m)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.RenderLayer(moves); err != nil {
			b.Fatal(err)
		}
	}
}

package canvas

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/boulder-beta/pkg/types"
)

var (
	fontsOnce sync.Once
	regular   *opentype.Font
	bold      *opentype.Font
	fontsErr  error
)

func loadFonts() {
	regular, fontsErr = opentype.Parse(goregular.TTF)
	if fontsErr != nil {
		return
	}
	bold, fontsErr = opentype.Parse(gobold.TTF)
}

// Face returns a new Go font face of the given pixel size. The parsed fonts
// are shared; a face is not safe for concurrent use, so each render takes
// its own.
func Face(size float64, isBold bool) (font.Face, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", fontsErr)
	}
	if size <= 0 {
		size = 1
	}

	src := regular
	if isBold {
		src = bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return f, nil
}

// MeasureText returns the advance width of s in pixels
func MeasureText(face font.Face, s string) float64 {
	return fixedToFloat(font.MeasureString(face, s))
}

// DrawTextCentered draws s centered horizontally and vertically on center
func (c *Canvas) DrawTextCentered(face font.Face, s string, center types.Point, col color.Color) {
	if s == "" || face == nil {
		return
	}
	width := font.MeasureString(face, s)
	m := face.Metrics()

	// baseline sits half the glyph box below the middle
	dot := fixed.Point26_6{
		X: floatToFixed(center.X) - width/2,
		Y: floatToFixed(center.Y) + (m.Ascent-m.Descent)/2,
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(s)
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Package overlay re-projects an analyzed move list onto the route photo at
// display scale: direction arrows, numbered markers, crux badges and tip
// callouts. It has no zoom or pan; results always render at 1:1 display
// scale.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"

	"github.com/menta2k/boulder-beta/pkg/canvas"
	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// Labels and icons the service uses for the first and last moves
const (
	StartLabel = "Start"
	FinishIcon = "🏁"
)

// Style holds overlay colors and dimensions in display pixels
type Style struct {
	ArrowColor  color.NRGBA
	ArrowWidth  float64
	ArrowHead   float64
	MarkerSize  float64
	RingWidth   float64
	StartColor  color.NRGBA
	FinishColor color.NRGBA
	MoveColor   color.NRGBA
	CruxColor   color.NRGBA
	CruxLift    float64
	LabelSize   float64
	IconSize    float64
	TipSize     float64
	TipPadding  float64
	TipHeight   float64
	TipRadius   float64
	TipOffset   types.Point
	TipFill     color.NRGBA
}

// DefaultStyle returns the standard overlay look
func DefaultStyle() Style {
	return Style{
		ArrowColor:  color.NRGBA{0xef, 0x44, 0x44, 0xff},
		ArrowWidth:  2,
		ArrowHead:   8,
		MarkerSize:  10,
		RingWidth:   1,
		StartColor:  color.NRGBA{0x10, 0xb9, 0x81, 0xff},
		FinishColor: color.NRGBA{0xef, 0x44, 0x44, 0xff},
		MoveColor:   color.NRGBA{0x3b, 0x82, 0xf6, 0xff},
		CruxColor:   color.NRGBA{0xfb, 0xbf, 0x24, 0xff},
		CruxLift:    18,
		LabelSize:   7,
		IconSize:    8,
		TipSize:     9,
		TipPadding:  10,
		TipHeight:   16,
		TipRadius:   4,
		TipOffset:   types.Point{X: 14, Y: -22},
		TipFill:     color.NRGBA{0, 0, 0, 217},
	}
}

// Renderer draws move lists for one image. The only state it keeps is the
// last computed geometry.
type Renderer struct {
	style   Style
	geom    geometry.DisplayGeometry
	hasGeom bool
}

// NewRenderer creates a renderer with the default style
func NewRenderer() *Renderer {
	return &Renderer{style: DefaultStyle()}
}

// NewRendererWithStyle creates a renderer with a custom style
func NewRendererWithStyle(style Style) *Renderer {
	return &Renderer{style: style}
}

// Layout recomputes the display geometry. Call it when the image finishes
// loading and whenever the container is resized.
func (r *Renderer) Layout(intrinsic geometry.Size, containerWidth float64) error {
	g, err := geometry.ComputeDisplaySize(intrinsic, containerWidth)
	if err != nil {
		r.hasGeom = false
		return err
	}
	r.geom, r.hasGeom = g, true
	return nil
}

// Geometry returns the last computed geometry
func (r *Renderer) Geometry() (geometry.DisplayGeometry, error) {
	if !r.hasGeom {
		return geometry.DisplayGeometry{}, geometry.ErrGeometryUnavailable
	}
	return r.geom, nil
}

// Render returns base resized to display size with the overlay on top
func (r *Renderer) Render(base image.Image, moves []types.Move) (*image.RGBA, error) {
	if !r.hasGeom {
		return nil, geometry.ErrGeometryUnavailable
	}
	size := r.geom.DisplayBounds()
	cv := canvas.New(size.Width, size.Height)
	if base != nil {
		cv.DrawImage(imaging.Resize(base, size.Width, size.Height, imaging.Lanczos))
	}
	if err := r.draw(cv, moves); err != nil {
		return nil, err
	}
	return cv.Image(), nil
}

// RenderLayer returns the overlay alone on a transparent canvas
func (r *Renderer) RenderLayer(moves []types.Move) (*image.RGBA, error) {
	return r.Render(nil, moves)
}

func (r *Renderer) draw(cv *canvas.Canvas, moves []types.Move) error {
	labelFace, err := canvas.Face(r.style.LabelSize, true)
	if err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	iconFace, err := canvas.Face(r.style.IconSize, false)
	if err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	tipFace, err := canvas.Face(r.style.TipSize, false)
	if err != nil {
		return fmt.Errorf("overlay: %w", err)
	}

	// arrows sit behind every marker
	for _, m := range moves {
		if m.Arrow != nil {
			r.drawArrow(cv, m.Arrow)
		}
	}

	for _, m := range moves {
		p := geometry.ToDisplayCoords(types.Point{X: m.X, Y: m.Y}, r.geom)
		if m.IsCrux {
			r.drawCrux(cv, p, labelFace)
		}
		r.drawMarker(cv, m, p, labelFace, iconFace)
		if m.ShortTip != "" {
			r.drawTip(cv, m.ShortTip, p, tipFace)
		}
	}
	return nil
}

func (r *Renderer) drawArrow(cv *canvas.Canvas, a *types.Arrow) {
	from := geometry.ToDisplayCoords(types.Point{X: a.FromX, Y: a.FromY}, r.geom)
	to := geometry.ToDisplayCoords(types.Point{X: a.ToX, Y: a.ToY}, r.geom)
	cv.StrokeLine(from, to, r.style.ArrowWidth, r.style.ArrowColor, false)
	cv.FillPolygon(ArrowHead(from, to, r.style.ArrowHead), r.style.ArrowColor)
}

// ArrowHead returns the triangle at the tip of the segment from -> to. The
// wings sit length pixels back from the tip at 30 degrees either side.
func ArrowHead(from, to types.Point, length float64) []types.Point {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	return []types.Point{
		to,
		{X: to.X - length*math.Cos(angle-math.Pi/6), Y: to.Y - length*math.Sin(angle-math.Pi/6)},
		{X: to.X - length*math.Cos(angle+math.Pi/6), Y: to.Y - length*math.Sin(angle+math.Pi/6)},
	}
}

// MarkerColor picks the disc color for a move
func (r *Renderer) MarkerColor(m types.Move) color.NRGBA {
	switch {
	case m.Label == StartLabel:
		return r.style.StartColor
	case m.Icon == FinishIcon:
		return r.style.FinishColor
	}
	return r.style.MoveColor
}

func (r *Renderer) drawMarker(cv *canvas.Canvas, m types.Move, p types.Point, labelFace, iconFace font.Face) {
	white := color.NRGBA{0xff, 0xff, 0xff, 0xff}
	cv.FillCircle(p, r.style.MarkerSize, r.MarkerColor(m))
	cv.StrokeCircle(p, r.style.MarkerSize, r.style.RingWidth, white)

	if g := Glyph(m.Icon); g != "" {
		cv.DrawTextCentered(iconFace, g, p, white)
		return
	}
	cv.DrawTextCentered(labelFace, m.Label, p, white)
}

func (r *Renderer) drawCrux(cv *canvas.Canvas, p types.Point, face font.Face) {
	badge := types.Point{X: p.X, Y: p.Y - r.style.CruxLift}
	cv.FillCircle(badge, r.style.MarkerSize/2+1, r.style.CruxColor)
	cv.DrawTextCentered(face, "!", badge, color.NRGBA{0, 0, 0, 0xff})
}

func (r *Renderer) drawTip(cv *canvas.Canvas, tip string, p types.Point, face font.Face) {
	w := canvas.MeasureText(face, tip) + r.style.TipPadding
	h := r.style.TipHeight
	bx, by := p.X+r.style.TipOffset.X, p.Y+r.style.TipOffset.Y

	cv.FillRoundedRect(bx, by, w, h, r.style.TipRadius, r.style.TipFill)
	cv.FillPolygon([]types.Point{
		{X: bx, Y: by + h/2},
		{X: p.X + 10, Y: p.Y - 8},
		{X: bx + 5, Y: by + h/2 + 2},
	}, r.style.TipFill)
	cv.DrawTextCentered(face, tip, types.Point{X: bx + w/2, Y: by + h/2}, color.NRGBA{0xff, 0xff, 0xff, 0xff})
}

// Glyph maps a move icon to the text drawn inside its marker. Hold type
// emoji map to their ASCII stand-in, plain ASCII icons are used as they
// are, anything else falls back to the label.
func Glyph(icon string) string {
	if icon == "" {
		return ""
	}
	for _, t := range types.HoldTypes() {
		if st := t.Style(); st.Icon == icon {
			return st.Glyph
		}
	}
	for _, r := range icon {
		if r > 0x7e || r < 0x20 {
			return ""
		}
	}
	return icon
}

// Package geometry converts between image-intrinsic, display and surface
// coordinates.
//
// Three spaces are involved:
//
//   - intrinsic: pixels of the original image, used for every stored hold,
//     move and pose
//   - display: the image fitted to its container (never upscaled), before
//     any zoom or pan
//   - surface: display space after the view transform, i.e. where pointer
//     events arrive
//
// A DisplayGeometry maps intrinsic to display space; a ViewState maps display
// to surface space.
package geometry

import (
	"errors"
	"math"

	"github.com/menta2k/boulder-beta/pkg/types"
)

// ErrGeometryUnavailable is returned when a conversion or draw is attempted
// before the image dimensions and container size are known.
var ErrGeometryUnavailable = errors.New("geometry: image dimensions not available")

// Size is an image size in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// DisplayGeometry describes how the intrinsic image is fitted on screen
type DisplayGeometry struct {
	IntrinsicWidth  float64
	IntrinsicHeight float64
	DisplayWidth    float64
	DisplayHeight   float64
}

// ComputeDisplaySize fits the image to the container width without
// upscaling and keeps the aspect ratio.
func ComputeDisplaySize(intrinsic Size, containerWidth float64) (DisplayGeometry, error) {
	if !intrinsic.Valid() || containerWidth <= 0 || math.IsNaN(containerWidth) {
		return DisplayGeometry{}, ErrGeometryUnavailable
	}
	iw := float64(intrinsic.Width)
	ih := float64(intrinsic.Height)
	dw := math.Min(containerWidth, iw)
	return DisplayGeometry{
		IntrinsicWidth:  iw,
		IntrinsicHeight: ih,
		DisplayWidth:    dw,
		DisplayHeight:   dw * ih / iw,
	}, nil
}

// Valid reports whether g can be used for conversions
func (g DisplayGeometry) Valid() bool {
	return g.IntrinsicWidth > 0 && g.IntrinsicHeight > 0 && g.DisplayWidth > 0 && g.DisplayHeight > 0
}

// ScaleX is the horizontal display/intrinsic ratio
func (g DisplayGeometry) ScaleX() float64 {
	return g.DisplayWidth / g.IntrinsicWidth
}

// ScaleY is the vertical display/intrinsic ratio
func (g DisplayGeometry) ScaleY() float64 {
	return g.DisplayHeight / g.IntrinsicHeight
}

// Scale returns both scale factors
func (g DisplayGeometry) Scale() (float64, float64) {
	return g.ScaleX(), g.ScaleY()
}

// DisplayBounds returns the display size rounded up to whole pixels
func (g DisplayGeometry) DisplayBounds() Size {
	return Size{
		Width:  int(math.Ceil(g.DisplayWidth)),
		Height: int(math.Ceil(g.DisplayHeight)),
	}
}

// ToDisplayCoords maps an intrinsic point into display space. No view
// transform is applied.
func ToDisplayCoords(p types.Point, g DisplayGeometry) types.Point {
	return types.Point{
		X: p.X * g.ScaleX(),
		Y: p.Y * g.ScaleY(),
	}
}

// ToSurfaceCoords maps an intrinsic point into surface space: display
// coordinates scaled by the zoom and shifted by the pan.
func ToSurfaceCoords(p types.Point, g DisplayGeometry, v ViewState) types.Point {
	d := ToDisplayCoords(p, g)
	return types.Point{
		X: d.X*v.Zoom + v.Pan.X,
		Y: d.Y*v.Zoom + v.Pan.Y,
	}
}

// ToImageCoords maps a surface point back to intrinsic space. The pan is
// subtracted first, then the zoom and finally the display scale are divided
// out. Nothing is clamped.
func ToImageCoords(p types.Point, g DisplayGeometry, v ViewState) types.Point {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	ax := (p.X - v.Pan.X) / zoom
	ay := (p.Y - v.Pan.Y) / zoom
	return types.Point{
		X: ax / g.ScaleX(),
		Y: ay / g.ScaleY(),
	}
}

// RoundHalfUp rounds to the nearest integer with halves going up
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Distance returns the euclidean distance between two points
func Distance(a, b types.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the point halfway between a and b
func Midpoint(a, b types.Point) types.Point {
	return types.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

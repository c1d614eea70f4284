package geometry

import "github.com/menta2k/boulder-beta/pkg/types"

const (
	MinZoom = 1.0
	MaxZoom = 4.0

	// zoom button step
	ZoomStep = 1.5
)

// ViewState is the zoom and pan applied on top of the display geometry.
// Pan is in display pixels and is deliberately left unbounded.
type ViewState struct {
	Zoom float64     `json:"zoom"`
	Pan  types.Point `json:"pan"`
}

// NewViewState returns the identity view
func NewViewState() ViewState {
	return ViewState{Zoom: 1}
}

// ClampZoom limits z to [MinZoom, MaxZoom]
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// ScaleZoom multiplies the zoom by factor and clamps the result
func (v *ViewState) ScaleZoom(factor float64) {
	v.Zoom = ClampZoom(v.Zoom * factor)
}

// PanBy shifts the view by a display-space delta
func (v *ViewState) PanBy(dx, dy float64) {
	v.Pan.X += dx
	v.Pan.Y += dy
}

// ZoomIn steps the zoom up by ZoomStep
func (v *ViewState) ZoomIn() {
	v.ScaleZoom(ZoomStep)
}

// ZoomOut steps the zoom down by ZoomStep
func (v *ViewState) ZoomOut() {
	v.ScaleZoom(1 / ZoomStep)
}

// Reset restores zoom 1 and zero pan
func (v *ViewState) Reset() {
	v.Zoom = 1
	v.Pan = types.Point{}
}

// CanZoomIn reports whether ZoomIn would change anything
func (v ViewState) CanZoomIn() bool {
	return v.Zoom < MaxZoom
}

// CanZoomOut reports whether ZoomOut would change anything
func (v ViewState) CanZoomOut() bool {
	return v.Zoom > MinZoom
}

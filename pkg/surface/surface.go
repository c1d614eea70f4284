package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/menta2k/boulder-beta/pkg/canvas"
	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/gesture"
	"github.com/menta2k/boulder-beta/pkg/holds"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// Style holds the on-screen marker dimensions in surface pixels
type Style struct {
	OuterRadius float64
	InnerRadius float64
	RingWidth   float64
	LabelSize   float64
	IconSize    float64
	Background  color.Color
}

// DefaultStyle returns the compact marker style
func DefaultStyle() Style {
	return Style{
		OuterRadius: 11,
		InnerRadius: 9,
		RingWidth:   1,
		LabelSize:   7,
		IconSize:    8,
		Background:  color.NRGBA{0x11, 0x18, 0x27, 0xff},
	}
}

// Surface is the interactive marking area for one image. It owns the hold
// registry and the view state and routes confirmed taps from its gesture
// controller into new holds.
type Surface struct {
	registry *holds.Registry
	view     geometry.ViewState
	gestures *gesture.Controller
	style    Style

	img            image.Image
	intrinsic      geometry.Size
	containerWidth float64
	geom           geometry.DisplayGeometry
	hasGeom        bool

	// OnChange is called after every hold added through a tap
	OnChange func(h types.Hold)
}

// New creates a surface with no image
func New() *Surface {
	return NewWithStyle(DefaultStyle())
}

// NewWithStyle creates a surface with a custom marker style
func NewWithStyle(style Style) *Surface {
	s := &Surface{
		registry: holds.NewRegistry(),
		view:     geometry.NewViewState(),
		style:    style,
	}
	s.gestures = gesture.NewController(&s.view, s)
	return s
}

// Registry returns the hold registry
func (s *Surface) Registry() *holds.Registry {
	return s.registry
}

// Gestures returns the controller input events should be sent to
func (s *Surface) Gestures() *gesture.Controller {
	return s.gestures
}

// View returns the current view state
func (s *Surface) View() geometry.ViewState {
	return s.view
}

// SetView replaces the view state, clamping the zoom
func (s *Surface) SetView(v geometry.ViewState) {
	v.Zoom = geometry.ClampZoom(v.Zoom)
	s.view = v
}

// LoadImage installs a new image. The registry is emptied and the view
// reset because holds belong to one image.
func (s *Surface) LoadImage(img image.Image) {
	s.img = img
	if img == nil {
		s.intrinsic = geometry.Size{}
	} else {
		b := img.Bounds()
		s.intrinsic = geometry.Size{Width: b.Dx(), Height: b.Dy()}
	}
	s.registry.Clear()
	s.view.Reset()
	s.relayout()
}

// SetImageSize installs image dimensions without pixel data, for callers
// that only need coordinate conversion.
func (s *Surface) SetImageSize(size geometry.Size) {
	s.img = nil
	s.intrinsic = size
	s.registry.Clear()
	s.view.Reset()
	s.relayout()
}

// ImageSize returns the intrinsic image size
func (s *Surface) ImageSize() geometry.Size {
	return s.intrinsic
}

// Resize records a new container width and recomputes the geometry
func (s *Surface) Resize(containerWidth float64) {
	s.containerWidth = containerWidth
	s.relayout()
}

// Geometry returns the current display geometry
func (s *Surface) Geometry() (geometry.DisplayGeometry, error) {
	if !s.hasGeom {
		return geometry.DisplayGeometry{}, geometry.ErrGeometryUnavailable
	}
	return s.geom, nil
}

func (s *Surface) relayout() {
	g, err := geometry.ComputeDisplaySize(s.intrinsic, s.containerWidth)
	s.geom, s.hasGeom = g, err == nil
}

// Tap converts a surface point to image coordinates and adds a hold of the
// current mode. Taps before the geometry is known or while the registry is
// locked are dropped.
func (s *Surface) Tap(p types.Point) {
	if _, err := s.Mark(p); err == nil && s.OnChange != nil {
		s.OnChange(s.lastHold())
	}
}

// Mark is Tap with the outcome reported
func (s *Surface) Mark(p types.Point) (types.Hold, error) {
	if !s.hasGeom {
		return types.Hold{}, geometry.ErrGeometryUnavailable
	}
	ip := geometry.ToImageCoords(p, s.geom, s.view)
	return s.registry.Add(ip)
}

func (s *Surface) lastHold() types.Hold {
	hs := s.registry.Holds()
	return hs[len(hs)-1]
}

// Render draws the image at display size with the view transform applied
// and every hold marker on top. Markers keep a constant on-screen size
// regardless of zoom.
func (s *Surface) Render() (*image.RGBA, error) {
	if !s.hasGeom {
		return nil, geometry.ErrGeometryUnavailable
	}
	size := s.geom.DisplayBounds()
	cv := canvas.New(size.Width, size.Height)
	cv.Fill(s.style.Background)

	if s.img != nil {
		s.drawImage(cv.Image())
	}
	if err := s.drawHolds(cv); err != nil {
		return nil, err
	}
	return cv.Image(), nil
}

func (s *Surface) drawImage(dst *image.RGBA) {
	src := s.img
	b := src.Bounds()

	// intrinsic -> surface: scale * zoom, then pan
	sx := s.geom.ScaleX() * s.view.Zoom
	sy := s.geom.ScaleY() * s.view.Zoom
	if s.view.Zoom == 1 && s.view.Pan == (types.Point{}) {
		// plain fit is a downscale; Lanczos gives the sharper preview
		resized := imaging.Resize(src, dst.Bounds().Dx(), dst.Bounds().Dy(), imaging.Lanczos)
		xdraw.Draw(dst, dst.Bounds(), resized, image.Point{}, xdraw.Over)
		return
	}
	m := f64.Aff3{
		sx, 0, s.view.Pan.X - float64(b.Min.X)*sx,
		0, sy, s.view.Pan.Y - float64(b.Min.Y)*sy,
	}
	xdraw.ApproxBiLinear.Transform(dst, m, src, b, xdraw.Over, nil)
}

func (s *Surface) drawHolds(cv *canvas.Canvas) error {
	labelFace, err := canvas.Face(s.style.LabelSize, true)
	if err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	iconFace, err := canvas.Face(s.style.IconSize, false)
	if err != nil {
		return fmt.Errorf("surface: %w", err)
	}

	shadow := color.NRGBA{0, 0, 0, 204}
	white := color.NRGBA{0xff, 0xff, 0xff, 0xff}
	for _, h := range s.registry.Holds() {
		p := geometry.ToSurfaceCoords(h.Point(), s.geom, s.view)
		st := h.HoldType.Style()

		cv.FillCircle(p, s.style.OuterRadius, shadow)
		cv.StrokeCircle(p, s.style.OuterRadius, s.style.RingWidth, white)
		cv.FillCircle(p, s.style.InnerRadius, st.Color)

		// start and top show their glyph, the rest their number
		if st.Glyph != "" {
			cv.DrawTextCentered(iconFace, st.Glyph, p, white)
		} else {
			cv.DrawTextCentered(labelFace, fmt.Sprint(h.Order), p, white)
		}
	}
	return nil
}

// Counts returns the per-type hold counts for UI counters
func (s *Surface) Counts() map[types.HoldType]int {
	out := make(map[types.HoldType]int, 4)
	for _, t := range types.HoldTypes() {
		out[t] = s.registry.Count(t)
	}
	return out
}

// IsUnavailable reports whether err is the missing-geometry guard
func IsUnavailable(err error) bool {
	return errors.Is(err, geometry.ErrGeometryUnavailable)
}

// Package gesture interprets raw pointer and touch input for the marking
// surface.
//
// A mouse click marks immediately. Touch input is ambiguous until the
// gesture ends: a single finger that lifts without moving more than
// TapSlop pixels is a tap and marks at the position where it first touched
// down, while two fingers always pinch-zoom and pan and never mark.
// Mouse panning uses the middle button or Alt with the primary button.
//
// The controller mutates a ViewState it does not own and reports taps to a
// Target. It is not safe for concurrent use; input events are expected to be
// delivered one at a time.
package gesture

import (
	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/types"
)

const (
	// TapSlop is how far, in display pixels per axis, a finger may drift
	// before a touch stops counting as a tap.
	TapSlop = 10.0

	wheelZoomOut = 0.9
	wheelZoomIn  = 1.1
)

// MouseButton identifies a mouse button
type MouseButton int

const (
	ButtonPrimary MouseButton = iota
	ButtonMiddle
	ButtonSecondary
)

// MouseEvent is a mouse event in surface coordinates
type MouseEvent struct {
	Pos    types.Point
	Button MouseButton
	Alt    bool
}

// MouseState is the mouse half of the state machine
type MouseState int

const (
	MouseIdle MouseState = iota
	PanningMouse
)

func (s MouseState) String() string {
	switch s {
	case MouseIdle:
		return "idle"
	case PanningMouse:
		return "panning"
	default:
		return "unknown"
	}
}

// TouchState is the touch half of the state machine
type TouchState int

const (
	TouchIdle TouchState = iota
	TouchPending
	TouchPinch
)

func (s TouchState) String() string {
	switch s {
	case TouchIdle:
		return "idle"
	case TouchPending:
		return "pending"
	case TouchPinch:
		return "pinch"
	default:
		return "unknown"
	}
}

// Target receives confirmed taps in surface coordinates
type Target interface {
	Tap(surface types.Point)
}

// TargetFunc adapts a function to Target
type TargetFunc func(surface types.Point)

// Tap calls f(surface)
func (f TargetFunc) Tap(surface types.Point) {
	f(surface)
}

type touchTracking struct {
	start    types.Point
	hasStart bool
	moved    bool
	multi    bool
	lastDist float64
	lastMid  types.Point
}

// Controller is the gesture state machine
type Controller struct {
	view   *geometry.ViewState
	target Target

	mouse   MouseState
	lastPan types.Point

	touch      TouchState
	touchTrack touchTracking
}

// NewController creates a controller that drives view and reports taps to
// target. A nil view gets a private identity view.
func NewController(view *geometry.ViewState, target Target) *Controller {
	if view == nil {
		v := geometry.NewViewState()
		view = &v
	}
	return &Controller{view: view, target: target}
}

// View returns the view state being driven
func (c *Controller) View() *geometry.ViewState {
	return c.view
}

// MouseState returns the current mouse state
func (c *Controller) MouseState() MouseState {
	return c.mouse
}

// TouchState returns the current touch state
func (c *Controller) TouchState() TouchState {
	return c.touch
}

// MouseDown starts a pan on the middle button or Alt+primary
func (c *Controller) MouseDown(ev MouseEvent) {
	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.Alt) {
		c.mouse = PanningMouse
		c.lastPan = ev.Pos
	}
}

// MouseMove pans by the movement delta while panning
func (c *Controller) MouseMove(ev MouseEvent) {
	if c.mouse != PanningMouse {
		return
	}
	c.view.PanBy(ev.Pos.X-c.lastPan.X, ev.Pos.Y-c.lastPan.Y)
	c.lastPan = ev.Pos
}

// MouseUp ends a pan
func (c *Controller) MouseUp(MouseEvent) {
	c.mouse = MouseIdle
}

// MouseLeave ends a pan when the pointer leaves the surface
func (c *Controller) MouseLeave() {
	c.mouse = MouseIdle
}

// Click marks at the click position. Clicks during a pan or carrying the
// pan modifier are ignored.
func (c *Controller) Click(ev MouseEvent) bool {
	if c.mouse == PanningMouse || ev.Alt || ev.Button != ButtonPrimary {
		return false
	}
	c.tap(ev.Pos)
	return true
}

// Wheel zooms out for positive deltaY (scroll down) and in otherwise. The
// pan is left alone.
func (c *Controller) Wheel(deltaY float64) {
	if deltaY > 0 {
		c.view.ScaleZoom(wheelZoomOut)
		return
	}
	c.view.ScaleZoom(wheelZoomIn)
}

// TouchStart begins a touch gesture with the fingers currently down
func (c *Controller) TouchStart(touches []types.Point) {
	switch {
	case len(touches) >= 2:
		c.touch = TouchPinch
		c.touchTrack = touchTracking{
			moved:    true,
			multi:    true,
			lastDist: geometry.Distance(touches[0], touches[1]),
			lastMid:  geometry.Midpoint(touches[0], touches[1]),
		}
	case len(touches) == 1:
		c.touch = TouchPending
		c.touchTrack = touchTracking{start: touches[0], hasStart: true}
	}
}

// TouchMove updates a pinch incrementally or watches a pending tap for drift
func (c *Controller) TouchMove(touches []types.Point) {
	tr := &c.touchTrack

	if len(touches) >= 2 && tr.lastDist > 0 && c.touch == TouchPinch {
		dist := geometry.Distance(touches[0], touches[1])
		mid := geometry.Midpoint(touches[0], touches[1])

		c.view.ScaleZoom(dist / tr.lastDist)
		c.view.PanBy(mid.X-tr.lastMid.X, mid.Y-tr.lastMid.Y)

		tr.lastDist = dist
		tr.lastMid = mid
		return
	}

	if len(touches) == 1 && tr.hasStart {
		dx := abs(touches[0].X - tr.start.X)
		dy := abs(touches[0].Y - tr.start.Y)
		if dx > TapSlop || dy > TapSlop {
			tr.moved = true
		}
	}
}

// TouchEnd finishes the gesture. Only an unmoved single-finger touch marks,
// and it marks where the finger first landed. It reports whether a tap was
// delivered.
func (c *Controller) TouchEnd() bool {
	tr := c.touchTrack
	c.touch = TouchIdle
	c.touchTrack = touchTracking{}

	if tr.multi || tr.moved || !tr.hasStart {
		return false
	}
	c.tap(tr.start)
	return true
}

// TouchCancel abandons the current touch gesture
func (c *Controller) TouchCancel() {
	c.touch = TouchIdle
	c.touchTrack = touchTracking{}
}

// ResetZoom restores the identity view
func (c *Controller) ResetZoom() {
	c.view.Reset()
}

func (c *Controller) tap(p types.Point) {
	if c.target != nil {
		c.target.Tap(p)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

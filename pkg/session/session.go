// Package session ties one image, its marking surface and one analysis
// backend together for a single analysis round: mark holds, analyze once,
// review the result, reset.
package session

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/menta2k/boulder-beta/pkg/client"
	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/overlay"
	"github.com/menta2k/boulder-beta/pkg/pose"
	"github.com/menta2k/boulder-beta/pkg/surface"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// Errors returned by Analyze before any request is made
var (
	ErrNoHolds          = errors.New("mark at least one hold before analyzing")
	ErrAnalysisInFlight = errors.New("an analysis is already running")
	ErrResultExists     = errors.New("an analysis result exists; reset to analyze again")
)

// TransportMessage is the single user-facing text for failed analyses
const TransportMessage = "Failed to generate the beta. Please try again."

// TransportError wraps any failure of the analysis backend
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Session owns the marking surface, the result renderer and the last
// analysis result. The surface is driven from one goroutine; Analyze may
// be called from another and rejects overlapping calls.
type Session struct {
	analyzer client.BetaAnalyzer
	surface  *surface.Surface
	overlay  *overlay.Renderer
	card     geometry.Size

	mu      sync.Mutex
	loading bool
	result  *types.BetaResponse
}

// New creates a session using analyzer for beta generation
func New(analyzer client.BetaAnalyzer) *Session {
	return NewWithRenderers(analyzer, surface.New(), overlay.NewRenderer())
}

// NewWithRenderers creates a session with preconfigured renderers
func NewWithRenderers(analyzer client.BetaAnalyzer, s *surface.Surface, o *overlay.Renderer) *Session {
	return &Session{
		analyzer: analyzer,
		surface:  s,
		overlay:  o,
		card:     geometry.Size{Width: pose.ThumbWidth, Height: pose.ThumbHeight},
	}
}

// SetCardSize changes the pose thumbnail size
func (s *Session) SetCardSize(card geometry.Size) {
	s.card = card
}

// Surface returns the marking surface
func (s *Session) Surface() *surface.Surface {
	return s.surface
}

// Overlay returns the result renderer
func (s *Session) Overlay() *overlay.Renderer {
	return s.overlay
}

// LoadImage replaces the image. Holds and any result are discarded.
func (s *Session) LoadImage(img image.Image) {
	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()

	s.surface.LoadImage(img)
	s.relayout()
}

// Resize propagates a container width change to both renderers
func (s *Session) Resize(containerWidth float64) {
	s.surface.Resize(containerWidth)
	s.relayout()
}

func (s *Session) relayout() {
	g, err := s.surface.Geometry()
	if err != nil {
		// keep the overlay guarded until the surface has a layout
		s.overlay.Layout(geometry.Size{}, 0)
		return
	}
	s.overlay.Layout(s.surface.ImageSize(), g.DisplayWidth)
}

// Loading reports whether an analysis is in flight
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Result returns the last successful analysis or nil
func (s *Session) Result() *types.BetaResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Request builds the analysis request for the current holds
func (s *Session) Request() (types.BetaRequest, error) {
	size := s.surface.ImageSize()
	if !size.Valid() {
		return types.BetaRequest{}, geometry.ErrGeometryUnavailable
	}
	holds := s.surface.Registry().Holds()
	if len(holds) == 0 {
		return types.BetaRequest{}, ErrNoHolds
	}
	return types.BetaRequest{Holds: holds, ImageWidth: size.Width, ImageHeight: size.Height}, nil
}

// Analyze sends the holds to the analyzer. On success the result is stored
// and the registry locked. On failure a *TransportError is returned and
// the holds stay editable so the user can retry.
func (s *Session) Analyze(ctx context.Context) (*types.BetaResponse, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrAnalysisInFlight
	}
	if s.result != nil {
		s.mu.Unlock()
		return nil, ErrResultExists
	}
	req, err := s.Request()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.loading = true
	s.mu.Unlock()

	resp, err := s.analyzer.Analyze(ctx, req)
	if err == nil && resp == nil {
		err = errors.New("analyzer returned no result")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return nil, &TransportError{Message: TransportMessage, Err: err}
	}
	s.result = resp
	s.surface.Registry().Lock()
	return resp, nil
}

// Reset clears holds and result and unlocks the registry
func (s *Session) Reset() {
	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()
	s.surface.Registry().Clear()
}

// RenderMarking draws the marking surface
func (s *Session) RenderMarking() (*image.RGBA, error) {
	return s.surface.Render()
}

// RenderResult draws the stored result over base at display size
func (s *Session) RenderResult(base image.Image) (*image.RGBA, error) {
	res := s.Result()
	if res == nil {
		return nil, errors.New("no analysis result")
	}
	return s.overlay.Render(base, res.Moves)
}

// Frames synthesizes the captioned poses for the current holds
func (s *Session) Frames() []pose.Frame {
	return pose.Frames(s.surface.Registry().Holds())
}

// Thumbnails renders one pose card per frame over base
func (s *Session) Thumbnails(base image.Image) ([]*image.RGBA, error) {
	frames := s.Frames()
	out := make([]*image.RGBA, 0, len(frames))
	for _, f := range frames {
		img, err := pose.Card(base, f.Pose, s.surface.ImageSize(), s.card, pose.DefaultFigureStyle())
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

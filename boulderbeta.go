// Package boulderbeta marks holds on bouldering wall photos and turns them
// into a beta: an annotated move overlay plus stick-figure pose cards.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		boulderbeta "github.com/menta2k/boulder-beta"
//		"github.com/menta2k/boulder-beta/pkg/heuristic"
//		"github.com/menta2k/boulder-beta/pkg/types"
//	)
//
//	func main() {
//		b := boulderbeta.New(heuristic.New())
//		if err := b.LoadImage(context.Background(), "wall.jpg"); err != nil {
//			log.Fatal(err)
//		}
//		b.MarkHolds([]types.Hold{
//			{X: 300, Y: 900, HoldType: types.HoldStart},
//			{X: 420, Y: 600, HoldType: types.HoldMiddle},
//			{X: 380, Y: 200, HoldType: types.HoldTop},
//		})
//		result, err := b.Run(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("difficulty %s", result.Beta.Summary.Difficulty)
//	}
//
// The package composes four parts:
//
//  1. Surface (pkg/surface): the zoomable marking area and hold registry
//  2. Analysis (pkg/heuristic, pkg/coach, pkg/remote): holds to moves
//  3. Overlay (pkg/overlay): arrows, markers and tips over the photo
//  4. Pose (pkg/pose): one stick figure per move
package boulderbeta

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/menta2k/boulder-beta/internal/utils"
	"github.com/menta2k/boulder-beta/pkg/client"
	"github.com/menta2k/boulder-beta/pkg/coach"
	"github.com/menta2k/boulder-beta/pkg/heuristic"
	"github.com/menta2k/boulder-beta/pkg/llamacpp"
	"github.com/menta2k/boulder-beta/pkg/ollama"
	"github.com/menta2k/boulder-beta/pkg/pose"
	"github.com/menta2k/boulder-beta/pkg/processing"
	"github.com/menta2k/boulder-beta/pkg/remote"
	"github.com/menta2k/boulder-beta/pkg/session"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// Version of the boulder-beta library
const Version = "1.0.0"

// DefaultContainerWidth is the layout width used until Resize is called
const DefaultContainerWidth = 800

// Beta drives one photo through marking, analysis and rendering
type Beta struct {
	processor *processing.Processor
	session   *session.Session
	image     image.Image
}

// New creates a Beta using analyzer for move generation
func New(analyzer client.BetaAnalyzer) *Beta {
	return NewWithSession(session.New(analyzer))
}

// NewWithSession wraps a preconfigured session
func NewWithSession(s *session.Session) *Beta {
	s.Resize(DefaultContainerWidth)
	return &Beta{
		processor: processing.NewProcessor(),
		session:   s,
	}
}

// Session exposes the underlying session
func (b *Beta) Session() *session.Session {
	return b.session
}

// Image returns the loaded photo
func (b *Beta) Image() image.Image {
	return b.image
}

// LoadImage loads a photo from a path or URL
func (b *Beta) LoadImage(ctx context.Context, source string) error {
	img, err := b.processor.LoadImageSmart(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	b.SetImage(img)
	return nil
}

// SetImage installs an already decoded photo
func (b *Beta) SetImage(img image.Image) {
	b.image = img
	b.session.LoadImage(img)
}

// Resize sets the container width both renderers lay out against
func (b *Beta) Resize(containerWidth float64) {
	b.session.Resize(containerWidth)
}

// MarkHolds places holds given in image coordinates. Orders are
// reassigned per type in the given sequence.
func (b *Beta) MarkHolds(holds []types.Hold) error {
	reg := b.session.Surface().Registry()
	for _, h := range holds {
		if _, err := reg.AddType(h.Point(), h.HoldType); err != nil {
			return fmt.Errorf("failed to mark hold at %d,%d: %w", h.X, h.Y, err)
		}
	}
	return nil
}

// Result holds everything rendered for one analysis
type Result struct {
	Beta       *types.BetaResponse
	Preview    *image.RGBA
	Overlay    *image.RGBA
	Frames     []pose.Frame
	Thumbnails []*image.RGBA
}

// Run analyzes the marked holds and renders the preview, overlay and pose
// cards
func (b *Beta) Run(ctx context.Context) (*Result, error) {
	preview, err := b.session.RenderMarking()
	if err != nil {
		return nil, fmt.Errorf("marking preview failed: %w", err)
	}

	beta, err := b.session.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	overlay, err := b.session.RenderResult(b.image)
	if err != nil {
		return nil, fmt.Errorf("overlay rendering failed: %w", err)
	}

	thumbs, err := b.session.Thumbnails(b.image)
	if err != nil {
		return nil, fmt.Errorf("pose rendering failed: %w", err)
	}

	return &Result{
		Beta:       beta,
		Preview:    preview,
		Overlay:    overlay,
		Frames:     b.session.Frames(),
		Thumbnails: thumbs,
	}, nil
}

// SaveResult writes the rendered images of r into outputDir and returns the
// written paths. File names derive from source, the photo path or URL.
func (b *Beta) SaveResult(r *Result, source, outputDir, format string, quality int, lossless bool) ([]string, error) {
	format = strings.ToLower(format)
	var written []string
	save := func(img image.Image, suffix string) error {
		path := utils.GenerateOutputFilename(source, outputDir, "", suffix, format)
		if err := b.processor.SaveImage(img, path, format, quality, lossless); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := save(r.Preview, "_marking"); err != nil {
		return written, err
	}
	if err := save(r.Overlay, "_beta"); err != nil {
		return written, err
	}
	for i, img := range r.Thumbnails {
		suffix := fmt.Sprintf("_pose_%02d_%s", i, utils.SanitizeFilename(strings.ToLower(r.Frames[i].Label)))
		if err := save(img, suffix); err != nil {
			return written, err
		}
	}
	return written, nil
}

// BackendOptions selects an analysis backend
type BackendOptions struct {
	// Backend is one of heuristic, remote, ollama or llamacpp
	Backend string
	URL     string
	Model   string

	// ImageB64 is sent to vision models with the prompt when set
	ImageB64 string
}

// NewAnalyzer builds the analyzer named by opts
func NewAnalyzer(opts BackendOptions) (client.BetaAnalyzer, error) {
	var llm client.LLMClient
	switch opts.Backend {
	case "", "heuristic":
		return heuristic.New(), nil
	case "remote":
		c, err := remote.NewClient(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote client: %w", err)
		}
		return c, nil
	case "ollama":
		c, err := ollama.NewClient(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		llm = c
	case "llamacpp":
		c, err := llamacpp.NewClient(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
		llm = c
	default:
		return nil, fmt.Errorf("unknown backend: %s (use heuristic, remote, ollama or llamacpp)", opts.Backend)
	}

	if opts.Model == "" {
		return nil, fmt.Errorf("backend %s needs a model name", opts.Backend)
	}
	c := coach.NewCoach(llm, opts.Model)
	if opts.ImageB64 == "" {
		return c, nil
	}
	return client.AnalyzerFunc(func(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error) {
		return c.AnalyzeWithImage(ctx, req, opts.ImageB64)
	}), nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

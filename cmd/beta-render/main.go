package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	boulderbeta "github.com/menta2k/boulder-beta"
	"github.com/menta2k/boulder-beta/internal/config"
	"github.com/menta2k/boulder-beta/internal/utils"
	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/overlay"
	"github.com/menta2k/boulder-beta/pkg/processing"
	"github.com/menta2k/boulder-beta/pkg/session"
	"github.com/menta2k/boulder-beta/pkg/surface"
	"github.com/menta2k/boulder-beta/pkg/types"
)

func main() {
	var in, holdsPath, configPath string
	var backend, url, model string
	var outDir, ext string
	var quality int
	var lossless bool
	var width, zoom, panX, panY float64

	flag.StringVar(&in, "in", "", "input wall photo path or URL (jpg/png/webp)")
	flag.StringVar(&holdsPath, "holds", "", "JSON file with holds in image coordinates")
	flag.StringVar(&configPath, "config", "", "config file (default: "+config.GetConfigPath()+" when present)")

	flag.StringVar(&backend, "backend", "", "analysis backend: heuristic|remote|ollama|llamacpp")
	flag.StringVar(&url, "url", "", "backend server URL")
	flag.StringVar(&model, "model", "", "model name for ollama and llamacpp")

	flag.StringVar(&outDir, "out", "", "output directory")
	flag.StringVar(&ext, "ext", "", "output format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")

	flag.Float64Var(&width, "width", 0, "container width the display is fitted to")
	flag.Float64Var(&zoom, "zoom", 1, "marking preview zoom (1..4)")
	flag.Float64Var(&panX, "panx", 0, "marking preview pan x in display pixels")
	flag.Float64Var(&panY, "pany", 0, "marking preview pan y in display pixels")

	flag.Parse()
	if in == "" || holdsPath == "" {
		log.Fatalf("usage: %s -in wall.jpg|URL -holds holds.json [-backend heuristic|remote|ollama|llamacpp] [-url server_url] [-model name] [-out outdir] [-ext png|jpg|webp] [-width 800] [-zoom 1.5 -panx 0 -pany 0]", filepath.Base(os.Args[0]))
	}

	if !processing.IsURL(in) && !utils.IsImageFile(in) {
		log.Fatalf("%s is not an image file (jpg/png/gif/webp)", in)
	}

	cfg := loadConfig(configPath)
	if backend != "" {
		cfg.Analysis.Backend = backend
	}
	if url != "" {
		cfg.Analysis.URL = url
	}
	if model != "" {
		cfg.Analysis.Model = model
	}
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if ext != "" {
		cfg.Output.DefaultFormat = strings.ToLower(ext)
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if width > 0 {
		cfg.Surface.ContainerWidth = width
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		log.Fatal(err)
	}

	var holds []types.Hold
	if err := utils.ReadJSON(holdsPath, &holds); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if cfg.Analysis.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Analysis.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	processor := processing.NewProcessor()
	img, err := processor.LoadImageSmart(ctx, in)
	if err != nil {
		log.Fatal(err)
	}
	bounds := img.Bounds()
	log.Printf("loaded %s (%dx%d), %d holds", in, bounds.Dx(), bounds.Dy(), len(holds))

	opts := boulderbeta.BackendOptions{
		Backend: cfg.Analysis.Backend,
		URL:     cfg.Analysis.URL,
		Model:   cfg.Analysis.Model,
	}
	if cfg.Analysis.SendImage && (opts.Backend == "ollama" || opts.Backend == "llamacpp") {
		opts.ImageB64, err = processor.PrepareImageForModel(img, "jpg", cfg.Analysis.MaxImageDim, 85)
		if err != nil {
			log.Fatal(err)
		}
	}
	analyzer, err := boulderbeta.NewAnalyzer(opts)
	if err != nil {
		log.Fatal(err)
	}

	sess := session.NewWithRenderers(analyzer, surface.NewWithStyle(cfg.SurfaceStyle()), overlay.NewRendererWithStyle(cfg.OverlayStyle()))
	sess.SetCardSize(cfg.CardSize())

	beta := boulderbeta.NewWithSession(sess)
	beta.SetImage(img)
	beta.Resize(cfg.Surface.ContainerWidth)
	if err := beta.MarkHolds(holds); err != nil {
		log.Fatal(err)
	}
	sess.Surface().SetView(geometry.ViewState{Zoom: zoom, Pan: types.Point{X: panX, Y: panY}})

	log.Printf("analyzing with %s backend", cfg.Analysis.Backend)
	result, err := beta.Run(ctx)
	if err != nil {
		var te *session.TransportError
		if errors.As(err, &te) {
			log.Fatalf("%s (%v)", te.Message, te.Err)
		}
		log.Fatal(err)
	}

	log.Printf("difficulty=%q moves=%d", result.Beta.Summary.Difficulty, result.Beta.Summary.TotalMoves)
	for _, kp := range result.Beta.Summary.KeyPoints {
		log.Printf("key point: %s", kp)
	}

	written, err := beta.SaveResult(result, in, cfg.Output.OutputDir, cfg.Output.DefaultFormat, cfg.Output.Quality, cfg.Output.Lossless)
	for _, path := range written {
		log.Printf("wrote %s", path)
	}
	if err != nil {
		log.Fatal(err)
	}

	betaPath := utils.GenerateOutputFilename(in, cfg.Output.OutputDir, "", "_beta", "json")
	if err := utils.WriteJSON(betaPath, result.Beta); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", betaPath)
}

// loadConfig reads the explicit config file, else the default one when it
// exists, else the built-in defaults
func loadConfig(path string) *config.Config {
	if path == "" {
		path = config.GetConfigPath()
		if !utils.FileExists(path) {
			return config.Default()
		}
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	boulderbeta "github.com/menta2k/boulder-beta"
)

func main() {
	var addr, backend, url, model string
	var timeout time.Duration

	flag.StringVar(&addr, "addr", ":8000", "listen address")
	flag.StringVar(&backend, "backend", "heuristic", "analysis backend: heuristic|ollama|llamacpp")
	flag.StringVar(&url, "url", "", "LLM server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&model, "model", "", "model name for ollama and llamacpp")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "per-request timeout")
	flag.Parse()

	if backend == "remote" {
		log.Fatalf("usage: %s [-addr :8000] [-backend heuristic|ollama|llamacpp] [-url server_url] [-model name]", filepath.Base(os.Args[0]))
	}

	analyzer, err := boulderbeta.NewAnalyzer(boulderbeta.BackendOptions{
		Backend: backend,
		URL:     url,
		Model:   model,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(&server{analyzer: analyzer, backend: backend}, timeout),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (backend=%s)", addr, backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

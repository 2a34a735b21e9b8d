package main

import (
	"fmt"
	"log"

	"docex/internal/config"
	"docex/internal/credential"
	"docex/internal/extract/azopenai"
	"docex/internal/handler"
	"docex/internal/layout"
	"docex/internal/pipeline"
	"docex/internal/port"
	"docex/internal/render"
	"docex/internal/render/imagefile"
	"docex/internal/render/poppler"
	"docex/internal/router"
	"docex/internal/schema"
	s3storage "docex/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Extractor.Endpoint == "" || cfg.Extractor.Deployment == "" {
		return fmt.Errorf("extractor endpoint and deployment are required")
	}

	tokens := credential.NewStaticProvider(cfg.Auth.BearerToken)

	// Renderers
	pdfRenderer := poppler.NewRenderer(&cfg.Render)
	imgRenderer := imagefile.NewRenderer()
	renderer := render.NewMux(map[string]port.DocumentRenderer{
		"application/pdf": pdfRenderer,
		"image/png":       imgRenderer,
		"image/jpeg":      imgRenderer,
		"image/tiff":      imgRenderer,
		"image/bmp":       imgRenderer,
	})

	// Layout analyzer (nil when the layout path is disabled)
	analyzer, err := layout.NewAnalyzer(&cfg.Layout, tokens, renderer)
	if err != nil {
		return fmt.Errorf("failed to initialize layout analyzer: %w", err)
	}
	if analyzer == nil {
		log.Printf("main: layout path disabled, running LLM-only confidence")
	}

	// Extraction model client
	extractor := azopenai.NewClient(&cfg.Extractor, tokens)

	pipe := pipeline.New(renderer, analyzer, extractor, cfg.Layout.Strict, cfg.Extractor)

	invoiceContract, err := schema.InvoiceContract()
	if err != nil {
		return fmt.Errorf("failed to compile bundled invoice contract: %w", err)
	}

	// Object storage (optional)
	var store port.ObjectStorage
	if cfg.S3.Bucket != "" {
		store, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	extractH := handler.NewExtractHandler(pipe, store, invoiceContract)
	healthH := handler.NewHealthHandler()

	r := router.Setup(cfg.Auth.APIKey, extractH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

/**
 * OCR command - runs the Tesseract wrapper against an image file
 *
 * Usage:
 *   ocr [-mode text|confidence|both|data] [-psm N] [-device TYPE] [-env FILE] <image>
 *
 * Configuration comes from the environment (see internal/config), optionally
 * seeded from a .env file. The result is printed to stdout as JSON.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adverant/nexus/ocr-engine/internal/config"
	"github.com/adverant/nexus/ocr-engine/internal/logging"
	"github.com/adverant/nexus/ocr-engine/internal/processor"
)

func main() {
	mode := flag.String("mode", "both", "output: text, confidence, both or data")
	psm := flag.String("psm", "", "override the page segmentation mode")
	device := flag.String("device", "", "device type hint (accepted for compatibility)")
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Load environment variables
	if err := godotenv.Load(*envFile); err != nil && *envFile != ".env" {
		log.Printf("Warning: %s not loaded (%v), using system environment variables", *envFile, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLoggerTo(os.Stderr, "ocr", level)

	engine, err := cfg.NewOCREngine(logger, *device)
	if err != nil {
		log.Fatalf("Failed to build OCR engine: %v", err)
	}
	if *psm != "" {
		engine.SetPSM(*psm)
	}

	img, format, err := loadImage(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	logger.Debug("image loaded",
		"path", flag.Arg(0),
		"format", format,
		"bounds", img.Bounds().String(),
		"backend", cfg.Backend,
		"params", engine.Params().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := run(ctx, engine, *mode, img)
	if err != nil {
		log.Fatalf("OCR failed: %v", err)
	}
	result.Engine = cfg.Backend

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
}

type extractor interface {
	ExtractText(ctx context.Context, img image.Image) (string, error)
	Confidence(ctx context.Context, img image.Image) (float64, error)
	ExtractWithConfidence(ctx context.Context, img image.Image) (string, float64, error)
	ExtractDetailedData(ctx context.Context, img image.Image) ([]processor.Token, error)
	Params() *processor.Params
}

func run(ctx context.Context, e extractor, mode string, img image.Image) (*processor.OCRResult, error) {
	start := time.Now()
	result := &processor.OCRResult{Params: e.Params().String()}

	var err error
	switch mode {
	case "text":
		result.Text, err = e.ExtractText(ctx, img)
	case "confidence":
		result.Confidence, err = e.Confidence(ctx, img)
	case "both":
		result.Text, result.Confidence, err = e.ExtractWithConfidence(ctx, img)
	case "data":
		result.Tokens, err = e.ExtractDetailedData(ctx, img)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

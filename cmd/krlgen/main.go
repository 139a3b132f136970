package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.viam.com/rdk/logging"

	"github.com/Moult/stone-drone-robots/internal/batch"
	"github.com/Moult/stone-drone-robots/internal/config"
)

func main() {
	// CLI flags
	configFile := pflag.String("config", "", "Path to a .json, .yaml or .toml config file")
	meshPath := pflag.String("mesh", "", "PLY mesh to transpile (replaces the config's jobs)")
	startA := pflag.Int("start-a", -1, "Start vertex of rail A")
	startB := pflag.Int("start-b", -1, "Start vertex of rail B")
	name := pflag.String("name", "", "Program name (default: mesh file name)")
	outputDir := pflag.String("output", "", "Output directory (default: current directory)")
	reference := pflag.String("reference", "", "DXF drawing holding the lateral reference axis")
	referenceLayer := pflag.String("reference-layer", "", "Layer of the reference axis (default: Target)")
	lateralAxis := pflag.String("lateral-axis", "", "Lateral axis override as x,y,z")
	unitScale := pflag.Float64("unit-scale", 0, "Mesh units to millimetres (default: 1)")
	previewFormat := pflag.String("preview", "", "Write a preview image: webp, tga or png")
	exportDXF := pflag.Bool("dxf", false, "Write the traced path as DXF")
	workers := pflag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	debug := pflag.Bool("debug", false, "Debug logging")

	pflag.Parse()

	logger := logging.NewLogger("krlgen")
	if *debug {
		logger = logging.NewDebugLogger("krlgen")
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logger.Errorf("loading config: %v", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	err := cfg.Resolve(config.Flags{
		OutputDir:      *outputDir,
		Mesh:           *meshPath,
		Name:           *name,
		StartA:         *startA,
		StartB:         *startB,
		Reference:      *reference,
		ReferenceLayer: *referenceLayer,
		LateralAxis:    *lateralAxis,
		UnitScale:      *unitScale,
		Preview:        *previewFormat,
		DXF:            *exportDXF,
		Workers:        *workers,
	})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		pflag.Usage()
		os.Exit(2)
	}

	logger.Infof("jobs: %d, workers: %d, output: %s", len(cfg.Jobs), cfg.Workers, cfg.OutputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results := batch.Run(ctx, &cfg, cfg.Jobs, logger)

	manifest := batch.NewManifest(results)
	logger.Infof("done in %.1fs: %d/%d programs written", time.Since(start).Seconds(), manifest.Succeeded, len(results))

	limit := min(20, manifest.Failed)
	for _, r := range results {
		if limit == 0 {
			break
		}
		if !r.Success {
			logger.Errorf("%s: %s", r.Name, r.Error)
			limit--
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Warnf("manifest: %v", err)
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		logger.Warnf("manifest write failed: %v", err)
	} else {
		logger.Debugf("manifest: %s", manifestPath)
	}

	if manifest.Failed > 0 {
		os.Exit(1)
	}
}

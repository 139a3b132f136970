package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.viam.com/rdk/logging"

	"github.com/Moult/stone-drone-robots/internal/config"
	"github.com/Moult/stone-drone-robots/internal/server"
)

func main() {
	addr := pflag.String("addr", ":8080", "Listen address")
	configFile := pflag.String("config", "", "Config file supplying unit_scale and ortho_tolerance")
	unitScale := pflag.Float64("unit-scale", 0, "Default mesh units to millimetres (default: 1)")
	debug := pflag.Bool("debug", false, "Debug logging")
	pflag.Parse()

	logger := logging.NewLogger("krlserve")
	if *debug {
		logger = logging.NewDebugLogger("krlserve")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			logger.Errorf("loading config: %v", err)
			os.Exit(1)
		}
	}
	if err := cfg.Resolve(config.Flags{UnitScale: *unitScale, StartA: -1, StartB: -1}); err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr: *addr,
		Handler: server.New(logger, server.Defaults{
			UnitScale:      cfg.UnitScale,
			OrthoTolerance: cfg.OrthoTolerance,
		}).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("serve: %v", err)
		os.Exit(1)
	}
}

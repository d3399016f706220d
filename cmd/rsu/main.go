package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autocore-ai/RSU/internal/config"
	"github.com/autocore-ai/RSU/internal/control"
	"github.com/autocore-ai/RSU/internal/logger"
	"github.com/autocore-ai/RSU/internal/pluginmgr"
	"github.com/autocore-ai/RSU/internal/reporter"
)

func main() {
	logger.Initialize(getEnv("LOG_LEVEL", "info"), getEnv("LOG_PRETTY", "true") == "true")
	log := logger.GetLogger()

	rsuConfigPath := getEnv("RSU_CONFIG", "./config/rsu.yaml")
	rosterPath := getEnv("RSU_PLUGIN_ROSTER", "./config/plugins.yaml")

	cfg, err := config.LoadRSU(rsuConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", rsuConfigPath).Msg("failed to load rsu config")
	}

	pm, err := pluginmgr.New(rosterPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", rosterPath).Msg("failed to initialize plugin manager")
	}

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("control surface listening")
		if err := control.Serve(addr, pm); err != nil {
			serveErr <- err
		}
	}()

	reportCtx, cancelReport := context.WithCancel(context.Background())
	rep := reporter.New(pm, cfg.CenterDBURL, cfg.ReportDuration)
	go rep.Run(reportCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-serveErr:
		log.Error().Err(err).Msg("control surface failed")
	}

	cancelReport()
	time.Sleep(200 * time.Millisecond)
	log.Info().Msg("rsu supervisor stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/geocollect/internal/config"
	"github.com/woozymasta/geocollect/internal/locate"
	"github.com/woozymasta/geocollect/internal/logger"
	"github.com/woozymasta/geocollect/internal/metrics"
	"github.com/woozymasta/geocollect/internal/point"
	"github.com/woozymasta/geocollect/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Source     string `short:"s" long:"source" env:"LOCATOR_SOURCE" description:"Location source, overrides the config file" choice:"browser" choice:"nmea" choice:"mqtt"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, found, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.ConfigFile).Msg("Failed to load configuration")
	}
	if !found {
		log.Warn().Str("path", opts.ConfigFile).Msg("Configuration file not found, using defaults")
	}

	if opts.Source != "" {
		cfg.Locator.Source = opts.Source
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}
	}

	source, err := locate.Open(cfg.LocateOptions())
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Locator.Source).Msg("Failed to open location source")
	}

	var locator point.Locator
	if source != nil {
		defer func() { _ = source.Close() }()
		locator = source
	}

	collector := point.NewCollector(point.NewStore(), locator)

	srvCtx, err := server.NewServerContext(cfg, collector, metrics.New())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Str("source", cfg.Locator.Source).
		Dur("capture_timeout", cfg.Locator.Timeout).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Int("points", collector.Store().Len()).Msg("Web server stopped, session points discarded")
}

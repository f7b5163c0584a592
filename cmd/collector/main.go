package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/woozymasta/geocollect/internal/config"
	"github.com/woozymasta/geocollect/internal/export"
	"github.com/woozymasta/geocollect/internal/locate"
	"github.com/woozymasta/geocollect/internal/logger"
	"github.com/woozymasta/geocollect/internal/point"
	"github.com/woozymasta/geocollect/internal/session"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Source     string `short:"s" long:"source" env:"LOCATOR_SOURCE" description:"Location source, overrides the config file" choice:"nmea" choice:"mqtt"`
	Port       string `short:"d" long:"device" env:"GPS_DEVICE"     description:"GPS serial device, overrides the config file"`
	Broker     string `short:"b" long:"broker" env:"MQTT_BROKER"    description:"MQTT broker URL, overrides the config file"`
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

	opts.Logger.Setup()

	cfg, _, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.ConfigFile).Msg("Failed to load configuration")
	}

	if opts.Source != "" {
		cfg.Locator.Source = opts.Source
	}
	if opts.Port != "" {
		cfg.Locator.Serial.Port = opts.Port
	}
	if opts.Broker != "" {
		cfg.Locator.MQTT.Broker = opts.Broker
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// There is no browser here; without a device every capture reports the
	// capability as unavailable.
	var locator point.Locator
	if cfg.Locator.Source != config.SourceBrowser {
		source, err := locate.Open(cfg.LocateOptions())
		if err != nil {
			log.Fatal().Err(err).Str("source", cfg.Locator.Source).Msg("Failed to open location source")
		}
		defer func() { _ = source.Close() }()
		locator = source
	} else {
		log.Warn().Msg("No GPS source configured, use --source nmea or --source mqtt")
	}

	clip := export.SystemClipboard{}
	if !clip.Supported() {
		log.Warn().Msg("System clipboard is not available, 'copy' will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := point.NewCollector(point.NewStore(), locator)
	s := session.New(os.Stdout, collector, clip, cfg.Locator.Timeout)

	if err := s.Run(ctx, os.Stdin); err != nil {
		log.Error().Err(err).Msg("Reading commands failed")
	}

	log.Info().Int("points", collector.Store().Len()).Msg("Session closed")
}

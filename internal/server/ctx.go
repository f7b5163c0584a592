package server

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/woozymasta/geocollect/assets"
	"github.com/woozymasta/geocollect/internal/config"
	"github.com/woozymasta/geocollect/internal/geo"
	"github.com/woozymasta/geocollect/internal/metrics"
	"github.com/woozymasta/geocollect/internal/point"
	"github.com/woozymasta/geocollect/internal/render"

	"github.com/rs/zerolog/log"
)

// Title is shown in the page header.
const Title = "Coletor de Localização"

const (
	markerSize  = 16
	faviconSize = 32
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Collector *point.Collector
	Metrics   *metrics.Metrics
	Markers   map[string][]byte
	IndexHTML []byte
	IndexETag string
	Favicon   []byte
	Timeout   time.Duration
}

// NewServerContext builds the page and marker images for the configured
// palette. The collector decides where positions come from.
func NewServerContext(cfg *config.Config, collector *point.Collector, m *metrics.Metrics) (*ServerContext, error) {
	log.Info().
		Str("source", cfg.Locator.Source).
		Bool("device_source", collector.Available()).
		Msg("Initializing server context")

	index, err := assets.Build(assets.Page{
		Title:        Title,
		Types:        geo.SuggestedTypes,
		DeviceSource: collector.Available(),
	})
	if err != nil {
		return nil, fmt.Errorf("build index page: %w", err)
	}

	favicon, err := render.MarkerPNG(cfg.Palette.Inaccessible, faviconSize)
	if err != nil {
		return nil, fmt.Errorf("build favicon: %w", err)
	}

	markers := make(map[string][]byte, 2)
	for name, color := range map[string]string{
		render.IconAccessible:   cfg.Palette.Accessible,
		render.IconInaccessible: cfg.Palette.Inaccessible,
	} {
		icon, err := render.MarkerIcon(color, markerSize)
		if err != nil {
			return nil, fmt.Errorf("build %s marker: %w", name, err)
		}
		markers[name] = icon

		log.Trace().
			Str("marker", name).
			Str("color", color).
			Int("bytes", len(icon)).
			Msg("Marker icon built")
	}

	h := fnv.New64a()
	_, _ = h.Write(index)

	log.Info().
		Int("index_bytes", len(index)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:    cfg,
		Collector: collector,
		Metrics:   m,
		Markers:   markers,
		IndexHTML: index,
		IndexETag: fmt.Sprintf(`"%x"`, h.Sum64()),
		Favicon:   favicon,
		Timeout:   cfg.Locator.Timeout,
	}, nil
}

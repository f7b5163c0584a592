// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/woozymasta/geocollect/internal/locate"
	"github.com/woozymasta/geocollect/internal/render"

	"gopkg.in/yaml.v3"
)

// Location source names.
const (
	SourceBrowser = locate.SourceBrowser
	SourceNMEA    = locate.SourceNMEA
	SourceMQTT    = locate.SourceMQTT
)

// Config represents the root configuration file structure.
type Config struct {
	Map     Map     `yaml:"map"`
	Palette Palette `yaml:"palette"`
	Locator Locator `yaml:"locator"`
}

// Map configures the browser map view and its external tile layer.
type Map struct {
	TileURL     string   `yaml:"tile_url"`
	Attribution string   `yaml:"attribution,omitempty"`
	Subdomains  []string `yaml:"subdomains,omitempty"`
	Center      LatLng   `yaml:"center"` // used while no point is captured
	Zoom        int      `yaml:"zoom"`
	MinZoom     int      `yaml:"min_zoom"`
	MaxZoom     int      `yaml:"max_zoom"`
}

// LatLng is a coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Palette holds marker colors.
type Palette struct {
	Accessible   string `yaml:"accessible"`
	Inaccessible string `yaml:"inaccessible"`
}

// Locator selects where positions come from.
// With "browser" the client page resolves the position itself.
type Locator struct {
	Source  string        `yaml:"source"`
	Serial  Serial        `yaml:"serial,omitempty"`
	MQTT    MQTT          `yaml:"mqtt,omitempty"`
	Timeout time.Duration `yaml:"timeout"` // single lookup limit
	MaxAge  time.Duration `yaml:"max_age"` // how old a cached fix may be
}

// Serial configures an NMEA GPS receiver.
type Serial struct {
	Port string `yaml:"port"`
	Baud uint   `yaml:"baud,omitempty"`
}

// MQTT configures a broker topic carrying GPS fixes.
type MQTT struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	view := render.DefaultOptions()

	return &Config{
		Map: Map{
			TileURL:    view.TileURL,
			Subdomains: view.Subdomains,
			Center:     LatLng{Lat: view.FallbackLat, Lng: view.FallbackLng},
			Zoom:       view.Zoom,
			MinZoom:    view.MinZoom,
			MaxZoom:    view.MaxZoom,
		},
		Palette: Palette{
			Accessible:   view.Accessible,
			Inaccessible: view.Inaccessible,
		},
		Locator: Locator{
			Source:  SourceBrowser,
			Timeout: 30 * time.Second,
			MaxAge:  5 * time.Second,
			Serial:  Serial{Port: "/dev/serial0", Baud: 9600},
			MQTT:    MQTT{Broker: "tcp://localhost:1883", Topic: "inertial/gps", ClientID: "geocollect"},
		},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// LoadOrDefault is Load, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return cfg, true, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and references.
func (c *Config) Validate() error {
	m := c.Map
	if m.TileURL == "" {
		return errors.New("map.tile_url is required")
	}
	if m.MinZoom < 0 || m.MinZoom > m.MaxZoom {
		return fmt.Errorf("map.min_zoom (%d) must be between 0 and max_zoom (%d)", m.MinZoom, m.MaxZoom)
	}
	if m.Zoom < m.MinZoom || m.Zoom > m.MaxZoom {
		return fmt.Errorf("map.zoom (%d) must be within [%d, %d]", m.Zoom, m.MinZoom, m.MaxZoom)
	}

	for name, v := range map[string]string{
		"palette.accessible":   c.Palette.Accessible,
		"palette.inaccessible": c.Palette.Inaccessible,
	} {
		if _, err := render.ParseHexColor(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	switch c.Locator.Source {
	case SourceBrowser:
	case SourceNMEA:
		if c.Locator.Serial.Port == "" {
			return errors.New("locator.serial.port is required for the nmea source")
		}
	case SourceMQTT:
		if c.Locator.MQTT.Broker == "" || c.Locator.MQTT.Topic == "" {
			return errors.New("locator.mqtt.broker and locator.mqtt.topic are required for the mqtt source")
		}
	default:
		return fmt.Errorf("unknown locator.source %q", c.Locator.Source)
	}

	if c.Locator.Timeout <= 0 {
		return errors.New("locator.timeout must be positive")
	}

	return nil
}

// ViewOptions converts the map settings for the renderer.
func (c *Config) ViewOptions() render.Options {
	return render.Options{
		TileURL:      c.Map.TileURL,
		Attribution:  c.Map.Attribution,
		Subdomains:   c.Map.Subdomains,
		FallbackLat:  c.Map.Center.Lat,
		FallbackLng:  c.Map.Center.Lng,
		Zoom:         c.Map.Zoom,
		MinZoom:      c.Map.MinZoom,
		MaxZoom:      c.Map.MaxZoom,
		Accessible:   c.Palette.Accessible,
		Inaccessible: c.Palette.Inaccessible,
	}
}

// LocateOptions converts the locator settings for locate.Open.
func (c *Config) LocateOptions() locate.Options {
	l := c.Locator
	return locate.Options{
		Source: l.Source,
		Serial: locate.SerialOptions{Port: l.Serial.Port, Baud: l.Serial.Baud},
		MQTT: locate.MQTTOptions{
			Broker:   l.MQTT.Broker,
			Topic:    l.MQTT.Topic,
			ClientID: l.MQTT.ClientID,
		},
		MaxAge: l.MaxAge,
	}
}

// Package export serializes captured points as GeoJSON text.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/woozymasta/geocollect/internal/geo"

	"gopkg.in/yaml.v3"
)

// Format is an export text format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType returns the HTTP media type of the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}

	return "application/geo+json"
}

// Clipboard is the system clipboard write capability.
type Clipboard interface {
	WriteText(text string) error
}

// Encode writes fc in format f. JSON uses a stable 2-space indentation.
func Encode(w io.Writer, fc geo.GeoJSONFeatureCollection, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(fc); err != nil {
			return err
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

// Text returns the pretty JSON form of the points as a FeatureCollection.
func Text(points []geo.GeoPoint) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, geo.Collection(points), FormatJSON); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// CopyAll places all points on the clipboard as a FeatureCollection.
// With no points it does nothing and returns false, leaving the current
// clipboard contents alone.
func CopyAll(points []geo.GeoPoint, clip Clipboard) (bool, error) {
	if len(points) == 0 {
		return false, nil
	}

	text, err := Text(points)
	if err != nil {
		return false, fmt.Errorf("encode points: %w", err)
	}
	if err := clip.WriteText(text); err != nil {
		return false, fmt.Errorf("write clipboard: %w", err)
	}

	return true, nil
}

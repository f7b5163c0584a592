// Package render builds what the browser map needs to draw captured points.
package render

import (
	"github.com/woozymasta/geocollect/internal/geo"
)

// Options control the map view. Zero values fall back to the defaults.
type Options struct {
	TileURL      string
	Attribution  string
	Accessible   string
	Inaccessible string
	Subdomains   []string
	FallbackLat  float64
	FallbackLng  float64
	Zoom         int
	MinZoom      int
	MaxZoom      int
}

// Defaults for the map view.
const (
	DefaultTileURL      = "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}{r}.png"
	DefaultFallbackLat  = -23.547271
	DefaultFallbackLng  = -46.651813
	DefaultZoom         = 17
	DefaultMinZoom      = 16
	DefaultMaxZoom      = 20
	DefaultAccessible   = "#10B981"
	DefaultInaccessible = "#3B82F6"
)

// DefaultOptions returns the built-in view options.
func DefaultOptions() Options {
	return Options{
		TileURL:      DefaultTileURL,
		Subdomains:   []string{"a", "b", "c", "d"},
		FallbackLat:  DefaultFallbackLat,
		FallbackLng:  DefaultFallbackLng,
		Zoom:         DefaultZoom,
		MinZoom:      DefaultMinZoom,
		MaxZoom:      DefaultMaxZoom,
		Accessible:   DefaultAccessible,
		Inaccessible: DefaultInaccessible,
	}
}

// MapView is the view model served to the browser map.
type MapView struct {
	Tiles   Tiles      `json:"tiles"`
	Markers []Marker   `json:"markers"`
	Types   []string   `json:"types"`
	Center  [2]float64 `json:"center"` // [Lat, Lng]
	Zoom    int        `json:"zoom"`
}

// Tiles describes the external raster tile layer.
type Tiles struct {
	URL         string   `json:"url"`
	Attribution string   `json:"attribution,omitempty"`
	Subdomains  []string `json:"subdomains,omitempty"`
	MinZoom     int      `json:"min_zoom"`
	MaxZoom     int      `json:"max_zoom"`
}

// Marker is one drawn point.
type Marker struct {
	Color string  `json:"color"`
	Icon  string  `json:"icon"`
	Popup Popup   `json:"popup"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Index int     `json:"index"`
}

// Popup is the text shown when a marker is clicked.
type Popup struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	Accessible string `json:"accessible"`
}

// Icon names served under /markers/.
const (
	IconAccessible   = "accessible"
	IconInaccessible = "inaccessible"
)

// View builds the map view for points.
// The view centers on the first captured point, or on the fallback
// coordinate while nothing has been captured.
func View(points []geo.GeoPoint, opts Options) MapView {
	v := MapView{
		Center: [2]float64{opts.FallbackLat, opts.FallbackLng},
		Zoom:   opts.Zoom,
		Tiles: Tiles{
			URL:         opts.TileURL,
			Attribution: opts.Attribution,
			Subdomains:  opts.Subdomains,
			MinZoom:     opts.MinZoom,
			MaxZoom:     opts.MaxZoom,
		},
		Types:   geo.SuggestedTypes,
		Markers: make([]Marker, 0, len(points)),
	}

	if len(points) > 0 {
		v.Center = [2]float64{points[0].Lat, points[0].Lng}
	}

	for i, p := range points {
		m := Marker{
			Index: i,
			Lat:   p.Lat,
			Lng:   p.Lng,
			Color: opts.Inaccessible,
			Icon:  IconInaccessible,
			Popup: PopupFor(p),
		}
		if p.Accessible {
			m.Color = opts.Accessible
			m.Icon = IconAccessible
		}
		v.Markers = append(v.Markers, m)
	}

	return v
}

// PopupFor returns the display text of a point, with placeholders for
// empty values.
func PopupFor(p geo.GeoPoint) Popup {
	pp := Popup{Title: p.Name, Type: p.Type, Accessible: "Não"}
	if pp.Title == "" {
		pp.Title = "Sem nome"
	}
	if pp.Type == "" {
		pp.Type = "—"
	}
	if p.Accessible {
		pp.Accessible = "Sim"
	}

	return pp
}

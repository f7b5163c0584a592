// Package geo handles geographic data structures and coordinate conversions.
package geo

// GeoJSON object type names used by the exporter.
const (
	TypeFeature           = "Feature"
	TypeFeatureCollection = "FeatureCollection"
	TypePoint             = "Point"
)

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single captured point with geometry and properties.
type GeoJSONFeature struct {
	Type       string            `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry   `json:"geometry" yaml:"geometry"`
	Properties FeatureProperties `json:"properties" yaml:"properties"`
}

// GeoJSONGeometry represents the geometry of a feature.
type GeoJSONGeometry struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates,flow"` // [Lon, Lat]
}

// FeatureProperties carries the user supplied metadata of a point.
type FeatureProperties struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Accessible bool   `json:"accessible" yaml:"accessible"`
}

// PointFeature converts a point to a GeoJSON Feature.
// Properties are copied verbatim, empty values included.
func PointFeature(p GeoPoint) GeoJSONFeature {
	return GeoJSONFeature{
		Type: TypeFeature,
		Geometry: GeoJSONGeometry{
			Type:        TypePoint,
			Coordinates: []float64{p.Lng, p.Lat},
		},
		Properties: FeatureProperties{
			Name:       p.Name,
			Type:       p.Type,
			Accessible: p.Accessible,
		},
	}
}

// Collection converts points to a FeatureCollection, keeping their order.
// Features is never nil, so an empty input encodes as "features": [].
func Collection(points []GeoPoint) GeoJSONFeatureCollection {
	fc := GeoJSONFeatureCollection{
		Type:     TypeFeatureCollection,
		Features: make([]GeoJSONFeature, 0, len(points)),
	}
	for _, p := range points {
		fc.Features = append(fc.Features, PointFeature(p))
	}

	return fc
}

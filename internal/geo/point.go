package geo

// GeoPoint is a captured coordinate plus user supplied metadata.
type GeoPoint struct {
	Lat        float64 `json:"lat" yaml:"lat"`
	Lng        float64 `json:"lng" yaml:"lng"`
	Name       string  `json:"name" yaml:"name"`
	Type       string  `json:"type" yaml:"type"`
	Accessible bool    `json:"accessible" yaml:"accessible"`
}

// Suggested point types offered by the UI. Any other string is accepted.
var SuggestedTypes = []string{"rota", "entrada", "rota+entrada"}

package geo

import (
	"encoding/json"

	"pricedash/domain/housing"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string                 `json:"type"`
	Geometry   geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// GeoJSON encodes neighborhoods as a point FeatureCollection.
// Coordinates are [lng, lat] as RFC 7946 requires.
func GeoJSON(stats []housing.NeighborhoodStats) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, s := range stats {
		pos, ok := Centroids[s.Neighborhood]
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: geometry{Type: "Point", Coordinates: [2]float64{pos.Lng, pos.Lat}},
			Properties: map[string]interface{}{
				"neighborhood":   s.Neighborhood,
				"avg_price":      s.AvgPrice,
				"median_price":   s.MedianPrice,
				"property_count": s.PropertyCount,
				"segment":        s.Segment(),
				"color":          Color(s.AvgPrice),
				"radius":         Radius(s.PropertyCount),
			},
		})
	}
	return json.MarshalIndent(fc, "", "  ")
}

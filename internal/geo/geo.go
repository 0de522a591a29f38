// Package geo places neighborhood statistics on the Ames map.
package geo

import (
	"bytes"
	"encoding/json"
	"html/template"
	"math"
	"sort"

	"pricedash/domain/housing"
	"pricedash/internal/dom"
	"pricedash/internal/format"
)

// Center is the initial map view, Ames, Iowa.
var Center = LatLng{Lat: 42.0308, Lng: -93.6319}

// DefaultZoom is the initial map zoom.
const DefaultZoom = 13

// AttrName is the container attribute holding the map layer JSON.
const AttrName = "data-map"

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Centroids are approximate neighborhood centres.
var Centroids = map[string]LatLng{
	"CollgCr": {42.018, -93.685},
	"Veenker": {42.041, -93.654},
	"Crawfor": {42.025, -93.642},
	"NoRidge": {42.051, -93.652},
	"Mitchel": {41.992, -93.602},
	"Somerst": {42.052, -93.644},
	"NWAmes":  {42.048, -93.633},
	"OldTown": {42.030, -93.614},
	"BrkSide": {42.033, -93.623},
	"Sawyer":  {42.033, -93.669},
	"NridgHt": {42.062, -93.655},
	"NAmes":   {42.044, -93.614},
	"SawyerW": {42.034, -93.684},
	"IDOTRR":  {42.023, -93.621},
	"MeadowV": {41.993, -93.612},
	"Edwards": {42.021, -93.665},
	"Timber":  {41.998, -93.653},
	"Gilbert": {42.061, -93.640},
	"StoneBr": {42.060, -93.632},
	"ClearCr": {42.030, -93.676},
	"NPkVill": {42.050, -93.626},
	"Blmngtn": {42.060, -93.642},
	"BrDale":  {42.053, -93.618},
	"SWISU":   {42.020, -93.650},
	"Blueste": {42.009, -93.646},
}

// Marker is a circle sized by sales volume and coloured by average price.
type Marker struct {
	Neighborhood string  `json:"neighborhood"`
	Position     LatLng  `json:"position"`
	Radius       float64 `json:"radius"`
	Color        string  `json:"color"`
	Popup        string  `json:"popup"`
}

// LegendEntry is one colour band.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Layer is everything the shell needs to draw the map.
type Layer struct {
	Center  LatLng        `json:"center"`
	Zoom    int           `json:"zoom"`
	Markers []Marker      `json:"markers"`
	Legend  []LegendEntry `json:"legend"`
}

type tier struct {
	above float64
	color string
}

var tiers = []tier{
	{300000, "#1e3a8a"},
	{200000, "#2563eb"},
	{150000, "#60a5fa"},
	{100000, "#93c5fd"},
}

const baseColor = "#dbeafe"

// Color returns the marker colour for an average price.
func Color(price float64) string {
	for _, t := range tiers {
		if price > t.above {
			return t.color
		}
	}
	return baseColor
}

// Radius returns the marker radius in metres.
func Radius(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Sqrt(float64(count)) * 100
}

// Legend lists the colour bands from cheapest to most expensive.
func Legend() []LegendEntry {
	return []LegendEntry{
		{baseColor, "0k$ - 100k$"},
		{"#93c5fd", "100k$ - 150k$"},
		{"#60a5fa", "150k$ - 200k$"},
		{"#2563eb", "200k$ - 300k$"},
		{"#1e3a8a", "300k$+"},
	}
}

var popupTemplate = template.Must(template.New("popup").Funcs(template.FuncMap{
	"currency": format.Currency,
}).Parse(`<div class="map-popup">` +
	`<h4>{{.Neighborhood}}</h4><span>{{.PropertyCount}} Ventes</span>` +
	`<p>Prix Moyen</p><p class="price">{{currency .AvgPrice}}</p>` +
	`<p>Min {{currency .MinPrice}}</p><p>Max {{currency .MaxPrice}}</p>` +
	`<button type="button" data-action="set-neighborhood" data-neighborhood="{{.Neighborhood}}">Prédire dans ce quartier</button>` +
	`</div>`))

// Popup renders the marker popup markup.
func Popup(s housing.NeighborhoodStats) string {
	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, s); err != nil {
		return ""
	}
	return buf.String()
}

// Markers builds one marker per neighborhood with a known centroid,
// sorted by name. Unknown neighborhoods are skipped.
func Markers(stats []housing.NeighborhoodStats) []Marker {
	markers := make([]Marker, 0, len(stats))
	for _, s := range stats {
		pos, ok := Centroids[s.Neighborhood]
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			Neighborhood: s.Neighborhood,
			Position:     pos,
			Radius:       Radius(s.PropertyCount),
			Color:        Color(s.AvgPrice),
			Popup:        Popup(s),
		})
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].Neighborhood < markers[j].Neighborhood })
	return markers
}

// NewLayer builds the full map layer.
func NewLayer(stats []housing.NeighborhoodStats) Layer {
	return Layer{Center: Center, Zoom: DefaultZoom, Markers: Markers(stats), Legend: Legend()}
}

// Render writes the layer into the container's data-map attribute.
// It reports false when the container does not exist.
func Render(doc dom.Finder, containerID string, layer Layer) bool {
	el := doc.ByID(containerID)
	if el == nil {
		return false
	}
	raw, err := json.Marshal(layer)
	if err != nil {
		return false
	}
	el.SetAttr(AttrName, string(raw))
	return true
}

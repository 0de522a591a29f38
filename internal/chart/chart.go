// Package chart builds chart descriptions and attaches them to document
// containers. The browser shell reads the data-chart attribute and draws it.
package chart

import (
	"encoding/json"
	"sort"

	"pricedash/domain/housing"
	"pricedash/internal/dom"
)

// Type is the chart kind understood by the shell.
type Type string

const (
	Bar      Type = "bar"
	Line     Type = "line"
	Scatter  Type = "scatter"
	Doughnut Type = "doughnut"
)

// AttrName is the container attribute holding the chart JSON.
const AttrName = "data-chart"

// Point is one scatter sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dataset is one series.
type Dataset struct {
	Label  string    `json:"label,omitempty"`
	Data   []float64 `json:"data,omitempty"`
	Points []Point   `json:"points,omitempty"`
	Type   Type      `json:"type,omitempty"`
}

// Spec describes one chart.
type Spec struct {
	Type      Type      `json:"type"`
	Title     string    `json:"title,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	Datasets  []Dataset `json:"datasets"`
	IndexAxis string    `json:"indexAxis,omitempty"`
	Legend    bool      `json:"legend"`
}

// Render writes spec into the container's data-chart attribute.
// It reports false when the container cannot be found.
func Render(doc dom.Finder, containerID string, spec Spec) bool {
	el := doc.ByID(containerID)
	if el == nil {
		return false
	}
	raw, err := json.Marshal(spec)
	if err != nil {
		return false
	}
	el.SetAttr(AttrName, string(raw))
	return true
}

// Decode reads back a chart attached to a container.
func Decode(doc *dom.Document, containerID string) (Spec, bool) {
	var spec Spec
	el := doc.ByID(containerID)
	if el == nil {
		return spec, false
	}
	raw, ok := el.Attr(AttrName)
	if !ok {
		return spec, false
	}
	return spec, json.Unmarshal([]byte(raw), &spec) == nil
}

// NewBar builds a single-series vertical bar chart.
func NewBar(title, series string, labels []string, values []float64) Spec {
	return Spec{
		Type:     Bar,
		Title:    title,
		Labels:   labels,
		Datasets: []Dataset{{Label: series, Data: values}},
	}
}

// NewHorizontalBar builds a bar chart laid out along the y axis.
func NewHorizontalBar(title, series string, labels []string, values []float64) Spec {
	s := NewBar(title, series, labels, values)
	s.IndexAxis = "y"
	return s
}

// NewLine builds a line chart with one or more series over shared labels.
func NewLine(title string, labels []string, series ...Dataset) Spec {
	return Spec{Type: Line, Title: title, Labels: labels, Datasets: series, Legend: len(series) > 1}
}

// NewScatter builds a scatter chart of one series.
func NewScatter(title, series string, points []Point) Spec {
	return Spec{Type: Scatter, Title: title, Datasets: []Dataset{{Label: series, Points: points}}}
}

// NewDoughnut builds a share chart.
func NewDoughnut(title string, labels []string, values []float64) Spec {
	return Spec{Type: Doughnut, Title: title, Labels: labels, Datasets: []Dataset{{Data: values}}, Legend: true}
}

// PriceDistribution renders the histogram returned by the backend.
func PriceDistribution(d *housing.PriceDistribution) Spec {
	values := make([]float64, len(d.Values))
	for i, v := range d.Values {
		values[i] = float64(v)
	}
	return NewBar("Price Distribution", "Number of Houses", d.Labels, values)
}

// FeatureImportance renders the n most important features, largest first,
// scaled to percentages.
func FeatureImportance(weights []housing.FeatureWeight, n int) Spec {
	sorted := append([]housing.FeatureWeight(nil), weights...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Importance > sorted[j].Importance })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	labels := make([]string, len(sorted))
	values := make([]float64, len(sorted))
	for i, w := range sorted {
		labels[i] = w.Name
		values[i] = w.Importance * 100
	}
	return NewHorizontalBar("Top Feature Importance", "Importance (%)", labels, values)
}

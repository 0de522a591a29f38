package views

import (
	"context"
	"html/template"

	"pricedash/domain/housing"
	"pricedash/internal/chart"
	"pricedash/internal/export"
	"pricedash/internal/geo"
	"pricedash/internal/view"
)

// qualityPrice is the reference quality-to-price curve of the dataset.
var qualityPrice = []chart.Point{
	{X: 1, Y: 50000}, {X: 2, Y: 60000}, {X: 3, Y: 85000}, {X: 4, Y: 110000}, {X: 5, Y: 135000},
	{X: 6, Y: 160000}, {X: 7, Y: 210000}, {X: 8, Y: 275000}, {X: 9, Y: 360000}, {X: 10, Y: 440000},
}

const tableRows = 10

// Analytics shows per-neighborhood trends, the map and the summary table.
type Analytics struct {
	deps Deps
}

func (v *Analytics) ID() string       { return "analytics" }
func (v *Analytics) Title() string    { return "Market Analytics" }
func (v *Analytics) Subtitle() string { return "Deep dive into housing trends and distributions." }

func (v *Analytics) Render() (template.HTML, error) {
	return renderPage("analytics.html", struct{ Exports []export.Format }{exportFormats})
}

func (v *Analytics) Init(ctx context.Context, vc *view.Context) error {
	neighborhoods, err := v.deps.API.NeighborhoodStats(ctx)
	if err != nil {
		if cancelled(err) || vc.Stale() {
			return nil
		}
		vc.Logger.Error("[Analytics] Failed to load neighborhood stats: %v", err)
		showError(vc, "nb-detailed-chart", err)
		showError(vc, "map-container", err)
		return nil
	}
	if vc.Stale() {
		return nil
	}

	labels := make([]string, len(neighborhoods))
	avgs := make([]float64, len(neighborhoods))
	premium := 0
	for i, n := range neighborhoods {
		labels[i] = n.Neighborhood
		avgs[i] = n.AvgPrice
		if n.Segment() == "Premium" {
			premium++
		}
	}
	chart.Render(vc, "nb-detailed-chart", chart.NewLine("Price by Neighborhood", labels,
		chart.Dataset{Label: "Average Price ($)", Data: avgs}))
	chart.Render(vc, "qual-price-chart", chart.NewScatter("Quality vs Price Correlation", "Average Price ($)", qualityPrice))
	chart.Render(vc, "segment-chart", chart.NewDoughnut("Market Segments",
		[]string{"Premium", "Standard"}, []float64{float64(premium), float64(len(neighborhoods) - premium)}))

	if body := vc.ByID("nb-table-body"); body != nil {
		markup, err := execute("nb-rows", summaryRows(neighborhoods))
		if err != nil {
			return err
		}
		if err := body.SetInnerHTML(markup); err != nil {
			return err
		}
	}

	if !vc.Stale() {
		geo.Render(vc, "map-container", geo.NewLayer(neighborhoods))
	}
	return nil
}

// summaryRows is what the table shows: the first rows in backend order.
func summaryRows(stats []housing.NeighborhoodStats) []housing.NeighborhoodStats {
	if len(stats) > tableRows {
		return stats[:tableRows]
	}
	return stats
}

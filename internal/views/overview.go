package views

import (
	"context"
	"fmt"
	"html/template"

	"golang.org/x/sync/errgroup"

	"pricedash/domain/housing"
	"pricedash/internal/chart"
	"pricedash/internal/format"
	"pricedash/internal/stats"
	"pricedash/internal/view"
)

// Overview shows dataset-wide figures and the two headline charts.
type Overview struct {
	deps Deps
}

func (v *Overview) ID() string       { return "overview" }
func (v *Overview) Title() string    { return "Executive Overview" }
func (v *Overview) Subtitle() string { return "Real-time market insights powered by Machine Learning." }

func (v *Overview) Render() (template.HTML, error) {
	return renderPage("overview.html", nil)
}

// Init loads overview, neighborhood and distribution data concurrently.
// Load failures are shown inside the chart panels.
func (v *Overview) Init(ctx context.Context, vc *view.Context) error {
	var (
		overview      *housing.StatsOverview
		neighborhoods []housing.NeighborhoodStats
		distribution  *housing.PriceDistribution
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview, err = v.deps.API.StatsOverview(gctx)
		return err
	})
	g.Go(func() (err error) {
		neighborhoods, err = v.deps.API.NeighborhoodStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		distribution, err = v.deps.API.PriceDistribution(gctx, v.deps.DistributionBins)
		return err
	})
	if err := g.Wait(); err != nil {
		if cancelled(err) || vc.Stale() {
			return nil
		}
		vc.Logger.Error("[Overview] Failed to init overview data: %v", err)
		showError(vc, "price-dist-chart", err)
		showError(vc, "nb-avg-chart", err)
		return nil
	}

	setText(vc, "stat-total-props", format.Count(overview.TotalProperties))
	setText(vc, "stat-avg-price", format.Currency(overview.AvgPrice))
	setText(vc, "stat-median-price", format.Currency(overview.MedianPrice))
	setText(vc, "stat-max-price", format.Currency(overview.MaxPrice))
	if overview.MinPrice != nil {
		setText(vc, "stat-price-range", fmt.Sprintf("Range %s - %s",
			format.Thousands(*overview.MinPrice), format.Thousands(overview.MaxPrice)))
	}
	if overview.PriceStd != nil {
		setText(vc, "stat-price-std", "Std. dev. "+format.Currency(*overview.PriceStd))
	}

	avgs := make([]float64, len(neighborhoods))
	for i, n := range neighborhoods {
		avgs[i] = n.AvgPrice
	}
	if summary, err := stats.Calculate(avgs); err == nil {
		setText(vc, "stat-nb-spread", fmt.Sprintf("%d neighborhoods, spread %s",
			summary.Count, format.Currency(summary.StdDev)))
	}

	if vc.Stale() {
		return nil
	}
	chart.Render(vc, "price-dist-chart", chart.PriceDistribution(distribution))

	top := housing.TopByAvgPrice(neighborhoods, 5)
	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, n := range top {
		labels[i] = n.Neighborhood
		values[i] = n.AvgPrice
	}
	if !vc.Stale() {
		chart.Render(vc, "nb-avg-chart", chart.NewHorizontalBar("Top Neighborhoods by Value", "Average Price ($)", labels, values))
	}
	return nil
}

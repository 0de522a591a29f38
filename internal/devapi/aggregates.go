package devapi

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"pricedash/domain/housing"
	"pricedash/internal/dataset"
	"pricedash/internal/form"
)

// Overview summarises every sale price. The deviation is the sample one.
func Overview(ds *dataset.Dataset) (housing.StatsOverview, error) {
	prices := stats.Float64Data(ds.Prices())
	mean, err := stats.Mean(prices)
	if err != nil {
		return housing.StatsOverview{}, err
	}
	median, _ := stats.Median(prices)
	lo, _ := stats.Min(prices)
	hi, _ := stats.Max(prices)
	out := housing.StatsOverview{
		TotalProperties: len(prices),
		AvgPrice:        mean,
		MedianPrice:     median,
		MaxPrice:        hi,
		MinPrice:        &lo,
	}
	if std, err := stats.StandardDeviationSample(prices); err == nil && !math.IsNaN(std) {
		out.PriceStd = &std
	}
	return out, nil
}

// Neighborhoods groups sale prices by neighborhood, ordered by name.
func Neighborhoods(ds *dataset.Dataset) []housing.NeighborhoodStats {
	groups := make(map[string]stats.Float64Data)
	prices := ds.Prices()
	for i, hood := range ds.Neighborhoods() {
		groups[hood] = append(groups[hood], prices[i])
	}

	out := make([]housing.NeighborhoodStats, 0, len(groups))
	for hood, data := range groups {
		mean, _ := stats.Mean(data)
		median, _ := stats.Median(data)
		lo, _ := stats.Min(data)
		hi, _ := stats.Max(data)
		out = append(out, housing.NeighborhoodStats{
			Neighborhood:  hood,
			AvgPrice:      mean,
			MedianPrice:   median,
			MinPrice:      lo,
			MaxPrice:      hi,
			PropertyCount: len(data),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Neighborhood < out[j].Neighborhood })
	return out
}

// Distribution buckets sale prices into equal-width bins spanning min to max.
// The top bin is closed so the most expensive sale is counted.
func Distribution(ds *dataset.Dataset, bins int) (housing.PriceDistribution, error) {
	if bins < 1 {
		return housing.PriceDistribution{}, fmt.Errorf("bins must be at least 1")
	}
	prices := append([]float64(nil), ds.Prices()...)
	if len(prices) == 0 {
		return housing.PriceDistribution{}, fmt.Errorf("no sale prices")
	}
	sort.Float64s(prices)
	lo, hi := prices[0], prices[len(prices)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	edges := append([]float64(nil), dividers...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, prices, nil)
	out := housing.PriceDistribution{
		Labels: make([]string, bins),
		Values: make([]int, bins),
	}
	for i := range counts {
		out.Labels[i] = fmt.Sprintf("%dk-%dk", int(edges[i]/1000), int(edges[i+1]/1000))
		out.Values[i] = int(counts[i])
	}
	return out, nil
}

// Defaults derives a typical property: the median of numeric schema fields
// and the most frequent value of categorical ones. Fields the dataset lacks
// are left out.
func Defaults(ds *dataset.Dataset, schema *form.Schema) housing.Features {
	out := housing.Features{}
	for _, field := range schema.Fields {
		if !ds.HasColumn(field.Name) {
			continue
		}
		switch field.Kind {
		case form.Integer, form.Float:
			var present stats.Float64Data
			for _, v := range ds.Numeric(field.Name) {
				if !math.IsNaN(v) {
					present = append(present, v)
				}
			}
			median, err := stats.Median(present)
			if err != nil {
				continue
			}
			if field.Kind == form.Integer {
				out[field.Name] = int64(math.Round(median))
			} else {
				out[field.Name] = median
			}
		default:
			if mode := modeOf(ds.Strings(field.Name)); mode != "" {
				out[field.Name] = mode
			}
		}
	}
	return out
}

// modeOf returns the most frequent non-blank value, the smallest on ties.
func modeOf(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		if v != "" && v != "NA" {
			counts[v]++
		}
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best
}

func parseBins(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

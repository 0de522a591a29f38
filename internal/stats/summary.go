// Package stats computes descriptive statistics over price series.
package stats

import (
	"github.com/montanaflynn/stats"

	"pricedash/domain/core"
)

// Summary holds descriptive statistics. StdDev and Variance are population values.
type Summary struct {
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"std_dev"`
	Variance float64 `json:"variance"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
}

// Calculate summarises data. Empty input returns core.ErrEmptyData.
func Calculate(data []float64) (*Summary, error) {
	if len(data) == 0 {
		return nil, core.ErrEmptyData
	}

	sum, err := stats.Sum(data)
	if err != nil {
		return nil, err
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return nil, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return nil, err
	}

	variance, err := stats.PopulationVariance(data)
	if err != nil {
		return nil, err
	}

	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return nil, err
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return nil, err
	}

	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Count:    len(data),
		Sum:      sum,
		Mean:     mean,
		Median:   median,
		Min:      min,
		Max:      max,
		StdDev:   stdDev,
		Variance: variance,
		Q25:      q25,
		Q75:      q75,
	}, nil
}

// SampleStdDev is the n-1 standard deviation used for dataset-level price spread.
func SampleStdDev(data []float64) (float64, error) {
	if len(data) < 2 {
		return 0, core.ErrEmptyData
	}
	return stats.StandardDeviationSample(data)
}

package ports

import (
	"context"

	"pricedash/domain/housing"
)

// HousePriceAPI is the prediction backend as seen by views, the form controller and the CLI.
type HousePriceAPI interface {
	// Info returns the backend banner (GET /)
	Info(ctx context.Context) (*housing.APIInfo, error)

	// Health reports whether the backend has a model loaded
	Health(ctx context.Context) (*housing.HealthStatus, error)

	// ModelInfo returns model type, parameters and feature importance
	ModelInfo(ctx context.Context) (*housing.ModelInfo, error)

	// Predict prices a single property
	Predict(ctx context.Context, features housing.Features) (housing.PredictionResult, error)

	// PredictBatch prices several properties in one call
	PredictBatch(ctx context.Context, batch []housing.Features) (housing.PredictionResult, error)

	// StatsOverview returns dataset-wide price statistics
	StatsOverview(ctx context.Context) (*housing.StatsOverview, error)

	// NeighborhoodStats returns per-neighborhood price statistics
	NeighborhoodStats(ctx context.Context) ([]housing.NeighborhoodStats, error)

	// PriceDistribution returns a sale price histogram with the given number of bins
	PriceDistribution(ctx context.Context, bins int) (*housing.PriceDistribution, error)

	// ModelComparison returns candidate model scores, best first
	ModelComparison(ctx context.Context) ([]housing.ModelComparison, error)

	// ParseDescription extracts form fields from free text
	ParseDescription(ctx context.Context, description string) (housing.Features, error)

	// Defaults returns typical values for every model field
	Defaults(ctx context.Context) (housing.Features, error)
}

// Package testkit provides a mock prediction backend and fixtures for tests.
package testkit

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pricedash/domain/housing"
)

// MockAPI is a testify mock of ports.HousePriceAPI.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Info(ctx context.Context) (*housing.APIInfo, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*housing.APIInfo)
	return v, args.Error(1)
}

func (m *MockAPI) Health(ctx context.Context) (*housing.HealthStatus, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*housing.HealthStatus)
	return v, args.Error(1)
}

func (m *MockAPI) ModelInfo(ctx context.Context) (*housing.ModelInfo, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*housing.ModelInfo)
	return v, args.Error(1)
}

func (m *MockAPI) Predict(ctx context.Context, features housing.Features) (housing.PredictionResult, error) {
	args := m.Called(ctx, features)
	v, _ := args.Get(0).(housing.PredictionResult)
	return v, args.Error(1)
}

func (m *MockAPI) PredictBatch(ctx context.Context, batch []housing.Features) (housing.PredictionResult, error) {
	args := m.Called(ctx, batch)
	v, _ := args.Get(0).(housing.PredictionResult)
	return v, args.Error(1)
}

func (m *MockAPI) StatsOverview(ctx context.Context) (*housing.StatsOverview, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*housing.StatsOverview)
	return v, args.Error(1)
}

func (m *MockAPI) NeighborhoodStats(ctx context.Context) ([]housing.NeighborhoodStats, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]housing.NeighborhoodStats)
	return v, args.Error(1)
}

func (m *MockAPI) PriceDistribution(ctx context.Context, bins int) (*housing.PriceDistribution, error) {
	args := m.Called(ctx, bins)
	v, _ := args.Get(0).(*housing.PriceDistribution)
	return v, args.Error(1)
}

func (m *MockAPI) ModelComparison(ctx context.Context) ([]housing.ModelComparison, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]housing.ModelComparison)
	return v, args.Error(1)
}

func (m *MockAPI) ParseDescription(ctx context.Context, description string) (housing.Features, error) {
	args := m.Called(ctx, description)
	v, _ := args.Get(0).(housing.Features)
	return v, args.Error(1)
}

func (m *MockAPI) Defaults(ctx context.Context) (housing.Features, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(housing.Features)
	return v, args.Error(1)
}

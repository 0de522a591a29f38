package testkit

import (
	"strconv"

	"pricedash/domain/housing"
)

func ptr(v float64) *float64 { return &v }

// Overview is a plausible dataset summary.
func Overview() *housing.StatsOverview {
	return &housing.StatsOverview{
		TotalProperties: 1460,
		AvgPrice:        180921.2,
		MedianPrice:     163000,
		MaxPrice:        755000,
		MinPrice:        ptr(34900),
		PriceStd:        ptr(79442.5),
	}
}

// Neighborhoods returns a handful of neighborhood rows, unsorted.
func Neighborhoods() []housing.NeighborhoodStats {
	return []housing.NeighborhoodStats{
		{Neighborhood: "CollgCr", AvgPrice: 197965.8, MedianPrice: 197200, MinPrice: 110000, MaxPrice: 424870, PropertyCount: 150},
		{Neighborhood: "NoRidge", AvgPrice: 335295.3, MedianPrice: 301500, MinPrice: 190000, MaxPrice: 755000, PropertyCount: 41},
		{Neighborhood: "OldTown", AvgPrice: 128225.3, MedianPrice: 119000, MinPrice: 37900, MaxPrice: 475000, PropertyCount: 113},
		{Neighborhood: "NridgHt", AvgPrice: 316270.6, MedianPrice: 315000, MinPrice: 154000, MaxPrice: 611657, PropertyCount: 77},
		{Neighborhood: "NAmes", AvgPrice: 145847.1, MedianPrice: 140000, MinPrice: 87500, MaxPrice: 345000, PropertyCount: 225},
		{Neighborhood: "Edwards", AvgPrice: 128219.7, MedianPrice: 121750, MinPrice: 58500, MaxPrice: 320000, PropertyCount: 100},
		{Neighborhood: "Somerst", AvgPrice: 225379.8, MedianPrice: 225500, MinPrice: 144152, MaxPrice: 423000, PropertyCount: 86},
	}
}

// Distribution is a short price histogram.
func Distribution() *housing.PriceDistribution {
	return &housing.PriceDistribution{
		Labels: []string{"34k-70k", "70k-106k", "106k-142k", "142k-178k"},
		Values: []int{12, 140, 420, 380},
	}
}

// ModelInfo describes a gradient boosting model.
func ModelInfo() *housing.ModelInfo {
	return &housing.ModelInfo{
		ModelType:         "GradientBoostingRegressor",
		ModelVersion:      "1.0.0",
		FeatureImportance: []float64{0.42, 0.18, 0.09, 0.05, 0.04},
		Parameters:        map[string]interface{}{"n_estimators": 300, "learning_rate": 0.05},
	}
}

// Comparison lists candidate models, best first.
func Comparison() []housing.ModelComparison {
	return []housing.ModelComparison{
		{Model: "Gradient Boosting", R2: 0.91, RMSE: 24500, MAE: 15800},
		{Model: "Random Forest", R2: 0.88, RMSE: 27900, MAE: 17600},
		{Model: "Ridge", R2: 0.84, RMSE: 32100, MAE: 20400},
	}
}

// Prediction is a flat predict response.
func Prediction(price float64) housing.PredictionResult {
	return housing.NewPredictionResult([]byte(`{"predicted_price":` + strconv.FormatFloat(price, 'f', -1, 64) + `,"model_version":"1.0.0"}`))
}

// Package housing holds the shapes exchanged with the house-price prediction backend.
package housing

import (
	"encoding/json"
	"sort"

	"github.com/tidwall/gjson"

	"pricedash/domain/core"
)

// PremiumThreshold separates Premium from Standard neighborhoods by average price.
const PremiumThreshold = 200000.0

// Features is a prediction request: field name to int64, float64, string or nil.
type Features map[string]any

// Clone returns a shallow copy safe to mutate.
func (f Features) Clone() Features {
	out := make(Features, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// PredictionResult is the raw backend answer to a single or batch prediction.
// Callers use PredictedPrice instead of decoding a fixed shape.
type PredictionResult struct {
	raw json.RawMessage
}

// NewPredictionResult wraps a raw JSON body.
func NewPredictionResult(raw []byte) PredictionResult {
	return PredictionResult{raw: append(json.RawMessage(nil), raw...)}
}

// Raw returns the JSON body as received.
func (r PredictionResult) Raw() json.RawMessage { return r.raw }

// MarshalJSON emits the body unchanged.
func (r PredictionResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// PredictedPrice reads {predicted_price}, {predictions:[{predicted_price}]}
// or [{predicted_price}], in that order.
func (r PredictionResult) PredictedPrice() (float64, error) {
	for _, path := range []string{"predicted_price", "predictions.0.predicted_price", "0.predicted_price"} {
		if v := gjson.GetBytes(r.raw, path); v.Exists() && v.Type == gjson.Number {
			return v.Float(), nil
		}
	}
	return 0, core.ErrNoPrediction
}

// Prices returns every predicted price of a batch answer, or the single price.
func (r PredictionResult) Prices() []float64 {
	root := gjson.ParseBytes(r.raw)
	list := root
	if !root.IsArray() {
		list = root.Get("predictions")
	}
	if list.IsArray() {
		var out []float64
		list.ForEach(func(_, item gjson.Result) bool {
			out = append(out, item.Get("predicted_price").Float())
			return true
		})
		return out
	}
	if p, err := r.PredictedPrice(); err == nil {
		return []float64{p}
	}
	return nil
}

// ModelVersion returns the model version reported alongside the prediction, if any.
func (r PredictionResult) ModelVersion() string {
	for _, path := range []string{"model_version", "predictions.0.model_version", "0.model_version"} {
		if v := gjson.GetBytes(r.raw, path); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// HealthStatus is the /health answer.
type HealthStatus struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version"`
}

// Healthy reports whether the backend has a model loaded.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy" && h.ModelLoaded
}

// APIInfo is the root endpoint answer.
type APIInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// ModelInfo describes the trained model.
type ModelInfo struct {
	ModelType         string         `json:"model_type,omitempty"`
	ModelVersion      string         `json:"model_version,omitempty"`
	Parameters        map[string]any `json:"parameters"`
	FeatureImportance []float64      `json:"feature_importance,omitempty"`
	FeatureNames      []string       `json:"feature_names,omitempty"`
}

// FeatureWeight pairs a feature with its importance.
type FeatureWeight struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// DefaultFeatureNames labels importances when the backend sends none.
var DefaultFeatureNames = []string{
	"OverallQual", "GrLivArea", "TotalBsmtSF", "2ndFlrSF",
	"BsmtFinSF1", "LotArea", "1stFlrSF", "YearBuilt",
	"GarageCars", "OverallCond",
}

// TopFeatures returns the n most important features, highest first.
func (m ModelInfo) TopFeatures(n int) []FeatureWeight {
	names := m.FeatureNames
	if len(names) == 0 {
		names = DefaultFeatureNames
	}
	weights := make([]FeatureWeight, 0, len(m.FeatureImportance))
	for i, imp := range m.FeatureImportance {
		if i >= len(names) {
			break
		}
		weights = append(weights, FeatureWeight{Name: names[i], Importance: imp})
	}
	sort.SliceStable(weights, func(i, j int) bool { return weights[i].Importance > weights[j].Importance })
	if n > 0 && len(weights) > n {
		weights = weights[:n]
	}
	return weights
}

// StatsOverview summarises the training dataset.
type StatsOverview struct {
	TotalProperties int      `json:"total_properties"`
	AvgPrice        float64  `json:"avg_price"`
	MedianPrice     float64  `json:"median_price"`
	MaxPrice        float64  `json:"max_price"`
	MinPrice        *float64 `json:"min_price,omitempty"`
	PriceStd        *float64 `json:"price_std,omitempty"`
}

// NeighborhoodStats aggregates sale prices for one neighborhood.
type NeighborhoodStats struct {
	Neighborhood  string  `json:"Neighborhood"`
	AvgPrice      float64 `json:"avg_price"`
	MedianPrice   float64 `json:"median_price"`
	MinPrice      float64 `json:"min_price,omitempty"`
	MaxPrice      float64 `json:"max_price,omitempty"`
	PropertyCount int     `json:"property_count"`
}

// Segment is "Premium" above PremiumThreshold, "Standard" otherwise.
func (n NeighborhoodStats) Segment() string {
	if n.AvgPrice > PremiumThreshold {
		return "Premium"
	}
	return "Standard"
}

// TopByAvgPrice returns the n neighborhoods with the highest average price.
func TopByAvgPrice(stats []NeighborhoodStats, n int) []NeighborhoodStats {
	sorted := append([]NeighborhoodStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AvgPrice > sorted[j].AvgPrice })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopByVolume returns the n neighborhoods with the most sales.
func TopByVolume(stats []NeighborhoodStats, n int) []NeighborhoodStats {
	sorted := append([]NeighborhoodStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PropertyCount > sorted[j].PropertyCount })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// PriceDistribution is a histogram of sale prices.
type PriceDistribution struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// ModelComparison holds the scores of one candidate model.
type ModelComparison struct {
	Model string  `json:"model"`
	R2    float64 `json:"r2"`
	RMSE  float64 `json:"rmse"`
	MAE   float64 `json:"mae"`
}

// DescriptionRequest is the body of the description parsing call.
type DescriptionRequest struct {
	Description string `json:"description"`
}

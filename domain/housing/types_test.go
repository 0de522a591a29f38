package housing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricedash/domain/core"
)

func TestPredictedPriceShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{name: "flat", body: `{"predicted_price": 200000, "model_version": "1.0.0"}`, want: 200000},
		{name: "batch object", body: `{"predictions": [{"predicted_price": 181500.5}, {"predicted_price": 1}]}`, want: 181500.5},
		{name: "bare list", body: `[{"predicted_price": 99000}]`, want: 99000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPredictionResult([]byte(tt.body)).PredictedPrice()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredictedPriceMissing(t *testing.T) {
	for _, body := range []string{`{}`, `[]`, `{"predicted_price": "abc"}`, ``} {
		_, err := NewPredictionResult([]byte(body)).PredictedPrice()
		assert.ErrorIs(t, err, core.ErrNoPrediction, body)
	}
}

func TestPricesAndVersion(t *testing.T) {
	r := NewPredictionResult([]byte(`{"predictions": [{"predicted_price": 1, "model_version": "2"}, {"predicted_price": 2}]}`))
	assert.Equal(t, []float64{1, 2}, r.Prices())
	assert.Equal(t, "2", r.ModelVersion())

	single := NewPredictionResult([]byte(`{"predicted_price": 5}`))
	assert.Equal(t, []float64{5}, single.Prices())

	out, err := json.Marshal(single)
	require.NoError(t, err)
	assert.JSONEq(t, `{"predicted_price": 5}`, string(out))
}

func TestSegment(t *testing.T) {
	assert.Equal(t, "Premium", NeighborhoodStats{AvgPrice: 200001}.Segment())
	assert.Equal(t, "Standard", NeighborhoodStats{AvgPrice: 200000}.Segment())
}

func TestTopByAvgPrice(t *testing.T) {
	stats := []NeighborhoodStats{
		{Neighborhood: "NAmes", AvgPrice: 145000, PropertyCount: 225},
		{Neighborhood: "NoRidge", AvgPrice: 335000, PropertyCount: 41},
		{Neighborhood: "CollgCr", AvgPrice: 197000, PropertyCount: 150},
		{Neighborhood: "NridgHt", AvgPrice: 316000, PropertyCount: 77},
	}

	top := TopByAvgPrice(stats, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "NoRidge", top[0].Neighborhood)
	assert.Equal(t, "NridgHt", top[1].Neighborhood)
	assert.Equal(t, "NAmes", stats[0].Neighborhood, "input must not be reordered")

	byVolume := TopByVolume(stats, 1)
	assert.Equal(t, "NAmes", byVolume[0].Neighborhood)
}

func TestTopFeatures(t *testing.T) {
	info := ModelInfo{FeatureImportance: []float64{0.1, 0.5, 0.3}}
	top := info.TopFeatures(2)
	require.Len(t, top, 2)
	assert.Equal(t, FeatureWeight{Name: "GrLivArea", Importance: 0.5}, top[0])
	assert.Equal(t, FeatureWeight{Name: "TotalBsmtSF", Importance: 0.3}, top[1])

	named := ModelInfo{FeatureImportance: []float64{0.2, 0.8}, FeatureNames: []string{"a", "b"}}
	assert.Equal(t, "b", named.TopFeatures(0)[0].Name)
}

package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricedash/domain/housing"
	"pricedash/internal/dom"
)

func TestRenderAndDecode(t *testing.T) {
	doc := dom.MustParse(`<html><body><canvas id="price-dist-chart"></canvas></body></html>`)
	spec := PriceDistribution(&housing.PriceDistribution{
		Labels: []string{"34k-70k", "70k-106k"},
		Values: []int{12, 40},
	})

	require.True(t, Render(doc, "price-dist-chart", spec))

	got, ok := Decode(doc, "price-dist-chart")
	require.True(t, ok)
	if diff := cmp.Diff(spec, got); diff != "" {
		t.Errorf("decoded chart mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{12, 40}, got.Datasets[0].Data)
}

func TestRenderMissingContainer(t *testing.T) {
	doc := dom.MustParse(`<html><body></body></html>`)
	assert.False(t, Render(doc, "nope", NewBar("t", "s", nil, nil)))
	_, ok := Decode(doc, "nope")
	assert.False(t, ok)
}

func TestFeatureImportance(t *testing.T) {
	spec := FeatureImportance([]housing.FeatureWeight{
		{Name: "GarageCars", Importance: 0.1},
		{Name: "OverallQual", Importance: 0.5},
		{Name: "GrLivArea", Importance: 0.25},
	}, 2)

	assert.Equal(t, "y", spec.IndexAxis)
	assert.Equal(t, []string{"OverallQual", "GrLivArea"}, spec.Labels)
	assert.Equal(t, []float64{50, 25}, spec.Datasets[0].Data)
}

func TestLineLegend(t *testing.T) {
	one := NewLine("t", []string{"a"}, Dataset{Label: "avg", Data: []float64{1}})
	two := NewLine("t", []string{"a"}, Dataset{Label: "avg"}, Dataset{Label: "median"})
	assert.False(t, one.Legend)
	assert.True(t, two.Legend)
}

package views

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pricedash/domain/core"
	"pricedash/domain/housing"
	"pricedash/internal/chart"
	"pricedash/internal/dom"
	"pricedash/internal/errors"
	"pricedash/internal/form"
	"pricedash/internal/geo"
	"pricedash/internal/router"
	"pricedash/internal/testkit"
	"pricedash/internal/view"
)

const shell = `<html><body>
<header><h2 id="view-title"></h2><p id="view-subtitle"></p></header>
<main id="view-container"></main>
<div id="toast-region"></div>
</body></html>`

type harness struct {
	api    *testkit.MockAPI
	doc    *dom.Document
	set    *Set
	router *router.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &testkit.MockAPI{}
	doc := dom.MustParse(shell)
	ctrl := form.NewController(doc, nil, api, nil, nil)
	set, err := New(Deps{API: api, Form: ctrl, DistributionBins: 20})
	require.NoError(t, err)
	r := router.New(doc, set.Registry)
	t.Cleanup(r.Close)
	return &harness{api: api, doc: doc, set: set, router: r}
}

func (h *harness) open(t *testing.T, id string) {
	t.Helper()
	require.True(t, h.router.Navigate(id, true))
	h.router.Wait()
}

func (h *harness) text(id string) string {
	if el := h.doc.ByID(id); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

func (h *harness) chart(t *testing.T, id string) chart.Spec {
	t.Helper()
	spec, ok := chart.Decode(h.doc, id)
	require.True(t, ok, "no chart on %s", id)
	return spec
}

func TestSetRegistersAllViews(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"analytics", "model", "overview", "predict"}, h.set.Registry.List())
}

func TestOverviewFillsCards(t *testing.T) {
	h := newHarness(t)
	h.api.On("StatsOverview", mock.Anything).Return(testkit.Overview(), nil)
	h.api.On("NeighborhoodStats", mock.Anything).Return(testkit.Neighborhoods(), nil)
	h.api.On("PriceDistribution", mock.Anything, 20).Return(testkit.Distribution(), nil)

	h.open(t, "overview")

	assert.Equal(t, "Executive Overview", h.text("view-title"))
	assert.Equal(t, "1,460", h.text("stat-total-props"))
	assert.Equal(t, "$180,921", h.text("stat-avg-price"))
	assert.Equal(t, "$163,000", h.text("stat-median-price"))
	assert.Equal(t, "$755,000", h.text("stat-max-price"))
	assert.Contains(t, h.text("stat-nb-spread"), "7 neighborhoods")

	dist := h.chart(t, "price-dist-chart")
	assert.Equal(t, testkit.Distribution().Labels, dist.Labels)

	top := h.chart(t, "nb-avg-chart")
	assert.Equal(t, []string{"NoRidge", "NridgHt", "Somerst", "CollgCr", "NAmes"}, top.Labels)
	assert.Equal(t, "y", top.IndexAxis)
	h.api.AssertExpectations(t)
}

func TestOverviewShowsLoadError(t *testing.T) {
	h := newHarness(t)
	h.api.On("StatsOverview", mock.Anything).Return(nil, errors.APIError(500, "database offline"))
	h.api.On("NeighborhoodStats", mock.Anything).Return(testkit.Neighborhoods(), nil).Maybe()
	h.api.On("PriceDistribution", mock.Anything, 20).Return(testkit.Distribution(), nil).Maybe()

	h.open(t, "overview")

	for _, id := range []string{"price-dist-chart", "nb-avg-chart"} {
		assert.Contains(t, h.text(id), "Erreur de chargement")
		assert.Contains(t, h.text(id), "database offline")
	}
	_, ok := h.doc.ByID("price-dist-chart").Attr(chart.AttrName)
	assert.False(t, ok)
}

func TestAnalyticsRendersTableAndMap(t *testing.T) {
	h := newHarness(t)
	h.api.On("NeighborhoodStats", mock.Anything).Return(testkit.Neighborhoods(), nil)

	h.open(t, "analytics")

	body := h.doc.ByID("nb-table-body")
	require.NotNil(t, body)
	assert.Equal(t, 7, strings.Count(body.InnerHTML(), "<tr"))
	assert.Contains(t, body.Text(), "NoRidge")

	segments := h.chart(t, "segment-chart")
	assert.Equal(t, []string{"Premium", "Standard"}, segments.Labels)

	_, ok := h.doc.ByID("map-container").Attr("data-map")
	assert.True(t, ok)

	links := h.doc.ByID("view-container").InnerHTML()
	assert.Contains(t, links, "/export/neighborhoods.csv")
	assert.Contains(t, links, "/export/neighborhoods.xlsx")
}

func TestSummaryRowsKeepsBackendOrder(t *testing.T) {
	rows := make([]housing.NeighborhoodStats, 14)
	for i := range rows {
		rows[i].Neighborhood = string(rune('A' + i))
	}
	got := summaryRows(rows)
	require.Len(t, got, tableRows)
	assert.Equal(t, "A", got[0].Neighborhood)
	assert.Len(t, summaryRows(rows[:3]), 3)
}

func TestModelView(t *testing.T) {
	h := newHarness(t)
	h.api.On("ModelInfo", mock.Anything).Return(testkit.ModelInfo(), nil)
	h.api.On("ModelComparison", mock.Anything).Return(testkit.Comparison(), nil)

	h.open(t, "model")

	assert.Equal(t, "GradientBoostingRegressor", h.text("model-type"))
	assert.Equal(t, "Version 1.0.0", h.text("model-version"))
	assert.Contains(t, h.text("model-params"), `"n_estimators": 300`)

	importance := h.chart(t, "feature-importance-chart")
	assert.Equal(t, "OverallQual", importance.Labels[0])

	explanation := h.doc.ByID("model-explanation").InnerHTML()
	assert.Contains(t, explanation, "<strong>GradientBoostingRegressor</strong>")
	assert.Contains(t, explanation, "OverallQual")

	assert.Equal(t, 3, strings.Count(h.doc.ByID("model-comparison-body").InnerHTML(), "<tr"))
	cmp := h.chart(t, "model-comparison-chart")
	assert.Equal(t, []string{"Gradient Boosting", "Random Forest", "Ridge"}, cmp.Labels)
}

func TestModelComparisonIsOptional(t *testing.T) {
	h := newHarness(t)
	h.api.On("ModelInfo", mock.Anything).Return(testkit.ModelInfo(), nil)
	h.api.On("ModelComparison", mock.Anything).Return(nil, errors.APIError(404, "not found"))

	h.open(t, "model")

	assert.Equal(t, "GradientBoostingRegressor", h.text("model-type"))
	assert.Empty(t, h.text("model-comparison-body"))
}

func TestModelInfoErrorShownInChart(t *testing.T) {
	h := newHarness(t)
	h.api.On("ModelInfo", mock.Anything).Return(nil, errors.NetworkError(context.DeadlineExceeded))
	h.api.On("ModelComparison", mock.Anything).Return(nil, nil).Maybe()

	h.open(t, "model")

	assert.Contains(t, h.text("feature-importance-chart"), "Erreur de chargement")
}

func TestPredictAppliesHiddenDefaultsAndPreselection(t *testing.T) {
	h := newHarness(t)
	h.api.On("Defaults", mock.Anything).Return(housing.Features{
		"PavedDrive":   "N",
		"Neighborhood": "OldTown",
	}, nil)

	h.set.Predict.Preselect("NoRidge")
	h.open(t, "predict")

	values := h.doc.ByID(form.FormID).FieldValues()
	assert.Equal(t, "N", values["PavedDrive"])
	assert.Equal(t, "NoRidge", values["Neighborhood"])
	assert.Equal(t, 1, h.set.Predict.deps.Form.Step())
}

func TestPredictKeepsSchemaDefaultsWhenBackendFails(t *testing.T) {
	h := newHarness(t)
	h.api.On("Defaults", mock.Anything).Return(nil, errors.NetworkError(context.DeadlineExceeded))

	h.open(t, "predict")

	values := h.doc.ByID(form.FormID).FieldValues()
	assert.Equal(t, "Y", values["PavedDrive"])
	assert.Equal(t, "CollgCr", values["Neighborhood"])
}

func TestPendingPredictionStaysOutOfNewForm(t *testing.T) {
	h := newHarness(t)
	h.api.On("Defaults", mock.Anything).Return(nil, errors.NetworkError(context.DeadlineExceeded))
	h.api.On("StatsOverview", mock.Anything).Return(nil, errors.APIError(500, "offline")).Maybe()
	h.api.On("NeighborhoodStats", mock.Anything).Return(nil, errors.APIError(500, "offline")).Maybe()
	h.api.On("PriceDistribution", mock.Anything, 20).Return(nil, errors.APIError(500, "offline")).Maybe()

	started, release := make(chan struct{}), make(chan struct{})
	h.api.On("Predict", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(testkit.Prediction(200000), nil).Once()
	h.api.On("Predict", mock.Anything, mock.Anything).Return(testkit.Prediction(150000), nil).Once()

	ctrl := h.set.Predict.deps.Form
	h.open(t, "predict")

	stale := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background())
		stale <- err
	}()
	<-started

	h.open(t, "overview")
	h.open(t, "predict")
	assert.False(t, h.doc.ByID(form.SubmitID).Disabled())
	assert.True(t, h.doc.ByID(form.ResultID).HasClass("hidden"))

	price, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 150000.0, price)
	assert.Equal(t, "$150,000", h.text(form.PriceID))

	close(release)
	assert.ErrorIs(t, <-stale, core.ErrStaleEpoch)
	assert.Equal(t, "$150,000", h.text(form.PriceID))
	assert.False(t, h.doc.ByID(form.SubmitID).Disabled())
}

func TestSupersededInitLeavesChartsAlone(t *testing.T) {
	doc := dom.MustParse(`<html><body><div id="price-dist-chart"></div><div id="map-container"></div></body></html>`)
	var epoch atomic.Uint64
	epoch.Store(1)
	vc := &view.Context{ViewID: "overview", Doc: doc, Token: view.NewToken(1, &epoch)}

	assert.True(t, chart.Render(vc, "price-dist-chart", chart.PriceDistribution(testkit.Distribution())))

	epoch.Store(2)
	assert.False(t, chart.Render(vc, "price-dist-chart", chart.NewBar("late", "x", nil, nil)))
	assert.False(t, geo.Render(vc, "map-container", geo.NewLayer(testkit.Neighborhoods())))

	spec, ok := chart.Decode(doc, "price-dist-chart")
	require.True(t, ok)
	assert.NotEqual(t, "late", spec.Title)
	_, ok = doc.ByID("map-container").Attr(geo.AttrName)
	assert.False(t, ok)
}

func TestExplanationWithoutType(t *testing.T) {
	md, err := explanation(&housing.ModelInfo{}, nil)
	require.NoError(t, err)
	assert.Contains(t, md, "**gradient boosting model**")
	assert.NotContains(t, md, "Version in production")
}

package form

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pricedash/domain/core"
	"pricedash/domain/housing"
	"pricedash/internal/dom"
	"pricedash/internal/errors"
	"pricedash/internal/notify"
	"pricedash/internal/testkit"
)

func newPage(t *testing.T) *dom.Document {
	t.Helper()
	markup, err := DefaultSchema().Render()
	require.NoError(t, err)
	doc, err := dom.Parse(`<html><body><div id="toast-region"></div><main id="view-container">` + string(markup) + `</main></body></html>`)
	require.NoError(t, err)
	return doc
}

func newController(t *testing.T) (*Controller, *dom.Document, *testkit.MockAPI) {
	t.Helper()
	doc := newPage(t)
	api := new(testkit.MockAPI)
	center := notify.NewCenter(doc, 0)
	t.Cleanup(center.Close)
	c := NewController(doc, nil, api, center, nil)
	require.NoError(t, c.Attach())
	return c, doc, api
}

func hidden(doc *dom.Document, id string) bool {
	return doc.ByID(id).HasClass("hidden")
}

func TestAdvanceStaysInRange(t *testing.T) {
	c, doc, _ := newController(t)

	assert.Equal(t, 1, c.Step())
	assert.True(t, hidden(doc, PrevID))
	assert.False(t, hidden(doc, NextID))
	assert.True(t, hidden(doc, SubmitID))
	assert.Equal(t, "33%", doc.ByID(ProgressID).Style("width"))

	assert.Equal(t, 1, c.Advance(-1))

	assert.Equal(t, 2, c.Advance(1))
	assert.True(t, hidden(doc, "form-step-1"))
	assert.False(t, hidden(doc, "form-step-2"))
	assert.True(t, doc.ByID("step-indicator-2").HasClass("active"))
	assert.False(t, doc.ByID("step-indicator-1").HasClass("active"))
	assert.Equal(t, "67%", doc.ByID(ProgressID).Style("width"))
	assert.False(t, hidden(doc, PrevID))

	assert.Equal(t, 3, c.Advance(1))
	assert.Equal(t, 3, c.Advance(1))
	assert.True(t, hidden(doc, NextID))
	assert.False(t, hidden(doc, SubmitID))
	assert.Equal(t, "100%", doc.ByID(ProgressID).Style("width"))
	assert.Equal(t, 1.0, c.Progress())

	assert.Equal(t, 1, c.GoTo(-4))
	assert.Equal(t, 3, c.GoTo(9))
}

func TestSubmitShowsFormattedPrice(t *testing.T) {
	c, doc, api := newController(t)

	var disabledDuringCall bool
	api.On("Predict", mock.Anything, mock.MatchedBy(func(f housing.Features) bool {
		frontage, present := f["LotFrontage"]
		return f["GrLivArea"] == int64(1500) &&
			f["OverallQual"] == int64(6) &&
			f["YearBuilt"] == int64(2000) &&
			f["Neighborhood"] == "CollgCr" &&
			f["MSSubClass"] == int64(60) &&
			present && frontage == nil
	})).Run(func(mock.Arguments) {
		disabledDuringCall = doc.ByID(SubmitID).Disabled()
	}).Return(testkit.Prediction(200000), nil).Once()

	price, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 200000.0, price)
	assert.Equal(t, "$200,000", doc.ByID(PriceID).Text())
	assert.False(t, hidden(doc, ResultID))
	assert.Equal(t, ResultID, doc.ScrollTarget())
	assert.Equal(t, "Model 1.0.0", doc.ByID(ModelVersionID).Text())
	assert.True(t, disabledDuringCall)
	assert.False(t, doc.ByID(SubmitID).Disabled())
	assert.Contains(t, doc.ByID(notify.RegionID).Text(), "Prédiction générée avec succès!")
	api.AssertNumberOfCalls(t, "Predict", 1)
}

func TestSubmitErrorKeepsFormUsable(t *testing.T) {
	c, doc, api := newController(t)
	api.On("Predict", mock.Anything, mock.Anything).
		Return(housing.PredictionResult{}, errors.APIError(422, "body.GrLivArea: field required"))

	_, err := c.Submit(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, doc.ByID(notify.RegionID).Text(), "Erreur: body.GrLivArea: field required")
	assert.False(t, doc.ByID(SubmitID).Disabled())
	assert.True(t, hidden(doc, ResultID))
}

// blockPredict makes the next Predict call wait until release is closed.
func blockPredict(api *testkit.MockAPI, price float64) (started, release chan struct{}) {
	started, release = make(chan struct{}), make(chan struct{})
	api.On("Predict", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(testkit.Prediction(price), nil).Once()
	return started, release
}

func TestConcurrentSubmitIsRejectedWithToast(t *testing.T) {
	c, doc, api := newController(t)
	started, release := blockPredict(api, 200000)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-started

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, doc.ByID(notify.RegionID).Text(), "Erreur: a prediction is already in progress")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "$200,000", doc.ByID(PriceID).Text())
	api.AssertNumberOfCalls(t, "Predict", 1)
}

func TestReattachDiscardsPendingPrediction(t *testing.T) {
	c, doc, api := newController(t)
	started, release := blockPredict(api, 200000)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-started

	require.NoError(t, c.Attach())

	close(release)
	assert.ErrorIs(t, <-done, core.ErrStaleEpoch)
	assert.True(t, hidden(doc, ResultID))
	assert.NotEqual(t, "$200,000", doc.ByID(PriceID).Text())
	assert.NotContains(t, doc.ByID(notify.RegionID).Text(), "Prédiction générée avec succès!")
}

func TestSubmitRejectsResponseWithoutPrice(t *testing.T) {
	c, doc, api := newController(t)
	api.On("Predict", mock.Anything, mock.Anything).
		Return(housing.NewPredictionResult([]byte(`{"status":"ok"}`)), nil)

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, core.ErrNoPrediction)
	assert.True(t, hidden(doc, ResultID))
}

func TestSubmitPassesInvalidNumbersThrough(t *testing.T) {
	c, _, api := newController(t)
	c.Sync(map[string]string{"GrLivArea": "huge", "NotAField": "x"})

	api.On("Predict", mock.Anything, mock.MatchedBy(func(f housing.Features) bool {
		_, unknown := f["NotAField"]
		return f["GrLivArea"] == "huge" && !unknown
	})).Return(housing.PredictionResult{}, errors.APIError(422, "body.GrLivArea: value is not a valid integer"))

	_, err := c.Submit(context.Background())
	assert.Error(t, err)
	api.AssertExpectations(t)
}

func TestSubmitWithoutForm(t *testing.T) {
	doc := dom.MustParse(`<html><body></body></html>`)
	c := NewController(doc, nil, new(testkit.MockAPI), nil, nil)

	assert.ErrorIs(t, c.Attach(), core.ErrElementMissing)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, core.ErrElementMissing)
}

func TestReset(t *testing.T) {
	c, doc, api := newController(t)
	api.On("Predict", mock.Anything, mock.Anything).Return(testkit.Prediction(150000), nil)

	c.Sync(map[string]string{"GrLivArea": "2400", "Neighborhood": "NoRidge"})
	c.Advance(1)
	c.Advance(1)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	c.Reset()

	values := doc.ByID(FormID).FieldValues()
	assert.Equal(t, "1500", values["GrLivArea"])
	assert.Equal(t, "CollgCr", values["Neighborhood"])
	assert.Equal(t, 1, c.Step())
	assert.True(t, hidden(doc, ResultID))
	assert.True(t, hidden(doc, SubmitID))
}

func TestPrefill(t *testing.T) {
	c, doc, api := newController(t)
	api.On("ParseDescription", mock.Anything, "4 bedrooms in Northridge").
		Return(housing.Features{"BedroomAbvGr": 4.0, "Neighborhood": "NoRidge", "Garden": "big", "Alley": nil}, nil)

	applied, err := c.Prefill(context.Background(), "  4 bedrooms in Northridge ")
	require.NoError(t, err)
	sort.Strings(applied)
	assert.Equal(t, []string{"BedroomAbvGr", "Neighborhood"}, applied)

	values := doc.ByID(FormID).FieldValues()
	assert.Equal(t, "4", values["BedroomAbvGr"])
	assert.Equal(t, "NoRidge", values["Neighborhood"])
	assert.Contains(t, doc.ByID(notify.RegionID).Text(), "2 champs extraits")

	_, err = c.Prefill(context.Background(), "   ")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	api.AssertNumberOfCalls(t, "ParseDescription", 1)
}

func TestPrefillError(t *testing.T) {
	c, doc, api := newController(t)
	api.On("ParseDescription", mock.Anything, mock.Anything).Return(nil, errors.NetworkError(context.DeadlineExceeded))

	_, err := c.Prefill(context.Background(), "nice house")
	assert.Error(t, err)
	assert.Contains(t, doc.ByID(notify.RegionID).Text(), "Erreur: network error")
}

func TestSetNeighborhood(t *testing.T) {
	c, doc, _ := newController(t)
	c.GoTo(3)

	require.True(t, c.SetNeighborhood("Somerst"))
	assert.Equal(t, 1, c.Step())
	assert.Equal(t, "Somerst", doc.ByID(FormID).FieldValues()["Neighborhood"])
}

func TestApplyDefaultsBecomeResetValues(t *testing.T) {
	c, doc, _ := newController(t)

	n := c.ApplyDefaults(housing.Features{"LotArea": 8450.0, "MSSubClass": 20.0, "Unknown": 1.0})
	assert.Equal(t, 2, n)

	c.Sync(map[string]string{"LotArea": "1"})
	c.Reset()
	values := doc.ByID(FormID).FieldValues()
	assert.Equal(t, "8450", values["LotArea"])
	assert.Equal(t, "20", values["MSSubClass"])
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricedash/domain/housing"
	"pricedash/internal/errors"
)

type recorded struct {
	method string
	path   string
	query  string
	body   []byte
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, func() []recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/"}, nil)
	require.NoError(t, err)
	return client, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestPredictPostsFeatures(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predicted_price": 200000, "model_version": "1.0.0"}`))
	})

	result, err := client.Predict(context.Background(), housing.Features{
		"GrLivArea":    int64(1500),
		"Neighborhood": "CollgCr",
		"LotFrontage":  nil,
	})
	require.NoError(t, err)

	price, err := result.PredictedPrice()
	require.NoError(t, err)
	assert.Equal(t, 200000.0, price)

	require.Len(t, calls(), 1)
	call := calls()[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/predict", call.path)
	assert.JSONEq(t, `{"GrLivArea":1500,"Neighborhood":"CollgCr","LotFrontage":null}`, string(call.body))
}

func TestValidationErrorDetailList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","GrLivArea"],"msg":"field required"},{"loc":["body",0,"MoSold"],"msg":"ensure this value is less than or equal to 12"}]}`))
	})

	_, err := client.Predict(context.Background(), housing.Features{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, "body.GrLivArea: field required\nbody.0.MoSold: ensure this value is less than or equal to 12", errors.UserMessage(err))
}

func TestErrorDetailConventions(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "string detail", status: 503, body: `{"detail":"Modèle non disponible"}`, want: "Modèle non disponible"},
		{name: "no detail", status: 500, body: `{"error":"boom"}`, want: "API request failed"},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, want: "API request failed"},
		{name: "null detail", status: 404, body: `{"detail":null}`, want: "API request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.StatsOverview(context.Background())
			require.Error(t, err)
			assert.Equal(t, errors.CodeAPIError, errors.GetCode(err))
			assert.Equal(t, tt.status, errors.GetStatus(err))
			assert.Equal(t, tt.want, errors.UserMessage(err))
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(Config{BaseURL: url}, nil)
	require.NoError(t, err)

	_, err = client.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNetworkError, errors.GetCode(err))
}

func TestEndpoints(t *testing.T) {
	responses := map[string]string{
		"/":                             `{"message":"welcome","version":"1.0.0","docs":"/docs"}`,
		"/health":                       `{"status":"healthy","model_loaded":true,"model_version":"1.0.0"}`,
		"/model/info":                   `{"model_type":"GradientBoostingRegressor","parameters":{"n_estimators":100},"feature_importance":[0.4,0.6]}`,
		"/api/stats/overview":           `{"total_properties":1460,"avg_price":180921.2,"median_price":163000,"max_price":755000,"min_price":34900}`,
		"/api/stats/neighborhoods":      `[{"Neighborhood":"CollgCr","avg_price":197965.8,"median_price":197200,"property_count":150}]`,
		"/api/stats/price-distribution": `{"labels":["34k-70k"],"values":[12]}`,
		"/model/comparison":             `[{"model":"GradientBoosting","r2":0.912,"rmse":26033,"mae":16500}]`,
		"/api/model/parse-description":  `{"BedroomAbvGr":3,"Neighborhood":"NoRidge"}`,
		"/api/stats/defaults":           `{"MSZoning":"RL","LotArea":9478}`,
		"/predict/batch":                `{"predictions":[{"predicted_price":1},{"predicted_price":2}]}`,
	}
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responses[r.URL.Path]))
	})
	ctx := context.Background()

	info, err := client.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", info.Version)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.Healthy())

	model, err := client.ModelInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GradientBoostingRegressor", model.ModelType)
	assert.Equal(t, []float64{0.4, 0.6}, model.FeatureImportance)

	overview, err := client.StatsOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1460, overview.TotalProperties)
	require.NotNil(t, overview.MinPrice)
	assert.Nil(t, overview.PriceStd)

	nbs, err := client.NeighborhoodStats(ctx)
	require.NoError(t, err)
	require.Len(t, nbs, 1)
	assert.Equal(t, "CollgCr", nbs[0].Neighborhood)
	assert.Equal(t, 150, nbs[0].PropertyCount)

	dist, err := client.PriceDistribution(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, dist.Values)

	cmp, err := client.ModelComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.912, cmp[0].R2)

	parsed, err := client.ParseDescription(ctx, "3 bedroom house in Northridge")
	require.NoError(t, err)
	assert.Equal(t, "NoRidge", parsed["Neighborhood"])

	defaults, err := client.Defaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RL", defaults["MSZoning"])

	batch, err := client.PredictBatch(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, batch.Prices())

	byPath := map[string]recorded{}
	for _, c := range calls() {
		byPath[c.path] = c
	}
	assert.Equal(t, "bins=20", byPath["/api/stats/price-distribution"].query)
	assert.Equal(t, http.MethodPost, byPath["/api/model/parse-description"].method)

	var desc map[string]string
	require.NoError(t, json.Unmarshal(byPath["/api/model/parse-description"].body, &desc))
	assert.Equal(t, "3 bedroom house in Northridge", desc["description"])
	assert.JSONEq(t, `[]`, string(byPath["/predict/batch"].body))
}

func TestDecodeFailureIsExternal(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := client.NeighborhoodStats(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "::not a url"}, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

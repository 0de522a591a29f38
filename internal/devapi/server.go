// Package devapi serves a local stand-in for the prediction backend, computed
// from a sales dataset. It speaks the same JSON contract as the production API.
package devapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pricedash/domain/housing"
	"pricedash/internal"
	"pricedash/internal/dataset"
	"pricedash/internal/form"
)

const (
	defaultBins     = 20
	confidenceScore = 0.85
)

// Options configures the backend.
type Options struct {
	CORSOrigins []string
	Logger      *internal.Logger
}

// Server answers the backend endpoints from one dataset.
type Server struct {
	data       *dataset.Dataset
	model      *Model
	comparison []housing.ModelComparison
	defaults   housing.Features
	logger     *internal.Logger
	router     chi.Router
}

// New fits the model and builds the router. A model that cannot be fitted
// leaves the server up and reporting unhealthy.
func New(ds *dataset.Dataset, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{data: ds, logger: logger}

	if ds != nil {
		start := time.Now()
		model, err := Fit(ds)
		if err != nil {
			logger.Error("model training failed: %v", err)
		} else {
			s.model = model
			logger.Info("model trained on %d sales in %s", ds.Len(), time.Since(start).Round(time.Millisecond))
		}
		if s.comparison, err = Compare(ds); err != nil {
			logger.Warn("model comparison unavailable: %v", err)
		}
		s.defaults = Defaults(ds, form.DefaultSchema())
	}

	s.router = s.buildRouter(opts.CORSOrigins)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter(origins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/model", func(r chi.Router) {
		r.Get("/info", s.handleModelInfo)
		r.Get("/comparison", s.handleComparison)
	})

	r.Post("/predict", s.handlePredict)
	r.Post("/predict/batch", s.handlePredictBatch)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats/overview", s.handleOverview)
		r.Get("/stats/neighborhoods", s.handleNeighborhoods)
		r.Get("/stats/price-distribution", s.handleDistribution)
		r.Get("/stats/defaults", s.handleDefaults)
		r.Post("/model/parse-description", s.handleParseDescription)
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, housing.APIInfo{
		Message: "House Prices Prediction API (local)",
		Version: ModelVersion,
		Docs:    "/docs",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := housing.HealthStatus{Status: "unhealthy", ModelVersion: ModelVersion}
	if s.model != nil {
		status.Status = "healthy"
		status.ModelLoaded = true
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if !s.requireModel(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.model.Info())
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	if len(s.comparison) == 0 {
		writeError(w, http.StatusNotFound, "Model comparison not available")
		return
	}
	writeJSON(w, http.StatusOK, s.comparison)
}

type predictionResponse struct {
	PredictedPrice  float64 `json:"predicted_price"`
	ModelVersion    string  `json:"model_version"`
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !s.requireModel(w) {
		return
	}
	var features housing.Features
	if err := decodeBody(r, &features); err != nil {
		writeValidation(w, []validationIssue{{Type: "json_invalid", Loc: []any{"body"}, Msg: err.Error()}})
		return
	}
	if issues := validateFeatures(features, "body"); len(issues) > 0 {
		s.logger.Warn("rejected prediction request: %d issues", len(issues))
		writeValidation(w, issues)
		return
	}
	writeJSON(w, http.StatusOK, predictionResponse{
		PredictedPrice:  s.model.Predict(features),
		ModelVersion:    ModelVersion,
		ConfidenceScore: confidenceScore,
	})
}

func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireModel(w) {
		return
	}
	var batch []housing.Features
	if err := decodeBody(r, &batch); err != nil {
		writeValidation(w, []validationIssue{{Type: "json_invalid", Loc: []any{"body"}, Msg: err.Error()}})
		return
	}
	var issues []validationIssue
	for i, f := range batch {
		issues = append(issues, validateFeatures(f, "body", i)...)
	}
	if len(issues) > 0 {
		writeValidation(w, issues)
		return
	}
	out := make([]predictionResponse, len(batch))
	for i, f := range batch {
		out[i] = predictionResponse{PredictedPrice: s.model.Predict(f), ModelVersion: ModelVersion}
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": out})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if !s.requireData(w) {
		return
	}
	overview, err := Overview(s.data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleNeighborhoods(w http.ResponseWriter, r *http.Request) {
	if !s.requireData(w) {
		return
	}
	writeJSON(w, http.StatusOK, Neighborhoods(s.data))
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	if !s.requireData(w) {
		return
	}
	bins, err := parseBins(r.URL.Query().Get("bins"), defaultBins)
	if err != nil || bins < 1 {
		writeValidation(w, []validationIssue{{
			Type: "greater_than_equal", Loc: []any{"query", "bins"},
			Msg: "Input should be an integer greater than or equal to 1",
		}})
		return
	}
	dist, err := Distribution(s.data, bins)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if !s.requireData(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.defaults)
}

func (s *Server) handleParseDescription(w http.ResponseWriter, r *http.Request) {
	var req housing.DescriptionRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidation(w, []validationIssue{{Type: "json_invalid", Loc: []any{"body"}, Msg: err.Error()}})
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeValidation(w, []validationIssue{{Type: "missing", Loc: []any{"body", "description"}, Msg: "Field required"}})
		return
	}
	writeJSON(w, http.StatusOK, ParseDescription(req.Description))
}

func (s *Server) requireModel(w http.ResponseWriter) bool {
	if s.model == nil {
		writeError(w, http.StatusServiceUnavailable, "Model not available")
		return false
	}
	return true
}

func (s *Server) requireData(w http.ResponseWriter) bool {
	if s.data == nil || s.data.Len() == 0 {
		writeError(w, http.StatusNotFound, "Data not available")
		return false
	}
	return true
}

type validationIssue struct {
	Type  string `json:"type"`
	Loc   []any  `json:"loc"`
	Msg   string `json:"msg"`
	Input any    `json:"input,omitempty"`
}

// validateFeatures checks what the model needs: a living area, and numbers
// wherever a model feature is given.
func validateFeatures(f housing.Features, loc ...any) []validationIssue {
	var issues []validationIssue
	at := func(field string) []any {
		return append(append([]any(nil), loc...), field)
	}
	if v, ok := f["GrLivArea"]; !ok || v == nil {
		issues = append(issues, validationIssue{Type: "missing", Loc: at("GrLivArea"), Msg: "Field required"})
	}
	for _, name := range housing.DefaultFeatureNames {
		v, ok := f[name]
		if !ok || v == nil {
			continue
		}
		if _, numeric := toFloat(v); !numeric {
			issues = append(issues, validationIssue{
				Type:  "float_parsing",
				Loc:   at(name),
				Msg:   "Input should be a valid number, unable to parse string as a number",
				Input: v,
			})
		}
	}
	if v, ok := f["Neighborhood"]; ok && v != nil {
		if _, isString := v.(string); !isString {
			issues = append(issues, validationIssue{Type: "string_type", Loc: at("Neighborhood"), Msg: "Input should be a valid string", Input: v})
		}
	}
	return issues
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, issues []validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

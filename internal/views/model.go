package views

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	texttemplate "text/template"

	"golang.org/x/sync/errgroup"

	"pricedash/domain/housing"
	"pricedash/internal/chart"
	"pricedash/internal/format"
	"pricedash/internal/markdown"
	"pricedash/internal/view"
)

const topFeatures = 10

var explanationTemplate = texttemplate.Must(texttemplate.New("explanation.md").Funcs(texttemplate.FuncMap{
	"percent": func(v float64) string { return format.Percentage(v, 1) },
}).ParseFS(templateFS, "templates/explanation.md"))

// Model shows feature importance, hyper-parameters and model comparison.
type Model struct {
	deps Deps
}

func (v *Model) ID() string       { return "model" }
func (v *Model) Title() string    { return "Model Performance" }
func (v *Model) Subtitle() string { return "Analysis of the Gradient Boosting model metrics." }

func (v *Model) Render() (template.HTML, error) {
	return renderPage("model.html", nil)
}

// Init loads model info and the comparison table. The comparison is optional:
// a failure there is logged and the table stays empty.
func (v *Model) Init(ctx context.Context, vc *view.Context) error {
	var (
		info       *housing.ModelInfo
		comparison []housing.ModelComparison
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info, err = v.deps.API.ModelInfo(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		comparison, err = v.deps.API.ModelComparison(gctx)
		if err != nil && !cancelled(err) {
			vc.Logger.Warn("[Model] Model comparison unavailable: %v", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if cancelled(err) || vc.Stale() {
			return nil
		}
		vc.Logger.Error("[Model] Failed to load model info: %v", err)
		showError(vc, "feature-importance-chart", err)
		return nil
	}
	if vc.Stale() {
		return nil
	}

	weights := info.TopFeatures(topFeatures)
	chart.Render(vc, "feature-importance-chart", chart.FeatureImportance(weights, topFeatures))

	if info.ModelType != "" {
		setText(vc, "model-type", info.ModelType)
	}
	if info.ModelVersion != "" {
		setText(vc, "model-version", "Version "+info.ModelVersion)
	}
	if params, err := json.MarshalIndent(info.Parameters, "", "  "); err == nil {
		setText(vc, "model-params", string(params))
	}
	if el := vc.ByID("model-explanation"); el != nil {
		if md, err := explanation(info, weights); err == nil {
			_ = el.SetInnerHTML(markdown.ToHTML(md))
		}
	}

	if len(comparison) > 0 {
		if body := vc.ByID("model-comparison-body"); body != nil {
			markup, err := execute("comparison-rows", comparison)
			if err != nil {
				return err
			}
			_ = body.SetInnerHTML(markup)
		}
		labels := make([]string, len(comparison))
		r2 := make([]float64, len(comparison))
		for i, m := range comparison {
			labels[i] = m.Model
			r2[i] = m.R2
		}
		if !vc.Stale() {
			chart.Render(vc, "model-comparison-chart", chart.NewBar("Model Comparison", "R²", labels, r2))
		}
	}
	return nil
}

func explanation(info *housing.ModelInfo, weights []housing.FeatureWeight) (string, error) {
	top := weights
	if len(top) > 3 {
		top = top[:3]
	}
	modelType := info.ModelType
	if modelType == "" {
		modelType = "gradient boosting model"
	}
	var buf bytes.Buffer
	err := explanationTemplate.Execute(&buf, struct {
		Type    string
		Version string
		Top     []housing.FeatureWeight
	}{modelType, info.ModelVersion, top})
	return buf.String(), err
}

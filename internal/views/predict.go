package views

import (
	"context"
	"html/template"
	"sync"

	"pricedash/domain/housing"
	"pricedash/internal/form"
	"pricedash/internal/view"
)

// Predict hosts the multi-step prediction form.
type Predict struct {
	deps Deps

	mu      sync.Mutex
	pending string
}

func (v *Predict) ID() string       { return "predict" }
func (v *Predict) Title() string    { return "AI Price Prediction" }
func (v *Predict) Subtitle() string { return "Enter property parameters to get an instant valuation." }

func (v *Predict) Render() (template.HTML, error) {
	return v.deps.Form.Schema().Render()
}

// Preselect remembers a neighborhood to select once the form is initialised.
func (v *Predict) Preselect(neighborhood string) {
	v.mu.Lock()
	v.pending = neighborhood
	v.mu.Unlock()
}

func (v *Predict) takePending() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.pending
	v.pending = ""
	return p
}

// Init attaches the form controller, then replaces the hidden field defaults
// with the backend's typical values. When those cannot be fetched the schema
// defaults stay in place.
func (v *Predict) Init(ctx context.Context, vc *view.Context) error {
	if vc.Stale() {
		return nil
	}
	if err := v.deps.Form.Attach(); err != nil {
		return err
	}

	defaults, err := v.deps.API.Defaults(ctx)
	switch {
	case err != nil && (cancelled(err) || vc.Stale()):
		return nil
	case err != nil:
		vc.Logger.Warn("[Predict] Using built-in defaults, backend defaults unavailable: %v", err)
	case !vc.Stale():
		n := v.deps.Form.ApplyDefaults(hiddenOnly(v.deps.Form.Schema(), defaults))
		vc.Logger.Debug("[Predict] Applied %d backend defaults", n)
	}

	if name := v.takePending(); name != "" && !vc.Stale() {
		v.deps.Form.SetNeighborhood(name)
	}
	return nil
}

func hiddenOnly(schema *form.Schema, values housing.Features) housing.Features {
	out := make(housing.Features, len(values))
	for name, val := range values {
		if f, ok := schema.Field(name); ok && f.Hidden() {
			out[name] = val
		}
	}
	return out
}

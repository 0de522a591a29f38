// Package views holds the dashboard pages: overview, predict, analytics and model.
package views

import (
	"bytes"
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"html"
	"html/template"
	"strings"

	"pricedash/internal"
	"pricedash/internal/errors"
	"pricedash/internal/export"
	"pricedash/internal/form"
	"pricedash/internal/format"
	"pricedash/internal/view"
	"pricedash/ports"
)

//go:embed templates
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"currency": format.Currency,
	"number":   format.Number,
	"lower":    strings.ToLower,
}).ParseFS(templateFS, "templates/*.html"))

// Deps are the collaborators shared by the views of one session.
type Deps struct {
	API              ports.HousePriceAPI
	Form             *form.Controller
	DistributionBins int
	Logger           *internal.Logger
}

// Set is the views of one session, registered in a router registry.
type Set struct {
	Registry  *view.Registry
	Overview  *Overview
	Predict   *Predict
	Analytics *Analytics
	Model     *Model
}

// New builds the four views and their registry.
func New(d Deps) (*Set, error) {
	if d.Logger == nil {
		d.Logger = internal.DefaultLogger
	}
	if d.DistributionBins <= 0 {
		d.DistributionBins = 20
	}
	s := &Set{
		Overview:  &Overview{deps: d},
		Predict:   &Predict{deps: d},
		Analytics: &Analytics{deps: d},
		Model:     &Model{deps: d},
	}
	reg, err := view.NewRegistry(s.Overview, s.Predict, s.Analytics, s.Model)
	if err != nil {
		return nil, err
	}
	s.Registry = reg
	return s, nil
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderPage(name string, data interface{}) (template.HTML, error) {
	out, err := execute(name, data)
	return template.HTML(out), err
}

// showError replaces a container's content with a load error.
func showError(vc *view.Context, containerID string, err error) {
	el := vc.ByID(containerID)
	if el == nil {
		return
	}
	_ = el.SetInnerHTML(`<div class="load-error" role="alert"><p class="load-error-title">Erreur de chargement</p><p class="load-error-detail">` +
		html.EscapeString(errors.UserMessage(err)) + `</p></div>`)
}

// setText writes text into an element when the navigation is still current.
func setText(vc *view.Context, id, text string) {
	if el := vc.ByID(id); el != nil {
		el.SetText(text)
	}
}

func cancelled(err error) bool {
	return stderrors.Is(err, context.Canceled)
}

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON, export.FormatXLSX}

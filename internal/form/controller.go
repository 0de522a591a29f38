package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"pricedash/domain/core"
	"pricedash/domain/housing"
	"pricedash/internal"
	"pricedash/internal/dom"
	"pricedash/internal/errors"
	"pricedash/internal/format"
	"pricedash/ports"
)

// Element ids the controller drives.
const (
	FormID           = "prediction-form"
	DescriptionID    = "property-description"
	ProgressID       = "form-progress"
	PrevID           = "prev-step"
	NextID           = "next-step"
	SubmitID         = "submit-prediction"
	ResultID         = "prediction-result"
	PriceID          = "estimated-price"
	ModelVersionID   = "prediction-model-version"
	stepPrefix       = "form-step-"
	indicatorPrefix  = "step-indicator-"
	successMessage   = "Prédiction générée avec succès!"
	errorPrefix      = "Erreur: "
	neighborhoodName = "Neighborhood"
)

// Notifier shows user-facing toasts.
type Notifier interface {
	Success(message string) string
	Error(message string) string
}

// Controller manages one prediction form inside a document.
type Controller struct {
	doc    *dom.Document
	schema *Schema
	api    ports.HousePriceAPI
	notify Notifier
	logger *internal.Logger

	mu      sync.Mutex
	step    int
	initial map[string]string
	// gen counts Attach calls; busyGen is the generation of the submit in
	// flight, zero when none is.
	gen     uint64
	busyGen uint64
}

// NewController creates a controller. Attach must be called once the form is in the document.
func NewController(doc *dom.Document, schema *Schema, api ports.HousePriceAPI, notify Notifier, logger *internal.Logger) *Controller {
	if schema == nil {
		schema = DefaultSchema()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Controller{doc: doc, schema: schema, api: api, notify: notify, logger: logger, step: 1, gen: 1}
}

// Schema returns the field table in use.
func (c *Controller) Schema() *Schema { return c.schema }

// Attach binds the controller to a freshly rendered form: field values are
// captured for Reset and the first step is shown.
func (c *Controller) Attach() error {
	form := c.doc.ByID(FormID)
	if form == nil {
		return core.NewMissingElementError(FormID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.initial = form.FieldValues()
	c.step = 1
	c.applyStep()
	return nil
}

// current reports whether no Attach has happened since generation gen.
func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// begin claims the submit slot for the attached form.
func (c *Controller) begin() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busyGen != 0 && c.busyGen == c.gen {
		return 0, false
	}
	c.busyGen = c.gen
	return c.gen, true
}

// byID looks up an element only while generation gen is still attached.
func (c *Controller) byID(gen uint64, id string) *dom.Element {
	if !c.current(gen) {
		return nil
	}
	return c.doc.ByID(id)
}

func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	if c.busyGen == gen {
		c.busyGen = 0
	}
	c.mu.Unlock()
}

// Step returns the current 1-based step.
func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// TotalSteps returns the number of steps.
func (c *Controller) TotalSteps() int { return c.schema.TotalSteps() }

// Progress is current/total.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.step) / float64(c.schema.TotalSteps())
}

// Advance moves one step forward (direction > 0) or back (direction < 0),
// staying within the form. It returns the new step.
func (c *Controller) Advance(direction int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case direction > 0 && c.step < c.schema.TotalSteps():
		c.step++
	case direction < 0 && c.step > 1:
		c.step--
	}
	c.applyStep()
	return c.step
}

// GoTo jumps to a step, clamped to the form.
func (c *Controller) GoTo(step int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = clamp(step, 1, c.schema.TotalSteps())
	c.applyStep()
	return c.step
}

// applyStep mirrors the step state into the document. Caller holds c.mu.
func (c *Controller) applyStep() {
	total := c.schema.TotalSteps()
	for i := 1; i <= total; i++ {
		if el := c.doc.ByID(stepPrefix + strconv.Itoa(i)); el != nil {
			el.SetHidden(i != c.step)
		}
		if el := c.doc.ByID(indicatorPrefix + strconv.Itoa(i)); el != nil {
			el.ToggleClass("active", i == c.step)
		}
	}
	if el := c.doc.ByID(ProgressID); el != nil {
		el.SetStyle("width", strconv.FormatFloat(float64(c.step)*100/float64(total), 'f', 0, 64)+"%")
	}
	if el := c.doc.ByID(PrevID); el != nil {
		el.SetHidden(c.step == 1)
	}
	if el := c.doc.ByID(NextID); el != nil {
		el.SetHidden(c.step == total)
	}
	if el := c.doc.ByID(SubmitID); el != nil {
		el.SetHidden(c.step < total)
	}
}

// Sync copies values posted by the browser into the document form.
// Unknown names and unchanged values are skipped.
func (c *Controller) Sync(values map[string]string) {
	form := c.doc.ByID(FormID)
	if form == nil {
		return
	}
	current := form.FieldValues()
	for name, v := range values {
		if old, ok := current[name]; ok && old != v {
			form.SetFieldValue(name, v)
		}
	}
}

// Request builds the prediction request from the form: every named field,
// schema defaults for the missing ones, then coercion.
func (c *Controller) Request() (housing.Features, error) {
	form := c.doc.ByID(FormID)
	if form == nil {
		return nil, core.NewMissingElementError(FormID)
	}
	return c.schema.Build(form.FieldValues()), nil
}

// Submit sends the form to the prediction backend and shows the result.
// The submit control is disabled while the request is in flight. When the
// form is re-attached before the answer arrives, the answer is discarded and
// core.ErrStaleEpoch is returned.
func (c *Controller) Submit(ctx context.Context) (float64, error) {
	gen, ok := c.begin()
	if !ok {
		err := errors.InvalidInput("a prediction is already in progress")
		c.toastError(err)
		return 0, err
	}
	defer c.finish(gen)

	payload, err := c.Request()
	if err != nil {
		return 0, err
	}

	if btn := c.byID(gen, SubmitID); btn != nil {
		btn.SetDisabled(true)
		defer btn.SetDisabled(false)
	}

	c.logger.Debug("[Form] Sending prediction payload with %d fields", len(payload))
	result, err := c.api.Predict(ctx, payload)
	var price float64
	if err == nil {
		price, err = result.PredictedPrice()
	}
	if !c.current(gen) {
		c.logger.Debug("[Form] Dropping prediction for a replaced form")
		return 0, core.ErrStaleEpoch
	}
	if err != nil {
		c.logger.Warn("[Form] Prediction failed: %v", err)
		c.toastError(err)
		return 0, err
	}

	if el := c.byID(gen, PriceID); el != nil {
		el.SetText(format.Currency(price))
	}
	if el := c.byID(gen, ModelVersionID); el != nil {
		if v := result.ModelVersion(); v != "" {
			el.SetText("Model " + v)
		}
	}
	if el := c.byID(gen, ResultID); el != nil {
		el.SetHidden(false)
		el.ScrollIntoView()
	}
	if c.notify != nil && c.current(gen) {
		c.notify.Success(successMessage)
	}
	return price, nil
}

// Reset restores the values captured by Attach, returns to step 1 and hides the result.
func (c *Controller) Reset() {
	form := c.doc.ByID(FormID)
	if form == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	current := form.FieldValues()
	for name, v := range c.initial {
		if current[name] != v {
			form.SetFieldValue(name, v)
		}
	}
	c.step = 1
	c.applyStep()
	if el := c.doc.ByID(ResultID); el != nil {
		el.SetHidden(true)
	}
}

// ApplyValues writes backend values into matching form fields and returns
// the names written. Fields outside the schema are ignored.
func (c *Controller) ApplyValues(values housing.Features) []string {
	form := c.doc.ByID(FormID)
	if form == nil {
		return nil
	}
	var applied []string
	for name, v := range values {
		if _, ok := c.schema.Field(name); !ok {
			continue
		}
		if v == nil {
			continue
		}
		if form.SetFieldValue(name, FormatValue(v)) {
			applied = append(applied, name)
		}
	}
	return applied
}

// ApplyDefaults replaces the captured reset values with backend defaults.
func (c *Controller) ApplyDefaults(defaults housing.Features) int {
	applied := c.ApplyValues(defaults)
	if form := c.doc.ByID(FormID); form != nil {
		c.mu.Lock()
		c.initial = form.FieldValues()
		c.mu.Unlock()
	}
	return len(applied)
}

// Prefill asks the backend to extract fields from a free-text description
// and writes them into the form.
func (c *Controller) Prefill(ctx context.Context, description string) ([]string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.InvalidInput("description is empty")
	}
	fields, err := c.api.ParseDescription(ctx, description)
	if err != nil {
		c.logger.Warn("[Form] Description parsing failed: %v", err)
		c.toastError(err)
		return nil, err
	}
	applied := c.ApplyValues(fields)
	if c.notify != nil {
		c.notify.Success(fmt.Sprintf("%d champs extraits de la description", len(applied)))
	}
	return applied, nil
}

// SetNeighborhood selects a neighborhood and shows the step holding it.
func (c *Controller) SetNeighborhood(name string) bool {
	form := c.doc.ByID(FormID)
	if form == nil || !form.SetFieldValue(neighborhoodName, name) {
		return false
	}
	if f, ok := c.schema.Field(neighborhoodName); ok && !f.Hidden() {
		c.GoTo(f.Step)
	}
	return true
}

func (c *Controller) toastError(err error) {
	if c.notify != nil {
		c.notify.Error(errorPrefix + errors.UserMessage(err))
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package form drives the multi-step prediction form: its field schema,
// raw value coercion, step navigation and submission.
package form

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"pricedash/internal/errors"
)

//go:embed schema.yaml
var schemaYAML []byte

// Kind is the target type of a field.
type Kind string

const (
	Integer Kind = "integer"
	Float   Kind = "float"
	String  Kind = "string"
)

// Option is one choice of a select field.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Text is the visible option text.
func (o Option) Text() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// Field declares one request field.
type Field struct {
	Name     string   `yaml:"name"`
	Kind     Kind     `yaml:"kind"`
	Optional bool     `yaml:"optional"`
	Required bool     `yaml:"required"`
	Default  string   `yaml:"default"`
	Step     int      `yaml:"step"` // 0 means hidden
	Label    string   `yaml:"label"`
	Options  []Option `yaml:"options"`
}

// Hidden reports whether the field is submitted as a hidden input.
func (f Field) Hidden() bool { return f.Step == 0 }

// InputType is the HTML input type used for the field.
func (f Field) InputType() string {
	if f.Hidden() {
		return "hidden"
	}
	if f.Kind == Integer || f.Kind == Float {
		return "number"
	}
	return "text"
}

// Step is one page of the form.
type Step struct {
	Title string `yaml:"title"`
}

// Schema is the declarative field table.
type Schema struct {
	Steps  []Step  `yaml:"steps"`
	Fields []Field `yaml:"fields"`

	index map[string]int
}

// LoadSchema parses and validates a YAML schema.
func LoadSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to parse form schema")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) validate() error {
	if len(s.Steps) == 0 {
		return errors.ValidationError("form schema needs at least one step")
	}
	s.index = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return errors.ValidationError(fmt.Sprintf("form field %d has no name", i))
		}
		if _, dup := s.index[f.Name]; dup {
			return errors.ValidationError("duplicate form field: " + f.Name)
		}
		switch f.Kind {
		case Integer, Float, String:
		default:
			return errors.ValidationError(fmt.Sprintf("form field %s has unknown kind %q", f.Name, f.Kind))
		}
		if f.Step < 0 || f.Step > len(s.Steps) {
			return errors.ValidationError(fmt.Sprintf("form field %s is on step %d of %d", f.Name, f.Step, len(s.Steps)))
		}
		s.index[f.Name] = i
	}
	return nil
}

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// DefaultSchema returns the embedded prediction form schema.
func DefaultSchema() *Schema {
	defaultOnce.Do(func() {
		s, err := LoadSchema(schemaYAML)
		if err != nil {
			panic(err)
		}
		defaultSchema = s
	})
	return defaultSchema
}

// TotalSteps is the number of visible steps.
func (s *Schema) TotalSteps() int { return len(s.Steps) }

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// StepFields returns the fields shown on a step; step 0 returns the hidden ones.
func (s *Schema) StepFields(step int) []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Step == step {
			out = append(out, f)
		}
	}
	return out
}

// Defaults returns the raw default of every field. Optional fields without a
// default map to "" so they coerce to null.
func (s *Schema) Defaults() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Default
	}
	return out
}

package form

import (
	"bytes"
	_ "embed"
	"html/template"
)

//go:embed form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

type stepData struct {
	Number int
	Title  string
	Fields []Field
}

type formData struct {
	Steps  []stepData
	Hidden []Field
}

// Render produces the markup of the prediction form, the description
// prefill box and the result panel.
func (s *Schema) Render() (template.HTML, error) {
	data := formData{Hidden: s.StepFields(0)}
	for i, st := range s.Steps {
		data.Steps = append(data.Steps, stepData{Number: i + 1, Title: st.Title, Fields: s.StepFields(i + 1)})
	}
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

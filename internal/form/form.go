package form

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Field types that carry a fixed choice for the user.
const (
	TypeRadio    = "radio"
	TypeCheckbox = "checkbox"
	TypeSelect   = "select"
	TypeTextarea = "textarea"
	TypeFile     = "file"
)

// Option is one choice of a select or radio group.
type Option struct {
	Value string `json:"value" mapstructure:"value"`
	Text  string `json:"text" mapstructure:"text"`
}

// Field describes a form control found by the page scanner.
type Field struct {
	Type        string   `json:"type" mapstructure:"type"`
	Selector    string   `json:"selector,omitempty" mapstructure:"selector"`
	Label       string   `json:"label" mapstructure:"label"`
	Name        string   `json:"name" mapstructure:"name"`
	Placeholder string   `json:"placeholder,omitempty" mapstructure:"placeholder"`
	Required    bool     `json:"required" mapstructure:"required"`
	InputType   string   `json:"inputType,omitempty" mapstructure:"inputType"`
	MaxLength   int      `json:"maxLength,omitempty" mapstructure:"maxLength"`
	Options     []Option `json:"options,omitempty" mapstructure:"options"`
}

// IsChoice reports whether the field is answered by ticking rather than typing.
func (f Field) IsChoice() bool {
	t := strings.ToLower(f.Type)
	return t == TypeRadio || t == TypeCheckbox
}

// DisplayName is the label, falling back to the control name.
func (f Field) DisplayName() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return strings.TrimSpace(f.Name)
}

// IsResumeUpload reports whether the field asks for a resume file.
func (f Field) IsResumeUpload() bool {
	if strings.ToLower(f.Type) != TypeFile {
		return false
	}
	text := strings.ToLower(f.Label + " " + f.Name + " " + f.Placeholder)
	return strings.Contains(text, "resume") || strings.Contains(text, "cv") || strings.Contains(text, "curriculum")
}

// Job is the context extracted from a job posting page.
type Job struct {
	URL         string `json:"url" mapstructure:"url"`
	Title       string `json:"title,omitempty" mapstructure:"title"`
	JobTitle    string `json:"jobTitle" mapstructure:"jobTitle"`
	Company     string `json:"company" mapstructure:"company"`
	Description string `json:"description" mapstructure:"description"`
	Location    string `json:"location,omitempty" mapstructure:"location"`
	JobType     string `json:"jobType,omitempty" mapstructure:"jobType"`
	WorkModel   string `json:"workModel,omitempty" mapstructure:"workModel"`
}

// Form is one form found on a page.
type Form struct {
	Fields []Field `json:"fields" mapstructure:"fields"`
}

// Page is the result of scanning one page for application forms.
type Page struct {
	URL   string `json:"url" mapstructure:"url"`
	Title string `json:"title" mapstructure:"title"`
	Forms []Form `json:"forms" mapstructure:"forms"`
}

// FieldCount is the number of fields across all forms.
func (p Page) FieldCount() int {
	n := 0
	for _, f := range p.Forms {
		n += len(f.Fields)
	}
	return n
}

// DecodeField converts a loosely typed payload (numbers as strings, "true" flags) into a Field.
func DecodeField(raw map[string]any) (Field, error) {
	var field Field
	if err := decode(raw, &field); err != nil {
		return Field{}, fmt.Errorf("decode field: %w", err)
	}
	return field, nil
}

// DecodeJob converts a loosely typed payload into a Job.
func DecodeJob(raw map[string]any) (Job, error) {
	var job Job
	if err := decode(raw, &job); err != nil {
		return Job{}, fmt.Errorf("decode job context: %w", err)
	}
	return job, nil
}

// DecodePage converts a loosely typed form scan into a Page.
func DecodePage(raw map[string]any) (Page, error) {
	var page Page
	if err := decode(raw, &page); err != nil {
		return Page{}, fmt.Errorf("decode form scan: %w", err)
	}
	return page, nil
}

func decode(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

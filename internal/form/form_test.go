package form

import (
	"testing"
)

func TestDecodeFieldWeakTypes(t *testing.T) {
	t.Parallel()

	field, err := DecodeField(map[string]any{
		"type":      "textarea",
		"label":     "Why do you want to work here?",
		"name":      "cover",
		"required":  "true",
		"maxLength": "350",
		"options":   []any{map[string]any{"value": "y", "text": "Yes"}},
		"unknown":   "ignored",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !field.Required || field.MaxLength != 350 {
		t.Fatalf("weak typing not applied: %+v", field)
	}
	if len(field.Options) != 1 || field.Options[0].Text != "Yes" {
		t.Fatalf("unexpected options %+v", field.Options)
	}
}

func TestDecodeJob(t *testing.T) {
	t.Parallel()

	job, err := DecodeJob(map[string]any{
		"url":       "https://jobs.example.com/42",
		"jobTitle":  "Platform Engineer",
		"company":   "Acme",
		"workModel": "Remote",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.JobTitle != "Platform Engineer" || job.WorkModel != "Remote" {
		t.Fatalf("unexpected job %+v", job)
	}

	if _, err := DecodeJob(map[string]any{"url": map[string]any{"href": "x"}}); err == nil {
		t.Fatalf("expected error for object url")
	}
}

func TestFieldHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   Field
		choice  bool
		display string
		resume  bool
	}{
		{name: "radio", field: Field{Type: "Radio", Name: "veteran"}, choice: true, display: "veteran"},
		{name: "text", field: Field{Type: "text", Label: " Email ", Name: "email"}, display: "Email"},
		{name: "resume upload", field: Field{Type: "file", Label: "Upload your CV"}, display: "Upload your CV", resume: true},
		{name: "cover letter upload", field: Field{Type: "file", Label: "Cover letter"}, display: "Cover letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.field.IsChoice(); got != tt.choice {
				t.Fatalf("IsChoice = %v", got)
			}
			if got := tt.field.DisplayName(); got != tt.display {
				t.Fatalf("DisplayName = %q", got)
			}
			if got := tt.field.IsResumeUpload(); got != tt.resume {
				t.Fatalf("IsResumeUpload = %v", got)
			}
		})
	}
}

func TestDecodePage(t *testing.T) {
	t.Parallel()

	page, err := DecodePage(map[string]any{
		"url":   "https://jobs.example.com/apply",
		"title": "Apply",
		"forms": []any{
			map[string]any{"fields": []any{
				map[string]any{"type": "email", "label": "Email", "required": "true"},
				map[string]any{"type": "file", "label": "Resume", "maxLength": "0"},
			}},
			map[string]any{"fields": []any{
				map[string]any{"type": "text", "name": "city"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.FieldCount() != 3 {
		t.Fatalf("FieldCount = %d", page.FieldCount())
	}
	if !page.Forms[0].Fields[0].Required {
		t.Fatalf("expected weakly typed required flag")
	}

	if _, err := DecodePage(map[string]any{"forms": "none"}); err == nil {
		t.Fatalf("expected error for string forms")
	}
}

// Package recommend suggests values for form fields found on an application page.
package recommend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/profile"
	"github.com/spigell/jobapply/internal/resolver"
)

// Categories of a recommendation. The model may return others.
const (
	CategoryResume   = "resume"
	CategoryLearned  = "learned"
	CategoryEmail    = "email"
	CategoryPhone    = "phone"
	CategoryName     = "name"
	CategoryLinkedIn = "linkedin"
	CategoryUnknown  = "unknown"
)

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// Recommendation is what the extension shows next to a field.
type Recommendation struct {
	Category       string              `json:"category"`
	SuggestedValue *string             `json:"suggestedValue"`
	Confidence     resolver.Confidence `json:"confidence"`
	Reasoning      string              `json:"reasoning"`
}

func valueOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Resume is the recommendation for a resume upload field.
func Resume(available bool) Recommendation {
	if available {
		value := "Resume ready to upload"
		return Recommendation{
			Category:       CategoryResume,
			SuggestedValue: &value,
			Confidence:     resolver.High,
			Reasoning:      "Resume available in storage",
		}
	}
	return Recommendation{Category: CategoryResume, Confidence: resolver.Low, Reasoning: "No resume uploaded yet"}
}

// Learned is the recommendation for a field the user filled before.
func Learned(value string) Recommendation {
	return Recommendation{
		Category:       CategoryLearned,
		SuggestedValue: &value,
		Confidence:     resolver.High,
		Reasoning:      "Based on your previous input",
	}
}

type rule struct {
	category   string
	keywords   []string
	inputType  string
	value      func(profile.Profile) string
	reasonText string
}

// rules are checked in order; the first one whose keyword or input type matches wins.
var rules = []rule{
	{CategoryEmail, []string{"email"}, "email", func(p profile.Profile) string { return p.Email }, "Email field detected"},
	{CategoryPhone, []string{"phone"}, "tel", func(p profile.Profile) string { return p.Phone }, "Phone field detected"},
	{CategoryName, []string{"name"}, "", func(p profile.Profile) string { return p.FullName }, "Name field detected"},
	{CategoryLinkedIn, []string{"linkedin", "profile url"}, "", func(p profile.Profile) string { return p.LinkedIn }, "LinkedIn field detected"},
}

// RuleBased recognises common contact fields by their text and fills them from p.
func RuleBased(field form.Field, p profile.Profile) Recommendation {
	text := strings.ToLower(field.Label + " " + field.Placeholder + " " + field.Name)
	inputType := strings.ToLower(field.InputType)

	for _, r := range rules {
		matched := r.inputType != "" && inputType == r.inputType
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		rec := Recommendation{Category: r.category, SuggestedValue: valueOrNil(r.value(p)), Reasoning: r.reasonText}
		rec.Confidence = resolver.Low
		if rec.SuggestedValue != nil {
			rec.Confidence = resolver.High
		}
		return rec
	}

	return Recommendation{Category: CategoryUnknown, Confidence: resolver.Low, Reasoning: "Could not determine field type"}
}

// Unparsed is returned when the model reply holds no usable JSON object.
func Unparsed() Recommendation {
	return Recommendation{Category: CategoryUnknown, Confidence: resolver.Low, Reasoning: "Failed to parse AI response"}
}

// Parse extracts the JSON object from a model reply. Anything unusable yields Unparsed.
func Parse(reply string) Recommendation {
	raw := jsonObject.FindString(reply)
	if raw == "" {
		return Unparsed()
	}

	var parsed struct {
		Category       string `json:"category"`
		SuggestedValue any    `json:"suggestedValue"`
		Confidence     string `json:"confidence"`
		Reasoning      string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Unparsed()
	}

	rec := Recommendation{
		Category:   strings.ToLower(strings.TrimSpace(parsed.Category)),
		Confidence: confidence(parsed.Confidence),
		Reasoning:  strings.TrimSpace(parsed.Reasoning),
	}
	if rec.Category == "" {
		rec.Category = CategoryUnknown
	}

	switch v := parsed.SuggestedValue.(type) {
	case nil:
	case string:
		if !strings.EqualFold(strings.TrimSpace(v), "null") {
			rec.SuggestedValue = valueOrNil(v)
		}
	default:
		rec.SuggestedValue = valueOrNil(fmt.Sprint(v))
	}

	return rec
}

func confidence(s string) resolver.Confidence {
	switch c := resolver.Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case resolver.High, resolver.Medium, resolver.Low:
		return c
	default:
		return resolver.Low
	}
}

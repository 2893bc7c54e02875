package profile

import (
	"testing"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	p := Profile{
		FullName:  "Alex Stephens",
		FirstName: "Alex",
		Email:     "a@b.com",
		Phone:     "555-123-4567",
		Location:  "Austin, TX",
		LinkedIn:  "https://linkedin.com/in/astephens",
	}
	prefs := DefaultPreferences(p)

	tests := []struct {
		question string
		keyword  string
		value    string
	}{
		{question: "What is your email?", keyword: "email", value: "a@b.com"},
		{question: "Legal Name", keyword: "legal name", value: "Alex Stephens"},
		{question: "First name", keyword: "name", value: "Alex Stephens"},
		{question: "Are you a protected veteran?", keyword: "veteran", value: "Not a Veteran"},
		{question: "Will you now or in the future require visa sponsorship?", keyword: "sponsorship", value: "No"},
		{question: "Are you legally authorized to work in the US?", keyword: "authorized to work", value: "US Citizen"},
		{question: "Which city do you live in?", keyword: "city", value: "Austin"},
		{question: "LinkedIn profile URL", keyword: "linkedin", value: "https://linkedin.com/in/astephens"},
		{question: "Are you willing to travel?", keyword: "travel", value: "Occasionally"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			t.Parallel()

			m, ok := Match(tt.question, p, prefs)
			if !ok {
				t.Fatalf("expected a match")
			}
			if m.Keyword != tt.keyword || m.Value != tt.value {
				t.Fatalf("expected %q=%q, got %q=%q", tt.keyword, tt.value, m.Keyword, m.Value)
			}
		})
	}
}

func TestMatchSkipsEmptyValues(t *testing.T) {
	t.Parallel()

	// salary keyword matches but expectation is blank, so nothing answers it
	if m, ok := Match("Desired salary", Profile{}, DefaultPreferences(Profile{})); ok {
		t.Fatalf("unexpected match %+v", m)
	}

	m, ok := Match("Start date or notice period", Profile{}, Preferences{NoticePeriod: "1 month"})
	if !ok || m.Keyword != "notice period" {
		t.Fatalf("expected notice period match, got %+v %v", m, ok)
	}
}

func TestMappingsOrderIsStable(t *testing.T) {
	t.Parallel()

	first := Mappings(Profile{}, Preferences{})
	second := Mappings(Profile{}, Preferences{})
	if len(first) != len(second) {
		t.Fatalf("mapping length changed")
	}
	for i := range first {
		if first[i].Keyword != second[i].Keyword {
			t.Fatalf("mapping order changed at %d", i)
		}
	}
	if first[0].Keyword != "legal name" || first[len(first)-1].Keyword != "linkedin" {
		t.Fatalf("unexpected bounds %q..%q", first[0].Keyword, first[len(first)-1].Keyword)
	}
}

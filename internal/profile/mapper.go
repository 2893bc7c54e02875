package profile

import (
	"strings"
)

// Mapping binds a question keyword to the profile value that answers it.
type Mapping struct {
	Keyword string
	Value   string
}

// Mappings lists keyword bindings in priority order. Broad keywords such as "name"
// deliberately precede narrower ones, so "first name" resolves to the full name.
func Mappings(p Profile, prefs Preferences) []Mapping {
	return []Mapping{
		{"legal name", p.FullName},
		{"name", p.FullName},
		{"veteran", prefs.VeteranStatus},
		{"military", prefs.VeteranStatus},
		{"disability", prefs.DisabilityStatus},
		{"disabled", prefs.DisabilityStatus},
		{"security clearance", prefs.SecurityClearance},
		{"clearance", prefs.SecurityClearance},
		{"sponsorship", prefs.RequiresSponsorship},
		{"visa", prefs.RequiresSponsorship},
		{"work authorization", prefs.WorkAuthorization},
		{"authorized to work", prefs.WorkAuthorization},
		{"notice period", prefs.NoticePeriod},
		{"available to start", prefs.AvailableStartDate},
		{"start date", prefs.AvailableStartDate},
		{"relocate", prefs.WillingToRelocate},
		{"relocation", prefs.WillingToRelocate},
		{"travel", prefs.WillingToTravel},
		{"salary", prefs.SalaryExpectation},
		{"compensation", prefs.SalaryExpectation},
		{"first name", p.FirstName},
		{"last name", p.LastName},
		{"full name", p.FullName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"address", p.Location},
		{"city", p.City()},
		{"linkedin", p.LinkedIn},
	}
}

// Match returns the first mapping whose keyword occurs in the lowercased question
// and whose value is set.
func Match(question string, p Profile, prefs Preferences) (Mapping, bool) {
	normalized := strings.ToLower(question)

	for _, m := range Mappings(p, prefs) {
		if m.Value == "" {
			continue
		}
		if strings.Contains(normalized, m.Keyword) {
			return m, true
		}
	}

	return Mapping{}, false
}

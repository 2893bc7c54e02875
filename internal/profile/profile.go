package profile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/jobapply/internal/kv"
)

// Profile holds the candidate's personal details.
type Profile struct {
	FullName        string   `json:"fullName" yaml:"fullName"`
	FirstName       string   `json:"firstName,omitempty" yaml:"firstName"`
	LastName        string   `json:"lastName,omitempty" yaml:"lastName"`
	Email           string   `json:"email" yaml:"email"`
	Phone           string   `json:"phone" yaml:"phone"`
	Location        string   `json:"location" yaml:"location"`
	LinkedIn        string   `json:"linkedin" yaml:"linkedin"`
	GitHub          string   `json:"github,omitempty" yaml:"github"`
	Website         string   `json:"website,omitempty" yaml:"website"`
	YearsExperience int      `json:"yearsExperience" yaml:"yearsExperience"`
	Skills          []string `json:"skills,omitempty" yaml:"skills"`
	Summary         string   `json:"summary,omitempty" yaml:"summary"`
}

// IsZero reports whether nothing identifying is set.
func (p Profile) IsZero() bool {
	return p.FullName == "" && p.Email == "" && p.Phone == ""
}

// City is the part of the location before the first comma.
func (p Profile) City() string {
	city, _, _ := strings.Cut(p.Location, ",")
	return strings.TrimSpace(city)
}

// Preferences are standing answers to common application questions.
type Preferences struct {
	JobType             string `json:"jobType" yaml:"jobType"`
	Location            string `json:"location" yaml:"location"`
	WorkAuthorization   string `json:"workAuthorization" yaml:"workAuthorization"`
	WillingToRelocate   string `json:"willingToRelocate" yaml:"willingToRelocate"`
	VeteranStatus       string `json:"veteranStatus" yaml:"veteranStatus"`
	DisabilityStatus    string `json:"disabilityStatus" yaml:"disabilityStatus"`
	SecurityClearance   string `json:"securityClearance" yaml:"securityClearance"`
	RequiresSponsorship string `json:"requiresSponsorship" yaml:"requiresSponsorship"`
	NoticePeriod        string `json:"noticePeriod" yaml:"noticePeriod"`
	SalaryExpectation   string `json:"salaryExpectation" yaml:"salaryExpectation"`
	AvailableStartDate  string `json:"availableStartDate" yaml:"availableStartDate"`
	WillingToTravel     string `json:"willingToTravel" yaml:"willingToTravel"`
}

// DefaultPreferences are applied when the user has not configured any.
func DefaultPreferences(p Profile) Preferences {
	location := p.Location
	if location == "" {
		location = "Remote"
	}

	return Preferences{
		JobType:             "Full Time",
		Location:            location,
		WorkAuthorization:   "US Citizen",
		WillingToRelocate:   "Yes",
		VeteranStatus:       "Not a Veteran",
		DisabilityStatus:    "No Disability",
		SecurityClearance:   "None",
		RequiresSponsorship: "No",
		NoticePeriod:        "2 weeks",
		WillingToTravel:     "Occasionally",
	}
}

// File is the on-disk profile document.
type File struct {
	Profile     Profile      `yaml:"profile"`
	Preferences *Preferences `yaml:"preferences"`
}

// LoadFile reads a YAML profile document. Missing preferences are defaulted.
func LoadFile(path string) (Profile, Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, Preferences{}, fmt.Errorf("read profile file: %w", err)
	}

	var doc File
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Profile{}, Preferences{}, fmt.Errorf("parse profile file %q: %w", path, err)
	}

	prefs := DefaultPreferences(doc.Profile)
	if doc.Preferences != nil {
		prefs = *doc.Preferences
	}

	return doc.Profile, prefs, nil
}

// Store keeps the profile and preferences in the key-value store.
type Store struct {
	store  kv.Store
	logger *zap.Logger
}

func NewStore(store kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{store: store, logger: logger}
}

// Load returns the stored profile and preferences; absent values are zero.
func (s *Store) Load(ctx context.Context) (Profile, Preferences) {
	var p Profile
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyUserProfile, &p); err != nil {
		s.logger.Warn("failed to read user profile", zap.Error(err))
	}

	var prefs Preferences
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyUserPreferences, &prefs); err != nil {
		s.logger.Warn("failed to read user preferences", zap.Error(err))
	}

	return p, prefs
}

// Save stores both documents.
func (s *Store) Save(ctx context.Context, p Profile, prefs Preferences) error {
	if err := kv.SetJSON(ctx, s.store, kv.KeyUserProfile, p); err != nil {
		return err
	}
	return kv.SetJSON(ctx, s.store, kv.KeyUserPreferences, prefs)
}

// Seed stores p and prefs only where nothing is stored yet.
func (s *Store) Seed(ctx context.Context, p Profile, prefs Preferences) {
	current, currentPrefs := s.Load(ctx)

	if current.IsZero() && !p.IsZero() {
		if err := kv.SetJSON(ctx, s.store, kv.KeyUserProfile, p); err != nil {
			s.logger.Warn("failed to seed user profile", zap.Error(err))
		}
	}

	if currentPrefs == (Preferences{}) {
		if err := kv.SetJSON(ctx, s.store, kv.KeyUserPreferences, prefs); err != nil {
			s.logger.Warn("failed to seed user preferences", zap.Error(err))
		}
	}
}

package learning

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/kv"
)

// MaxPatterns bounds the store; the oldest pattern by insertion is dropped first.
const MaxPatterns = 500

// Pattern is a value the user typed into a field.
type Pattern struct {
	FieldType        string    `json:"fieldType"`
	FieldLabel       string    `json:"fieldLabel"`
	FieldName        string    `json:"fieldName"`
	FieldPlaceholder string    `json:"fieldPlaceholder"`
	Value            string    `json:"value"`
	JobType          string    `json:"jobType"`
	Timestamp        time.Time `json:"timestamp"`
}

type Store struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func New(store kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Learn appends a pattern for field and drops the oldest ones above MaxPatterns.
func (s *Store) Learn(ctx context.Context, field form.Field, value string, job *form.Job) Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	pattern := Pattern{
		FieldType:        field.Type,
		FieldLabel:       field.Label,
		FieldName:        field.Name,
		FieldPlaceholder: field.Placeholder,
		Value:            value,
		Timestamp:        s.now(),
	}
	if job != nil {
		pattern.JobType = job.JobType
	}

	patterns := append(s.load(ctx), pattern)
	if over := len(patterns) - MaxPatterns; over > 0 {
		patterns = patterns[over:]
	}

	s.save(ctx, patterns)

	return pattern
}

// Find returns the first pattern whose label or name equals the field's, ignoring case.
func (s *Store) Find(ctx context.Context, field form.Field) (Pattern, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.load(ctx) {
		if sameNonEmpty(p.FieldLabel, field.Label) || sameNonEmpty(p.FieldName, field.Name) {
			return p, true
		}
	}

	return Pattern{}, false
}

// Similar returns up to n most recent patterns whose label or name contains the field's.
func (s *Store) Similar(ctx context.Context, field form.Field, n int) []Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Pattern
	for _, p := range s.load(ctx) {
		if containsNonEmpty(p.FieldLabel, field.Label) || containsNonEmpty(p.FieldName, field.Name) {
			matched = append(matched, p)
		}
	}

	if n > 0 && len(matched) > n {
		matched = matched[len(matched)-n:]
	}

	return matched
}

// All returns every pattern, oldest first.
func (s *Store) All(ctx context.Context) []Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) []Pattern {
	var patterns []Pattern
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyLearningData, &patterns); err != nil {
		s.logger.Warn("failed to read learned patterns, treating them as empty", zap.Error(err))
		return nil
	}
	return patterns
}

func (s *Store) save(ctx context.Context, patterns []Pattern) {
	if err := kv.SetJSON(ctx, s.store, kv.KeyLearningData, patterns); err != nil {
		s.logger.Warn("failed to persist learned patterns", zap.Error(err))
	}
}

func sameNonEmpty(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func containsNonEmpty(stored, query string) bool {
	return stored != "" && query != "" && strings.Contains(strings.ToLower(stored), strings.ToLower(query))
}

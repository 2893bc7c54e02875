package stats

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/kv"
)

// Counter names one of the usage counters shown in the extension popup.
type Counter string

const (
	FormsDetected    Counter = "formsDetected"
	FieldsAutofilled Counter = "fieldsAutofilled"
	PagesScanned     Counter = "pagesScanned"
)

type Stats struct {
	FormsDetected    int `json:"formsDetected"`
	FieldsAutofilled int `json:"fieldsAutofilled"`
	PagesScanned     int `json:"pagesScanned"`
}

type Store struct {
	store  kv.Store
	logger *zap.Logger
	mu     sync.Mutex
}

func New(store kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{store: store, logger: logger}
}

// ParseCounter validates a counter name.
func ParseCounter(name string) (Counter, error) {
	switch c := Counter(name); c {
	case FormsDetected, FieldsAutofilled, PagesScanned:
		return c, nil
	default:
		return "", fmt.Errorf("unknown counter %q", name)
	}
}

func (s *Store) Get(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Increment bumps c by one and returns the updated counters.
func (s *Store) Increment(ctx context.Context, c Counter) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load(ctx)
	switch c {
	case FormsDetected:
		st.FormsDetected++
	case FieldsAutofilled:
		st.FieldsAutofilled++
	case PagesScanned:
		st.PagesScanned++
	}

	if err := kv.SetJSON(ctx, s.store, kv.KeyStats, st); err != nil {
		s.logger.Warn("failed to persist stats", zap.Error(err))
	}

	return st
}

func (s *Store) load(ctx context.Context) Stats {
	var st Stats
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyStats, &st); err != nil {
		s.logger.Warn("failed to read stats", zap.Error(err))
		return Stats{}
	}
	return st
}

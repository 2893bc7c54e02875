package history

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/kv"
)

// MaxRecords bounds the history; the oldest records are dropped first.
const MaxRecords = 100

// Record is a job the user looked at, optionally applied to.
type Record struct {
	form.Job
	FitScore   *ai.FitResult `json:"fitScore,omitempty"`
	Applied    bool          `json:"applied"`
	AppliedAt  *time.Time    `json:"appliedAt"`
	LastViewed time.Time     `json:"lastViewed"`
	// SavedAt is set when the extension records a submitted application.
	SavedAt *time.Time `json:"date,omitempty"`
}

// Application is what the extension reports after a form was submitted.
type Application struct {
	Position string `json:"position"`
	Company  string `json:"company"`
	URL      string `json:"url"`
}

type History struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func New(store kv.Store, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Upsert records a view of job, keyed by URL. Applied state survives re-views.
func (h *History) Upsert(ctx context.Context, job form.Job, fit *ai.FitResult) Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := h.load(ctx)
	now := h.now()

	for i := range records {
		if records[i].URL != job.URL {
			continue
		}
		records[i].Job = job
		records[i].FitScore = fit
		records[i].LastViewed = now
		h.save(ctx, records)
		return records[i]
	}

	record := Record{Job: job, FitScore: fit, LastViewed: now}
	records = h.append(records, record)
	h.save(ctx, records)

	return record
}

// SaveApplication records a submitted application. A known URL keeps its fit score and
// takes the new position and company; an unknown one becomes a new record.
func (h *History) SaveApplication(ctx context.Context, app Application) Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := h.load(ctx)
	now := h.now()

	for i := range records {
		if records[i].URL != app.URL {
			continue
		}
		if app.Position != "" {
			records[i].JobTitle = app.Position
		}
		if app.Company != "" {
			records[i].Company = app.Company
		}
		records[i].SavedAt = &now
		h.save(ctx, records)
		return records[i]
	}

	record := Record{
		Job:        form.Job{URL: app.URL, JobTitle: app.Position, Company: app.Company},
		LastViewed: now,
		SavedAt:    &now,
	}
	records = h.append(records, record)
	h.save(ctx, records)

	return record
}

// MarkApplied flags the record for url. It reports false when the job was never seen.
func (h *History) MarkApplied(ctx context.Context, url string) (Record, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := h.load(ctx)
	for i := range records {
		if records[i].URL != url {
			continue
		}
		now := h.now()
		records[i].Applied = true
		records[i].AppliedAt = &now
		h.save(ctx, records)
		return records[i], true
	}

	return Record{}, false
}

// List returns the history in insertion order.
func (h *History) List(ctx context.Context) []Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.load(ctx)
}

func (h *History) append(records []Record, record Record) []Record {
	records = append(records, record)
	if over := len(records) - MaxRecords; over > 0 {
		records = records[over:]
	}
	return records
}

func (h *History) load(ctx context.Context) []Record {
	var records []Record
	if _, err := kv.GetJSON(ctx, h.store, kv.KeyApplicationHistory, &records); err != nil {
		h.logger.Warn("failed to read application history", zap.Error(err))
		return nil
	}
	return records
}

func (h *History) save(ctx context.Context, records []Record) {
	if err := kv.SetJSON(ctx, h.store, kv.KeyApplicationHistory, records); err != nil {
		h.logger.Warn("failed to persist application history", zap.Error(err))
	}
}

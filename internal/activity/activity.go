package activity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/kv"
)

// MaxEvents bounds the persisted feed.
const MaxEvents = 50

// Event types shown by the extension UI.
const (
	TypeSuccess      = "success"
	TypeError        = "error"
	TypeAnalyzing    = "analyzing"
	TypeWaiting      = "waiting"
	TypeUncertain    = "uncertain"
	TypeJobFound     = "job-found"
	TypeLearned      = "learned"
	TypeAIGenerating = "ai-generating"
	TypeAIComplete   = "ai-complete"
	TypeScanning     = "scanning"
	TypeResumeFound  = "resume-detected"
)

type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed persists events newest first and fans them out to live subscribers.
type Feed struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

func New(store kv.Store, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Feed{
		store:       store,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		subscribers: make(map[chan Event]struct{}),
	}
}

// Emit records an event. Slow subscribers miss events rather than block the caller.
func (f *Feed) Emit(ctx context.Context, eventType, message string) Event {
	event := Event{Type: eventType, Message: message, Timestamp: f.now()}

	f.mu.Lock()
	defer f.mu.Unlock()

	events := append([]Event{event}, f.load(ctx)...)
	if len(events) > MaxEvents {
		events = events[:MaxEvents]
	}

	if err := kv.SetJSON(ctx, f.store, kv.KeyActivityFeed, events); err != nil {
		f.logger.Warn("failed to persist activity feed", zap.Error(err))
	}

	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			f.logger.Debug("dropping activity event for slow subscriber", zap.String("type", eventType))
		}
	}

	f.logger.Info("activity", zap.String("type", eventType), zap.String("message", message))

	return event
}

// Recent returns up to n events, newest first. n <= 0 returns all of them.
func (f *Feed) Recent(ctx context.Context, n int) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	events := f.load(ctx)
	if n > 0 && len(events) > n {
		events = events[:n]
	}
	return events
}

// Subscribe registers a live listener. The returned func unsubscribes and closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *Feed) load(ctx context.Context) []Event {
	var events []Event
	if _, err := kv.GetJSON(ctx, f.store, kv.KeyActivityFeed, &events); err != nil {
		f.logger.Warn("failed to read activity feed", zap.Error(err))
		return nil
	}
	return events
}

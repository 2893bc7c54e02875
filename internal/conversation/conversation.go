package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/kv"
	"github.com/spigell/jobapply/internal/prompts"
)

// MaxTurns is how many messages after the system message are kept.
const MaxTurns = 20

// ErrNoSession is returned when a message is added without an active session.
var ErrNoSession = errors.New("no active conversation session")

// Session identifies the application a conversation belongs to.
type Session struct {
	ID        string    `json:"id,omitempty"`
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	StartedAt time.Time `json:"startedAt"`
	URL       string    `json:"url"`
}

// Summary is a snapshot of the conversation for status reporting.
type Summary struct {
	Current      *Session     `json:"current"`
	MessageCount int          `json:"messageCount"`
	Messages     []ai.Message `json:"messages"`
}

// Manager owns the single conversation. Every mutation is written through to the store;
// write failures are logged and do not fail the call. The mutex only protects the
// in-memory state: a caller that reads Messages, calls the model and then Adds the reply
// can still interleave with another caller doing the same.
type Manager struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	session  *Session
	messages []ai.Message
}

func New(store kv.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Restore loads a persisted conversation. Missing or unreadable state leaves no session.
// Messages are only restored together with their session and are cut back to the window.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	m.messages = nil

	var session Session
	found, err := kv.GetJSON(ctx, m.store, kv.KeyCurrentConversation, &session)
	if err != nil {
		m.logger.Warn("failed to restore conversation session", zap.Error(err))
	}

	var messages []ai.Message
	if _, err := kv.GetJSON(ctx, m.store, kv.KeyConversationHistory, &messages); err != nil {
		m.logger.Warn("failed to restore conversation history", zap.Error(err))
		messages = nil
	}

	switch {
	case !found && len(messages) == 0:
	case !found || len(messages) == 0 || messages[0].Role != ai.RoleSystem:
		m.logger.Warn("ignoring inconsistent conversation snapshot",
			zap.Bool("session", found),
			zap.Int("messages", len(messages)),
		)
	default:
		m.session = &session
		m.messages = window(messages)
	}

	m.logger.Debug("conversation restored",
		zap.Bool("active", m.session != nil),
		zap.Int("messages", len(m.messages)),
	)
}

// window keeps the system message plus the last MaxTurns messages.
func window(messages []ai.Message) []ai.Message {
	if len(messages) <= MaxTurns+1 {
		return messages
	}
	kept := make([]ai.Message, 0, MaxTurns+1)
	kept = append(kept, messages[0])
	return append(kept, messages[len(messages)-MaxTurns:]...)
}

// Start replaces any current conversation with a fresh one for job.
func (m *Manager) Start(ctx context.Context, job form.Job) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.logger.Info("discarding previous conversation",
			zap.String("job_title", m.session.JobTitle),
			zap.String("company", m.session.Company),
			zap.Int("messages", len(m.messages)),
		)
	}

	m.session = &Session{
		ID:        uuid.NewString(),
		JobTitle:  job.JobTitle,
		Company:   job.Company,
		StartedAt: m.now(),
		URL:       job.URL,
	}
	m.messages = []ai.Message{{Role: ai.RoleSystem, Content: prompts.System(job)}}

	m.logger.Info("started conversation",
		zap.String("session_id", m.session.ID),
		zap.String("job_title", job.JobTitle),
		zap.String("company", job.Company),
	)

	m.persistSession(ctx)
	m.persistMessages(ctx)

	return *m.session
}

// EnsureSession starts a conversation for job unless one is already active.
// It reports whether a new session was started.
func (m *Manager) EnsureSession(ctx context.Context, job form.Job) (Session, bool) {
	m.mu.Lock()
	if m.session != nil && len(m.messages) > 0 {
		s := *m.session
		m.mu.Unlock()
		return s, false
	}
	m.mu.Unlock()

	return m.Start(ctx, job), true
}

// Add appends a message and keeps the system message plus the last MaxTurns messages.
func (m *Manager) Add(ctx context.Context, role ai.Role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || len(m.messages) == 0 {
		return ErrNoSession
	}

	m.messages = window(append(m.messages, ai.Message{Role: role, Content: content}))

	m.logger.Debug("added conversation message",
		zap.String("role", string(role)),
		zap.Int("total", len(m.messages)),
	)

	m.persistMessages(ctx)

	return nil
}

// Clear ends the conversation.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.logger.Info("completed application conversation", zap.String("job_title", m.session.JobTitle))
	}

	m.session = nil
	m.messages = nil

	if err := kv.SetJSON(ctx, m.store, kv.KeyCurrentConversation, nil); err != nil {
		m.logger.Warn("failed to clear conversation session", zap.Error(err))
	}
	m.persistMessages(ctx)
}

// Messages returns a copy of the conversation.
func (m *Manager) Messages() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]ai.Message(nil), m.messages...)
}

// Active returns the current session, if any.
func (m *Manager) Active() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

func (m *Manager) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		MessageCount: len(m.messages),
		Messages:     append([]ai.Message{}, m.messages...),
	}
	if m.session != nil {
		current := *m.session
		s.Current = &current
	}
	return s
}

func (m *Manager) persistSession(ctx context.Context) {
	if err := kv.SetJSON(ctx, m.store, kv.KeyCurrentConversation, m.session); err != nil {
		m.logger.Warn("failed to persist conversation session", zap.Error(err))
	}
}

func (m *Manager) persistMessages(ctx context.Context) {
	messages := m.messages
	if messages == nil {
		messages = []ai.Message{}
	}
	if err := kv.SetJSON(ctx, m.store, kv.KeyConversationHistory, messages); err != nil {
		m.logger.Warn("failed to persist conversation history", zap.Error(err))
	}
}

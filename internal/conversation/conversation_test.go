package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/kv"
)

var testJob = form.Job{URL: "https://jobs.example.com/1", JobTitle: "Backend Engineer", Company: "Acme"}

func TestAddWithoutSession(t *testing.T) {
	m := New(kv.NewMemory(), zap.NewNop())

	err := m.Add(context.Background(), ai.RoleUser, "hello")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	m := New(kv.NewMemory(), zap.NewNop())
	m.Start(ctx, testJob)

	system := m.Messages()[0]

	for i := 1; i <= 22; i++ {
		require.NoError(t, m.Add(ctx, ai.RoleUser, fmt.Sprintf("message %d", i)))
		messages := m.Messages()
		require.LessOrEqual(t, len(messages), MaxTurns+1)
		require.Equal(t, ai.RoleSystem, messages[0].Role)
	}

	messages := m.Messages()
	require.Len(t, messages, 21)
	assert.Equal(t, system, messages[0])
	assert.Equal(t, "message 3", messages[1].Content)
	assert.Equal(t, "message 22", messages[20].Content)
}

func TestStartReplacesSession(t *testing.T) {
	ctx := context.Background()
	core, observed := observer.New(zapcore.InfoLevel)
	m := New(kv.NewMemory(), zap.New(core))

	first := m.Start(ctx, testJob)
	require.NoError(t, m.Add(ctx, ai.RoleUser, "question"))

	second := m.Start(ctx, form.Job{JobTitle: "SRE", Company: "Initech"})
	assert.NotEqual(t, first.ID, second.ID)

	messages := m.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Content, "application for SRE at Initech.")
	assert.Equal(t, 1, observed.FilterMessage("discarding previous conversation").Len())
}

func TestEnsureSessionKeepsActive(t *testing.T) {
	ctx := context.Background()
	m := New(kv.NewMemory(), zap.NewNop())

	started, isNew := m.EnsureSession(ctx, testJob)
	require.True(t, isNew)
	require.NoError(t, m.Add(ctx, ai.RoleUser, "question"))

	again, isNew := m.EnsureSession(ctx, form.Job{JobTitle: "Other"})
	assert.False(t, isNew)
	assert.Equal(t, started.ID, again.ID)
	assert.Len(t, m.Messages(), 2)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	m := New(store, zap.NewNop())
	m.Start(ctx, testJob)
	require.NoError(t, m.Add(ctx, ai.RoleUser, "question"))
	require.NoError(t, m.Add(ctx, ai.RoleAssistant, "answer"))

	restored := New(store, zap.NewNop())
	restored.Restore(ctx)

	session, ok := restored.Active()
	require.True(t, ok)
	assert.Equal(t, "Acme", session.Company)
	assert.Equal(t, m.Messages(), restored.Messages())

	summary := restored.Summary()
	assert.Equal(t, 3, summary.MessageCount)
	require.NotNil(t, summary.Current)
	assert.Equal(t, testJob.URL, summary.Current.URL)
}

func TestRestoreSnapshots(t *testing.T) {
	t.Parallel()

	system := ai.Message{Role: ai.RoleSystem, Content: "system"}
	long := []ai.Message{system}
	for i := 1; i <= 30; i++ {
		long = append(long, ai.Message{Role: ai.RoleUser, Content: fmt.Sprintf("message %d", i)})
	}

	cases := []struct {
		name         string
		session      *Session
		messages     []ai.Message
		wantActive   bool
		wantMessages int
		wantSecond   string
	}{
		{
			name:     "messages without session",
			messages: []ai.Message{system, {Role: ai.RoleUser, Content: "orphan"}},
		},
		{
			name:    "session without messages",
			session: &Session{ID: "s1", JobTitle: "SRE"},
		},
		{
			name:     "first message is not system",
			session:  &Session{ID: "s1", JobTitle: "SRE"},
			messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
		},
		{
			name:         "oversized history is cut to the window",
			session:      &Session{ID: "s1", JobTitle: "SRE"},
			messages:     long,
			wantActive:   true,
			wantMessages: MaxTurns + 1,
			wantSecond:   "message 11",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := kv.NewMemory()
			if tc.session != nil {
				require.NoError(t, kv.SetJSON(ctx, store, kv.KeyCurrentConversation, tc.session))
			}
			if tc.messages != nil {
				require.NoError(t, kv.SetJSON(ctx, store, kv.KeyConversationHistory, tc.messages))
			}

			m := New(store, zap.NewNop())
			m.Restore(ctx)

			_, active := m.Active()
			assert.Equal(t, tc.wantActive, active)

			summary := m.Summary()
			assert.Equal(t, tc.wantMessages, summary.MessageCount)
			assert.Equal(t, tc.wantActive, summary.Current != nil)

			if tc.wantSecond != "" {
				messages := m.Messages()
				assert.Equal(t, system, messages[0])
				assert.Equal(t, tc.wantSecond, messages[1].Content)
			}
		})
	}
}

func TestRestoreNothing(t *testing.T) {
	m := New(kv.NewMemory(), zap.NewNop())
	m.Restore(context.Background())

	_, ok := m.Active()
	assert.False(t, ok)
	assert.Empty(t, m.Messages())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := New(store, zap.NewNop())

	m.Start(ctx, testJob)
	m.Clear(ctx)

	_, ok := m.Active()
	assert.False(t, ok)
	require.ErrorIs(t, m.Add(ctx, ai.RoleUser, "late"), ErrNoSession)

	raw, err := store.Get(ctx, kv.KeyConversationHistory)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	restored := New(store, zap.NewNop())
	restored.Restore(ctx)
	_, ok = restored.Active()
	assert.False(t, ok)

	summary := m.Summary()
	assert.Nil(t, summary.Current)
	assert.Zero(t, summary.MessageCount)
}

type brokenStore struct{ kv.Store }

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("quota exceeded") }
func (brokenStore) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func TestPersistenceFailureIsLoggedOnly(t *testing.T) {
	ctx := context.Background()
	core, observed := observer.New(zapcore.WarnLevel)
	m := New(brokenStore{}, zap.New(core))

	m.Restore(ctx)
	m.Start(ctx, testJob)
	require.NoError(t, m.Add(ctx, ai.RoleUser, "still works"))
	assert.Len(t, m.Messages(), 2)
	assert.NotZero(t, observed.FilterMessage("failed to persist conversation history").Len())
}

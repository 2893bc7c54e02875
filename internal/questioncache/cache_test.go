package questioncache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobapply/internal/kv"
)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()

	clock := time.Date(2025, 11, 14, 9, 0, 0, 0, time.UTC)
	c := New(kv.NewMemory(), zap.NewNop())
	c.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return c, &clock
}

func TestLookupExactIdempotence(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Store(ctx, "Are you willing to relocate?", "Yes")

	for range 3 {
		answer, ok := c.Lookup(ctx, "Are you willing to relocate?")
		require.True(t, ok)
		assert.Equal(t, "Yes", answer)
	}

	entries := c.Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].UseCount)
}

func TestMatchRules(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Store(ctx, "Desired salary", "120000")
	c.Store(ctx, "How did you hear about this position?", "LinkedIn")

	m, ok := c.Match(ctx, "  DESIRED SALARY ")
	require.True(t, ok)
	assert.Equal(t, RuleExact, m.Rule)

	m, ok = c.Match(ctx, "What is your desired salary range?")
	require.True(t, ok)
	assert.Equal(t, RuleContains, m.Rule)
	assert.Equal(t, "120000", m.Entry.Answer)

	m, ok = c.Match(ctx, "How did you hear about this positon?")
	require.True(t, ok)
	assert.Equal(t, RuleSimilar, m.Rule)
	assert.Greater(t, m.Similarity, SimilarityThreshold)
	assert.Equal(t, "LinkedIn", m.Entry.Answer)

	_, ok = c.Match(ctx, "Do you have a security clearance?")
	assert.False(t, ok)

	_, ok = c.Match(ctx, "   ")
	assert.False(t, ok)
}

func TestFirstEntryInStorageOrderWins(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Store(ctx, "salary", "first")
	c.Store(ctx, "expected salary", "second")

	answer, ok := c.Lookup(ctx, "expected salary")
	require.True(t, ok)
	assert.Equal(t, "first", answer, "containment on an earlier entry beats a later exact match")
}

func TestStoreUpdatesCaseInsensitively(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	first := c.Store(ctx, "Notice period?", "2 weeks")
	second := c.Store(ctx, "notice PERIOD?", "1 month")

	entries := c.Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, "Notice period?", entries[0].Question)
	assert.Equal(t, "1 month", entries[0].Answer)
	assert.Equal(t, 2, entries[0].UseCount)
	assert.Equal(t, first.AddedAt, second.AddedAt)
	assert.True(t, second.LastUsed.After(first.LastUsed))
}

func TestStoreCapsAndEvictsOldestLastUsed(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := range MaxEntries {
		c.Store(ctx, fmt.Sprintf("question number %03d", i), "a")
	}
	// refresh the first entry so it survives
	c.Store(ctx, "question number 000", "b")
	c.Store(ctx, "brand new question", "c")

	entries := c.Entries(ctx)
	require.Len(t, entries, MaxEntries)

	questions := make(map[string]bool, len(entries))
	for _, e := range entries {
		questions[e.Question] = true
	}
	assert.True(t, questions["question number 000"])
	assert.True(t, questions["brand new question"])
	assert.False(t, questions["question number 001"], "oldest lastUsed is evicted")

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].LastUsed.After(entries[i-1].LastUsed))
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Store(ctx, "q", "a")
	c.Clear(ctx)

	assert.Empty(t, c.Entries(ctx))
	_, ok := c.Lookup(ctx, "q")
	assert.False(t, ok)
}

type failingStore struct {
	kv.Store
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk gone")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk gone")
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	c := New(failingStore{}, zap.New(core))
	ctx := context.Background()

	entry := c.Store(ctx, "q", "a")
	assert.Equal(t, "a", entry.Answer)

	_, ok := c.Lookup(ctx, "q")
	assert.False(t, ok)

	assert.NotZero(t, observed.FilterMessage("failed to persist question cache").Len())
	assert.NotZero(t, observed.FilterMessage("failed to read question cache, treating it as empty").Len())
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0, Levenshtein("kitten", "kitten"))
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 1, Levenshtein("café", "cafe"))
	assert.InDelta(t, 4.0/7.0, Similarity("kitten", "sitting"), 1e-9)
}

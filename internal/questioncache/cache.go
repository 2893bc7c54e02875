package questioncache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/kv"
)

const (
	// MaxEntries bounds the cache; older entries by lastUsed are evicted first.
	MaxEntries = 100
	// SimilarityThreshold is the minimum edit similarity for a fuzzy hit (exclusive).
	SimilarityThreshold = 0.8
)

// Entry is a question the user answered before.
type Entry struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AddedAt  time.Time `json:"addedAt"`
	LastUsed time.Time `json:"lastUsed"`
	UseCount int       `json:"useCount"`
}

// Rule names the matching rule that produced a hit.
type Rule string

const (
	RuleExact    Rule = "exact"
	RuleContains Rule = "contains"
	RuleSimilar  Rule = "similar"
)

// Match is a cache hit.
type Match struct {
	Entry      Entry
	Rule       Rule
	Similarity float64
}

// Cache persists confirmed answers under a single key. Reads of a missing or broken value
// behave like an empty cache and write failures are logged only.
type Cache struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time
	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func New(store kv.Store, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cache{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Lookup returns the cached answer for question.
func (c *Cache) Lookup(ctx context.Context, question string) (string, bool) {
	m, ok := c.Match(ctx, question)
	if !ok {
		return "", false
	}
	return m.Entry.Answer, true
}

// Match scans entries in storage order and returns the first one that matches exactly,
// by containment in either direction, or by similarity above SimilarityThreshold.
// A hit refreshes the entry's lastUsed and useCount.
func (c *Cache) Match(ctx context.Context, question string) (Match, bool) {
	normalized := normalize(question)
	if normalized == "" {
		return Match{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load(ctx)
	for i, entry := range entries {
		cached := normalize(entry.Question)
		if cached == "" {
			continue
		}

		m, ok := matchOne(cached, normalized)
		if !ok {
			continue
		}

		entries[i].LastUsed = c.now()
		entries[i].UseCount = max(entries[i].UseCount, 1) + 1
		c.save(ctx, entries)

		m.Entry = entries[i]
		c.logger.Debug("question cache hit",
			zap.String("question", question),
			zap.String("cached_question", entry.Question),
			zap.String("rule", string(m.Rule)),
		)
		return m, true
	}

	return Match{}, false
}

func matchOne(cached, normalized string) (Match, bool) {
	if cached == normalized {
		return Match{Rule: RuleExact, Similarity: 1}, true
	}
	if strings.Contains(cached, normalized) || strings.Contains(normalized, cached) {
		return Match{Rule: RuleContains}, true
	}
	if s := Similarity(cached, normalized); s > SimilarityThreshold {
		return Match{Rule: RuleSimilar, Similarity: s}, true
	}
	return Match{}, false
}

// Store records answer for question. An entry whose question equals it case-insensitively
// is updated in place, otherwise a new entry is appended. The cache is then capped.
func (c *Cache) Store(ctx context.Context, question, answer string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entries := c.load(ctx)

	var stored Entry
	idx := -1
	for i, entry := range entries {
		if strings.EqualFold(strings.TrimSpace(entry.Question), strings.TrimSpace(question)) {
			idx = i
			break
		}
	}

	if idx >= 0 {
		entries[idx].Answer = answer
		entries[idx].LastUsed = now
		entries[idx].UseCount = max(entries[idx].UseCount, 1) + 1
		stored = entries[idx]
	} else {
		stored = Entry{Question: question, Answer: answer, AddedAt: now, LastUsed: now, UseCount: 1}
		entries = append(entries, stored)
	}

	if len(entries) > MaxEntries {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].LastUsed.After(entries[j].LastUsed)
		})
		evicted := len(entries) - MaxEntries
		entries = entries[:MaxEntries]
		c.logger.Debug("question cache evicted entries", zap.Int("evicted", evicted))
	}

	c.save(ctx, entries)

	return stored
}

// Entries returns the cache in storage order.
func (c *Cache) Entries(ctx context.Context) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.load(ctx)
}

// Clear drops every entry.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.save(ctx, []Entry{})
}

func (c *Cache) load(ctx context.Context) []Entry {
	var entries []Entry
	if _, err := kv.GetJSON(ctx, c.store, kv.KeyQuestionCache, &entries); err != nil {
		c.logger.Warn("failed to read question cache, treating it as empty", zap.Error(err))
		return nil
	}
	return entries
}

func (c *Cache) save(ctx context.Context, entries []Entry) {
	if err := kv.SetJSON(ctx, c.store, kv.KeyQuestionCache, entries); err != nil {
		c.logger.Warn("failed to persist question cache", zap.Error(err))
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

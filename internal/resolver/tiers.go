package resolver

import (
	"context"
	"strconv"

	"github.com/spigell/jobapply/internal/profile"
)

// switchable carries the enable flag shared by the built-in tiers.
type switchable struct {
	disabled bool
	reason   string
}

func (s *switchable) Disable(reason string) {
	s.disabled = true
	s.reason = reason
}

func (s *switchable) IsEnabled() bool { return !s.disabled }

// QuestionCache is the lookup side of the question cache.
type QuestionCache interface {
	Lookup(ctx context.Context, question string) (string, bool)
}

type cacheTier struct {
	switchable
	cache QuestionCache
}

// NewCache answers from previously confirmed answers.
func NewCache(cache QuestionCache) Tier {
	return &cacheTier{cache: cache}
}

func (t *cacheTier) Name() string { return SourceCache }

func (t *cacheTier) Confidence() Confidence { return High }

func (t *cacheTier) Lookup(ctx context.Context, q Question) (string, bool, error) {
	answer, ok := t.cache.Lookup(ctx, q.Text)
	return answer, ok, nil
}

// ProfileSource loads the current profile and preferences.
type ProfileSource interface {
	Load(ctx context.Context) (profile.Profile, profile.Preferences)
}

type profileTier struct {
	switchable
	source ProfileSource
}

// NewProfile answers common questions from the ordered keyword mappings.
func NewProfile(source ProfileSource) Tier {
	return &profileTier{source: source}
}

func (t *profileTier) Name() string { return SourceProfile }

func (t *profileTier) Confidence() Confidence { return High }

func (t *profileTier) Lookup(ctx context.Context, q Question) (string, bool, error) {
	p, prefs := t.source.Load(ctx)
	m, ok := profile.Match(q.Text, p, prefs)
	if !ok {
		return "", false, nil
	}
	return m.Value, true, nil
}

func (t *profileTier) Status() Status {
	return Status{
		Name:       t.Name(),
		Confidence: t.Confidence(),
		Enabled:    t.IsEnabled(),
		Reason:     t.reason,
		Details: map[string]string{
			"keywords": strconv.Itoa(len(profile.Mappings(profile.Profile{}, profile.Preferences{}))),
		},
	}
}

type resumeTier struct {
	switchable
	resume profile.Resume
}

// NewResume is the hook for answers extracted straight from resume text. Choice
// questions are left to the AI tier and no free-form extraction exists yet, so it
// always misses.
func NewResume(resume profile.Resume) Tier {
	return &resumeTier{resume: resume}
}

func (t *resumeTier) Name() string { return SourceResume }

func (t *resumeTier) Confidence() Confidence { return Medium }

func (t *resumeTier) Lookup(context.Context, Question) (string, bool, error) {
	return "", false, nil
}

func (t *resumeTier) Status() Status {
	details := map[string]string{}
	if t.resume.Path != "" {
		details["path"] = t.resume.Path
	}
	return Status{Name: t.Name(), Confidence: t.Confidence(), Enabled: t.IsEnabled(), Reason: t.reason, Details: details}
}

package assistant

import (
	"context"
	"fmt"

	"github.com/spigell/jobapply/internal/activity"
	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/prompts"
	"github.com/spigell/jobapply/internal/resolver"
	"github.com/spigell/jobapply/internal/scoring"
)

// aiTier asks the model within the current conversation. It is the last resolution tier.
type aiTier struct {
	assistant *Assistant
	disabled  bool
	reason    string
}

func (t *aiTier) Name() string { return resolver.SourceAI }

func (t *aiTier) Confidence() resolver.Confidence { return resolver.Medium }

func (t *aiTier) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *aiTier) IsEnabled() bool { return !t.disabled }

func (t *aiTier) Announce(q resolver.Question) string {
	return fmt.Sprintf("Asking AI for: %q", q.Text)
}

func (t *aiTier) Lookup(ctx context.Context, q resolver.Question) (string, bool, error) {
	a := t.assistant

	current, _ := a.CurrentJob(ctx)
	if _, started := a.conversation.EnsureSession(ctx, current.Job); started {
		a.announceConversation(ctx, current.Job)
	}

	p, prefs := a.profiles.Load(ctx)
	prompt := prompts.Answer(prompts.AnswerInput{
		Question:    q.Text,
		Field:       q.Field,
		Job:         current.Job,
		Profile:     p,
		Preferences: prefs,
		Resume:      a.resume,
	})

	a.addMessage(ctx, ai.RoleUser, prompt)

	reply, err := a.gateway.Chat(ctx, a.conversation.Messages(), ai.ChatOptions(a.model))
	if err != nil {
		return "", false, err
	}

	a.addMessage(ctx, ai.RoleAssistant, reply)

	answer := scoring.Answer(reply)
	return answer, answer != "", nil
}

func (t *aiTier) Status() resolver.Status {
	details := map[string]string{"model": t.assistant.model}
	if gw := t.assistant.gateway; gw != nil {
		details["provider"] = gw.Provider()
	}
	return resolver.Status{
		Name:       t.Name(),
		Confidence: t.Confidence(),
		Enabled:    t.IsEnabled(),
		Reason:     t.reason,
		Details:    details,
	}
}

// GenerateContent writes free-form content for field with a single-shot request,
// quoting earlier answers to similar fields.
func (a *Assistant) GenerateContent(ctx context.Context, field form.Field, job *form.Job) (string, error) {
	if a.gateway == nil {
		return "", errNoGateway
	}

	a.feed.Emit(ctx, activity.TypeAIGenerating, fmt.Sprintf("Asking AI to write content for %q...", field.DisplayName()))

	if job == nil {
		if current, ok := a.CurrentJob(ctx); ok {
			job = &current.Job
		}
	}

	similar := a.patterns.Similar(ctx, field, prompts.GenerateExamples)
	values := make([]string, 0, len(similar))
	for _, p := range similar {
		values = append(values, p.Value)
	}

	p, prefs := a.profiles.Load(ctx)
	prompt := prompts.Generate(field, job, p, prefs, values)

	content, err := a.gateway.Generate(ctx, prompt, ai.GenerateOptions(a.model))
	if err != nil {
		a.reportFailure(ctx, "AI failed", err, a.model)
		return "", err
	}

	a.feed.Emit(ctx, activity.TypeAIComplete, fmt.Sprintf("AI generated content for %q", field.DisplayName()))

	return scoring.Answer(content), nil
}

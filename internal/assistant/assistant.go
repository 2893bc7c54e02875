package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/activity"
	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/conversation"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/history"
	"github.com/spigell/jobapply/internal/kv"
	"github.com/spigell/jobapply/internal/learning"
	"github.com/spigell/jobapply/internal/logger"
	"github.com/spigell/jobapply/internal/profile"
	"github.com/spigell/jobapply/internal/questioncache"
	"github.com/spigell/jobapply/internal/resolver"
	"github.com/spigell/jobapply/internal/stats"
)

// Options choose the models used for answers and for fit analysis.
type Options struct {
	Model          string
	ReasoningModel string
}

// Assistant coordinates answer resolution, fit analysis and learning for the
// application currently in progress. It owns the single conversation session.
type Assistant struct {
	gateway      ai.Gateway
	store        kv.Store
	conversation *conversation.Manager
	cache        *questioncache.Cache
	patterns     *learning.Store
	profiles     *profile.Store
	history      *history.History
	feed         *activity.Feed
	stats        *stats.Store
	resume       profile.Resume
	engine       *resolver.Engine
	logger       *zap.Logger

	model          string
	reasoningModel string
}

// JobContext is the persisted job being applied to.
type JobContext struct {
	form.Job
	FitScore *ai.FitResult `json:"fitScore,omitempty"`
}

// Status summarizes the assistant for the status endpoint and CLI.
type Status struct {
	Provider     string            `json:"provider"`
	Model        string            `json:"model"`
	Available    bool              `json:"available"`
	Tiers        []resolver.Status `json:"tiers"`
	Conversation int               `json:"conversationMessages"`
	CurrentJob   *JobContext       `json:"currentJob,omitempty"`
}

// New wires the assistant over store. The gateway may be nil, which disables the AI tier.
func New(store kv.Store, gateway ai.Gateway, resume profile.Resume, opts Options, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}

	a := &Assistant{
		gateway:        gateway,
		store:          store,
		conversation:   conversation.New(store, log.Named("conversation")),
		cache:          questioncache.New(store, log.Named("questioncache")),
		patterns:       learning.New(store, log.Named("learning")),
		profiles:       profile.NewStore(store, log.Named("profile")),
		history:        history.New(store, log.Named("history")),
		feed:           activity.New(store, log.Named("activity")),
		stats:          stats.New(store, log.Named("stats")),
		resume:         resume,
		model:          opts.Model,
		reasoningModel: opts.ReasoningModel,
	}

	if a.model == "" {
		a.model = ai.DefaultModel
	}
	if a.reasoningModel == "" {
		a.reasoningModel = ai.DefaultReasoningModel
	}

	if gateway != nil {
		log = logger.WithCommonFields(log, gateway.Provider(), gateway.Model())
	}
	a.logger = log

	tiers := []resolver.Tier{
		resolver.NewCache(a.cache),
		resolver.NewProfile(a.profiles),
		resolver.NewResume(resume),
		&aiTier{assistant: a},
	}
	if gateway == nil {
		resolver.DisableByName(tiers, resolver.SourceAI, "inference gateway is not configured")
	}

	a.engine = resolver.New(tiers, a.feed, log.Named("resolver"))

	return a
}

// Restore reloads the persisted conversation.
func (a *Assistant) Restore(ctx context.Context) {
	a.conversation.Restore(ctx)
}

func (a *Assistant) Feed() *activity.Feed { return a.feed }

func (a *Assistant) Cache() *questioncache.Cache { return a.cache }

func (a *Assistant) Profiles() *profile.Store { return a.profiles }

func (a *Assistant) Stats() *stats.Store { return a.stats }

func (a *Assistant) History(ctx context.Context) []history.Record {
	return a.history.List(ctx)
}

// SaveApplication records an application the user submitted.
func (a *Assistant) SaveApplication(ctx context.Context, app history.Application) history.Record {
	record := a.history.SaveApplication(ctx, app)
	a.feed.Emit(ctx, activity.TypeSuccess, fmt.Sprintf("Saved application: %s at %s", record.JobTitle, record.Company))
	return record
}

// Resolve answers a form question. Inference failures are returned to the caller
// and reported on the activity feed with a hint.
func (a *Assistant) Resolve(ctx context.Context, q resolver.Question) (resolver.Answer, error) {
	answer, err := a.engine.Resolve(ctx, q)
	if err != nil {
		a.reportFailure(ctx, "Could not answer question", err, a.model)
		return resolver.Answer{}, err
	}
	return answer, nil
}

// SaveAnswer stores a confirmed answer in the question cache.
func (a *Assistant) SaveAnswer(ctx context.Context, question, answer string) questioncache.Entry {
	entry := a.cache.Store(ctx, question, answer)
	a.feed.Emit(ctx, activity.TypeSuccess, fmt.Sprintf("Learned answer for: %q", question))
	return entry
}

// Learn records the value the user typed into field.
func (a *Assistant) Learn(ctx context.Context, field form.Field, value string, job *form.Job) learning.Pattern {
	pattern := a.patterns.Learn(ctx, field, value, job)
	a.feed.Emit(ctx, activity.TypeLearned, fmt.Sprintf("Stored your answer for %q", field.DisplayName()))
	return pattern
}

// Recall returns a previously learned value for field.
func (a *Assistant) Recall(ctx context.Context, field form.Field) (learning.Pattern, bool) {
	return a.patterns.Find(ctx, field)
}

// CurrentJob returns the job context stored by the last TrackJob.
func (a *Assistant) CurrentJob(ctx context.Context) (JobContext, bool) {
	var job JobContext
	found, err := kv.GetJSON(ctx, a.store, kv.KeyCurrentJobContext, &job)
	if err != nil {
		a.logger.Warn("failed to read current job context", zap.Error(err))
		return JobContext{}, false
	}
	return job, found
}

// MarkApplied flags the job as applied and ends its conversation.
func (a *Assistant) MarkApplied(ctx context.Context, url string) (history.Record, bool) {
	record, ok := a.history.MarkApplied(ctx, url)
	if ok {
		a.feed.Emit(ctx, activity.TypeSuccess, fmt.Sprintf("Marked as applied: %s", record.JobTitle))
	}

	if _, active := a.conversation.Active(); active {
		a.feed.Emit(ctx, activity.TypeSuccess, "Completed application conversation")
	}
	a.conversation.Clear(ctx)

	return record, ok
}

// ClearConversation ends the current conversation without touching history.
func (a *Assistant) ClearConversation(ctx context.Context) {
	a.conversation.Clear(ctx)
}

func (a *Assistant) ConversationStatus() conversation.Summary {
	return a.conversation.Summary()
}

// Tiers describes the resolution tiers.
func (a *Assistant) Tiers() []resolver.Status {
	return resolver.Describe(a.engine.Tiers())
}

func (a *Assistant) Status(ctx context.Context) Status {
	status := Status{
		Tiers:        a.Tiers(),
		Conversation: a.conversation.Summary().MessageCount,
	}
	if a.gateway != nil {
		status.Provider = a.gateway.Provider()
		status.Model = a.gateway.Model()
		status.Available = a.gateway.Available(ctx)
	}
	if job, ok := a.CurrentJob(ctx); ok {
		status.CurrentJob = &job
	}
	return status
}

// Hint returns the remediation for an inference failure of the configured provider.
func (a *Assistant) Hint(err error) string {
	return a.hint(err, a.model)
}

// FitHint is Hint for a failed fit analysis, which runs on the reasoning model.
func (a *Assistant) FitHint(err error) string {
	return a.hint(err, a.reasoningModel)
}

func (a *Assistant) hint(err error, model string) string {
	provider := ""
	if a.gateway != nil {
		provider = a.gateway.Provider()
	}
	return ai.Hint(err, provider, model)
}

func (a *Assistant) reportFailure(ctx context.Context, what string, err error, model string) {
	hint := a.hint(err, model)
	a.logger.Warn(strings.ToLower(what), zap.Error(err), logger.Hint(hint))

	message := fmt.Sprintf("%s: %v", what, err)
	if hint != "" {
		message += " (" + hint + ")"
	}
	a.feed.Emit(ctx, activity.TypeError, message)
}

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/activity"
	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/kv"
	"github.com/spigell/jobapply/internal/logger"
	"github.com/spigell/jobapply/internal/prompts"
	"github.com/spigell/jobapply/internal/scoring"
	"github.com/spigell/jobapply/internal/utils"
)

var errNoGateway = fmt.Errorf("%w: inference gateway is not configured", ai.ErrServiceUnavailable)

// TrackJob handles a newly opened job posting: it scores the fit, remembers the job as
// current and records it in the history. A failed analysis degrades to a neutral score.
func (a *Assistant) TrackJob(ctx context.Context, job form.Job) JobContext {
	a.feed.Emit(ctx, activity.TypeJobFound, fmt.Sprintf("Found job: %s at %s", job.JobTitle, job.Company))

	fit, err := a.AnalyzeFit(ctx, job)
	if err != nil {
		a.reportFailure(ctx, "Could not analyze job fit", err, a.reasoningModel)
		fit = ai.FitResult{Score: scoring.NeutralScore, Reason: fmt.Sprintf("Analysis unavailable: %v", err)}
	}

	current := JobContext{Job: job, FitScore: &fit}
	if err := kv.SetJSON(ctx, a.store, kv.KeyCurrentJobContext, current); err != nil {
		a.logger.Warn("failed to persist current job context", zap.Error(err))
	}

	a.history.Upsert(ctx, job, &fit)

	switch scoring.Band(fit.Score) {
	case "excellent":
		a.feed.Emit(ctx, activity.TypeSuccess, fmt.Sprintf("Excellent match! Confidence: %d%% - %s", fit.Score, fit.Reason))
	case "good":
		a.feed.Emit(ctx, activity.TypeWaiting, fmt.Sprintf("Good match. Confidence: %d%% - %s", fit.Score, fit.Reason))
	default:
		a.feed.Emit(ctx, activity.TypeUncertain, fmt.Sprintf("Uncertain fit. Confidence: %d%% - %s", fit.Score, fit.Reason))
	}

	a.logger.Info("tracked job",
		append(logger.JobFields(job.URL, job.Company),
			zap.Int("fit_score", fit.Score),
			zap.String("fit_model", fit.Model),
		)...,
	)

	return current
}

// AnalyzeFit starts a new conversation for job and asks the model to score the candidate.
// The reasoning model is used when the service advertises its family.
func (a *Assistant) AnalyzeFit(ctx context.Context, job form.Job) (ai.FitResult, error) {
	if a.gateway == nil {
		return ai.FitResult{}, errNoGateway
	}

	if !a.gateway.Available(ctx) {
		return ai.FitResult{}, ai.Unavailable(a.gateway.Provider(), errors.New("availability probe failed"))
	}

	a.conversation.Start(ctx, job)
	a.announceConversation(ctx, job)

	p, _ := a.profiles.Load(ctx)
	prompt := prompts.Fit(job, p, a.resume)

	a.feed.Emit(ctx, activity.TypeAnalyzing, "Analyzing job fit with AI against your resume...")
	a.addMessage(ctx, ai.RoleUser, prompt)

	model := a.selectFitModel(ctx)
	reply, err := a.gateway.Chat(ctx, a.conversation.Messages(), ai.ChatOptions(model))
	if err != nil {
		return ai.FitResult{}, fmt.Errorf("fit analysis with %s: %w", model, err)
	}

	a.addMessage(ctx, ai.RoleAssistant, reply)

	result := scoring.ParseFit(reply)
	result.Model = model

	a.logger.Debug("fit analysis response",
		zap.String("model", model),
		zap.String("tier", scoring.Tier(reply)),
		zap.String("response_preview", utils.TruncateForLog(reply, 200)),
	)
	a.feed.Emit(ctx, activity.TypeSuccess,
		fmt.Sprintf("Job Fit: %d%% confidence - %s...", result.Score, utils.Truncate(result.Reason, 80)))

	return result, nil
}

func (a *Assistant) selectFitModel(ctx context.Context) string {
	family, _, _ := strings.Cut(a.reasoningModel, ":")

	models, err := a.gateway.Models(ctx)
	if err != nil {
		a.logger.Info("listing models failed, using default model", zap.String("model", a.model), zap.Error(err))
		return a.model
	}

	for _, name := range models {
		if strings.Contains(name, family) {
			return a.reasoningModel
		}
	}

	return a.model
}

func (a *Assistant) announceConversation(ctx context.Context, job form.Job) {
	a.feed.Emit(ctx, activity.TypeAnalyzing, fmt.Sprintf("Started AI conversation for %s", job.JobTitle))
}

func (a *Assistant) addMessage(ctx context.Context, role ai.Role, content string) {
	if err := a.conversation.Add(ctx, role, content); err != nil {
		a.logger.Warn("failed to add conversation message", zap.String("role", string(role)), zap.Error(err))
	}
}

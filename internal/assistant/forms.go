package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/activity"
	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/logger"
	"github.com/spigell/jobapply/internal/profile"
	"github.com/spigell/jobapply/internal/prompts"
	"github.com/spigell/jobapply/internal/recommend"
	"github.com/spigell/jobapply/internal/resolver"
	"github.com/spigell/jobapply/internal/stats"
	"github.com/spigell/jobapply/internal/utils"
)

// Field analysis sticks to short, stable answers.
const (
	fieldAnalysisTemperature = 0.3
	fieldAnalysisMaxTokens   = 500
)

type FieldRecommendation struct {
	Field          form.Field               `json:"field"`
	Recommendation recommend.Recommendation `json:"recommendation"`
}

// FormAnalysis is the per-field outcome of scanning a page's forms.
type FormAnalysis struct {
	Recommendations []FieldRecommendation `json:"recommendations"`
	Known           int                   `json:"known"`
	Uncertain       int                   `json:"uncertain"`
}

// AnalyzeForm recommends a value for every field found on page. Resume uploads and
// learned patterns are answered locally; the rest go to the model, falling back to
// rules over the profile when the model cannot be reached.
func (a *Assistant) AnalyzeForm(ctx context.Context, page form.Page) FormAnalysis {
	a.feed.Emit(ctx, activity.TypeScanning, fmt.Sprintf("Analyzing form with %d fields", page.FieldCount()))
	a.stats.Increment(ctx, stats.FormsDetected)

	p, _ := a.profiles.Load(ctx)
	a.feed.Emit(ctx, activity.TypeAnalyzing, "Checking learned patterns and user profile...")

	analysis := FormAnalysis{Recommendations: []FieldRecommendation{}}
	for _, f := range page.Forms {
		for _, field := range f.Fields {
			rec := a.recommendField(ctx, field, p, page)
			analysis.Recommendations = append(analysis.Recommendations, FieldRecommendation{Field: field, Recommendation: rec})

			if rec.Confidence == resolver.High {
				analysis.Known++
				continue
			}
			analysis.Uncertain++
			if !field.IsResumeUpload() {
				a.feed.Emit(ctx, activity.TypeUncertain, fmt.Sprintf("Not sure about %q - need your input", field.DisplayName()))
			}
		}
	}

	a.feed.Emit(ctx, activity.TypeSuccess,
		fmt.Sprintf("Analysis complete: %d known, %d need attention", analysis.Known, analysis.Uncertain))

	a.logger.Info("analyzed form",
		zap.String("url", page.URL),
		zap.Int("fields", page.FieldCount()),
		zap.Int("known", analysis.Known),
		zap.Int("uncertain", analysis.Uncertain),
	)

	return analysis
}

func (a *Assistant) recommendField(ctx context.Context, field form.Field, p profile.Profile, page form.Page) recommend.Recommendation {
	if field.IsResumeUpload() {
		a.feed.Emit(ctx, activity.TypeResumeFound, fmt.Sprintf("Resume field detected: %q", field.DisplayName()))
		return recommend.Resume(!a.resume.Empty())
	}

	if pattern, ok := a.patterns.Find(ctx, field); ok {
		a.feed.Emit(ctx, activity.TypeSuccess, fmt.Sprintf("Using previous answer for %q", field.DisplayName()))
		return recommend.Learned(pattern.Value)
	}

	return a.analyzeField(ctx, field, p, page)
}

func (a *Assistant) analyzeField(ctx context.Context, field form.Field, p profile.Profile, page form.Page) recommend.Recommendation {
	if a.gateway == nil {
		return recommend.RuleBased(field, p)
	}

	reply, err := a.gateway.Generate(ctx, prompts.FieldAnalysis(field, p, page), ai.Options{
		Model:       a.model,
		Temperature: fieldAnalysisTemperature,
		MaxTokens:   fieldAnalysisMaxTokens,
	})
	if err != nil {
		a.logger.Warn("field analysis failed, using rules",
			zap.String("field", field.DisplayName()),
			zap.Error(err),
			logger.Hint(a.Hint(err)),
		)
		return recommend.RuleBased(field, p)
	}

	a.logger.Debug("field analysis response",
		zap.String("field", field.DisplayName()),
		zap.String("response_preview", utils.TruncateForLog(reply, 200)),
	)

	return recommend.Parse(reply)
}

// Recommend suggests a value for field from the stored profile alone.
func (a *Assistant) Recommend(ctx context.Context, field form.Field) recommend.Recommendation {
	p, _ := a.profiles.Load(ctx)
	return recommend.RuleBased(field, p)
}

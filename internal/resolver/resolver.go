package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/activity"
	"github.com/spigell/jobapply/internal/form"
)

// Confidence grades how much an answer can be trusted without review.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// Sources of an answer, in resolution order.
const (
	SourceCache   = "cache"
	SourceProfile = "profile"
	SourceResume  = "resume"
	SourceAI      = "ai"
)

// Question is a form question together with the field it belongs to.
type Question struct {
	Text  string     `json:"question"`
	Field form.Field `json:"field"`
}

// Answer is the outcome of a resolution. A nil Value means no source produced one.
type Answer struct {
	Value      *string    `json:"value"`
	Source     string     `json:"source"`
	Confidence Confidence `json:"confidence"`
}

// Text returns the answer or an empty string.
func (a Answer) Text() string {
	if a.Value == nil {
		return ""
	}
	return *a.Value
}

// Tier is one source of answers.
type Tier interface {
	Name() string
	Confidence() Confidence
	Disable(reason string)
	IsEnabled() bool

	// Lookup reports ok=false on a miss. Errors abort the resolution.
	Lookup(ctx context.Context, q Question) (value string, ok bool, err error)
}

// announcer is implemented by tiers that report before they start, because they are slow.
type announcer interface {
	Announce(q Question) string
}

// Notifier receives progress events.
type Notifier interface {
	Emit(ctx context.Context, eventType, message string) activity.Event
}

// Status represents runtime information about a tier.
type Status struct {
	Name       string            `json:"name"`
	Confidence Confidence        `json:"confidence"`
	Enabled    bool              `json:"enabled"`
	Reason     string            `json:"reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type statusProvider interface {
	Status() Status
}

// Engine consults tiers in order and stops at the first one that has a value.
type Engine struct {
	tiers    []Tier
	notifier Notifier
	logger   *zap.Logger
}

func New(tiers []Tier, notifier Notifier, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{tiers: tiers, notifier: notifier, logger: logger}
}

// Tiers returns the configured tiers in resolution order.
func (e *Engine) Tiers() []Tier {
	return e.tiers
}

// Resolve answers q. Tier errors are returned as is; lower tiers are not tried after a failure.
// When every tier misses, the answer carries a nil value and the last consulted tier's source.
func (e *Engine) Resolve(ctx context.Context, q Question) (Answer, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		q.Text = q.Field.DisplayName()
	}

	logger := e.logger.With(zap.String("question", q.Text))
	answer := Answer{Source: "none", Confidence: Low}

	for _, tier := range e.tiers {
		if !tier.IsEnabled() {
			logger.Debug("tier disabled", zap.String("tier", tier.Name()))
			continue
		}

		if a, ok := tier.(announcer); ok {
			e.emit(ctx, activity.TypeAnalyzing, a.Announce(q))
		}

		value, ok, err := tier.Lookup(ctx, q)
		if err != nil {
			logger.Warn("tier failed", zap.String("tier", tier.Name()), zap.Error(err))
			return Answer{}, fmt.Errorf("%s: %w", tier.Name(), err)
		}

		answer = Answer{Source: tier.Name(), Confidence: tier.Confidence()}
		if !ok {
			logger.Debug("tier miss", zap.String("tier", tier.Name()))
			continue
		}

		answer.Value = &value
		logger.Info("question resolved",
			zap.String("tier", tier.Name()),
			zap.String("confidence", string(tier.Confidence())),
		)
		e.emit(ctx, activity.TypeSuccess, foundMessage(tier.Name(), q.Text))

		return answer, nil
	}

	answer.Value = nil
	return answer, nil
}

func (e *Engine) emit(ctx context.Context, eventType, message string) {
	if e.notifier == nil || message == "" {
		return
	}
	e.notifier.Emit(ctx, eventType, message)
}

func foundMessage(source, question string) string {
	switch source {
	case SourceCache:
		return fmt.Sprintf("Found cached answer for %q", question)
	case SourceAI:
		return fmt.Sprintf("AI answered %q", question)
	default:
		return fmt.Sprintf("Found answer in %s for %q", source, question)
	}
}

// DisableByName marks a tier with the provided name as disabled while keeping it in the list.
func DisableByName(tiers []Tier, name, reason string) {
	for _, tier := range tiers {
		if tier.Name() == name {
			tier.Disable(reason)
		}
	}
}

// Describe returns status entries for the provided tiers.
func Describe(tiers []Tier) []Status {
	statuses := make([]Status, 0, len(tiers))
	for _, tier := range tiers {
		if reporter, ok := tier.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:       tier.Name(),
			Confidence: tier.Confidence(),
			Enabled:    tier.IsEnabled(),
		})
	}
	return statuses
}

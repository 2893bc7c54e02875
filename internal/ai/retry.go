package ai

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type retryingGateway struct {
	Gateway
	maxRetries int
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// WithRetry wraps gw with an exponential backoff policy for Generate and Chat.
// Only unavailable services and temporary HTTP failures are retried. With maxRetries <= 0
// the gateway is returned unchanged and every request is a single attempt.
func WithRetry(gw Gateway, maxRetries int, logger *zap.Logger) Gateway {
	if gw == nil || maxRetries <= 0 {
		return gw
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &retryingGateway{
		Gateway:    gw,
		maxRetries: maxRetries,
		logger:     logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
}

func (r *retryingGateway) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	var output string
	err := r.retry(ctx, "generate", func() error {
		var err error
		output, err = r.Gateway.Generate(ctx, prompt, opts)
		return err
	})
	return output, err
}

func (r *retryingGateway) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	var output string
	err := r.retry(ctx, "chat", func() error {
		var err error
		output, err = r.Gateway.Chat(ctx, messages, opts)
		return err
	})
	return output, err
}

func (r *retryingGateway) retry(ctx context.Context, operation string, fn func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxRetries)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, delay time.Duration) {
		r.logger.Warn("inference request failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	})
}

func retryable(err error) bool {
	if errors.Is(err, ErrServiceUnavailable) {
		return true
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Temporary()
	}

	return false
}

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/utils"
)

const (
	DefaultURL = "http://127.0.0.1:11434"

	providerName = "ollama"
	contentType  = "application/json"

	generatePath = "/api/generate"
	chatPath     = "/api/chat"
	tagsPath     = "/api/tags"

	defaultMaxLogLength = 100
)

// Client talks to a local Ollama-compatible service. It keeps no conversation state.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	BaseURL    string
	model      string
	maxLogLen  int
}

// New creates a Client. A zero timeout leaves requests unbounded, so a stalled model
// blocks the caller until the transport gives up or ctx is cancelled.
func New(baseURL, model string, timeout time.Duration, logger *zap.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}

	if model = strings.TrimSpace(model); model == "" {
		model = ai.DefaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger:     logger,
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    baseURL,
		model:      model,
		maxLogLen:  defaultMaxLogLength,
	}
}

// SetMaxLogLength limits the prompt and response previews written to debug logs.
func (c *Client) SetMaxLogLength(n int) {
	if n > 0 {
		c.maxLogLen = n
	}
}

func (c *Client) Provider() string { return providerName }

func (c *Client) Model() string { return c.model }

// Generate issues a single-shot completion against /api/generate.
func (c *Client) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	req := generateRequest{
		Model:  c.modelFor(opts),
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	}

	c.logger.Debug("ollama generate request",
		zap.String("model", req.Model),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	var resp generateResponse
	if err := c.postJSON(ctx, generatePath, req, &resp); err != nil {
		return "", err
	}

	if resp.Response == nil {
		return "", ai.Malformed("%s: missing response field", generatePath)
	}

	c.logger.Debug("ollama generate response",
		zap.String("model", resp.Model),
		zap.Int64("total_duration", resp.TotalDuration),
		zap.Int("eval_count", resp.EvalCount),
		zap.String("response_preview", utils.TruncateForLog(*resp.Response, c.maxLogLen)),
	)

	return *resp.Response, nil
}

// Chat sends the ordered message list to /api/chat and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	if messages == nil {
		messages = []ai.Message{}
	}

	req := chatRequest{
		Model:    c.modelFor(opts),
		Messages: messages,
		Stream:   false,
		Options:  chatOptions{Temperature: opts.Temperature},
	}

	c.logger.Debug("ollama chat request",
		zap.String("model", req.Model),
		zap.Int("messages", len(messages)),
	)

	var resp chatResponse
	if err := c.postJSON(ctx, chatPath, req, &resp); err != nil {
		return "", err
	}

	if resp.Message == nil || resp.Message.Content == nil {
		return "", ai.Malformed("%s: missing message.content field", chatPath)
	}

	c.logger.Debug("ollama chat response",
		zap.String("model", req.Model),
		zap.String("response_preview", utils.TruncateForLog(*resp.Message.Content, c.maxLogLen)),
	)

	return *resp.Message.Content, nil
}

// Models returns the names advertised by /api/tags.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var resp tagsResponse
	if err := c.getJSON(ctx, tagsPath, &resp); err != nil {
		return nil, err
	}

	if resp.Models == nil {
		return nil, ai.Malformed("%s: missing models field", tagsPath)
	}

	names := make([]string, 0, len(*resp.Models))
	for _, m := range *resp.Models {
		names = append(names, m.Name)
	}

	return names, nil
}

// Available probes /api/tags and reports whether the service answered with success.
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+tagsPath, nil)
	if err != nil {
		return false
	}

	resp, err := c.request(req)
	if err != nil {
		c.logger.Debug("ollama is not available", zap.String("url", c.BaseURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	ok := isSuccess(resp.StatusCode)
	if !ok {
		c.logger.Debug("ollama responded but not ok", zap.String("status", resp.Status))
	}

	return ok
}

func (c *Client) modelFor(opts ai.Options) string {
	if model := strings.TrimSpace(opts.Model); model != "" {
		return model
	}
	return c.model
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.request(req)
	if err != nil {
		return ai.Unavailable(c.BaseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ai.Unavailable(c.BaseURL, fmt.Errorf("read body: %w", err))
	}

	if !isSuccess(resp.StatusCode) {
		c.logger.Debug("ollama error response",
			zap.String("url", req.URL.String()),
			zap.String("status", resp.Status),
			zap.String("body", utils.TruncateForLog(string(data), c.maxLogLen)),
		)
		return &ai.ServiceError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return ai.Malformed("%s: %v", req.URL.Path, err)
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

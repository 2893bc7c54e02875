package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/utils"
)

const (
	defaultModel = "gemini-2.5-flash"
	providerName = ai.ProviderGemini

	defaultMaxLogLength = 100
)

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	List(ctx context.Context, config *genai.ListModelsConfig) (genai.Page[genai.Model], error)
}

// Generator wraps the Google GenAI client and satisfies ai.Gateway.
type Generator struct {
	models    modelsAPI
	modelName string
	logger    *zap.Logger
	maxLogLen int
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:    client.Models,
		modelName: model,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}, nil
}

func (g *Generator) SetMaxLogLength(n int) {
	if n > 0 {
		g.maxLogLen = n
	}
}

func (g *Generator) Provider() string { return providerName }

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// Generate sends a single prompt and returns the textual response.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	return g.generate(ctx, opts, genai.Text(prompt), buildConfig(opts, nil))
}

// Chat replays the conversation. System messages become the system instruction and
// assistant turns are sent with the model role.
func (g *Generator) Chat(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	system, contents := toContents(messages)
	if len(contents) == 0 {
		return "", errors.New("conversation has no user messages")
	}

	return g.generate(ctx, opts, contents, buildConfig(opts, system))
}

// Models lists model names visible to the API key, without the "models/" prefix.
func (g *Generator) Models(ctx context.Context) ([]string, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	page, err := g.models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		return nil, translateError(err)
	}

	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		if m == nil {
			continue
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}

	return names, nil
}

// Available reports whether the API answers a model listing.
func (g *Generator) Available(ctx context.Context) bool {
	if g == nil || g.models == nil {
		return false
	}

	_, err := g.models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	if err != nil {
		g.logger.Debug("gemini is not available", zap.Error(err))
		return false
	}

	return true
}

func (g *Generator) generate(ctx context.Context, opts ai.Options, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = g.modelName
	} else if !strings.HasPrefix(model, "gemini") {
		g.logger.Warn("model is not served by the Gemini API, using the configured one",
			zap.String("requested_model", model),
			zap.String("model", g.modelName),
		)
		model = g.modelName
	}

	g.logger.Debug("gemini generate content request",
		zap.String("model", model),
		zap.Int("contents", len(contents)),
	)

	resp, err := g.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", translateError(err)
	}

	output := responseText(resp)
	if output == "" {
		return "", ai.Malformed("gemini api returned empty response")
	}

	g.logger.Debug("gemini generate content response",
		zap.String("model", model),
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func buildConfig(opts ai.Options, system *genai.Content) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(opts.Temperature)),
		SystemInstruction: system,
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ServiceError{StatusCode: apiErr.Code, Status: apiErr.Status, Body: apiErr.Message}
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ai.ServiceError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Body: apiErrPtr.Message}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return ai.Unavailable("gemini api", err)
}

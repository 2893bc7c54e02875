package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrServiceUnavailable is returned when the inference service cannot be reached at all.
	ErrServiceUnavailable = errors.New("inference service unavailable")
	// ErrMalformedResponse is returned when a response body lacks the expected fields.
	ErrMalformedResponse = errors.New("malformed inference response")
)

// ServiceError is a non-success HTTP answer from the inference service.
type ServiceError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ServiceError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("inference request failed: %s", e.Status)
	}
	return fmt.Sprintf("inference request failed: %s - %s", e.Status, body)
}

// Temporary reports whether repeating the request may succeed.
func (e *ServiceError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Unavailable wraps a transport failure so that errors.Is(err, ErrServiceUnavailable) holds.
func Unavailable(target string, err error) error {
	return fmt.Errorf("%w at %s: %v", ErrServiceUnavailable, target, err)
}

// Malformed wraps a decoding failure so that errors.Is(err, ErrMalformedResponse) holds.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// ProviderGemini names the hosted gateway; every other provider is treated as a local Ollama service.
const ProviderGemini = "gemini"

// Hint turns an inference failure into an actionable message for the user of provider.
// It returns an empty string for errors it does not recognise.
func Hint(err error, provider, model string) string {
	if err == nil {
		return ""
	}

	if strings.EqualFold(provider, ProviderGemini) {
		return geminiHint(err, model)
	}

	if model == "" {
		model = DefaultModel
	}

	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Sprintf("the inference service is not running: install and start it, then run: ollama pull %s", model)
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		lowered := strings.ToLower(serviceErr.Body)
		if serviceErr.StatusCode == http.StatusNotFound || strings.Contains(lowered, "not found") {
			return fmt.Sprintf("model %s not found: run: ollama pull %s", model, model)
		}
		if serviceErr.StatusCode == http.StatusForbidden {
			return "request rejected by the inference service: check OLLAMA_ORIGINS allows this client"
		}
		return fmt.Sprintf("the inference service answered %s: check its logs", serviceErr.Status)
	}

	if errors.Is(err, ErrMalformedResponse) {
		return "the inference service returned an unexpected body: check that the configured url points at it"
	}

	return ""
}

func geminiHint(err error, model string) string {
	if errors.Is(err, ErrServiceUnavailable) {
		return "the Gemini API is unreachable: check network access and that ai.gemini is configured"
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
			return "the Gemini API rejected the request: check the api key in ai.gemini.api-key-file or GEMINI_API_KEY"
		case http.StatusNotFound:
			return fmt.Sprintf("model %s is not available to this api key: set ai.gemini.model", model)
		case http.StatusTooManyRequests:
			return "the Gemini API quota is exhausted: wait or raise ai.max-retries"
		}
		return fmt.Sprintf("the Gemini API answered %s: try again later", serviceErr.Status)
	}

	if errors.Is(err, ErrMalformedResponse) {
		return "the Gemini API returned no text: the response may have been blocked by safety filters"
	}

	return ""
}

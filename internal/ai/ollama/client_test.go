package ollama

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()

	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.body = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func TestGenerateWireContract(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"response":"Jane Doe","model":"llama3.2:3b","total_duration":12,"eval_count":3}`)
	client := New(srv.URL, "", 0, zap.NewNop())

	out, err := client.Generate(context.Background(), "What is my name?", ai.GenerateOptions(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "Jane Doe" {
		t.Fatalf("unexpected output %q", out)
	}

	if rec.method != http.MethodPost || rec.path != "/api/generate" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}

	expected := `{"model":"llama3.2:3b","prompt":"What is my name?","stream":false,"options":{"temperature":0.7,"num_predict":500}}`
	if rec.body != expected {
		t.Fatalf("unexpected body:\n got: %s\nwant: %s", rec.body, expected)
	}
}

func TestChatWireContract(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"model":"deepseek-r1:8b","message":{"role":"assistant","content":"SCORE: 80/100 - good"}}`)
	client := New(srv.URL, "llama3.2:3b", 0, zap.NewNop())

	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: "sys"},
		{Role: ai.RoleUser, Content: "hello"},
	}

	out, err := client.Chat(context.Background(), messages, ai.ChatOptions("deepseek-r1:8b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "SCORE: 80/100 - good" {
		t.Fatalf("unexpected output %q", out)
	}

	expected := `{"model":"deepseek-r1:8b","messages":[{"role":"system","content":"sys"},{"role":"user","content":"hello"}],"stream":false,"options":{"temperature":0.3}}`
	if rec.body != expected {
		t.Fatalf("unexpected body:\n got: %s\nwant: %s", rec.body, expected)
	}
}

func TestModelsAndAvailability(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"models":[{"name":"llama3.2:3b","size":1},{"name":"deepseek-r1:8b"}]}`)
	client := New(srv.URL, "", 0, zap.NewNop())

	models, err := client.Models(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(models) != 2 || models[0] != "llama3.2:3b" || models[1] != "deepseek-r1:8b" {
		t.Fatalf("unexpected models: %v", models)
	}

	if rec.method != http.MethodGet || rec.path != "/api/tags" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}

	if !client.Available(context.Background()) {
		t.Fatalf("expected service to be available")
	}
}

func TestAvailabilityFalseOnErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `oops`)
	client := New(srv.URL, "", 0, zap.NewNop())

	if client.Available(context.Background()) {
		t.Fatalf("expected service to be unavailable on 500")
	}
}

func TestErrorsAreTyped(t *testing.T) {
	t.Run("service error carries status and body", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusNotFound, `{"error":"model 'foo' not found"}`)
		client := New(srv.URL, "foo", 0, zap.NewNop())

		_, err := client.Chat(context.Background(), nil, ai.ChatOptions(""))
		var serviceErr *ai.ServiceError
		if !errors.As(err, &serviceErr) {
			t.Fatalf("expected ServiceError, got %v", err)
		}
		if serviceErr.StatusCode != http.StatusNotFound {
			t.Fatalf("unexpected status %d", serviceErr.StatusCode)
		}
		if serviceErr.Body != `{"error":"model 'foo' not found"}` {
			t.Fatalf("unexpected body %q", serviceErr.Body)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"model":"x"}`)
		client := New(srv.URL, "", 0, zap.NewNop())

		_, err := client.Generate(context.Background(), "p", ai.GenerateOptions(""))
		if !errors.Is(err, ai.ErrMalformedResponse) {
			t.Fatalf("expected malformed response, got %v", err)
		}
	})

	t.Run("not json", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `<html>`)
		client := New(srv.URL, "", 0, zap.NewNop())

		_, err := client.Models(context.Background())
		if !errors.Is(err, ai.ErrMalformedResponse) {
			t.Fatalf("expected malformed response, got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := New(url, "", 0, zap.NewNop())
		_, err := client.Generate(context.Background(), "p", ai.GenerateOptions(""))
		if !errors.Is(err, ai.ErrServiceUnavailable) {
			t.Fatalf("expected unavailable, got %v", err)
		}
		if client.Available(context.Background()) {
			t.Fatalf("closed server must not be available")
		}
	})
}

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/assistant"
	"github.com/spigell/jobapply/internal/kv"
	"github.com/spigell/jobapply/internal/profile"
)

func TestNewGateway(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	gw, err := newGateway(context.Background(), AIConfig{Provider: "Ollama", MaxRetries: 2}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "ollama", gw.Provider())

	_, err = newGateway(context.Background(), AIConfig{Provider: "gemini"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	_, err = newGateway(context.Background(), AIConfig{Provider: "openai"}, zap.NewNop())
	assert.EqualError(t, err, "unsupported ai provider: openai")
}

func TestSeedProfileFromResume(t *testing.T) {
	ctx := context.Background()
	profiles := profile.NewStore(kv.NewMemory(), zap.NewNop())

	resume := profile.Resume{Text: "Alex Stephens\nalex@example.com\n+1 555 123 4567\n"}
	require.NoError(t, seedProfile(ctx, profiles, ProfileConfig{}, resume))

	p, prefs := profiles.Load(ctx)
	assert.Equal(t, "alex@example.com", p.Email)
	assert.Equal(t, profile.DefaultPreferences(p), prefs)
}

func TestSeedProfileFromFile(t *testing.T) {
	ctx := context.Background()
	profiles := profile.NewStore(kv.NewMemory(), zap.NewNop())

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  fullName: Sam Lee\n  email: sam@example.com\n"), 0o600))

	require.NoError(t, seedProfile(ctx, profiles, ProfileConfig{File: path}, profile.Resume{}))

	p, _ := profiles.Load(ctx)
	assert.Equal(t, "Sam Lee", p.FullName)

	err := seedProfile(ctx, profiles, ProfileConfig{File: filepath.Join(t.TempDir(), "missing.yaml")}, profile.Resume{})
	assert.Error(t, err)
}

type providerGateway struct {
	ai.Gateway
	provider string
	model    string
}

func (g providerGateway) Provider() string { return g.provider }

func (g providerGateway) Model() string { return g.model }

func TestAssistantOptions(t *testing.T) {
	cfg := AIConfig{Ollama: OllamaConfig{Model: "llama3.2:3b", ReasoningModel: "deepseek-r1:8b"}}

	tests := []struct {
		name    string
		gateway ai.Gateway
		want    assistant.Options
	}{
		{
			name:    "gemini uses its own model",
			gateway: providerGateway{provider: "gemini", model: "gemini-2.0-flash"},
			want:    assistant.Options{Model: "gemini-2.0-flash", ReasoningModel: "gemini-2.0-flash"},
		},
		{
			name:    "ollama uses configured models",
			gateway: providerGateway{provider: "ollama", model: "llama3.2:3b"},
			want:    assistant.Options{Model: "llama3.2:3b", ReasoningModel: "deepseek-r1:8b"},
		},
		{
			name: "no gateway",
			want: assistant.Options{Model: "llama3.2:3b", ReasoningModel: "deepseek-r1:8b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assistantOptions(cfg, tt.gateway))
		})
	}
}

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/envirolink/internal/config"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Compost it."}}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{AI: config.AIConfig{
		Provider: config.ProviderOpenAI,
		OpenAI:   config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"},
	}}
	gen, err := New(cfg)
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), Request{
		Parts:   Assemble("system", "", "What do I do with peels?"),
		Options: ChatOptions,
	})
	require.NoError(t, err)
	assert.Equal(t, "Compost it.", text)

	assert.Equal(t, "gpt-test", got["model"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, "What do I do with peels?", messages[1].(map[string]any)["content"])
}

func TestOpenAIClient_ServerErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(&config.Config{AI: config.AIConfig{
		OpenAI: config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL},
	}})

	_, err := client.Generate(context.Background(), Request{Parts: Assemble("s", "", "q")})
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestOpenAIClient_MissingKey(t *testing.T) {
	t.Setenv(config.EnvOpenAIAPIKey, "")
	client := NewOpenAIClient(&config.Config{})

	_, err := client.Generate(context.Background(), Request{Parts: Assemble("s", "", "q")})
	assert.ErrorIs(t, err, ErrCredentialMissing)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(&config.Config{AI: config.AIConfig{Provider: "llama"}})
	assert.ErrorContains(t, err, "unknown ai provider")
}

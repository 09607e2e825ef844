package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anivise/internal/health"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_MissingAPIKey(t *testing.T) {
	g := NewGeminiClient(Options{APIKey: "   "})

	_, err := g.Generate(context.Background(), "sys", "hello")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = g.ListModels(context.Background())
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	assert.Equal(t, DefaultModel, g.Model())
}

func TestGeminiClient_Generate(t *testing.T) {
	var gotBody map[string]any
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"intent\":\"top_all_time\"}"}]}}]}`))
	}))
	defer server.Close()

	tracker := health.NewService(3)
	g := NewGeminiClient(Options{
		APIKey:   "test-key",
		Model:    "gemini-test",
		BaseURL:  server.URL,
		Reporter: tracker,
	})

	text, err := g.Generate(context.Background(), "classify", "User: top anime")
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"top_all_time"}`, text)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-test:generateContent"), gotPath)
	assert.Contains(t, gotBody, "systemInstruction")

	h, ok := tracker.Get(health.UpstreamGemini)
	require.True(t, ok)
	assert.Equal(t, health.StatusHealthy, h.Status)
}

func TestGeminiClient_GenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	tracker := health.NewService(3)
	g := NewGeminiClient(Options{APIKey: "k", BaseURL: server.URL, Reporter: tracker})

	_, err := g.Generate(context.Background(), "", "hi")
	require.Error(t, err)
	assert.False(t, tracker.IsHealthy(health.UpstreamGemini))
}

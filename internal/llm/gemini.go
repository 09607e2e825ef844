// Package llm wraps the Gemini generative API behind small interfaces so the
// classifier and recommender can be tested with fakes.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"anivise/internal/health"
	"anivise/internal/models"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// DefaultModel is used when GEMINI_MODEL is unset
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned by every call when no credential is configured
var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY")

// Generator produces a single text completion
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ModelLister lists the models available to the configured credential
type ModelLister interface {
	ListModels(ctx context.Context) ([]models.Model, error)
}

// Options configures a GeminiClient
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Reporter   health.Reporter
}

// GeminiClient talks to the Gemini API. The SDK client is built on first use so
// the server can start without a key and answer 500 per request instead.
type GeminiClient struct {
	opts Options

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiClient creates a client; no network traffic happens here
func NewGeminiClient(opts Options) *GeminiClient {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Reporter == nil {
		opts.Reporter = health.NopReporter{}
	}
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	return &GeminiClient{opts: opts}
}

// Model returns the configured model name
func (g *GeminiClient) Model() string {
	return g.opts.Model
}

func (g *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	if g.opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:     g.opts.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.opts.HTTPClient,
		}
		if g.opts.BaseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.opts.BaseURL}
		}
		g.client, g.initErr = genai.NewClient(ctx, cfg)
		if g.initErr != nil {
			g.initErr = fmt.Errorf("failed to create Gemini client: %w", g.initErr)
		}
	})
	return g.client, g.initErr
}

// Generate sends the system instruction and prompt and returns the reply text
func (g *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(system)},
		}
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx,
		g.opts.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		g.opts.Reporter.MarkFailed(health.UpstreamGemini, 0, err.Error())
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	g.opts.Reporter.MarkHealthy(health.UpstreamGemini)

	text := resp.Text()
	log.WithFields(log.Fields{
		"model":    g.opts.Model,
		"duration": time.Since(start).String(),
		"chars":    len(text),
	}).Debug("[GEMINI] Generation complete")
	return text, nil
}

// ListModels returns every model visible to the key, following pagination
func (g *GeminiClient) ListModels(ctx context.Context) ([]models.Model, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return nil, err
	}

	page, err := client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 100})
	if err != nil {
		g.opts.Reporter.MarkFailed(health.UpstreamGemini, 0, err.Error())
		return nil, fmt.Errorf("gemini list models failed: %w", err)
	}

	var result []models.Model
	for {
		for _, m := range page.Items {
			result = append(result, toModel(m))
		}
		if page.NextPageToken == "" {
			break
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			g.opts.Reporter.MarkFailed(health.UpstreamGemini, 0, err.Error())
			return nil, fmt.Errorf("gemini list models failed: %w", err)
		}
	}
	g.opts.Reporter.MarkHealthy(health.UpstreamGemini)
	return result, nil
}

// Ping lists one page of models; used by the health probe
func (g *GeminiClient) Ping(ctx context.Context) error {
	client, err := g.sdk(ctx)
	if err != nil {
		return err
	}
	_, err = client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	return err
}

func toModel(m *genai.Model) models.Model {
	return models.Model{
		Name:             m.Name,
		DisplayName:      m.DisplayName,
		Description:      m.Description,
		Version:          m.Version,
		InputTokenLimit:  m.InputTokenLimit,
		OutputTokenLimit: m.OutputTokenLimit,
		SupportedActions: m.SupportedActions,
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anivise/internal/llm"
	"anivise/internal/models"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const recommendSystemPrompt = `You are an anime recommendation system.
Recommend anime that match the user's request.
Reply with a JSON array ONLY, no markdown and no commentary, shaped like:
[
  {"title": "", "genre": [], "synopsis": "", "reason": ""}
]
Write synopsis and reason in the language the user wrote in.`

// RecommendService asks the model for a free-form list of recommendations
type RecommendService struct {
	generator llm.Generator
	metrics   *Metrics
}

// NewRecommendService creates a recommender backed by generator
func NewRecommendService(generator llm.Generator) *RecommendService {
	return &RecommendService{generator: generator, metrics: GetMetrics()}
}

// Recommend returns the model's suggestions for prompt. An unusable reply
// yields an empty list; upstream failures are returned as errors.
func (s *RecommendService) Recommend(ctx context.Context, prompt string) ([]models.Recommendation, error) {
	if strings.TrimSpace(prompt) == "" {
		s.metrics.RecordRecommendation("empty")
		return []models.Recommendation{}, nil
	}

	raw, err := s.generator.Generate(ctx, recommendSystemPrompt, "Permintaan user: "+prompt)
	if err != nil {
		if !errors.Is(err, llm.ErrMissingAPIKey) {
			s.metrics.RecordRecommendation("error")
		}
		return nil, fmt.Errorf("recommendation request failed: %w", err)
	}

	recs := ParseRecommendations(raw)
	if len(recs) == 0 {
		log.WithField("raw", truncate(raw, 200)).Warn("[RECOMMEND] No usable recommendations in model reply")
		s.metrics.RecordRecommendation("empty")
	} else {
		s.metrics.RecordRecommendation("ok")
	}
	return recs, nil
}

// ParseRecommendations extracts recommendations from a model reply. An object
// reply contributes each of its object-valued members.
func ParseRecommendations(raw string) []models.Recommendation {
	recs := []models.Recommendation{}

	outcome := ParseIntentReply(raw)
	if outcome.Kind == ParseFailed {
		return recs
	}

	var items []gjson.Result
	switch {
	case outcome.Value.IsArray():
		items = outcome.Value.Array()
	case outcome.Value.IsObject():
		if looksLikeRecommendation(outcome.Value) {
			items = []gjson.Result{outcome.Value}
			break
		}
		outcome.Value.ForEach(func(_, value gjson.Result) bool {
			if value.IsArray() {
				items = append(items, value.Array()...)
			} else {
				items = append(items, value)
			}
			return true
		})
	}

	for _, item := range items {
		if !item.IsObject() || !looksLikeRecommendation(item) {
			continue
		}
		recs = append(recs, models.Recommendation{
			Title:    strings.TrimSpace(item.Get("title").String()),
			Genre:    stringList(item.Get("genre")),
			Synopsis: strings.TrimSpace(item.Get("synopsis").String()),
			Reason:   strings.TrimSpace(item.Get("reason").String()),
		})
	}
	return recs
}

func looksLikeRecommendation(item gjson.Result) bool {
	return strings.TrimSpace(item.Get("title").String()) != ""
}

// stringList accepts ["a","b"] or "a, b"
func stringList(r gjson.Result) []string {
	out := []string{}
	if r.IsArray() {
		for _, v := range r.Array() {
			if s := strings.TrimSpace(v.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	for _, part := range strings.Split(r.String(), ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

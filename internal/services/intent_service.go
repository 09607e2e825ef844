package services

import (
	"context"
	"errors"
	"strings"

	"anivise/internal/llm"
	"anivise/internal/models"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const intentSystemPrompt = `You are the intent parser for Anivise, an anime assistant.
Reply with STRICT JSON ONLY. No markdown, no commentary, no backticks.

Schema:
{
  "intent": "<one of the intents below>",
  "params": {
    "query": string | null,
    "title": string | null,
    "anime": string | null,
    "year": number | null,
    "season": "winter" | "spring" | "summer" | "fall" | null,
    "genre": string | null,
    "character": string | null,
    "day": "monday" | "tuesday" | "wednesday" | "thursday" | "friday" | "saturday" | "sunday" | null,
    "top_n": number,
    "extras": object
  }
}

Intents:
- anime_recommendation_general
- anime_recommendation_by_year
- anime_recommendation_by_season
- anime_recommendation_by_genre
- anime_info
- rating_lookup
- character_best
- character_info
- anime_search
- character_search
- airing_schedule
- episode_list
- trending_now
- top_all_time
- unknown

Quantity rules for params.top_n:
- "salah satu", "nomor 1", "no 1", "top 1", "one", "satu", "yang terbaik" mean 1
- an explicit number such as "3 anime terbaik" means that number
- "beberapa", "a few" mean 3
- otherwise 10

Examples:
User: Salah satu anime terbaik di tahun 2020
{"intent":"anime_recommendation_by_year","params":{"year":2020,"top_n":1}}

User: Who is the most popular character in Naruto?
{"intent":"character_best","params":{"anime":"Naruto","top_n":1}}

User: Berapa rating Frieren?
{"intent":"rating_lookup","params":{"title":"Frieren","top_n":1}}
`

// IntentService classifies free text into an intent and parameters
type IntentService struct {
	generator llm.Generator
	metrics   *Metrics
}

// NewIntentService creates a classifier backed by generator
func NewIntentService(generator llm.Generator) *IntentService {
	return &IntentService{
		generator: generator,
		metrics:   GetMetrics(),
	}
}

// Classify returns the intent and parameters for prompt. The only error it
// surfaces is llm.ErrMissingAPIKey; every other failure degrades to keyword
// heuristics.
func (s *IntentService) Classify(ctx context.Context, prompt string) (models.Classification, error) {
	if strings.TrimSpace(prompt) == "" {
		s.metrics.RecordClassification("empty")
		return models.Classification{
			Intent: models.IntentUnknown,
			Params: models.Params{TopN: models.DefaultTopN},
		}, nil
	}

	raw, err := s.generator.Generate(ctx, intentSystemPrompt, "User: "+prompt)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return models.Classification{}, err
		}
		log.WithError(err).Warn("[INTENT] Model call failed, using keyword heuristics")
		s.metrics.RecordClassification("heuristic")
		return HeuristicClassify(prompt), nil
	}

	outcome := ParseIntentReply(raw)
	log.WithFields(log.Fields{
		"raw":     truncate(raw, 500),
		"cleaned": truncate(outcome.Cleaned, 500),
		"stage":   outcome.Kind,
	}).Debug("[INTENT] Model reply")

	if outcome.Kind == ParseFailed {
		log.WithField("cleaned", truncate(outcome.Cleaned, 200)).Warn("[INTENT] Reply is not JSON, using keyword heuristics")
		s.metrics.RecordClassification("heuristic")
		return HeuristicClassify(prompt), nil
	}

	s.metrics.RecordClassification(string(outcome.Kind))
	return classificationFromReply(outcome.Value), nil
}

// classificationFromReply reads {intent, params} from a parsed reply. Arrays
// contribute their first element; anything unexpected becomes unknown.
func classificationFromReply(value gjson.Result) models.Classification {
	if value.IsArray() {
		value = value.Get("0")
	}

	intent := models.IntentUnknown
	if raw := value.Get("intent"); raw.Type == gjson.String {
		intent = models.ParseIntent(raw.String())
	}

	var params models.Params
	if raw := value.Get("params"); raw.IsObject() {
		if err := params.UnmarshalJSON([]byte(raw.Raw)); err != nil {
			log.WithError(err).Warn("[INTENT] Ignoring malformed params")
			params = models.Params{}
		}
	}
	params = params.Normalize()

	return models.Classification{Intent: intent, Params: params}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

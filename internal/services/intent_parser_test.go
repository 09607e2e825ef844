package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "{}"},
		{"whitespace", "  \n ", "{}"},
		{"fenced", "```json\n{\"intent\":\"unknown\"}\n```", `{"intent":"unknown"}`},
		{"upper fence", "```JSON {\"a\":1} ```", `{"a":1}`},
		{"prose around", `Sure! Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"array", `result: [1,2] done`, `[1,2]`},
		{"no brackets", "I cannot help", "I cannot help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeReply(tt.raw))
		})
	}
}

func TestParseIntentReply_Stages(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		kind   ParseKind
		intent string
	}{
		{"strict", `{"intent":"top_all_time","params":{"top_n":5}}`, ParseParsed, "top_all_time"},
		{"fenced strict", "```json\n{\"intent\":\"anime_info\"}\n```", ParseParsed, "anime_info"},
		{"trailing comma", `{"intent":"anime_info","params":{"title":"Naruto",},}`, ParseRepaired, "anime_info"},
		{"single quotes", `{'intent':'rating_lookup'}`, ParseRepaired, "rating_lookup"},
		{"bare keys", `{intent: "trending_now", params: {top_n: 3}}`, ParseRepaired, "trending_now"},
		{"raw newline in string", "{\"intent\":\"anime_search\",\"params\":{\"query\":\"one\npiece\"}}", ParseRepaired, "anime_search"},
		{"spaced key", `{"intent" : "episode_list",}`, ParseRepaired, "episode_list"},
		{"prose only", "Sorry, I can't do that.", ParseFailed, ""},
		{"broken", `{"intent": "x", "params": {`, ParseFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParseIntentReply(tt.raw)
			assert.Equal(t, tt.kind, outcome.Kind, "cleaned: %s", outcome.Cleaned)
			if tt.kind != ParseFailed {
				assert.Equal(t, tt.intent, outcome.Value.Get("intent").String())
			}
		})
	}
}

func TestParseIntentReply_EmptyIsEmptyObject(t *testing.T) {
	outcome := ParseIntentReply("")
	assert.Equal(t, ParseParsed, outcome.Kind)
	assert.True(t, outcome.Value.IsObject())
}

func TestParseIntentReply_ScalarIsFailure(t *testing.T) {
	assert.Equal(t, ParseFailed, ParseIntentReply(`"just a string"`).Kind)
}

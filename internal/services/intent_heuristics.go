package services

import (
	"regexp"
	"strconv"
	"strings"

	"anivise/internal/models"
)

var (
	singleQuantityPattern = regexp.MustCompile(`(?i)\b(salah satu|nomor 1|no 1|top 1|one|satu|yang terbaik)\b`)
	fewQuantityPattern    = regexp.MustCompile(`(?i)\b(beberapa|a few|some)\b`)
	numeralPattern        = regexp.MustCompile(`\b\d+\b`)
	yearPattern           = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	ratingPattern    = regexp.MustCompile(`(?i)rating|score|rate|berapa rating`)
	characterPattern = regexp.MustCompile(`(?i)character|karakter|who is|siapa`)
	episodePattern   = regexp.MustCompile(`(?i)episode`)
	schedulePattern  = regexp.MustCompile(`(?i)airing|schedule|tayang`)

	// words removed from a prompt to leave the anime title behind
	titleNoisePattern = regexp.MustCompile(`(?i)\b(?:berapa|rating|ratings|score|scores|rate|character|characters|karakter|who is|siapa|episode|episodes|list|daftar|of|the|for|in|di|dari|untuk|from|tahun|year|anime|apa|what|is|are|best|terbaik|terkuat|strongest|most|popular|populer|salah satu|satu|one|nomor|no|top|beberapa|a few|some|semua|all)\b|\d+|[?!.,:;"]`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// HeuristicClassify infers a classification from keywords alone. It is the
// fallback when the model is unreachable or its reply is unusable, and never fails.
func HeuristicClassify(prompt string) models.Classification {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.Classification{
			Intent: models.IntentUnknown,
			Params: models.Params{TopN: models.DefaultTopN},
		}
	}

	year := heuristicYear(prompt)

	// later matches take precedence
	intent := models.IntentRecommendationGeneral
	matched := false
	for _, rule := range []struct {
		pattern *regexp.Regexp
		intent  models.Intent
	}{
		{ratingPattern, models.IntentRatingLookup},
		{characterPattern, models.IntentCharacterBest},
		{episodePattern, models.IntentEpisodeList},
		{schedulePattern, models.IntentAiringSchedule},
	} {
		if rule.pattern.MatchString(prompt) {
			intent = rule.intent
			matched = true
		}
	}
	if !matched && year != 0 {
		intent = models.IntentRecommendationByYear
	}

	params := models.Params{
		Query: prompt,
		Year:  year,
		TopN:  heuristicTopN(prompt),
	}
	switch intent {
	case models.IntentRatingLookup, models.IntentEpisodeList:
		params.Title = heuristicTitle(prompt)
	case models.IntentCharacterBest:
		params.Anime = heuristicTitle(prompt)
	}

	return models.Classification{Intent: intent, Params: params}
}

// heuristicTitle strips intent and quantity words, leaving the title the user named
func heuristicTitle(prompt string) string {
	title := titleNoisePattern.ReplaceAllString(prompt, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(title, " "))
}

// heuristicTopN reads the first positive numeral that is not a year, then
// falls back to quantity words
func heuristicTopN(prompt string) int {
	for _, token := range numeralPattern.FindAllString(prompt, -1) {
		if yearPattern.MatchString(token) {
			continue
		}
		if n, err := strconv.Atoi(token); err == nil && n > 0 {
			return n
		}
	}

	topN := models.DefaultTopN
	if singleQuantityPattern.MatchString(prompt) {
		topN = 1
	}
	if fewQuantityPattern.MatchString(prompt) {
		topN = 3
	}
	return topN
}

func heuristicYear(prompt string) int {
	match := yearPattern.FindString(prompt)
	if match == "" {
		return 0
	}
	year, _ := strconv.Atoi(match)
	return year
}

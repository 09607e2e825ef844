package models

import "strings"

// Intent is the classified category of a user request. It selects both the
// dispatcher strategy and the presentation view.
type Intent string

const (
	IntentRecommendationGeneral  Intent = "anime_recommendation_general"
	IntentRecommendationByYear   Intent = "anime_recommendation_by_year"
	IntentRecommendationBySeason Intent = "anime_recommendation_by_season"
	IntentRecommendationByGenre  Intent = "anime_recommendation_by_genre"
	IntentAnimeInfo              Intent = "anime_info"
	IntentRatingLookup           Intent = "rating_lookup"
	IntentCharacterBest          Intent = "character_best"
	IntentCharacterInfo          Intent = "character_info"
	IntentAnimeSearch            Intent = "anime_search"
	IntentCharacterSearch        Intent = "character_search"
	IntentAiringSchedule         Intent = "airing_schedule"
	IntentEpisodeList            Intent = "episode_list"
	IntentTrendingNow            Intent = "trending_now"
	IntentTopAllTime             Intent = "top_all_time"
	IntentUnknown                Intent = "unknown"

	// IntentError is only ever emitted by the router endpoint on failure.
	IntentError Intent = "error"
)

// AllIntents lists the closed enumeration in the order the classifier prompt presents it.
var AllIntents = []Intent{
	IntentRecommendationGeneral,
	IntentRecommendationByYear,
	IntentRecommendationBySeason,
	IntentRecommendationByGenre,
	IntentAnimeInfo,
	IntentRatingLookup,
	IntentCharacterBest,
	IntentCharacterInfo,
	IntentAnimeSearch,
	IntentCharacterSearch,
	IntentAiringSchedule,
	IntentEpisodeList,
	IntentTrendingNow,
	IntentTopAllTime,
	IntentUnknown,
}

var knownIntents = func() map[Intent]bool {
	m := make(map[Intent]bool, len(AllIntents))
	for _, i := range AllIntents {
		m[i] = true
	}
	return m
}()

// ParseIntent normalizes a raw tag. Anything outside the enumeration becomes IntentUnknown.
func ParseIntent(raw string) Intent {
	i := Intent(strings.ToLower(strings.TrimSpace(raw)))
	if knownIntents[i] {
		return i
	}
	return IntentUnknown
}

// Known reports whether the intent belongs to the closed enumeration
func (i Intent) Known() bool {
	return knownIntents[i]
}

func (i Intent) String() string {
	return string(i)
}

// Package presentation turns dispatcher results into display cards and an
// HTML fragment. The view family is chosen from the intent alone.
package presentation

import "anivise/internal/models"

// View names a widget family
type View string

const (
	ViewCharacterGrid View = "character_grid"
	ViewAnimeGrid     View = "anime_grid"
	ViewRatingCard    View = "rating_card"
	ViewEpisodeList   View = "episode_list"
	ViewScheduleList  View = "schedule_list"
	ViewNone          View = "none"
)

// ViewFor selects the view for an intent
func ViewFor(intent models.Intent) View {
	switch intent {
	case models.IntentCharacterBest, models.IntentCharacterInfo, models.IntentCharacterSearch:
		return ViewCharacterGrid
	case models.IntentRecommendationGeneral,
		models.IntentRecommendationByYear,
		models.IntentRecommendationBySeason,
		models.IntentRecommendationByGenre,
		models.IntentAnimeSearch,
		models.IntentAnimeInfo,
		models.IntentTrendingNow,
		models.IntentTopAllTime:
		return ViewAnimeGrid
	case models.IntentRatingLookup:
		return ViewRatingCard
	case models.IntentEpisodeList:
		return ViewEpisodeList
	case models.IntentAiringSchedule:
		return ViewScheduleList
	default:
		return ViewNone
	}
}

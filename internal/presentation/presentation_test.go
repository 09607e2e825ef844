package presentation

import (
	"encoding/json"
	"testing"

	"anivise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestViewFor(t *testing.T) {
	tests := map[models.Intent]View{
		models.IntentCharacterBest:          ViewCharacterGrid,
		models.IntentCharacterInfo:          ViewCharacterGrid,
		models.IntentCharacterSearch:        ViewCharacterGrid,
		models.IntentRecommendationByGenre:  ViewAnimeGrid,
		models.IntentRecommendationGeneral:  ViewAnimeGrid,
		models.IntentRecommendationByYear:   ViewAnimeGrid,
		models.IntentRecommendationBySeason: ViewAnimeGrid,
		models.IntentAnimeSearch:            ViewAnimeGrid,
		models.IntentTrendingNow:            ViewAnimeGrid,
		models.IntentTopAllTime:             ViewAnimeGrid,
		models.IntentAnimeInfo:              ViewAnimeGrid,
		models.IntentRatingLookup:           ViewRatingCard,
		models.IntentEpisodeList:            ViewEpisodeList,
		models.IntentAiringSchedule:         ViewScheduleList,
		models.IntentUnknown:                ViewNone,
		models.IntentError:                  ViewNone,
	}
	for intent, want := range tests {
		assert.Equal(t, want, ViewFor(intent), intent)
	}
}

func TestProject_AnimeDefaults(t *testing.T) {
	cards := Project(ViewAnimeGrid, raw(
		`{"title":"Frieren","score":9.3,"aired":{"string":"Sep 29, 2023 to Mar 22, 2024"},"images":{"jpg":{"image_url":"https://img/f.jpg"}},"synopsis":"An elf mage."}`,
		`{"title":"Obscure"}`,
	))
	require.Len(t, cards, 2)
	assert.Equal(t, Card{
		Title:    "Frieren",
		Subtitle: "Sep 29, 2023 to Mar 22, 2024",
		Image:    "https://img/f.jpg",
		Score:    "9.3",
		Body:     "An elf mage.",
	}, cards[0])
	assert.Equal(t, "N/A", cards[1].Score)
	assert.Equal(t, "Unknown Release Date", cards[1].Subtitle)
	assert.Equal(t, "No synopsis available.", cards[1].Body)
}

func TestProject_CharacterAndRating(t *testing.T) {
	chars := Project(ViewCharacterGrid, raw(`{"name":"Levi","role":"Main","favorites":150000,"image":"https://img/l.jpg"}`))
	require.Len(t, chars, 1)
	assert.Equal(t, "♥ 150,000", chars[0].Score)
	assert.Equal(t, "Main", chars[0].Subtitle)

	rating := Project(ViewRatingCard, raw(`{"title":"Frieren","score":9.3,"members":1000000}`, `{"title":"ignored"}`))
	require.Len(t, rating, 1)
	assert.Equal(t, "9.3", rating[0].Score)
	assert.Equal(t, "Members: 1,000,000", rating[0].Subtitle)

	noScore := Project(ViewRatingCard, raw(`{"title":"X","score":null}`))
	assert.Equal(t, "N/A", noScore[0].Score)
	assert.Equal(t, "Members: —", noScore[0].Subtitle)
}

func TestProject_Episodes(t *testing.T) {
	cards := Project(ViewEpisodeList, raw(
		`{"mal_id":1,"title":"The Journey's End","aired":"2023-09-29T00:00:00+00:00"}`,
		`{"title":null}`,
	))
	require.Len(t, cards, 2)
	assert.Equal(t, "Episode 1: The Journey's End", cards[0].Title)
	assert.Equal(t, "Aired: Sep 29, 2023", cards[0].Subtitle)
	assert.Equal(t, "Episode 2: Untitled", cards[1].Title)
	assert.Equal(t, "Aired: Unknown", cards[1].Subtitle)
}

func TestProject_Schedule(t *testing.T) {
	cards := Project(ViewScheduleList, raw(`{"title":"One Piece","broadcast":{"string":"Sundays at 09:30 (JST)"}}`))
	require.Len(t, cards, 1)
	assert.Equal(t, "Sundays at 09:30 (JST)", cards[0].Subtitle)
}

func TestProject_EmptyAndNone(t *testing.T) {
	assert.Equal(t, []Card{}, Project(ViewAnimeGrid, nil))
	assert.Equal(t, []Card{}, Project(ViewNone, raw(`{"title":"x"}`)))
}

func TestRender_Empty(t *testing.T) {
	r, err := Render(models.IntentTopAllTime, nil)
	require.NoError(t, err)
	assert.Equal(t, ViewAnimeGrid, r.View)
	assert.Equal(t, "<p>No results found.</p>\n", r.HTML)
}

func TestRender_NoRenderer(t *testing.T) {
	r, err := Render(models.IntentUnknown, raw(`{}`))
	require.NoError(t, err)
	assert.Equal(t, ViewNone, r.View)
	assert.Contains(t, r.HTML, "No renderer available for intent: unknown")
}

func TestRender_AnimeGrid(t *testing.T) {
	r, err := Render(models.IntentTrendingNow, raw(`{"title":"Frieren","score":9.3,"images":{"jpg":{"image_url":"https://img/f.jpg"}}}`))
	require.NoError(t, err)
	assert.Contains(t, r.HTML, "<h3>Frieren</h3>")
	assert.Contains(t, r.HTML, `<img src="https://img/f.jpg" alt="Frieren">`)
	assert.Contains(t, r.HTML, "<strong>9.3</strong>")
}

func TestRender_EscapesUpstreamText(t *testing.T) {
	r, err := Render(models.IntentAnimeSearch, raw(`{"title":"<script>alert(1)</script>","synopsis":"**bold** _x_"}`))
	require.NoError(t, err)
	assert.NotContains(t, r.HTML, "<script>")
	assert.Contains(t, r.HTML, "&lt;script&gt;")
	assert.Contains(t, r.HTML, "**bold** _x_")
}

func TestRenderMarkdown_Rating(t *testing.T) {
	md := RenderMarkdown(models.IntentRatingLookup, ViewRatingCard, []Card{{Title: "Frieren", Score: "9.3", Subtitle: "Members: 10"}})
	assert.Equal(t, "## Frieren\n\n**9.3**\n\nMembers: 10\n", md)
}

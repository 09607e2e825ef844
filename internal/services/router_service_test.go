package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"anivise/internal/jikan"
	"anivise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJikan serves canned bodies keyed by "path?rawquery" and records every request
type fakeJikan struct {
	t        *testing.T
	mu       sync.Mutex
	routes   map[string]string
	requests []string
	status   int
}

func newFakeJikan(t *testing.T, routes map[string]string) (*fakeJikan, *jikan.Client) {
	t.Helper()
	f := &fakeJikan{t: t, routes: routes, status: http.StatusOK}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, jikan.NewClient(jikan.Options{BaseURL: server.URL, RatePerSecond: 1000})
}

func (f *fakeJikan) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	f.mu.Lock()
	f.requests = append(f.requests, key)
	status := f.status
	body, ok := f.routes[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"upstream down"}`))
		return
	}
	if !ok {
		body = `{"data":[]}`
	}
	_, _ = w.Write([]byte(body))
}

func (f *fakeJikan) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func animeList(ids ...int) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = `{"mal_id":` + itoa(id) + `,"title":"Anime ` + itoa(id) + `"}`
	}
	return `{"data":[` + strings.Join(items, ",") + `]}`
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}

func malIDs(t *testing.T, data []json.RawMessage) []int {
	t.Helper()
	ids := make([]int, len(data))
	for i, r := range data {
		ids[i] = jikan.MalID(r)
	}
	return ids
}

func TestRoute_UnknownIntent(t *testing.T) {
	fake, client := newFakeJikan(t, nil)
	svc := NewRouterService(client, nil)

	for _, intent := range []string{"", "weather", "unknown"} {
		got, err := svc.Route(context.Background(), intent, models.Params{})
		require.NoError(t, err)
		assert.Equal(t, models.IntentUnknown, got.Intent)
		assert.NotNil(t, got.Data)
		assert.Empty(t, got.Data)
	}
	assert.Empty(t, fake.calls())
}

func TestRoute_MissingParameterIsEmpty(t *testing.T) {
	fake, client := newFakeJikan(t, nil)
	svc := NewRouterService(client, nil)

	for _, intent := range []models.Intent{
		models.IntentRecommendationByYear,
		models.IntentAnimeInfo,
		models.IntentRatingLookup,
		models.IntentCharacterBest,
		models.IntentCharacterInfo,
		models.IntentEpisodeList,
		models.IntentRecommendationBySeason,
	} {
		got, err := svc.Route(context.Background(), string(intent), models.Params{})
		require.NoError(t, err, intent)
		assert.Equal(t, intent, got.Intent)
		assert.Empty(t, got.Data, intent)
	}
	assert.Empty(t, fake.calls())
}

func TestRoute_ByYearPrimary(t *testing.T) {
	fake, client := newFakeJikan(t, map[string]string{
		"/anime?end_date=2020-12-31&limit=3&order_by=score&sort=desc&start_date=2020-01-01": animeList(1, 2, 3, 4),
	})
	svc := NewRouterService(client, nil)

	got, err := svc.Route(context.Background(), "anime_recommendation_by_year", models.Params{Year: 2020, TopN: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, malIDs(t, got.Data))
	assert.Empty(t, got.Fallback)
	assert.Len(t, fake.calls(), 1)
}

func TestRoute_ByYearFallbacks(t *testing.T) {
	fake, client := newFakeJikan(t, map[string]string{
		"/anime?limit=10&q=1999": animeList(9, 8),
	})
	svc := NewRouterService(client, nil)

	got, err := svc.Route(context.Background(), "anime_recommendation_by_year", models.Params{Year: 1999})
	require.NoError(t, err)
	assert.Equal(t, []int{9, 8}, malIDs(t, got.Data))
	assert.Equal(t, models.FallbackKeyword, got.Fallback)
	assert.Len(t, fake.calls(), 2)

	fake2, client2 := newFakeJikan(t, map[string]string{
		"/top/anime?limit=2": animeList(5114, 9253),
	})
	got, err = NewRouterService(client2, nil).Route(context.Background(), "anime_recommendation_by_year", models.Params{Year: 1901, TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{5114, 9253}, malIDs(t, got.Data))
	assert.Equal(t, models.FallbackGlobalTop, got.Fallback)
	assert.Len(t, fake2.calls(), 3)
}

func TestRoute_ByYearAllStagesEmpty(t *testing.T) {
	fake, client := newFakeJikan(t, nil)

	got, err := NewRouterService(client, nil).Route(context.Background(), "anime_recommendation_by_year", models.Params{Year: 1901, TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []json.RawMessage{}, got.Data)
	assert.Empty(t, got.Fallback)
	assert.Equal(t, []string{
		"/anime?end_date=1901-12-31&limit=2&order_by=score&sort=desc&start_date=1901-01-01",
		"/anime?limit=2&q=1901",
		"/top/anime?limit=2",
	}, fake.calls())

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"anime_recommendation_by_year","data":[]}`, string(raw))
}

func TestRoute_ByGenre(t *testing.T) {
	genres := `{"data":[{"mal_id":1,"name":"Action"},{"mal_id":22,"name":"Romance"}]}`
	_, client := newFakeJikan(t, map[string]string{
		"/genres/anime": genres,
		"/anime?genres=22&limit=10&order_by=score&sort=desc": animeList(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11),
		"/anime?genres=1&limit=1&order_by=score&sort=desc":   animeList(42),
	})
	svc := NewRouterService(client, nil)

	got, err := svc.Route(context.Background(), "anime_recommendation_by_genre", models.Params{Genre: "romantis", TopN: 50})
	require.NoError(t, err)
	assert.Len(t, got.Data, 10)
	assert.Empty(t, got.Fallback)

	got, err = svc.Route(context.Background(), "anime_recommendation_by_genre", models.Params{Query: "action", TopN: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{42}, malIDs(t, got.Data))
}

func TestRoute_ByGenreUnresolvedFallsBackToTop(t *testing.T) {
	_, client := newFakeJikan(t, map[string]string{
		"/genres/anime":       `{"data":[{"mal_id":1,"name":"Action"}]}`,
		"/top/anime?limit=10": animeList(1, 2),
	})
	svc := NewRouterService(client, nil)

	got, err := svc.Route(context.Background(), "anime_recommendation_by_genre", models.Params{Genre: "cooking battles"})
	require.NoError(t, err)
	assert.Equal(t, models.FallbackGlobalTop, got.Fallback)
	assert.Equal(t, []int{1, 2}, malIDs(t, got.Data))

	got, err = svc.Route(context.Background(), "anime_recommendation_by_genre", models.Params{})
	require.NoError(t, err)
	assert.Equal(t, models.FallbackGlobalTop, got.Fallback)
}

func TestRoute_BySeason(t *testing.T) {
	_, client := newFakeJikan(t, map[string]string{
		"/seasons/2023/fall?limit=2": animeList(1, 2, 3),
	})
	got, err := NewRouterService(client, nil).Route(context.Background(), "anime_recommendation_by_season",
		models.Params{Year: 2023, Season: "autumn", TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, malIDs(t, got.Data))
}

func TestRoute_TextSearch(t *testing.T) {
	_, client := newFakeJikan(t, map[string]string{
		"/anime?limit=2&q=mecha": animeList(30, 31, 32),
	})
	svc := NewRouterService(client, nil)

	got, err := svc.Route(context.Background(), "anime_recommendation_general", models.Params{Genre: "mecha", TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{30, 31}, malIDs(t, got.Data))

	got, err = svc.Route(context.Background(), "anime_search", models.Params{Query: "mecha", TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{30, 31}, malIDs(t, got.Data))
}

func TestRoute_AnimeInfoAndRating(t *testing.T) {
	_, client := newFakeJikan(t, map[string]string{
		"/anime?limit=1&q=Frieren": `{"data":[{"mal_id":52991,"title":"Sousou no Frieren","score":9.3,"members":1000000}]}`,
		"/anime?limit=1&q=Nothing": `{"data":[{"mal_id":1,"title":"Nothing","score":null}]}`,
	})
	svc := NewRouterService(client, nil)

	info, err := svc.Route(context.Background(), "anime_info", models.Params{Title: "Frieren"})
	require.NoError(t, err)
	require.Len(t, info.Data, 1)
	assert.Equal(t, 52991, jikan.MalID(info.Data[0]))

	rating, err := svc.Route(context.Background(), "rating_lookup", models.Params{Anime: "Frieren"})
	require.NoError(t, err)
	require.Len(t, rating.Data, 1)
	assert.JSONEq(t, `{"title":"Sousou no Frieren","score":9.3,"members":1000000}`, string(rating.Data[0]))

	rating, err = svc.Route(context.Background(), "rating_lookup", models.Params{Title: "Nothing"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Nothing","score":null,"members":null}`, string(rating.Data[0]))

	none, err := svc.Route(context.Background(), "anime_info", models.Params{Title: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none.Data)
}

func TestRoute_CharacterBest(t *testing.T) {
	_, client := newFakeJikan(t, map[string]string{
		"/anime?limit=1&q=Naruto": animeList(20),
		"/anime/20/characters": `{"data":[
			{"character":{"mal_id":17,"name":"Uzumaki, Naruto","images":{"jpg":{"image_url":"https://img/naruto.jpg"}}},"role":"Main","favorites":80000},
			{"character":{"mal_id":13,"name":"Uchiha, Sasuke"},"role":"Main"}
		]}`,
	})

	got, err := NewRouterService(client, nil).Route(context.Background(), "character_best", models.Params{Query: "Naruto", TopN: 1})
	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.JSONEq(t, `{"name":"Uzumaki, Naruto","role":"Main","favorites":80000,"image":"https://img/naruto.jpg"}`, string(got.Data[0]))
	assert.JSONEq(t, `{"name":"Uchiha, Sasuke","role":"Main","favorites":0,"image":null}`, string(got.Data[1]))
}

func TestRoute_CharacterInfo(t *testing.T) {
	fake, client := newFakeJikan(t, map[string]string{
		"/characters?limit=5&q=Levi": `{"data":[{"mal_id":45627,"name":"Levi","about":"Captain","favorites":150000,"images":{"jpg":{"image_url":"https://img/levi.jpg"}}}]}`,
	})

	got, err := NewRouterService(client, nil).Route(context.Background(), "character_info", models.Params{Character: "Levi", TopN: 1})
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.JSONEq(t, `{"name":"Levi","about":"Captain","favorites":150000,"image":"https://img/levi.jpg"}`, string(got.Data[0]))
	assert.Equal(t, []string{"/characters?limit=5&q=Levi"}, fake.calls())
}

func TestRoute_Schedule(t *testing.T) {
	fake, client := newFakeJikan(t, map[string]string{
		"/schedules?filter=monday": animeList(1, 2, 3),
		"/schedules":               animeList(4, 5, 6),
	})
	svc := NewRouterService(client, nil)

	got, err := svc.Route(context.Background(), "airing_schedule", models.Params{Day: "senin", TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, malIDs(t, got.Data))

	got, err = svc.Route(context.Background(), "airing_schedule", models.Params{Day: "today"})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, malIDs(t, got.Data))

	assert.Equal(t, []string{"/schedules?filter=monday", "/schedules"}, fake.calls())
}

func TestRoute_Episodes(t *testing.T) {
	_, client := newFakeJikan(t, map[string]string{
		"/anime?limit=1&q=Frieren": animeList(52991),
		"/anime/52991/episodes":    animeList(1, 2, 3, 4),
	})

	got, err := NewRouterService(client, nil).Route(context.Background(), "episode_list", models.Params{Title: "Frieren", TopN: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, malIDs(t, got.Data))
}

func TestRoute_TrendingAndTopShareListing(t *testing.T) {
	fake, client := newFakeJikan(t, map[string]string{
		"/top/anime?limit=2": animeList(5114, 9253, 1),
	})
	svc := NewRouterService(client, nil)

	for _, intent := range []string{"trending_now", "top_all_time"} {
		got, err := svc.Route(context.Background(), intent, models.Params{TopN: 2})
		require.NoError(t, err)
		assert.Equal(t, models.Intent(intent), got.Intent)
		assert.Equal(t, []int{5114, 9253}, malIDs(t, got.Data))
	}
	assert.Equal(t, []string{"/top/anime?limit=2", "/top/anime?limit=2"}, fake.calls())
}

func TestRoute_UpstreamFailure(t *testing.T) {
	fake, client := newFakeJikan(t, nil)
	fake.status = http.StatusServiceUnavailable

	_, err := NewRouterService(client, nil).Route(context.Background(), "top_all_time", models.Params{})
	require.Error(t, err)

	var statusErr *jikan.HTTPStatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestStrategyFor_CoversEveryKnownIntent(t *testing.T) {
	svc := NewRouterService(nil, nil)
	for _, intent := range models.AllIntents {
		assert.NotNil(t, svc.strategyFor(intent), intent)
	}
}

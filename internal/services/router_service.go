package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"anivise/internal/jikan"
	"anivise/internal/models"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// AnimeSource is the subset of the Jikan client the dispatcher uses
type AnimeSource interface {
	SearchAnime(ctx context.Context, search jikan.AnimeSearch) ([]jikan.Record, error)
	FindAnime(ctx context.Context, title string) (jikan.Record, bool, error)
	TopAnime(ctx context.Context, limit int) ([]jikan.Record, error)
	AnimeCharacters(ctx context.Context, malID int) ([]jikan.Record, error)
	AnimeEpisodes(ctx context.Context, malID int) ([]jikan.Record, error)
	SearchCharacters(ctx context.Context, name string, limit int) ([]jikan.Record, error)
	Schedules(ctx context.Context, day string) ([]jikan.Record, error)
	Season(ctx context.Context, year int, season string, limit int) ([]jikan.Record, error)
	AnimeGenres(ctx context.Context) ([]jikan.Record, error)
}

// characterSearchLimit is the fixed page size for character lookups
const characterSearchLimit = 5

// routeOutcome is what a strategy produced before truncation bookkeeping
type routeOutcome struct {
	data     []jikan.Record
	fallback string
}

type routeStrategy func(ctx context.Context, q models.Query) (routeOutcome, error)

// RouterService dispatches a classified intent to the Jikan queries that answer it
type RouterService struct {
	source  AnimeSource
	genres  *GenreAliases
	metrics *Metrics
}

// NewRouterService creates a dispatcher; genres may be nil to use the built-in aliases
func NewRouterService(source AnimeSource, genres *GenreAliases) *RouterService {
	if genres == nil {
		genres = NewGenreAliases()
	}
	return &RouterService{
		source:  source,
		genres:  genres,
		metrics: GetMetrics(),
	}
}

// Route resolves intent and params to result records. Unrecognized intents and
// missing required parameters produce an empty result rather than an error;
// only upstream failures are returned as errors.
func (s *RouterService) Route(ctx context.Context, rawIntent string, params models.Params) (models.RouteResult, error) {
	intent := models.ParseIntent(rawIntent)
	if intent == models.IntentUnknown {
		return models.EmptyResult(models.IntentUnknown), nil
	}

	start := time.Now()
	query := models.Bind(intent, params)
	if query.Missing() {
		log.WithField("intent", intent).Debug("[ROUTER] Required parameter missing, returning empty result")
		s.metrics.RecordRoute(string(intent), "empty", time.Since(start))
		return models.EmptyResult(intent), nil
	}

	outcome, err := s.strategyFor(intent)(ctx, query)
	if err != nil {
		s.metrics.RecordRoute(string(intent), "error", time.Since(start))
		return models.RouteResult{}, fmt.Errorf("route %s: %w", intent, err)
	}

	result := models.EmptyResult(intent)
	result.Data = append(result.Data, outcome.data...)
	result.Fallback = outcome.fallback

	status := "ok"
	if len(result.Data) == 0 {
		status = "empty"
	}
	if outcome.fallback != "" {
		s.metrics.RecordFallback(string(intent), outcome.fallback)
	}
	s.metrics.RecordRoute(string(intent), status, time.Since(start))

	log.WithFields(log.Fields{
		"intent":   intent,
		"records":  len(result.Data),
		"fallback": outcome.fallback,
		"duration": time.Since(start).String(),
	}).Info("[ROUTER] Dispatched")
	return result, nil
}

// strategyFor selects the query strategy for a known intent
func (s *RouterService) strategyFor(intent models.Intent) routeStrategy {
	switch intent {
	case models.IntentRecommendationByYear:
		return s.byYear
	case models.IntentRecommendationBySeason:
		return s.bySeason
	case models.IntentRecommendationByGenre:
		return s.byGenre
	case models.IntentRecommendationGeneral, models.IntentAnimeSearch:
		return s.textSearch
	case models.IntentAnimeInfo:
		return s.animeInfo
	case models.IntentRatingLookup:
		return s.ratingLookup
	case models.IntentCharacterBest:
		return s.characterBest
	case models.IntentCharacterInfo, models.IntentCharacterSearch:
		return s.characterSearch
	case models.IntentAiringSchedule:
		return s.schedule
	case models.IntentEpisodeList:
		return s.episodes
	case models.IntentTrendingNow, models.IntentTopAllTime:
		return s.top
	default:
		return func(context.Context, models.Query) (routeOutcome, error) {
			return routeOutcome{}, nil
		}
	}
}

func (s *RouterService) byYear(ctx context.Context, q models.Query) (routeOutcome, error) {
	yq := q.(models.YearQuery)
	year := strconv.Itoa(yq.Year)

	data, err := s.source.SearchAnime(ctx, jikan.AnimeSearch{
		StartDate: year + "-01-01",
		EndDate:   year + "-12-31",
		OrderBy:   "score",
		Sort:      "desc",
		Limit:     yq.TopN,
	})
	if err != nil {
		return routeOutcome{}, err
	}
	if len(data) > 0 {
		return routeOutcome{data: truncateRecords(data, yq.TopN)}, nil
	}

	log.WithField("year", yq.Year).Info("[ROUTER] No dated results, falling back to keyword search")
	data, err = s.source.SearchAnime(ctx, jikan.AnimeSearch{Query: year, Limit: yq.TopN})
	if err != nil {
		return routeOutcome{}, err
	}
	if len(data) > 0 {
		return routeOutcome{data: truncateRecords(data, yq.TopN), fallback: models.FallbackKeyword}, nil
	}

	return s.globalTop(ctx, yq.TopN)
}

func (s *RouterService) bySeason(ctx context.Context, q models.Query) (routeOutcome, error) {
	sq := q.(models.SeasonQuery)
	data, err := s.source.Season(ctx, sq.Year, sq.Season, sq.TopN)
	if err != nil {
		return routeOutcome{}, err
	}
	return routeOutcome{data: truncateRecords(data, sq.TopN)}, nil
}

func (s *RouterService) byGenre(ctx context.Context, q models.Query) (routeOutcome, error) {
	gq := q.(models.GenreQuery)

	genreID, err := s.resolveGenreID(ctx, gq.Genre)
	if err != nil {
		return routeOutcome{}, err
	}
	if genreID == 0 {
		log.WithField("genre", gq.Genre).Info("[ROUTER] Genre not recognized, falling back to global top")
		return s.globalTop(ctx, gq.Limit)
	}

	data, err := s.source.SearchAnime(ctx, jikan.AnimeSearch{
		Genres:  []int{genreID},
		OrderBy: "score",
		Sort:    "desc",
		Limit:   gq.Limit,
	})
	if err != nil {
		return routeOutcome{}, err
	}
	if len(data) == 0 {
		return s.globalTop(ctx, gq.Limit)
	}
	return routeOutcome{data: truncateRecords(data, gq.Limit)}, nil
}

// resolveGenreID maps a genre name (after aliasing) or numeric id to a Jikan
// genre id; 0 means unresolved
func (s *RouterService) resolveGenreID(ctx context.Context, genre string) (int, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return 0, nil
	}
	if id, err := strconv.Atoi(genre); err == nil && id > 0 {
		return id, nil
	}

	name := s.genres.Resolve(genre)
	genres, err := s.source.AnimeGenres(ctx)
	if err != nil {
		return 0, err
	}
	for _, g := range genres {
		if strings.EqualFold(gjson.GetBytes(g, "name").String(), name) {
			return jikan.MalID(g), nil
		}
	}
	return 0, nil
}

func (s *RouterService) globalTop(ctx context.Context, limit int) (routeOutcome, error) {
	data, err := s.source.TopAnime(ctx, limit)
	if err != nil {
		return routeOutcome{}, err
	}
	if len(data) == 0 {
		return routeOutcome{}, nil
	}
	return routeOutcome{data: truncateRecords(data, limit), fallback: models.FallbackGlobalTop}, nil
}

func (s *RouterService) textSearch(ctx context.Context, q models.Query) (routeOutcome, error) {
	tq := q.(models.TextQuery)
	data, err := s.source.SearchAnime(ctx, jikan.AnimeSearch{Query: tq.Text, Limit: tq.TopN})
	if err != nil {
		return routeOutcome{}, err
	}
	return routeOutcome{data: truncateRecords(data, tq.TopN)}, nil
}

func (s *RouterService) animeInfo(ctx context.Context, q models.Query) (routeOutcome, error) {
	found, ok, err := s.source.FindAnime(ctx, q.(models.TitleQuery).Title)
	if err != nil || !ok {
		return routeOutcome{}, err
	}
	return routeOutcome{data: []jikan.Record{found}}, nil
}

type ratingProjection struct {
	Title   string `json:"title"`
	Score   any    `json:"score"`
	Members any    `json:"members"`
}

func (s *RouterService) ratingLookup(ctx context.Context, q models.Query) (routeOutcome, error) {
	found, ok, err := s.source.FindAnime(ctx, q.(models.TitleQuery).Title)
	if err != nil || !ok {
		return routeOutcome{}, err
	}

	card, err := json.Marshal(ratingProjection{
		Title:   gjson.GetBytes(found, "title").String(),
		Score:   gjson.GetBytes(found, "score").Value(),
		Members: gjson.GetBytes(found, "members").Value(),
	})
	if err != nil {
		return routeOutcome{}, fmt.Errorf("failed to project rating: %w", err)
	}
	return routeOutcome{data: []jikan.Record{card}}, nil
}

type characterProjection struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	About     string `json:"about,omitempty"`
	Favorites int64  `json:"favorites"`
	Image     any    `json:"image"`
}

func (s *RouterService) characterBest(ctx context.Context, q models.Query) (routeOutcome, error) {
	found, ok, err := s.source.FindAnime(ctx, q.(models.TitleQuery).Title)
	if err != nil || !ok {
		return routeOutcome{}, err
	}

	entries, err := s.source.AnimeCharacters(ctx, jikan.MalID(found))
	if err != nil {
		return routeOutcome{}, err
	}

	data := make([]jikan.Record, 0, len(entries))
	for _, entry := range entries {
		character := gjson.GetBytes(entry, "character")
		projected, err := json.Marshal(characterProjection{
			Name:      character.Get("name").String(),
			Role:      gjson.GetBytes(entry, "role").String(),
			Favorites: gjson.GetBytes(entry, "favorites").Int(),
			Image:     firstValue(character.Get("images.jpg.image_url"), character.Get("image_url")),
		})
		if err != nil {
			return routeOutcome{}, fmt.Errorf("failed to project character: %w", err)
		}
		data = append(data, projected)
	}
	return routeOutcome{data: data}, nil
}

func (s *RouterService) characterSearch(ctx context.Context, q models.Query) (routeOutcome, error) {
	entries, err := s.source.SearchCharacters(ctx, q.(models.CharacterQuery).Name, characterSearchLimit)
	if err != nil {
		return routeOutcome{}, err
	}

	data := make([]jikan.Record, 0, len(entries))
	for _, entry := range entries {
		projected, err := json.Marshal(characterProjection{
			Name:      gjson.GetBytes(entry, "name").String(),
			About:     gjson.GetBytes(entry, "about").String(),
			Favorites: gjson.GetBytes(entry, "favorites").Int(),
			Image:     firstValue(gjson.GetBytes(entry, "images.jpg.image_url")),
		})
		if err != nil {
			return routeOutcome{}, fmt.Errorf("failed to project character: %w", err)
		}
		data = append(data, projected)
	}
	return routeOutcome{data: truncateRecords(data, characterSearchLimit)}, nil
}

func (s *RouterService) schedule(ctx context.Context, q models.Query) (routeOutcome, error) {
	sq := q.(models.ScheduleQuery)
	data, err := s.source.Schedules(ctx, sq.Day)
	if err != nil {
		return routeOutcome{}, err
	}
	return routeOutcome{data: truncateRecords(data, sq.TopN)}, nil
}

func (s *RouterService) episodes(ctx context.Context, q models.Query) (routeOutcome, error) {
	tq := q.(models.TitleQuery)
	found, ok, err := s.source.FindAnime(ctx, tq.Title)
	if err != nil || !ok {
		return routeOutcome{}, err
	}

	data, err := s.source.AnimeEpisodes(ctx, jikan.MalID(found))
	if err != nil {
		return routeOutcome{}, err
	}
	return routeOutcome{data: truncateRecords(data, tq.TopN)}, nil
}

func (s *RouterService) top(ctx context.Context, q models.Query) (routeOutcome, error) {
	lq := q.(models.ListQuery)
	data, err := s.source.TopAnime(ctx, lq.TopN)
	if err != nil {
		return routeOutcome{}, err
	}
	return routeOutcome{data: truncateRecords(data, lq.TopN)}, nil
}

// truncateRecords keeps the first n records in upstream order
func truncateRecords(records []jikan.Record, n int) []jikan.Record {
	if n >= 0 && len(records) > n {
		return records[:n]
	}
	return records
}

// firstValue returns the first non-empty string result, or nil
func firstValue(results ...gjson.Result) any {
	for _, r := range results {
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return nil
}

package models

import "strings"

// Query is the validated, intent-specific form of Params. Each variant carries
// only the fields its dispatcher strategy needs.
type Query interface {
	// Missing reports that a parameter the strategy requires is absent.
	Missing() bool
	isQuery()
}

// YearQuery selects top-scored anime that started airing in a calendar year
type YearQuery struct {
	Year int
	TopN int
}

// SeasonQuery selects a broadcast season listing
type SeasonQuery struct {
	Year   int
	Season string // winter, spring, summer, fall
	TopN   int
}

// GenreQuery selects top-scored anime in a genre; Limit is clamped to 1..10
type GenreQuery struct {
	Genre string
	Limit int
}

// TextQuery is a free-text anime listing search
type TextQuery struct {
	Text string
	TopN int
}

// TitleQuery resolves a single anime by title before fetching related data
type TitleQuery struct {
	Title string
	TopN  int
}

// CharacterQuery is a free-text character search
type CharacterQuery struct {
	Name string
}

// ScheduleQuery lists airing entries for the whole week or a single day
type ScheduleQuery struct {
	Day  string // empty means the full week
	TopN int
}

// ListQuery is a global listing with only a count
type ListQuery struct {
	TopN int
}

// UnknownQuery is bound for intents outside the enumeration
type UnknownQuery struct{}

func (q YearQuery) Missing() bool { return q.Year <= 0 }
func (q SeasonQuery) Missing() bool { return q.Year <= 0 || q.Season == "" }
func (q GenreQuery) Missing() bool { return false }
func (q TextQuery) Missing() bool { return false }
func (q TitleQuery) Missing() bool { return q.Title == "" }
func (q CharacterQuery) Missing() bool { return q.Name == "" }
func (q ScheduleQuery) Missing() bool { return false }
func (q ListQuery) Missing() bool { return false }
func (q UnknownQuery) Missing() bool { return true }

func (YearQuery) isQuery() {}
func (SeasonQuery) isQuery() {}
func (GenreQuery) isQuery() {}
func (TextQuery) isQuery() {}
func (TitleQuery) isQuery() {}
func (CharacterQuery) isQuery() {}
func (ScheduleQuery) isQuery() {}
func (ListQuery) isQuery() {}
func (UnknownQuery) isQuery() {}

const maxGenreLimit = 10

// Bind validates params for an intent and returns the matching Query variant.
// It never fails: missing required fields are reported through Missing().
func Bind(intent Intent, params Params) Query {
	p := params.Normalize()

	switch intent {
	case IntentRecommendationByYear:
		return YearQuery{Year: p.Year, TopN: p.TopN}

	case IntentRecommendationBySeason:
		return SeasonQuery{Year: p.Year, Season: NormalizeSeason(p.Season), TopN: p.TopN}

	case IntentRecommendationByGenre:
		genre := firstNonEmpty(p.Genre, p.Query)
		return GenreQuery{Genre: genre, Limit: clamp(p.TopN, 1, maxGenreLimit)}

	case IntentRecommendationGeneral:
		return TextQuery{Text: firstNonEmpty(p.Query, p.Genre), TopN: p.TopN}

	case IntentAnimeSearch:
		return TextQuery{Text: p.Query, TopN: p.TopN}

	case IntentAnimeInfo, IntentRatingLookup:
		return TitleQuery{Title: firstNonEmpty(p.Title, p.Anime), TopN: 1}

	case IntentCharacterBest:
		return TitleQuery{Title: firstNonEmpty(p.Anime, p.Title, p.Query), TopN: p.TopN}

	case IntentEpisodeList:
		return TitleQuery{Title: firstNonEmpty(p.Title, p.Anime), TopN: p.TopN}

	case IntentCharacterInfo, IntentCharacterSearch:
		return CharacterQuery{Name: firstNonEmpty(p.Character, p.Query)}

	case IntentAiringSchedule:
		return ScheduleQuery{Day: NormalizeDay(p.Day), TopN: p.TopN}

	case IntentTrendingNow, IntentTopAllTime:
		return ListQuery{TopN: p.TopN}

	default:
		return UnknownQuery{}
	}
}

var seasonAliases = map[string]string{
	"winter": "winter", "spring": "spring", "summer": "summer", "fall": "fall",
	"autumn": "fall",
	"dingin": "winter", "semi": "spring", "panas": "summer", "gugur": "fall",
}

// NormalizeSeason maps a season word to the Jikan season slug, or "" if unrecognized
func NormalizeSeason(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "musim ")
	return seasonAliases[s]
}

var dayAliases = map[string]string{
	"monday": "monday", "tuesday": "tuesday", "wednesday": "wednesday", "thursday": "thursday",
	"friday": "friday", "saturday": "saturday", "sunday": "sunday",
	"senin": "monday", "selasa": "tuesday", "rabu": "wednesday", "kamis": "thursday",
	"jumat": "friday", "sabtu": "saturday", "minggu": "sunday",
	"unknown": "unknown", "other": "other",
}

// NormalizeDay maps a day word to a Jikan schedule filter. "today", empty and
// unrecognized values select the full-week listing ("").
func NormalizeDay(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.ReplaceAll(d, "'", "")
	return dayAliases[d]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

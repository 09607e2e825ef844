package presentation

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Card is one display entry
type Card struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image,omitempty"`
	Score    string `json:"score,omitempty"`
	Body     string `json:"body,omitempty"`
}

var numberPrinter = message.NewPrinter(language.English)

// Project builds cards for view from result records. Rating cards use only
// the first record.
func Project(view View, data []json.RawMessage) []Card {
	cards := []Card{}
	if len(data) == 0 {
		return cards
	}

	switch view {
	case ViewCharacterGrid:
		for _, r := range data {
			cards = append(cards, characterCard(gjson.ParseBytes(r)))
		}
	case ViewAnimeGrid:
		for _, r := range data {
			cards = append(cards, animeCard(gjson.ParseBytes(r)))
		}
	case ViewScheduleList:
		for _, r := range data {
			cards = append(cards, scheduleCard(gjson.ParseBytes(r)))
		}
	case ViewRatingCard:
		cards = append(cards, ratingCard(gjson.ParseBytes(data[0])))
	case ViewEpisodeList:
		for i, r := range data {
			cards = append(cards, episodeCard(gjson.ParseBytes(r), i))
		}
	}
	return cards
}

func characterCard(c gjson.Result) Card {
	return Card{
		Title:    orDefault(c.Get("name").String(), "Unknown"),
		Subtitle: c.Get("role").String(),
		Image:    c.Get("image").String(),
		Score:    "♥ " + formatCount(c.Get("favorites")),
		Body:     c.Get("about").String(),
	}
}

func animeCard(a gjson.Result) Card {
	return Card{
		Title:    orDefault(a.Get("title").String(), "Untitled"),
		Subtitle: orDefault(a.Get("aired.string").String(), "Unknown Release Date"),
		Image:    animeImage(a),
		Score:    formatScore(a.Get("score")),
		Body:     orDefault(a.Get("synopsis").String(), "No synopsis available."),
	}
}

func scheduleCard(a gjson.Result) Card {
	card := animeCard(a)
	card.Subtitle = orDefault(a.Get("broadcast.string").String(), "Broadcast time unknown")
	return card
}

func ratingCard(r gjson.Result) Card {
	return Card{
		Title:    orDefault(r.Get("title").String(), "Untitled"),
		Score:    formatScore(r.Get("score")),
		Subtitle: "Members: " + formatCount(r.Get("members")),
	}
}

func episodeCard(ep gjson.Result, index int) Card {
	number := strconv.Itoa(index + 1)
	if id := ep.Get("mal_id"); id.Exists() && id.Type == gjson.Number {
		number = id.Raw
	}
	return Card{
		Title:    "Episode " + number + ": " + orDefault(ep.Get("title").String(), "Untitled"),
		Subtitle: "Aired: " + formatDate(ep.Get("aired").String()),
		Score:    formatScore(ep.Get("score")),
	}
}

func animeImage(a gjson.Result) string {
	if img := a.Get("images.jpg.image_url").String(); img != "" {
		return img
	}
	return a.Get("image_url").String()
}

func formatScore(r gjson.Result) string {
	if r.Type != gjson.Number {
		return "N/A"
	}
	return strconv.FormatFloat(r.Float(), 'f', -1, 64)
}

func formatCount(r gjson.Result) string {
	if r.Type != gjson.Number {
		return "—"
	}
	return numberPrinter.Sprintf("%d", r.Int())
}

func formatDate(raw string) string {
	if raw == "" {
		return "Unknown"
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("Jan 2, 2006")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

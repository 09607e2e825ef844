package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultTopN is used whenever a request carries no usable quantity
const DefaultTopN = 10

// Params is the loosely typed wire form of the fields extracted from a user
// request. Decoding is tolerant: numbers may arrive as JSON numbers or numeric
// strings and null means absent. Use Bind to obtain a validated Query.
type Params struct {
	Query     string         `json:"query,omitempty"`
	Title     string         `json:"title,omitempty"`
	Anime     string         `json:"anime,omitempty"`
	Year      int            `json:"year,omitempty"`
	Season    string         `json:"season,omitempty"`
	Genre     string         `json:"genre,omitempty"`
	Character string         `json:"character,omitempty"`
	Day       string         `json:"day,omitempty"`
	TopN      int            `json:"top_n"`
	Limit     int            `json:"limit,omitempty"`
	Extras    map[string]any `json:"extras,omitempty"`
}

// UnmarshalJSON decodes params without failing on type drift from the model
func (p *Params) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid params JSON")
	}

	root := gjson.ParseBytes(data)
	*p = Params{}
	if root.Type == gjson.Null {
		return nil
	}
	if !root.IsObject() {
		return fmt.Errorf("params must be an object, got %s", root.Type)
	}

	p.Query = stringField(root.Get("query"))
	p.Title = stringField(root.Get("title"))
	p.Anime = stringField(root.Get("anime"))
	p.Season = strings.ToLower(stringField(root.Get("season")))
	p.Genre = stringField(root.Get("genre"))
	p.Character = stringField(root.Get("character"))
	p.Day = strings.ToLower(stringField(root.Get("day")))
	p.Year = intField(root.Get("year"))
	p.TopN = intField(root.Get("top_n"))
	p.Limit = intField(root.Get("limit"))

	if extras := root.Get("extras"); extras.IsObject() {
		if err := json.Unmarshal([]byte(extras.Raw), &p.Extras); err != nil {
			return fmt.Errorf("failed to decode extras: %w", err)
		}
	}

	return nil
}

// Normalize guarantees TopN is a positive integer: top_n, else limit, else the default
func (p Params) Normalize() Params {
	switch {
	case p.TopN > 0:
	case p.Limit > 0:
		p.TopN = p.Limit
	default:
		p.TopN = DefaultTopN
	}
	if p.Year < 0 {
		p.Year = 0
	}
	return p
}

func stringField(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return strings.TrimSpace(r.Str)
	case gjson.Number:
		return r.Raw
	default:
		return ""
	}
}

func intField(r gjson.Result) int {
	switch r.Type {
	case gjson.Number, gjson.String:
		return int(r.Int())
	default:
		return 0
	}
}

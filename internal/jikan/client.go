// Package jikan is a small client for the Jikan v4 REST API, the public
// MyAnimeList mirror. Responses are passed through as raw JSON records.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"anivise/internal/cache"
	"anivise/internal/health"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Jikan v4 endpoint
	DefaultBaseURL = "https://api.jikan.moe/v4"
	// MaxLimit is the largest page size Jikan accepts
	MaxLimit = 25

	defaultRate    = 3.0
	maxBodyBytes   = 8 << 20
	cacheKeyPrefix = "jikan:"
)

// Record is one upstream item, passed through unmodified
type Record = json.RawMessage

// Options configures a Client
type Options struct {
	BaseURL       string
	RatePerSecond float64
	Timeout       time.Duration
	HTTPClient    *http.Client
	Cache         cache.Cache
	CacheTTL      time.Duration
	Reporter      health.Reporter
}

// Client issues rate-limited, cached GET requests against Jikan
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	cache    cache.Cache
	ttl      time.Duration
	reporter health.Reporter
}

// NewClient creates a Jikan client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = defaultRate
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if opts.Reporter == nil {
		opts.Reporter = health.NopReporter{}
	}

	burst := int(opts.RatePerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     opts.HTTPClient,
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst),
		cache:    opts.Cache,
		ttl:      opts.CacheTTL,
		reporter: opts.Reporter,
	}
}

// AnimeSearch holds the /anime query parameters this service uses
type AnimeSearch struct {
	Query     string
	StartDate string
	EndDate   string
	Genres    []int
	OrderBy   string
	Sort      string
	Limit     int
}

func (s AnimeSearch) values() url.Values {
	v := url.Values{}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	if s.StartDate != "" {
		v.Set("start_date", s.StartDate)
	}
	if s.EndDate != "" {
		v.Set("end_date", s.EndDate)
	}
	if len(s.Genres) > 0 {
		ids := make([]string, len(s.Genres))
		for i, id := range s.Genres {
			ids[i] = strconv.Itoa(id)
		}
		v.Set("genres", strings.Join(ids, ","))
	}
	if s.OrderBy != "" {
		v.Set("order_by", s.OrderBy)
	}
	if s.Sort != "" {
		v.Set("sort", s.Sort)
	}
	setLimit(v, s.Limit)
	return v
}

func setLimit(v url.Values, limit int) {
	if limit <= 0 {
		return
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	v.Set("limit", strconv.Itoa(limit))
}

// SearchAnime calls GET /anime
func (c *Client) SearchAnime(ctx context.Context, search AnimeSearch) ([]Record, error) {
	return c.list(ctx, "/anime", search.values())
}

// FindAnime returns the single best match for title
func (c *Client) FindAnime(ctx context.Context, title string) (Record, bool, error) {
	records, err := c.SearchAnime(ctx, AnimeSearch{Query: title, Limit: 1})
	if err != nil || len(records) == 0 {
		return nil, false, err
	}
	return records[0], true, nil
}

// TopAnime calls GET /top/anime
func (c *Client) TopAnime(ctx context.Context, limit int) ([]Record, error) {
	v := url.Values{}
	setLimit(v, limit)
	return c.list(ctx, "/top/anime", v)
}

// AnimeCharacters calls GET /anime/{id}/characters
func (c *Client) AnimeCharacters(ctx context.Context, malID int) ([]Record, error) {
	return c.list(ctx, fmt.Sprintf("/anime/%d/characters", malID), nil)
}

// AnimeEpisodes calls GET /anime/{id}/episodes
func (c *Client) AnimeEpisodes(ctx context.Context, malID int) ([]Record, error) {
	return c.list(ctx, fmt.Sprintf("/anime/%d/episodes", malID), nil)
}

// SearchCharacters calls GET /characters
func (c *Client) SearchCharacters(ctx context.Context, name string, limit int) ([]Record, error) {
	v := url.Values{}
	v.Set("q", name)
	setLimit(v, limit)
	return c.list(ctx, "/characters", v)
}

// Schedules calls GET /schedules, filtered to day unless day is empty
func (c *Client) Schedules(ctx context.Context, day string) ([]Record, error) {
	v := url.Values{}
	if day != "" {
		v.Set("filter", day)
	}
	return c.list(ctx, "/schedules", v)
}

// Season calls GET /seasons/{year}/{season}
func (c *Client) Season(ctx context.Context, year int, season string, limit int) ([]Record, error) {
	v := url.Values{}
	setLimit(v, limit)
	return c.list(ctx, fmt.Sprintf("/seasons/%d/%s", year, url.PathEscape(season)), v)
}

// AnimeGenres calls GET /genres/anime
func (c *Client) AnimeGenres(ctx context.Context) ([]Record, error) {
	return c.list(ctx, "/genres/anime", nil)
}

// Ping issues an uncached request to check reachability
func (c *Client) Ping(ctx context.Context) error {
	v := url.Values{}
	setLimit(v, 1)
	_, err := c.fetch(ctx, "/top/anime", v)
	return err
}

// list fetches path and returns its data member as records. An object-valued
// data member becomes a single record; a missing one yields no records.
func (c *Client) list(ctx context.Context, path string, query url.Values) ([]Record, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return DataRecords(body), nil
}

// DataRecords extracts the records under "data" from a Jikan response body
func DataRecords(body []byte) []Record {
	data := gjson.GetBytes(body, "data")
	switch {
	case data.IsArray():
		items := data.Array()
		records := make([]Record, 0, len(items))
		for _, item := range items {
			records = append(records, Record(item.Raw))
		}
		return records
	case data.IsObject():
		return []Record{Record(data.Raw)}
	default:
		return []Record{}
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := cacheKeyPrefix + path
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}

	if body, ok := c.cache.Get(ctx, key); ok {
		log.WithField("key", key).Debug("[JIKAN] Cache hit")
		return body, nil
	}

	body, err := c.fetch(ctx, path, query)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, key, body, c.ttl)
	return body, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("jikan rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build jikan request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.reporter.MarkFailed(health.UpstreamJikan, 0, err.Error())
		return nil, fmt.Errorf("jikan request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.reporter.MarkFailed(health.UpstreamJikan, resp.StatusCode, err.Error())
		return nil, fmt.Errorf("failed to read jikan response: %w", err)
	}

	log.WithFields(log.Fields{
		"url":      u,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("[JIKAN] GET")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &HTTPStatusError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(body, "message").String(),
		}
		c.reporter.MarkFailed(health.UpstreamJikan, resp.StatusCode, statusErr.Error())
		return nil, statusErr
	}

	c.reporter.MarkHealthy(health.UpstreamJikan)
	return body, nil
}

// MalID reads the mal_id of a record, or 0
func MalID(r Record) int {
	return int(gjson.GetBytes(r, "mal_id").Int())
}

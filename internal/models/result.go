package models

import "encoding/json"

// Classification is the classifier output returned by POST /api/intent
type Classification struct {
	Intent Intent `json:"intent"`
	Params Params `json:"params"`
}

// RouteRequest is the body accepted by POST /api/router
type RouteRequest struct {
	Intent string `json:"intent"`
	Params Params `json:"params"`
}

// Fallback stages reported on RouteResult when the primary query came back empty
const (
	FallbackKeyword   = "keyword_search"
	FallbackGlobalTop = "global_top"
)

// RouteResult is the dispatcher output returned by POST /api/router.
// Data holds upstream records passed through unmodified or lightly projected.
type RouteResult struct {
	Intent   Intent            `json:"intent"`
	Data     []json.RawMessage `json:"data"`
	Fallback string            `json:"fallback,omitempty"`
}

// EmptyResult returns a well-formed result with no records
func EmptyResult(intent Intent) RouteResult {
	return RouteResult{Intent: intent, Data: []json.RawMessage{}}
}

// Recommendation is one entry of the free-form LLM recommendation list
type Recommendation struct {
	Title    string   `json:"title"`
	Genre    []string `json:"genre"`
	Synopsis string   `json:"synopsis"`
	Reason   string   `json:"reason"`
}
